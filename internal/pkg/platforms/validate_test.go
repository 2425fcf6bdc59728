package platforms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gc-digital-net/crosspost/app/models"
)

func TestValidateLength(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		platform string
		wantErr  error
	}{
		{"Short tweet", "hello", "twitter", nil},
		{"Exactly at the limit", strings.Repeat("a", 280), "twitter", nil},
		{"One over the limit", strings.Repeat("a", 281), "twitter", ErrContentTooLong},
		{"Long form fits linkedin", strings.Repeat("a", 281), "linkedin", nil},
		{"Multibyte runes counted as runes", strings.Repeat("ü", 280), "twitter", nil},
		{"Unknown platform", "hello", "myspace", ErrUnknownPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLength(tt.content, tt.platform)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateMediaAndKind(t *testing.T) {
	tests := []struct {
		name     string
		media    []string
		kind     string
		platform string
		wantErr  error
	}{
		{"Plain text tweet", nil, models.KindText, "twitter", nil},
		{"Poll on twitter", nil, models.KindPoll, "twitter", nil},
		{"Poll not supported on linkedin", nil, models.KindPoll, "linkedin", ErrUnsupportedContent},
		{"Text not supported on instagram", nil, models.KindText, "instagram", ErrUnsupportedContent},
		{"Instagram requires media", nil, models.KindImage, "instagram", ErrMediaRequired},
		{"Instagram image post", []string{"https://cdn.example.com/a.jpg"}, models.KindImage, "instagram", nil},
		{
			"Too many images for twitter",
			[]string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"},
			models.KindImage, "twitter", ErrTooManyImages,
		},
		{
			"Too many videos for twitter",
			[]string{"a.mp4", "b.mp4"},
			models.KindVideo, "twitter", ErrTooManyVideos,
		},
		{"Tiktok accepts a single video", []string{"clip.mp4"}, models.KindVideo, "tiktok", nil},
		{"Tiktok rejects images", []string{"a.jpg"}, models.KindVideo, "tiktok", ErrTooManyImages},
		{"Unknown platform", nil, models.KindText, "myspace", ErrUnknownPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaAndKind(tt.media, tt.kind, tt.platform)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTextBearing(t *testing.T) {
	assert.True(t, TextBearing(models.KindText))
	assert.True(t, TextBearing(models.KindArticle))
	assert.False(t, TextBearing(models.KindImage))
	assert.False(t, TextBearing(models.KindStory))
}
