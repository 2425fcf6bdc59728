package platforms

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gc-digital-net/crosspost/app/models"
)

var (
	ErrUnknownPlatform    = errors.New("unknown platform")
	ErrContentTooLong     = errors.New("content exceeds platform limit")
	ErrUnsupportedContent = errors.New("content kind not supported by platform")
	ErrTooManyImages      = errors.New("too many images for platform")
	ErrTooManyVideos      = errors.New("too many videos for platform")
	ErrMediaRequired      = errors.New("platform requires media")
)

// ValidateLength checks the content length against the platform's character
// limit. Violations are hard failures; content is never trimmed to fit.
func ValidateLength(content, platform string) error {
	spec, err := Spec(platform)
	if err != nil {
		return err
	}
	if n := utf8.RuneCountInString(content); n > spec.MaxChars {
		return fmt.Errorf("%w: %s allows %d characters, got %d", ErrContentTooLong, platform, spec.MaxChars, n)
	}
	return nil
}

// ValidateMediaAndKind checks the media list and content kind against the
// platform's per-type maxima and supported kind set. Media entries are
// classified by URL; anything that is not a video counts as an image.
func ValidateMediaAndKind(mediaURLs []string, contentKind, platform string) error {
	spec, err := Spec(platform)
	if err != nil {
		return err
	}

	if !spec.SupportsKind(contentKind) {
		return fmt.Errorf("%w: %s does not accept %q", ErrUnsupportedContent, platform, contentKind)
	}

	if spec.RequiresMedia && len(mediaURLs) == 0 {
		return fmt.Errorf("%w: %s", ErrMediaRequired, platform)
	}

	var images, videos int
	for _, u := range mediaURLs {
		if isVideoURL(u) {
			videos++
		} else {
			images++
		}
	}

	if images > spec.MaxImages {
		return fmt.Errorf("%w: %s allows %d images, got %d", ErrTooManyImages, platform, spec.MaxImages, images)
	}
	if videos > spec.MaxVideos {
		return fmt.Errorf("%w: %s allows %d videos, got %d", ErrTooManyVideos, platform, spec.MaxVideos, videos)
	}
	return nil
}

var videoExt = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".m4v":  true,
	".avi":  true,
}

func isVideoURL(u string) bool {
	for ext := range videoExt {
		if len(u) >= len(ext) && u[len(u)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TextBearing reports whether a content kind carries a text body that must
// not be empty on submission.
func TextBearing(kind string) bool {
	switch kind {
	case models.KindText, models.KindPoll, models.KindArticle:
		return true
	default:
		return false
	}
}
