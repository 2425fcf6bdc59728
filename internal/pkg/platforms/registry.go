package platforms

import (
	"fmt"

	"github.com/gc-digital-net/crosspost/app/models"
)

// PlatformSpec is the compiled-in capability and constraint record for one
// social network. Every platform referenced anywhere in the system has
// exactly one spec here.
type PlatformSpec struct {
	ID            string
	Name          string
	MaxChars      int
	MaxImages     int
	MaxVideos     int
	Kinds         map[string]bool
	RequiresMedia bool
	UsesPKCE      bool
}

// SupportsKind reports whether the platform accepts the given content kind.
func (s PlatformSpec) SupportsKind(kind string) bool {
	return s.Kinds[kind]
}

var registry = map[string]PlatformSpec{
	"twitter": {
		ID:        "twitter",
		Name:      "Twitter / X",
		MaxChars:  280,
		MaxImages: 4,
		MaxVideos: 1,
		Kinds:     kinds(models.KindText, models.KindImage, models.KindVideo, models.KindPoll),
		UsesPKCE:  true,
	},
	"linkedin": {
		ID:        "linkedin",
		Name:      "LinkedIn",
		MaxChars:  3000,
		MaxImages: 9,
		MaxVideos: 1,
		Kinds:     kinds(models.KindText, models.KindImage, models.KindVideo, models.KindArticle, models.KindCarousel),
	},
	"facebook": {
		ID:        "facebook",
		Name:      "Facebook",
		MaxChars:  63206,
		MaxImages: 10,
		MaxVideos: 1,
		Kinds:     kinds(models.KindText, models.KindImage, models.KindVideo, models.KindStory),
	},
	"instagram": {
		ID:            "instagram",
		Name:          "Instagram",
		MaxChars:      2200,
		MaxImages:     10,
		MaxVideos:     1,
		Kinds:         kinds(models.KindImage, models.KindVideo, models.KindStory, models.KindCarousel),
		RequiresMedia: true,
	},
	"tiktok": {
		ID:            "tiktok",
		Name:          "TikTok",
		MaxChars:      2200,
		MaxImages:     0,
		MaxVideos:     1,
		Kinds:         kinds(models.KindVideo),
		RequiresMedia: true,
		UsesPKCE:      true,
	},
}

func kinds(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Spec looks up the capability record for a platform identifier.
func Spec(platform string) (PlatformSpec, error) {
	spec, ok := registry[platform]
	if !ok {
		return PlatformSpec{}, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
	return spec, nil
}

// IsKnown reports whether the identifier names a registered platform.
func IsKnown(platform string) bool {
	_, ok := registry[platform]
	return ok
}

// All returns the registered platform identifiers.
func All() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}
