package connect

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/oauth2"

	"github.com/gc-digital-net/crosspost/internal/pkg/env"
)

// BuildProviders assembles the per-platform dispatch table from environment
// credentials. Platforms without configured credentials are skipped, so a
// deployment can enable networks one at a time.
func BuildProviders() map[string]Provider {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}

	providers := make(map[string]Provider)
	for _, build := range []func(string) *oauthProvider{
		newTwitterProvider,
		newLinkedInProvider,
		newFacebookProvider,
		newInstagramProvider,
		newTikTokProvider,
	} {
		p := build(base)
		if p.config.ClientID == "" {
			continue
		}
		providers[p.platform] = p
	}
	return providers
}

func redirectURL(base, platform string) string {
	return fmt.Sprintf("%s/connect/%s/callback", base, platform)
}

// Twitter: OAuth 2.0 authorization code with PKCE (confidential client).
func newTwitterProvider(base string) *oauthProvider {
	return &oauthProvider{
		platform: "twitter",
		usesPKCE: true,
		config: &oauth2.Config{
			ClientID:     env.GetEnv("TWITTER_CLIENT_ID", ""),
			ClientSecret: env.GetEnv("TWITTER_CLIENT_SECRET", ""),
			RedirectURL:  redirectURL(base, "twitter"),
			Scopes:       []string{"tweet.read", "tweet.write", "users.read", "offline.access"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://twitter.com/i/oauth2/authorize",
				TokenURL: "https://api.twitter.com/2/oauth2/token",
			},
		},
		profileURL: "https://api.twitter.com/2/users/me?user.fields=profile_image_url",
		parseProfile: func(body []byte) (*Profile, error) {
			var raw struct {
				Data struct {
					ID              string `json:"id"`
					Username        string `json:"username"`
					ProfileImageURL string `json:"profile_image_url"`
				} `json:"data"`
			}
			if err := decodeJSON(body, &raw); err != nil {
				return nil, err
			}
			if raw.Data.ID == "" {
				return nil, errors.New("response missing user id")
			}
			return &Profile{
				ExternalID: raw.Data.ID,
				Handle:     raw.Data.Username,
				AvatarURL:  raw.Data.ProfileImageURL,
			}, nil
		},
	}
}

// LinkedIn: plain authorization code, OpenID profile endpoint.
func newLinkedInProvider(base string) *oauthProvider {
	return &oauthProvider{
		platform: "linkedin",
		config: &oauth2.Config{
			ClientID:     env.GetEnv("LINKEDIN_CLIENT_ID", ""),
			ClientSecret: env.GetEnv("LINKEDIN_CLIENT_SECRET", ""),
			RedirectURL:  redirectURL(base, "linkedin"),
			Scopes:       []string{"openid", "profile", "w_member_social"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://www.linkedin.com/oauth/v2/authorization",
				TokenURL: "https://www.linkedin.com/oauth/v2/accessToken",
			},
		},
		profileURL: "https://api.linkedin.com/v2/userinfo",
		parseProfile: func(body []byte) (*Profile, error) {
			var raw struct {
				Sub     string `json:"sub"`
				Name    string `json:"name"`
				Picture string `json:"picture"`
			}
			if err := decodeJSON(body, &raw); err != nil {
				return nil, err
			}
			if raw.Sub == "" {
				return nil, errors.New("response missing subject")
			}
			return &Profile{ExternalID: raw.Sub, Handle: raw.Name, AvatarURL: raw.Picture}, nil
		},
	}
}

// Facebook: plain authorization code against the Graph dialog.
func newFacebookProvider(base string) *oauthProvider {
	return &oauthProvider{
		platform: "facebook",
		config: &oauth2.Config{
			ClientID:     env.GetEnv("FACEBOOK_CLIENT_ID", ""),
			ClientSecret: env.GetEnv("FACEBOOK_CLIENT_SECRET", ""),
			RedirectURL:  redirectURL(base, "facebook"),
			Scopes:       []string{"public_profile", "pages_manage_posts", "pages_read_engagement"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://www.facebook.com/v19.0/dialog/oauth",
				TokenURL: "https://graph.facebook.com/v19.0/oauth/access_token",
			},
		},
		profileURL: "https://graph.facebook.com/v19.0/me?fields=id,name",
		parseProfile: func(body []byte) (*Profile, error) {
			var raw struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			if err := decodeJSON(body, &raw); err != nil {
				return nil, err
			}
			if raw.ID == "" {
				return nil, errors.New("response missing id")
			}
			return &Profile{ExternalID: raw.ID, Handle: raw.Name}, nil
		},
	}
}

// Instagram: direct-scope redirect through the Facebook dialog; the granted
// scopes target the Instagram publishing Graph surface.
func newInstagramProvider(base string) *oauthProvider {
	return &oauthProvider{
		platform: "instagram",
		config: &oauth2.Config{
			ClientID:     env.GetEnv("INSTAGRAM_CLIENT_ID", ""),
			ClientSecret: env.GetEnv("INSTAGRAM_CLIENT_SECRET", ""),
			RedirectURL:  redirectURL(base, "instagram"),
			Scopes:       []string{"instagram_basic", "instagram_content_publish"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://www.facebook.com/v19.0/dialog/oauth",
				TokenURL: "https://graph.facebook.com/v19.0/oauth/access_token",
			},
		},
		profileURL: "https://graph.facebook.com/v19.0/me?fields=id,name",
		parseProfile: func(body []byte) (*Profile, error) {
			var raw struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			}
			if err := decodeJSON(body, &raw); err != nil {
				return nil, err
			}
			if raw.ID == "" {
				return nil, errors.New("response missing id")
			}
			return &Profile{ExternalID: raw.ID, Handle: raw.Name}, nil
		},
	}
}

// TikTok: authorization code with PKCE.
func newTikTokProvider(base string) *oauthProvider {
	return &oauthProvider{
		platform: "tiktok",
		usesPKCE: true,
		config: &oauth2.Config{
			ClientID:     env.GetEnv("TIKTOK_CLIENT_KEY", ""),
			ClientSecret: env.GetEnv("TIKTOK_CLIENT_SECRET", ""),
			RedirectURL:  redirectURL(base, "tiktok"),
			Scopes:       []string{"user.info.basic", "video.publish"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://www.tiktok.com/v2/auth/authorize/",
				TokenURL: "https://open.tiktokapis.com/v2/oauth/token/",
			},
		},
		// TikTok names the client id "client_key" on the authorize URL.
		authParams: []oauth2.AuthCodeOption{
			oauth2.SetAuthURLParam("client_key", env.GetEnv("TIKTOK_CLIENT_KEY", "")),
		},
		profileURL: "https://open.tiktokapis.com/v2/user/info/?fields=open_id,display_name,avatar_url",
		parseProfile: func(body []byte) (*Profile, error) {
			var raw struct {
				Data struct {
					User struct {
						OpenID      string `json:"open_id"`
						DisplayName string `json:"display_name"`
						AvatarURL   string `json:"avatar_url"`
					} `json:"user"`
				} `json:"data"`
			}
			if err := decodeJSON(body, &raw); err != nil {
				return nil, err
			}
			if raw.Data.User.OpenID == "" {
				return nil, errors.New("response missing open_id")
			}
			return &Profile{
				ExternalID: raw.Data.User.OpenID,
				Handle:     raw.Data.User.DisplayName,
				AvatarURL:  raw.Data.User.AvatarURL,
			}, nil
		},
	}
}
