package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gc-digital-net/crosspost/app/models"
)

type twitterPublisher struct {
	client  *http.Client
	baseURL string
}

func newTwitterPublisher(client *http.Client) *twitterPublisher {
	return &twitterPublisher{client: client, baseURL: "https://api.twitter.com"}
}

func (p *twitterPublisher) Platform() string { return "twitter" }

func (p *twitterPublisher) Publish(ctx context.Context, accessToken string, post *models.Post) (string, error) {
	payload := map[string]interface{}{"text": ComposeText(post)}
	if post.ContentKind == models.KindPoll && len(post.PollOptions) > 0 {
		payload["poll"] = map[string]interface{}{
			"options":          post.PollOptions,
			"duration_minutes": 1440,
		}
	}

	body, err := postJSON(ctx, p.client, p.Platform(), p.baseURL+"/2/tweets", accessToken, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Data.ID == "" {
		return "", fmt.Errorf("twitter: unexpected response: %s", string(body))
	}
	return resp.Data.ID, nil
}

type linkedinPublisher struct {
	client  *http.Client
	baseURL string
}

func newLinkedInPublisher(client *http.Client) *linkedinPublisher {
	return &linkedinPublisher{client: client, baseURL: "https://api.linkedin.com"}
}

func (p *linkedinPublisher) Platform() string { return "linkedin" }

func (p *linkedinPublisher) Publish(ctx context.Context, accessToken string, post *models.Post) (string, error) {
	payload := map[string]interface{}{
		"lifecycleState": "PUBLISHED",
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": map[string]interface{}{
				"shareCommentary":    map[string]string{"text": ComposeText(post)},
				"shareMediaCategory": mediaCategory(post),
			},
		},
	}

	body, err := postJSON(ctx, p.client, p.Platform(), p.baseURL+"/v2/ugcPosts", accessToken, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.ID == "" {
		return "", fmt.Errorf("linkedin: unexpected response: %s", string(body))
	}
	return resp.ID, nil
}

func mediaCategory(post *models.Post) string {
	switch {
	case post.ContentKind == models.KindVideo:
		return "VIDEO"
	case post.ContentKind == models.KindArticle:
		return "ARTICLE"
	case len(post.MediaURLs) > 0:
		return "IMAGE"
	default:
		return "NONE"
	}
}

type facebookPublisher struct {
	client  *http.Client
	baseURL string
}

func newFacebookPublisher(client *http.Client) *facebookPublisher {
	return &facebookPublisher{client: client, baseURL: "https://graph.facebook.com/v19.0"}
}

func (p *facebookPublisher) Platform() string { return "facebook" }

func (p *facebookPublisher) Publish(ctx context.Context, accessToken string, post *models.Post) (string, error) {
	payload := map[string]interface{}{"message": ComposeText(post)}
	if len(post.MediaURLs) > 0 {
		payload["link"] = post.MediaURLs[0]
	}

	body, err := postJSON(ctx, p.client, p.Platform(), p.baseURL+"/me/feed", accessToken, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.ID == "" {
		return "", fmt.Errorf("facebook: unexpected response: %s", string(body))
	}
	return resp.ID, nil
}

type instagramPublisher struct {
	client  *http.Client
	baseURL string
}

func newInstagramPublisher(client *http.Client) *instagramPublisher {
	return &instagramPublisher{client: client, baseURL: "https://graph.facebook.com/v19.0"}
}

func (p *instagramPublisher) Platform() string { return "instagram" }

// Publish creates a media container first and then publishes it, the two-step
// flow the Graph API requires for Instagram content.
func (p *instagramPublisher) Publish(ctx context.Context, accessToken string, post *models.Post) (string, error) {
	if len(post.MediaURLs) == 0 {
		return "", fmt.Errorf("instagram: post has no media")
	}

	container := map[string]interface{}{
		"caption": ComposeText(post),
	}
	if post.ContentKind == models.KindVideo {
		container["media_type"] = "REELS"
		container["video_url"] = post.MediaURLs[0]
	} else {
		container["image_url"] = post.MediaURLs[0]
	}

	body, err := postJSON(ctx, p.client, p.Platform(), p.baseURL+"/me/media", accessToken, container)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return "", fmt.Errorf("instagram: unexpected container response: %s", string(body))
	}

	body, err = postJSON(ctx, p.client, p.Platform(), p.baseURL+"/me/media_publish", accessToken, map[string]string{
		"creation_id": created.ID,
	})
	if err != nil {
		return "", err
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &published); err != nil || published.ID == "" {
		return "", fmt.Errorf("instagram: unexpected publish response: %s", string(body))
	}
	return published.ID, nil
}

type tiktokPublisher struct {
	client  *http.Client
	baseURL string
}

func newTikTokPublisher(client *http.Client) *tiktokPublisher {
	return &tiktokPublisher{client: client, baseURL: "https://open.tiktokapis.com"}
}

func (p *tiktokPublisher) Platform() string { return "tiktok" }

func (p *tiktokPublisher) Publish(ctx context.Context, accessToken string, post *models.Post) (string, error) {
	if len(post.MediaURLs) == 0 {
		return "", fmt.Errorf("tiktok: post has no media")
	}

	payload := map[string]interface{}{
		"post_info": map[string]interface{}{
			"title":         ComposeText(post),
			"privacy_level": "PUBLIC_TO_EVERYONE",
		},
		"source_info": map[string]interface{}{
			"source":    "PULL_FROM_URL",
			"video_url": post.MediaURLs[0],
		},
	}

	body, err := postJSON(ctx, p.client, p.Platform(), p.baseURL+"/v2/post/publish/video/init/", accessToken, payload)
	if err != nil {
		return "", err
	}

	var resp struct {
		Data struct {
			PublishID string `json:"publish_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Data.PublishID == "" {
		return "", fmt.Errorf("tiktok: unexpected response: %s", string(body))
	}
	return resp.Data.PublishID, nil
}
