package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gc-digital-net/crosspost/app/models"
)

// Publisher posts one composed piece of content to one platform on behalf
// of a connected account and returns the platform-side post ID.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, accessToken string, post *models.Post) (externalID string, err error)
}

// Registry resolves the publisher for a platform.
type Registry struct {
	publishers map[string]Publisher
}

// NewRegistry builds the default publisher set with a shared HTTP client.
func NewRegistry() *Registry {
	client := &http.Client{Timeout: 30 * time.Second}
	r := &Registry{publishers: make(map[string]Publisher)}
	for _, p := range []Publisher{
		newTwitterPublisher(client),
		newLinkedInPublisher(client),
		newFacebookPublisher(client),
		newInstagramPublisher(client),
		newTikTokPublisher(client),
	} {
		r.publishers[p.Platform()] = p
	}
	return r
}

// For returns the publisher registered for platform.
func (r *Registry) For(platform string) (Publisher, error) {
	p, ok := r.publishers[platform]
	if !ok {
		return nil, fmt.Errorf("no publisher for platform %s", platform)
	}
	return p, nil
}

// Register replaces the publisher for a platform. Used by tests to point
// publishers at local servers.
func (r *Registry) Register(p Publisher) {
	r.publishers[p.Platform()] = p
}

// ComposeText renders the outgoing body: content followed by hashtags that
// are not already present, each prefixed with '#'.
func ComposeText(post *models.Post) string {
	var b strings.Builder
	b.WriteString(post.Content)
	for _, tag := range post.Hashtags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" || strings.Contains(post.Content, "#"+tag) {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString("#" + tag)
	}
	return b.String()
}

// postJSON sends a bearer-authenticated JSON request and returns the
// response body, classifying failures as transient or permanent.
func postJSON(ctx context.Context, client *http.Client, platform, url, accessToken string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", platform, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		// Network-level failures (timeouts, refused connections) are
		// transient from the queue's point of view.
		return nil, Retryablef("%s: request failed: %v", platform, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(platform, resp.StatusCode, string(body))
	}
	return body, nil
}
