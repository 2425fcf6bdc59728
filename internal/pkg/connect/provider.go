package connect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Profile is the minimal identity fetched after a successful exchange to
// populate the connection record.
type Profile struct {
	ExternalID string
	Handle     string
	AvatarURL  string
}

// Provider is the capability interface one platform variant implements.
// Variants differ in endpoints, scopes and whether the code exchange is
// PKCE-bound; everything else is shared.
type Provider interface {
	Platform() string
	UsesPKCE() bool
	BuildAuthURL(state, verifier string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, accessToken string) (*Profile, error)
}

// oauthProvider implements Provider on top of an oauth2.Config plus a
// hand-rolled profile request, since profile endpoints and response shapes
// are platform-specific.
type oauthProvider struct {
	platform     string
	usesPKCE     bool
	config       *oauth2.Config
	authParams   []oauth2.AuthCodeOption
	profileURL   string
	parseProfile func([]byte) (*Profile, error)
	httpClient   *http.Client
}

func (p *oauthProvider) Platform() string { return p.platform }

func (p *oauthProvider) UsesPKCE() bool { return p.usesPKCE }

// BuildAuthURL returns the platform authorization URL carrying the state
// and, for PKCE variants, the S256 challenge derived from the verifier.
func (p *oauthProvider) BuildAuthURL(state, verifier string) string {
	opts := append([]oauth2.AuthCodeOption{}, p.authParams...)
	if p.usesPKCE {
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}
	return p.config.AuthCodeURL(state, opts...)
}

// ExchangeCode swaps the authorization code for a token bundle; PKCE
// variants present the verifier that produced the challenge.
func (p *oauthProvider) ExchangeCode(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	ctx = p.clientContext(ctx)

	var opts []oauth2.AuthCodeOption
	if p.usesPKCE {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	token, err := p.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTokenExchangeFailed, p.platform, err)
	}
	return token, nil
}

// Refresh performs a refresh-token exchange.
func (p *oauthProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ctx = p.clientContext(ctx)

	src := p.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTokenExchangeFailed, p.platform, err)
	}
	return token, nil
}

// FetchProfile loads the minimal identity for the connection record.
func (p *oauthProvider) FetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.profileURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProfileFetchFailed, p.platform, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: status=%d body=%s", ErrProfileFetchFailed, p.platform, resp.StatusCode, string(body))
	}

	profile, err := p.parseProfile(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProfileFetchFailed, p.platform, err)
	}
	return profile, nil
}

func (p *oauthProvider) client() *http.Client {
	if p.httpClient != nil {
		return p.httpClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// clientContext makes oauth2 use our timeout-bounded client for token
// endpoint calls.
func (p *oauthProvider) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.client())
}

func decodeJSON(body []byte, out interface{}) error {
	return json.Unmarshal(body, out)
}
