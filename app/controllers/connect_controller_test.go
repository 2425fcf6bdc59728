package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gc-digital-net/crosspost/app/models"
	"github.com/gc-digital-net/crosspost/internal/pkg/connect"
	"github.com/gc-digital-net/crosspost/internal/pkg/scheduler"
	"github.com/gc-digital-net/crosspost/internal/pkg/usercontext"
)

type fakeConnectService struct {
	authURL     string
	initiateErr error
	completed   *models.SocialConnection
	completeErr error
	conns       []models.SocialConnection
	deactErr    error
}

func (f *fakeConnectService) Initiate(platform string, accountID, callerID uint) (string, error) {
	return f.authURL, f.initiateErr
}

func (f *fakeConnectService) Complete(ctx context.Context, platform, code, state string, callerID uint) (*models.SocialConnection, error) {
	return f.completed, f.completeErr
}

func (f *fakeConnectService) Connections(userID uint) ([]models.SocialConnection, error) {
	return f.conns, nil
}

func (f *fakeConnectService) Deactivate(userID uint, platform string) error {
	return f.deactErr
}

type fakePostService struct {
	post      *models.Post
	submitErr error
	posts     []models.Post
	cancelErr error
}

func (f *fakePostService) Submit(ctx context.Context, userID uint, req *scheduler.SubmitRequest) (*models.Post, error) {
	return f.post, f.submitErr
}

func (f *fakePostService) List(userID uint, page, pageSize int) ([]models.Post, error) {
	return f.posts, nil
}

func (f *fakePostService) Cancel(userID uint, postUUID string, entryID uint) error {
	return f.cancelErr
}

// newTestApp builds a fiber app with the routes under test and, when userID
// is non-zero, a middleware injecting a logged-in operator context.
func newTestApp(userID uint) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if userID != 0 {
			c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
				UserID:     userID,
				Username:   "tester",
				IsLoggedIn: true,
			})
		}
		return c.Next()
	})

	app.Get("/connect/:platform", HandleConnectInitiate)
	app.Get("/connect/:platform/callback", HandleConnectCallback)
	app.Post("/connect/:platform/disconnect", HandleDisconnect)
	app.Get("/api/v1/connections", HandleListConnections)
	app.Post("/api/v1/posts", HandleCreatePost)
	app.Get("/api/v1/posts", HandleListPosts)
	app.Post("/api/v1/posts/:uuid/entries/:id/cancel", HandleCancelEntry)
	return app
}

func TestConnectInitiate(t *testing.T) {
	SetServices(&fakeConnectService{authURL: "https://example.com/authorize?state=abc"}, &fakePostService{})
	app := newTestApp(1)

	resp, err := app.Test(httptest.NewRequest("GET", "/connect/twitter", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "https://example.com/authorize?state=abc", body["auth_url"])
}

func TestConnectInitiate_UnknownPlatform(t *testing.T) {
	SetServices(&fakeConnectService{initiateErr: connect.ErrUnknownPlatform}, &fakePostService{})
	app := newTestApp(1)

	resp, err := app.Test(httptest.NewRequest("GET", "/connect/myspace", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestConnectInitiate_Unauthenticated(t *testing.T) {
	SetServices(&fakeConnectService{authURL: "x"}, &fakePostService{})
	app := newTestApp(0)

	resp, err := app.Test(httptest.NewRequest("GET", "/connect/twitter", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestConnectCallback_Success(t *testing.T) {
	SetServices(&fakeConnectService{
		completed: &models.SocialConnection{Platform: "twitter", Handle: "tester"},
	}, &fakePostService{})
	app := newTestApp(1)

	resp, err := app.Test(httptest.NewRequest("GET", "/connect/twitter/callback?code=abc&state=xyz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)
	assert.Equal(t, "/connections?success=connected", resp.Header.Get("Location"))
}

func TestConnectCallback_RedirectErrorCodes(t *testing.T) {
	tests := []struct {
		name        string
		userID      uint
		url         string
		completeErr error
		wantCode    string
	}{
		{"missing code", 1, "/connect/twitter/callback?state=xyz", nil, "missing_params"},
		{"missing state", 1, "/connect/twitter/callback?code=abc", nil, "missing_params"},
		{"no session", 0, "/connect/twitter/callback?code=abc&state=xyz", nil, "invalid_session"},
		{"provider error param", 1, "/connect/twitter/callback?error=access_denied", nil, "oauth_failed"},
		{"state mismatch", 1, "/connect/twitter/callback?code=abc&state=bad", connect.ErrInvalidState, "invalid_state"},
		{"caller mismatch", 1, "/connect/twitter/callback?code=abc&state=xyz", connect.ErrUnauthenticated, "invalid_state"},
		{"exchange rejected", 1, "/connect/twitter/callback?code=abc&state=xyz", connect.ErrTokenExchangeFailed, "oauth_failed"},
		{"storage failure", 1, "/connect/twitter/callback?code=abc&state=xyz", assert.AnError, "database_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetServices(&fakeConnectService{completeErr: tt.completeErr}, &fakePostService{})
			app := newTestApp(tt.userID)

			resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusFound, resp.StatusCode)
			assert.Equal(t, "/connections?error="+tt.wantCode, resp.Header.Get("Location"))
		})
	}
}

func TestListConnections_TokensOmitted(t *testing.T) {
	SetServices(&fakeConnectService{conns: []models.SocialConnection{{
		Platform:    "twitter",
		Handle:      "tester",
		AccessToken: "super-secret",
		Status:      models.ConnectionStatusActive,
	}}}, &fakePostService{})
	app := newTestApp(1)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/connections", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tester")
	assert.NotContains(t, string(raw), "super-secret", "token columns never serialize")
}

func TestDisconnect_NoConnection(t *testing.T) {
	SetServices(&fakeConnectService{deactErr: connect.ErrNoConnection}, &fakePostService{})
	app := newTestApp(1)

	resp, err := app.Test(httptest.NewRequest("POST", "/connect/twitter/disconnect", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
