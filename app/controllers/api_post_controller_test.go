package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gc-digital-net/crosspost/app/models"
	"github.com/gc-digital-net/crosspost/internal/pkg/platforms"
	"github.com/gc-digital-net/crosspost/internal/pkg/scheduler"
)

func TestCreatePost(t *testing.T) {
	SetServices(&fakeConnectService{}, &fakePostService{post: &models.Post{
		UUID:      "uuid-1",
		Content:   "hello",
		Status:    models.PostStatusQueued,
		Platforms: models.StringList{"twitter"},
	}})
	app := newTestApp(1)

	req := httptest.NewRequest("POST", "/api/v1/posts", strings.NewReader(`{"content":"hello","platforms":["twitter"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body models.Post
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "uuid-1", body.UUID)
}

func TestCreatePost_ValidationNamesPlatform(t *testing.T) {
	SetServices(&fakeConnectService{}, &fakePostService{
		submitErr: &scheduler.ValidationError{Platform: "twitter", Reason: platforms.ErrContentTooLong},
	})
	app := newTestApp(1)

	req := httptest.NewRequest("POST", "/api/v1/posts", strings.NewReader(`{"content":"x","platforms":["twitter"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "twitter", body["platform"])
	assert.Contains(t, body["message"], "content exceeds")
}

func TestCreatePost_EmptyPlatformsRejectedBeforeService(t *testing.T) {
	SetServices(&fakeConnectService{}, &fakePostService{})
	app := newTestApp(1)

	req := httptest.NewRequest("POST", "/api/v1/posts", strings.NewReader(`{"content":"hello","platforms":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePost_BadScheduledFor(t *testing.T) {
	SetServices(&fakeConnectService{}, &fakePostService{})
	app := newTestApp(1)

	req := httptest.NewRequest("POST", "/api/v1/posts", strings.NewReader(`{"content":"hello","platforms":["twitter"],"scheduled_for":"tomorrow"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreatePost_Unauthenticated(t *testing.T) {
	SetServices(&fakeConnectService{}, &fakePostService{})
	app := newTestApp(0)

	req := httptest.NewRequest("POST", "/api/v1/posts", strings.NewReader(`{"content":"hello","platforms":["twitter"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestListPosts(t *testing.T) {
	SetServices(&fakeConnectService{}, &fakePostService{posts: []models.Post{
		{UUID: "uuid-2", Content: "newest"},
		{UUID: "uuid-1", Content: "older"},
	}})
	app := newTestApp(1)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/posts?page=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Posts    []models.Post `json:"posts"`
		Page     int           `json:"page"`
		PageSize int           `json:"page_size"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Posts, 2)
	assert.Equal(t, 1, body.Page, "junk page parameter falls back to 1")
	assert.Equal(t, PostPageSize, body.PageSize)
}

func TestCancelEntry(t *testing.T) {
	tests := []struct {
		name       string
		cancelErr  error
		wantStatus int
	}{
		{"pending entry cancels", nil, fiber.StatusOK},
		{"in-flight refuses", scheduler.ErrEntryNotCancellable, fiber.StatusConflict},
		{"foreign post hidden", scheduler.ErrNotFound, fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetServices(&fakeConnectService{}, &fakePostService{cancelErr: tt.cancelErr})
			app := newTestApp(1)

			resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/posts/uuid-1/entries/3/cancel", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCancelEntry_BadID(t *testing.T) {
	SetServices(&fakeConnectService{}, &fakePostService{})
	app := newTestApp(1)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/posts/uuid-1/entries/abc/cancel", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
