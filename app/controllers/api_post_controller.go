package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/gc-digital-net/crosspost/internal/pkg/scheduler"
	"github.com/gc-digital-net/crosspost/internal/pkg/usercontext"
)

// PostPageSize is the fixed page length for the post listing.
const PostPageSize = 20

type createPostRequest struct {
	Content      string   `json:"content"`
	ContentKind  string   `json:"content_kind" validate:"omitempty,oneof=text image video poll story article carousel"`
	Platforms    []string `json:"platforms" validate:"required,min=1,dive,required"`
	MediaURLs    []string `json:"media_urls" validate:"omitempty,dive,url"`
	Hashtags     []string `json:"hashtags"`
	PollOptions  []string `json:"poll_options" validate:"omitempty,max=4"`
	ScheduledFor string   `json:"scheduled_for"`
}

func (r *createPostRequest) Validate() error {
	v := validator.New()
	return v.Struct(r)
}

// HandleCreatePost accepts an authored post and fans it out to the target
// platforms.
func HandleCreatePost(c *fiber.Ctx) error {
	uCtx := usercontext.GetUserContext(c)
	if !uCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": err.Error()})
	}

	submit := &scheduler.SubmitRequest{
		Content:     req.Content,
		ContentKind: req.ContentKind,
		Platforms:   req.Platforms,
		MediaURLs:   req.MediaURLs,
		Hashtags:    req.Hashtags,
		PollOptions: req.PollOptions,
	}
	if req.ScheduledFor != "" {
		at, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": "scheduled_for must be RFC3339"})
		}
		submit.ScheduledFor = &at
	}

	post, err := postService.Submit(c.Context(), uCtx.UserID, submit)
	if err != nil {
		var verr *scheduler.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":    "validation_failed",
				"platform": verr.Platform,
				"message":  verr.Error(),
			})
		case errors.Is(err, scheduler.ErrNoTargetPlatforms), errors.Is(err, scheduler.ErrEmptyContent):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation_failed", "message": err.Error()})
		default:
			log.Errorf("[Posts] Failed to submit post for user %d: %v", uCtx.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "submit_failed"})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// HandleListPosts returns the caller's posts newest-first.
func HandleListPosts(c *fiber.Ctx) error {
	uCtx := usercontext.GetUserContext(c)
	if !uCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	posts, err := postService.List(uCtx.UserID, page, PostPageSize)
	if err != nil {
		log.Errorf("[Posts] Failed to list posts for user %d: %v", uCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "list_failed"})
	}

	return c.JSON(fiber.Map{"posts": posts, "page": page, "page_size": PostPageSize})
}

// HandleCancelEntry abandons one pending queue entry of the caller's post.
func HandleCancelEntry(c *fiber.Ctx) error {
	uCtx := usercontext.GetUserContext(c)
	if !uCtx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "login required"})
	}

	entryID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_entry_id"})
	}

	err = postService.Cancel(uCtx.UserID, c.Params("uuid"), uint(entryID))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"cancelled": entryID})
	case errors.Is(err, scheduler.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
	case errors.Is(err, scheduler.ErrEntryNotCancellable):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "not_cancellable", "message": "entry already left the pending state"})
	default:
		log.Errorf("[Posts] Failed to cancel entry %d for user %d: %v", entryID, uCtx.UserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "cancel_failed"})
	}
}
