package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/gc-digital-net/crosspost/app/models"
	"github.com/gc-digital-net/crosspost/app/repository"
	"github.com/gc-digital-net/crosspost/internal/pkg/platforms"
)

// SubmitRequest is one authored post plus its fan-out targets.
type SubmitRequest struct {
	Content      string     `json:"content"`
	ContentKind  string     `json:"content_kind"`
	Platforms    []string   `json:"platforms"`
	MediaURLs    []string   `json:"media_urls"`
	Hashtags     []string   `json:"hashtags"`
	PollOptions  []string   `json:"poll_options"`
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// Service accepts posts, fans them out into queue entries and serves the
// read side. Entry processing lives in the Dispatcher.
type Service struct {
	posts   repository.PostRepository
	entries repository.QueueEntryRepository
}

// NewService wires the fan-out service.
func NewService(posts repository.PostRepository, entries repository.QueueEntryRepository) *Service {
	return &Service{posts: posts, entries: entries}
}

// Submit validates the request against every target platform and persists
// the post together with one queue entry per platform in a single
// transaction. Any validation failure aborts the whole submission; nothing
// is written.
func (s *Service) Submit(ctx context.Context, userID uint, req *SubmitRequest) (*models.Post, error) {
	if len(req.Platforms) == 0 {
		return nil, ErrNoTargetPlatforms
	}

	kind := req.ContentKind
	if kind == "" {
		kind = models.KindText
	}
	if platforms.TextBearing(kind) && strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	for _, platform := range req.Platforms {
		if err := validateForPlatform(req, kind, platform); err != nil {
			return nil, &ValidationError{Platform: platform, Reason: err}
		}
	}

	now := time.Now()
	processAfter := now
	status := models.PostStatusQueued
	if req.ScheduledFor != nil {
		processAfter = *req.ScheduledFor
		if req.ScheduledFor.After(now) {
			status = models.PostStatusScheduled
		}
	}

	post := &models.Post{
		UUID:         uuid.New().String(),
		UserID:       userID,
		Content:      req.Content,
		ContentKind:  kind,
		Platforms:    models.StringList(req.Platforms),
		MediaURLs:    models.StringList(req.MediaURLs),
		Hashtags:     models.StringList(req.Hashtags),
		PollOptions:  models.StringList(req.PollOptions),
		ScheduledFor: req.ScheduledFor,
		Status:       status,
	}

	entries := make([]models.QueueEntry, 0, len(req.Platforms))
	for _, platform := range req.Platforms {
		entries = append(entries, models.QueueEntry{
			Platform:     platform,
			ProcessAfter: processAfter,
			Status:       models.EntryStatusPending,
		})
	}

	if err := s.posts.CreateWithEntries(post, entries); err != nil {
		return nil, err
	}

	log.Infof("[Scheduler] Post %s queued for %d platform(s), status=%s", post.UUID, len(entries), status)
	return post, nil
}

func validateForPlatform(req *SubmitRequest, kind, platform string) error {
	if err := platforms.ValidateMediaAndKind(req.MediaURLs, kind, platform); err != nil {
		return err
	}
	return platforms.ValidateLength(req.Content, platform)
}

// List returns the caller's posts newest-first.
func (s *Service) List(userID uint, page, pageSize int) ([]models.Post, error) {
	if page < 1 {
		page = 1
	}
	return s.posts.ListByUserID(userID, (page-1)*pageSize, pageSize)
}

// GetByUUID loads one post owned by the caller.
func (s *Service) GetByUUID(userID uint, id string) (*models.Post, error) {
	post, err := s.posts.GetByUUID(id)
	if err != nil || post.UserID != userID {
		return nil, ErrNotFound
	}
	return post, nil
}

// Cancel abandons a pending entry on operator request. In-flight entries run
// to completion; terminal entries refuse.
func (s *Service) Cancel(userID uint, postUUID string, entryID uint) error {
	post, err := s.GetByUUID(userID, postUUID)
	if err != nil {
		return err
	}

	entry, err := s.entries.GetByID(entryID)
	if err != nil || entry.PostID != post.ID {
		return ErrNotFound
	}

	won, err := s.entries.CancelPending(entryID)
	if err != nil {
		return err
	}
	if !won {
		return ErrEntryNotCancellable
	}

	s.recomputePostStatus(post.ID)
	return nil
}

// recomputePostStatus derives the parent status from all entries and writes
// it when it reached a terminal shape. While entries are still open the
// stored scheduled/queued status stands.
func (s *Service) recomputePostStatus(postID uint) {
	entries, err := s.entries.ListByPostID(postID)
	if err != nil {
		log.Errorf("[Scheduler] Failed to load entries for post %d: %v", postID, err)
		return
	}

	status, err := models.AggregatePostStatus(entries)
	if err != nil || status == models.PostStatusQueued {
		return
	}
	if err := s.posts.UpdateStatus(postID, status); err != nil {
		log.Errorf("[Scheduler] Failed to update post %d status: %v", postID, err)
	}
}
