package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gc-digital-net/crosspost/app/models"
	"github.com/gc-digital-net/crosspost/internal/pkg/publish"
)

// memPostRepo and memEntryRepo back the scheduler tests with map storage and
// the same conditional-update semantics the SQL implementations have.
type memPostRepo struct {
	mu     sync.Mutex
	posts  map[uint]*models.Post
	nextID uint
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[uint]*models.Post), nextID: 1}
}

func (r *memPostRepo) CreateWithEntries(post *models.Post, entries []models.QueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = r.nextID
	r.nextID++
	post.Entries = entries
	for i := range post.Entries {
		post.Entries[i].PostID = post.ID
	}
	cp := *post
	r.posts[post.ID] = &cp
	return nil
}

func (r *memPostRepo) GetByID(id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	cp := *p
	return &cp, nil
}

func (r *memPostRepo) GetByUUID(uuid string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.UUID == uuid {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("record not found")
}

func (r *memPostRepo) ListByUserID(userID uint, offset, limit int) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Post
	for _, p := range r.posts {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPostRepo) UpdateStatus(id uint, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return fmt.Errorf("record not found")
	}
	p.Status = status
	return nil
}

type memEntryRepo struct {
	mu      sync.Mutex
	entries map[uint]*models.QueueEntry
	nextID  uint
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[uint]*models.QueueEntry), nextID: 1}
}

func (r *memEntryRepo) add(e models.QueueEntry) *models.QueueEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	if e.Status == "" {
		e.Status = models.EntryStatusPending
	}
	r.entries[e.ID] = &e
	return &e
}

func (r *memEntryRepo) DueEntries(now time.Time, limit int) ([]models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.QueueEntry
	for _, e := range r.entries {
		if e.Status == models.EntryStatusPending && !e.ProcessAfter.After(now) {
			out = append(out, *e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memEntryRepo) Claim(id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Status != models.EntryStatusPending {
		return false, nil
	}
	e.Status = models.EntryStatusInFlight
	e.Attempts++
	return true, nil
}

func (r *memEntryRepo) MarkSucceeded(id uint, externalPostID string) error {
	return r.fromInFlight(id, models.EntryStatusSucceeded, "", externalPostID)
}

func (r *memEntryRepo) MarkFailed(id uint, lastError string) error {
	return r.fromInFlight(id, models.EntryStatusFailed, lastError, "")
}

func (r *memEntryRepo) Reschedule(id uint, processAfter time.Time, lastError string) error {
	if err := r.fromInFlight(id, models.EntryStatusPending, lastError, ""); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id].ProcessAfter = processAfter
	return nil
}

func (r *memEntryRepo) Abandon(id uint, lastError string) error {
	return r.fromInFlight(id, models.EntryStatusAbandoned, lastError, "")
}

func (r *memEntryRepo) fromInFlight(id uint, to, lastError, externalPostID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Status != models.EntryStatusInFlight {
		return fmt.Errorf("entry %d is not in flight", id)
	}
	e.Status = to
	if lastError != "" {
		e.LastError = lastError
	}
	if externalPostID != "" {
		e.ExternalPostID = externalPostID
	}
	return nil
}

func (r *memEntryRepo) CancelPending(id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.Status != models.EntryStatusPending {
		return false, nil
	}
	e.Status = models.EntryStatusAbandoned
	e.LastError = "cancelled"
	return true, nil
}

func (r *memEntryRepo) GetByID(id uint) (*models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("record not found")
	}
	cp := *e
	return &cp, nil
}

func (r *memEntryRepo) ListByPostID(postID uint) ([]models.QueueEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.QueueEntry
	for _, e := range r.entries {
		if e.PostID == postID {
			out = append(out, *e)
		}
	}
	return out, nil
}

// fakeConnSource hands out a fixed connection, or an error when set.
type fakeConnSource struct {
	conn *models.SocialConnection
	err  error
}

func (f *fakeConnSource) Resolve(userID uint, platform string) (*models.SocialConnection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

func (f *fakeConnSource) EnsureFresh(ctx context.Context, conn *models.SocialConnection) (*models.SocialConnection, error) {
	if f.err != nil {
		return nil, f.err
	}
	return conn, nil
}

// scriptedPublisher returns the queued results in order, repeating the last
// one once exhausted.
type scriptedPublisher struct {
	mu       sync.Mutex
	platform string
	results  []publishResult
	calls    int
}

type publishResult struct {
	id  string
	err error
}

func (p *scriptedPublisher) Platform() string { return p.platform }

func (p *scriptedPublisher) Publish(ctx context.Context, accessToken string, post *models.Post) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	p.calls++
	if i >= len(p.results) {
		i = len(p.results) - 1
	}
	return p.results[i].id, p.results[i].err
}

type fakePubSource struct {
	publishers map[string]publish.Publisher
}

func (f *fakePubSource) For(platform string) (publish.Publisher, error) {
	p, ok := f.publishers[platform]
	if !ok {
		return nil, fmt.Errorf("no publisher for platform %s", platform)
	}
	return p, nil
}
