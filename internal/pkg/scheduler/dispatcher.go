package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/gc-digital-net/crosspost/app/models"
	"github.com/gc-digital-net/crosspost/app/repository"
	"github.com/gc-digital-net/crosspost/internal/pkg/env"
	"github.com/gc-digital-net/crosspost/internal/pkg/publish"
)

const (
	defaultTickInterval = 5 * time.Second
	defaultBatchSize    = 50
	defaultWorkerCount  = 5
	publishTimeout      = 30 * time.Second
)

// ConnectionSource resolves and refreshes the credential a worker publishes
// with. Implemented by the connection manager.
type ConnectionSource interface {
	Resolve(userID uint, platform string) (*models.SocialConnection, error)
	EnsureFresh(ctx context.Context, conn *models.SocialConnection) (*models.SocialConnection, error)
}

// PublisherSource resolves the publisher for a platform. Implemented by the
// publish registry.
type PublisherSource interface {
	For(platform string) (publish.Publisher, error)
}

// Dispatcher drives pending queue entries through the publish lifecycle. One
// periodic tick selects due entries, claims each exclusively and hands it to
// a bounded worker pool.
type Dispatcher struct {
	posts   repository.PostRepository
	entries repository.QueueEntryRepository
	conns   ConnectionSource
	pubs    PublisherSource

	tickInterval time.Duration
	batchSize    int
	semaphore    chan struct{}

	ticker  *time.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewDispatcher wires the dispatch loop. Tick interval and worker count are
// env-tunable (SCHEDULER_TICK_SECONDS, SCHEDULER_WORKER_COUNT).
func NewDispatcher(posts repository.PostRepository, entries repository.QueueEntryRepository, conns ConnectionSource, pubs PublisherSource) *Dispatcher {
	tick := defaultTickInterval
	if v, err := strconv.Atoi(env.GetEnv("SCHEDULER_TICK_SECONDS", "")); err == nil && v > 0 {
		tick = time.Duration(v) * time.Second
	}
	workers := defaultWorkerCount
	if v, err := strconv.Atoi(env.GetEnv("SCHEDULER_WORKER_COUNT", "")); err == nil && v > 0 {
		workers = v
	}

	return &Dispatcher{
		posts:        posts,
		entries:      entries,
		conns:        conns,
		pubs:         pubs,
		tickInterval: tick,
		batchSize:    defaultBatchSize,
		semaphore:    make(chan struct{}, workers),
		stopCh:       make(chan struct{}),
	}
}

// Start launches the dispatch loop in the background.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}

	// Recreate stop channel so the dispatcher can be restarted safely.
	d.stopCh = make(chan struct{})
	d.running = true

	log.Infof("[Dispatcher] Starting, tick=%s workers=%d", d.tickInterval, cap(d.semaphore))

	d.ticker = time.NewTicker(d.tickInterval)
	d.wg.Add(1)
	go d.loop()
}

// Stop halts the loop and waits for in-flight workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return
	}

	log.Info("[Dispatcher] Stopping...")
	if d.ticker != nil {
		d.ticker.Stop()
	}
	close(d.stopCh)
	d.wg.Wait()
	d.running = false
	log.Info("[Dispatcher] Stopped")
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ticker.C:
			d.Tick(context.Background())
		case <-d.stopCh:
			return
		}
	}
}

// Tick runs one dispatch round: select due entries, claim each, process the
// claimed ones concurrently. Exported so tests can drive rounds directly.
func (d *Dispatcher) Tick(ctx context.Context) {
	due, err := d.entries.DueEntries(time.Now(), d.batchSize)
	if err != nil {
		log.Errorf("[Dispatcher] Failed to select due entries: %v", err)
		return
	}

	var wg sync.WaitGroup
	for i := range due {
		entry := due[i]

		won, err := d.entries.Claim(entry.ID)
		if err != nil {
			log.Errorf("[Dispatcher] Failed to claim entry %d: %v", entry.ID, err)
			continue
		}
		if !won {
			// Another tick got there first.
			continue
		}
		entry.Attempts++

		d.semaphore <- struct{}{}
		wg.Add(1)
		go func(e models.QueueEntry) {
			defer wg.Done()
			defer func() { <-d.semaphore }()
			d.process(ctx, &e)
		}(entry)
	}
	wg.Wait()
}

// process runs one claimed entry to a resting state. Storage or publish
// failures here never affect sibling entries.
func (d *Dispatcher) process(ctx context.Context, entry *models.QueueEntry) {
	defer d.recomputePostStatus(entry.PostID)

	post, err := d.posts.GetByID(entry.PostID)
	if err != nil {
		d.markFailed(entry, fmt.Sprintf("load post: %v", err))
		return
	}

	conn, err := d.conns.Resolve(post.UserID, entry.Platform)
	if err == nil {
		conn, err = d.conns.EnsureFresh(ctx, conn)
	}
	if err != nil {
		// Credential problems are resolved by the operator reconnecting,
		// not by retrying; the entry rests as failed without touching the
		// platform.
		d.markFailed(entry, err.Error())
		return
	}

	publisher, err := d.pubs.For(entry.Platform)
	if err != nil {
		d.abandon(entry, err.Error())
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	externalID, err := publisher.Publish(callCtx, conn.AccessToken, post)
	if err == nil {
		if err := d.entries.MarkSucceeded(entry.ID, externalID); err != nil {
			log.Errorf("[Dispatcher] Failed to mark entry %d succeeded: %v", entry.ID, err)
			return
		}
		log.Infof("[Dispatcher] Entry %d published to %s as %s", entry.ID, entry.Platform, externalID)
		return
	}

	if !publish.IsRetryable(err) {
		d.abandon(entry, err.Error())
		return
	}

	if entry.Attempts >= MaxAttempts {
		d.abandon(entry, fmt.Sprintf("max attempts reached: %v", err))
		return
	}

	delay := Backoff(entry.Attempts)
	if rerr := d.entries.Reschedule(entry.ID, time.Now().Add(delay), err.Error()); rerr != nil {
		log.Errorf("[Dispatcher] Failed to reschedule entry %d: %v", entry.ID, rerr)
		return
	}
	log.Warnf("[Dispatcher] Entry %d attempt %d failed, retrying in %s: %v", entry.ID, entry.Attempts, delay, err)
}

func (d *Dispatcher) markFailed(entry *models.QueueEntry, reason string) {
	if err := d.entries.MarkFailed(entry.ID, reason); err != nil {
		log.Errorf("[Dispatcher] Failed to mark entry %d failed: %v", entry.ID, err)
		return
	}
	log.Warnf("[Dispatcher] Entry %d failed: %s", entry.ID, reason)
}

func (d *Dispatcher) abandon(entry *models.QueueEntry, reason string) {
	if err := d.entries.Abandon(entry.ID, reason); err != nil {
		log.Errorf("[Dispatcher] Failed to abandon entry %d: %v", entry.ID, err)
		return
	}
	log.Warnf("[Dispatcher] Entry %d abandoned: %s", entry.ID, reason)
}

func (d *Dispatcher) recomputePostStatus(postID uint) {
	entries, err := d.entries.ListByPostID(postID)
	if err != nil {
		log.Errorf("[Dispatcher] Failed to load entries for post %d: %v", postID, err)
		return
	}

	status, err := models.AggregatePostStatus(entries)
	if err != nil || status == models.PostStatusQueued {
		return
	}
	if err := d.posts.UpdateStatus(postID, status); err != nil {
		log.Errorf("[Dispatcher] Failed to update post %d status: %v", postID, err)
	}
}
