package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/gc-digital-net/crosspost/app/models"
)

// queueEntryRepository implements the QueueEntryRepository interface
type queueEntryRepository struct {
	db *gorm.DB
}

// NewQueueEntryRepository creates a new queue entry repository instance
func NewQueueEntryRepository(db *gorm.DB) QueueEntryRepository {
	return &queueEntryRepository{db: db}
}

// DueEntries selects pending entries whose process_after has passed, ordered
// by process_after then id so dispatch order is deterministic across ticks.
func (r *queueEntryRepository) DueEntries(now time.Time, limit int) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := r.db.Where("status = ? AND process_after <= ?", models.EntryStatusPending, now).
		Order("process_after asc, id asc").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// Claim moves one entry from pending to in_flight and bumps its attempt
// counter. The status guard makes the update conditional: exactly one of any
// number of concurrent claims sees RowsAffected == 1.
func (r *queueEntryRepository) Claim(id uint) (bool, error) {
	res := r.db.Model(&models.QueueEntry{}).
		Where("id = ? AND status = ?", id, models.EntryStatusPending).
		Updates(map[string]interface{}{
			"status":   models.EntryStatusInFlight,
			"attempts": gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkSucceeded finishes an in-flight entry with the remote post id
func (r *queueEntryRepository) MarkSucceeded(id uint, externalPostID string) error {
	return r.db.Model(&models.QueueEntry{}).
		Where("id = ? AND status = ?", id, models.EntryStatusInFlight).
		Updates(map[string]interface{}{
			"status":           models.EntryStatusSucceeded,
			"external_post_id": externalPostID,
			"last_error":       "",
		}).Error
}

// MarkFailed records a connection-level failure; the entry is not retried
func (r *queueEntryRepository) MarkFailed(id uint, lastError string) error {
	return r.db.Model(&models.QueueEntry{}).
		Where("id = ? AND status = ?", id, models.EntryStatusInFlight).
		Updates(map[string]interface{}{
			"status":     models.EntryStatusFailed,
			"last_error": lastError,
		}).Error
}

// Reschedule pushes an in-flight entry back to pending with a new
// process_after for the next attempt
func (r *queueEntryRepository) Reschedule(id uint, processAfter time.Time, lastError string) error {
	return r.db.Model(&models.QueueEntry{}).
		Where("id = ? AND status = ?", id, models.EntryStatusInFlight).
		Updates(map[string]interface{}{
			"status":        models.EntryStatusPending,
			"process_after": processAfter,
			"last_error":    lastError,
		}).Error
}

// Abandon terminates an in-flight entry with its final error
func (r *queueEntryRepository) Abandon(id uint, lastError string) error {
	return r.db.Model(&models.QueueEntry{}).
		Where("id = ? AND status = ?", id, models.EntryStatusInFlight).
		Updates(map[string]interface{}{
			"status":     models.EntryStatusAbandoned,
			"last_error": lastError,
		}).Error
}

// CancelPending abandons a pending entry on operator request. In-flight
// entries refuse: running work completes or times out on its own.
func (r *queueEntryRepository) CancelPending(id uint) (bool, error) {
	res := r.db.Model(&models.QueueEntry{}).
		Where("id = ? AND status = ?", id, models.EntryStatusPending).
		Updates(map[string]interface{}{
			"status":     models.EntryStatusAbandoned,
			"last_error": "cancelled",
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GetByID retrieves a queue entry by its ID
func (r *queueEntryRepository) GetByID(id uint) (*models.QueueEntry, error) {
	var entry models.QueueEntry
	err := r.db.First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByPostID retrieves all entries belonging to one post
func (r *queueEntryRepository) ListByPostID(postID uint) ([]models.QueueEntry, error) {
	var entries []models.QueueEntry
	err := r.db.Where("post_id = ?", postID).Order("id asc").Find(&entries).Error
	return entries, err
}
