package models

import "time"

const (
	EntryStatusPending   = "pending"
	EntryStatusInFlight  = "in_flight"
	EntryStatusSucceeded = "succeeded"
	EntryStatusFailed    = "failed"
	EntryStatusAbandoned = "abandoned"
)

// QueueEntry is one platform-specific publish job for a post. A post with k
// target platforms owns exactly k entries, each with its own lifecycle.
type QueueEntry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PostID         uint      `gorm:"index" json:"post_id"`
	Platform       string    `gorm:"type:varchar(50)" json:"platform"`
	ProcessAfter   time.Time `gorm:"index" json:"process_after"`
	Status         string    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	Attempts       int       `gorm:"default:0" json:"attempts"`
	LastError      string    `gorm:"type:text" json:"last_error,omitempty"`
	ExternalPostID string    `gorm:"type:varchar(191)" json:"external_post_id,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsTerminal reports whether the entry reached a state that permits no
// further transitions.
func (e *QueueEntry) IsTerminal() bool {
	return e.Status == EntryStatusSucceeded || e.Status == EntryStatusAbandoned
}

// CanTransition enforces the entry lifecycle: pending moves to in_flight or
// abandoned (cancel), in_flight resolves to succeeded, pending (retry),
// failed or abandoned. Terminal states reject everything.
func (e *QueueEntry) CanTransition(to string) bool {
	switch e.Status {
	case EntryStatusPending:
		return to == EntryStatusInFlight || to == EntryStatusAbandoned
	case EntryStatusInFlight:
		return to == EntryStatusSucceeded || to == EntryStatusPending ||
			to == EntryStatusFailed || to == EntryStatusAbandoned
	default:
		return false
	}
}
