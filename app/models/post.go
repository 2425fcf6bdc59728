package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const (
	PostStatusDraft              = "draft"
	PostStatusScheduled          = "scheduled"
	PostStatusQueued             = "queued"
	PostStatusPartiallyPublished = "partially_published"
	PostStatusPublished          = "published"
	PostStatusFailed             = "failed"
)

// Content kinds an authored post can carry.
const (
	KindText     = "text"
	KindImage    = "image"
	KindVideo    = "video"
	KindPoll     = "poll"
	KindStory    = "story"
	KindArticle  = "article"
	KindCarousel = "carousel"
)

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
}

// Post is one authored piece of content fanned out to N platforms.
// Once queue entries exist its status is derived from them, never set
// directly.
type Post struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UUID         string     `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	UserID       uint       `gorm:"index" json:"user_id"`
	Content      string     `gorm:"type:text" json:"content"`
	ContentKind  string     `gorm:"type:varchar(20);default:'text'" json:"content_kind"`
	Platforms    StringList `gorm:"type:text" json:"platforms"`
	MediaURLs    StringList `gorm:"type:text" json:"media_urls"`
	Hashtags     StringList `gorm:"type:text" json:"hashtags"`
	PollOptions  StringList `gorm:"type:text" json:"poll_options,omitempty"`
	ScheduledFor *time.Time `gorm:"type:timestamp;default:null;index" json:"scheduled_for,omitempty"`
	Status       string     `gorm:"type:varchar(30);default:'draft';index" json:"status"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Entries []QueueEntry `gorm:"foreignKey:PostID" json:"entries,omitempty"`
}

// ErrNoEntries is returned by AggregatePostStatus when there is nothing to
// aggregate over.
var ErrNoEntries = errors.New("post has no queue entries")

// AggregatePostStatus derives the parent post status from its queue entries:
// published when all succeeded, failed when all ended badly,
// partially_published when the outcome is mixed and nothing is still moving.
// While any entry is pending or in flight the current (scheduled/queued)
// status stands, reported here as queued.
func AggregatePostStatus(entries []QueueEntry) (string, error) {
	if len(entries) == 0 {
		return "", ErrNoEntries
	}

	var succeeded, dead, open int
	for _, e := range entries {
		switch e.Status {
		case EntryStatusSucceeded:
			succeeded++
		case EntryStatusFailed, EntryStatusAbandoned:
			dead++
		default:
			open++
		}
	}

	switch {
	case open > 0:
		return PostStatusQueued, nil
	case dead == 0:
		return PostStatusPublished, nil
	case succeeded == 0:
		return PostStatusFailed, nil
	default:
		return PostStatusPartiallyPublished, nil
	}
}
