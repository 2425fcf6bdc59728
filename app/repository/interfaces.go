package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/gc-digital-net/crosspost/app/models"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
}

// ConnectionRepository defines the interface for social connection storage.
// Records are owned by the connection manager; the scheduler only reads them.
type ConnectionRepository interface {
	Upsert(conn *models.SocialConnection) error
	GetByUserAndPlatform(userID uint, platform string) (*models.SocialConnection, error)
	ListByUserID(userID uint) ([]models.SocialConnection, error)
	UpdateTokens(conn *models.SocialConnection) error
	SetStatus(id uint, status string) error
}

// PostRepository defines the interface for post-related database operations
type PostRepository interface {
	CreateWithEntries(post *models.Post, entries []models.QueueEntry) error
	GetByID(id uint) (*models.Post, error)
	GetByUUID(uuid string) (*models.Post, error)
	ListByUserID(userID uint, offset, limit int) ([]models.Post, error)
	UpdateStatus(id uint, status string) error
}

// QueueEntryRepository defines the interface for publish queue operations.
// Claim and CancelPending are conditional updates; they report whether the
// calling tick won the transition.
type QueueEntryRepository interface {
	DueEntries(now time.Time, limit int) ([]models.QueueEntry, error)
	Claim(id uint) (bool, error)
	MarkSucceeded(id uint, externalPostID string) error
	MarkFailed(id uint, lastError string) error
	Reschedule(id uint, processAfter time.Time, lastError string) error
	Abandon(id uint, lastError string) error
	CancelPending(id uint) (bool, error)
	GetByID(id uint) (*models.QueueEntry, error)
	ListByPostID(postID uint) ([]models.QueueEntry, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User       UserRepository
	Connection ConnectionRepository
	Post       PostRepository
	QueueEntry QueueEntryRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Connection: NewConnectionRepository(db),
		Post:       NewPostRepository(db),
		QueueEntry: NewQueueEntryRepository(db),
	}
}
