package repository

import (
	"gorm.io/gorm"

	"github.com/gc-digital-net/crosspost/app/models"
)

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// CreateWithEntries persists the post and its queue entries in one
// transaction. Either everything lands or nothing does; a validation or
// storage failure never leaves a partial post behind.
func (r *postRepository) CreateWithEntries(post *models.Post, entries []models.QueueEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for i := range entries {
			entries[i].PostID = post.ID
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}
		post.Entries = entries
		return nil
	})
}

// GetByID retrieves a post by its ID
func (r *postRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByUUID retrieves a post by its public UUID
func (r *postRepository) GetByUUID(uuid string) (*models.Post, error) {
	var post models.Post
	err := r.db.Where("uuid = ?", uuid).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByUserID retrieves a user's posts newest-first
func (r *postRepository) ListByUserID(userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Preload("Entries").
		Find(&posts).Error
	return posts, err
}

// UpdateStatus writes the derived aggregate status
func (r *postRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Post{}).
		Where("id = ?", id).
		Update("status", status).Error
}
