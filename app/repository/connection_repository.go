package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/gc-digital-net/crosspost/app/models"
)

// connectionRepository implements the ConnectionRepository interface
type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository instance
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

// Upsert creates the connection or, when the (user, platform) pair already
// exists, replaces its credentials and profile fields in place. Reconnecting
// never produces a duplicate row.
func (r *connectionRepository) Upsert(conn *models.SocialConnection) error {
	var existing models.SocialConnection
	err := r.db.Where("user_id = ? AND platform = ?", conn.UserID, conn.Platform).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(conn).Error
	}
	if err != nil {
		return err
	}

	existing.ExternalID = conn.ExternalID
	existing.Handle = conn.Handle
	existing.AvatarURL = conn.AvatarURL
	existing.AccessToken = conn.AccessToken
	existing.RefreshToken = conn.RefreshToken
	existing.TokenExpiresAt = conn.TokenExpiresAt
	existing.Scopes = conn.Scopes
	existing.Status = models.ConnectionStatusActive
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*conn = existing
	return nil
}

// GetByUserAndPlatform retrieves the connection for one account on one platform
func (r *connectionRepository) GetByUserAndPlatform(userID uint, platform string) (*models.SocialConnection, error) {
	var conn models.SocialConnection
	err := r.db.Where("user_id = ? AND platform = ?", userID, platform).First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// ListByUserID retrieves all connections owned by a user
func (r *connectionRepository) ListByUserID(userID uint) ([]models.SocialConnection, error) {
	var conns []models.SocialConnection
	err := r.db.Where("user_id = ?", userID).Order("platform asc").Find(&conns).Error
	return conns, err
}

// UpdateTokens persists a refreshed credential bundle in place
func (r *connectionRepository) UpdateTokens(conn *models.SocialConnection) error {
	return r.db.Model(&models.SocialConnection{}).
		Where("id = ?", conn.ID).
		Updates(map[string]interface{}{
			"access_token":     conn.AccessToken,
			"refresh_token":    conn.RefreshToken,
			"token_expires_at": conn.TokenExpiresAt,
			"status":           conn.Status,
		}).Error
}

// SetStatus flips the connection status; records are never deleted so
// publish history stays attributable
func (r *connectionRepository) SetStatus(id uint, status string) error {
	return r.db.Model(&models.SocialConnection{}).
		Where("id = ?", id).
		Update("status", status).Error
}
