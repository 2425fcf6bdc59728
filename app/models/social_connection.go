package models

import "time"

const (
	ConnectionStatusActive   = "active"
	ConnectionStatusExpired  = "expired"
	ConnectionStatusInactive = "inactive"
)

// SocialConnection stores the credential bundle for one operator account on
// one platform. Reconnecting upserts on (user_id, platform); disconnecting
// flips the status instead of deleting so publish history stays attributable.
type SocialConnection struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index:user_platform,unique" json:"user_id"`
	Platform       string     `gorm:"index:user_platform,unique;type:varchar(50)" json:"platform"`
	ExternalID     string     `gorm:"type:varchar(191)" json:"external_id"`
	Handle         string     `gorm:"type:varchar(191)" json:"handle"`
	AvatarURL      string     `gorm:"type:varchar(255);default:null" json:"avatar_url,omitempty"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"token_expires_at,omitempty"`
	Scopes         string     `gorm:"type:varchar(500)" json:"scopes"`
	Status         string     `gorm:"type:varchar(20);default:'active'" json:"status"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the connection can be used for publishing.
func (c *SocialConnection) IsActive() bool {
	return c.Status == ConnectionStatusActive
}

// ExpiresWithin reports whether the access token expires inside the given
// safety margin. Connections without a recorded expiry never report true.
func (c *SocialConnection) ExpiresWithin(margin time.Duration) bool {
	if c.TokenExpiresAt == nil {
		return false
	}
	return time.Until(*c.TokenExpiresAt) < margin
}
