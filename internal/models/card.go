package models

import (
	"time"

	"gorm.io/gorm"
)

// Card is a physical credential bound to a user. Cards are soft-deleted so
// historical access logs keep their references.
type Card struct {
	BaseModel

	UID string `gorm:"uniqueIndex;not null" json:"uid"`

	UserID *string `gorm:"type:uuid;index" json:"user_id"`
	User   *User   `json:"user,omitempty"`

	IsActive  bool       `gorm:"default:true" json:"is_active"`
	IssuedAt  time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at"`

	Permissions []CardPermission `gorm:"foreignKey:CardID" json:"permissions,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Expired reports whether the card's expiry timestamp has passed. A card with
// a past expiry is implicitly inactive even when its active flag is true.
func (c *Card) Expired(at time.Time) bool {
	return c.ExpiresAt != nil && at.After(*c.ExpiresAt)
}
