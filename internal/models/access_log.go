package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessStatus is the outcome of one access attempt.
type AccessStatus string

const (
	AccessGranted AccessStatus = "granted"
	AccessDenied  AccessStatus = "denied"
)

// AccessLog is the immutable audit record of one access decision. Card, user
// and door references are nullable and deliberately unenforced: attempts with
// unknown credentials, and failure records written while the referenced rows
// could not be read, must still land in the trail.
type AccessLog struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	CardID *string `gorm:"type:uuid;index" json:"card_id"`
	Card   *Card   `gorm:"constraint:-" json:"card,omitempty"`

	UserID *string `gorm:"type:uuid;index" json:"user_id"`
	User   *User   `gorm:"constraint:-" json:"user,omitempty"`

	DoorID *string `gorm:"type:uuid;index" json:"door_id"`
	Door   *Door   `gorm:"constraint:-" json:"door,omitempty"`

	AccessTime   time.Time    `gorm:"not null;index" json:"access_time"`
	Status       AccessStatus `gorm:"not null;index" json:"status"`
	DenialReason string       `json:"denial_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (a *AccessLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
