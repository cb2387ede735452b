package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DoorAccessMode describes how a permission's door scope is derived.
type DoorAccessMode string

const (
	// DoorAccessAll grants every door without enumerating them.
	DoorAccessAll DoorAccessMode = "all"
	// DoorAccessSpecific grants only the doors listed on the permission.
	DoorAccessSpecific DoorAccessMode = "specific"
	// DoorAccessNone grants no doors; assignments may still override.
	DoorAccessNone DoorAccessMode = "none"
)

// ValidDoorAccessMode reports whether the mode is a supported value.
func ValidDoorAccessMode(mode DoorAccessMode) bool {
	switch mode {
	case DoorAccessAll, DoorAccessSpecific, DoorAccessNone:
		return true
	}
	return false
}

// Permission is a reusable named access policy. DoorIDs is meaningful only
// when DoorAccessMode is "specific". Higher Priority permissions are
// evaluated first.
type Permission struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`

	DoorAccessMode  DoorAccessMode               `gorm:"not null;default:'specific'" json:"door_access_mode"`
	DoorIDs         datatypes.JSONSlice[string]  `json:"door_ids,omitempty"`
	TimeRestriction *TimeRestriction             `gorm:"type:json" json:"time_restriction,omitempty"`

	Priority int  `gorm:"default:0;index" json:"priority"`
	IsActive bool `gorm:"default:true" json:"is_active"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
