package models

import (
	"time"

	"gorm.io/datatypes"
)

// CardPermission binds one Permission to one Card, optionally narrowing or
// widening it for that card alone. This assignment, not the bare Permission,
// is the unit evaluated at access time.
type CardPermission struct {
	BaseModel

	CardID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_card_permission" json:"card_id"`
	Card   *Card  `json:"card,omitempty"`

	PermissionID string      `gorm:"type:uuid;not null;index;uniqueIndex:idx_card_permission" json:"permission_id"`
	Permission   *Permission `json:"permission,omitempty"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`

	// OverrideDoors replaces the base permission's door scope with
	// CustomDoorIDs. AdditionalDoorIDs are unioned in afterwards, on top of
	// whichever scope (overridden or base) was selected.
	OverrideDoors     bool                        `gorm:"default:false" json:"override_doors"`
	CustomDoorIDs     datatypes.JSONSlice[string] `json:"custom_door_ids,omitempty"`
	AdditionalDoorIDs datatypes.JSONSlice[string] `json:"additional_door_ids,omitempty"`

	OverrideTimeRestriction *TimeRestriction `gorm:"type:json" json:"override_time_restriction,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`
}

// ValidAt reports whether the assignment's own validity window contains the
// instant. Missing boundaries are open-ended.
func (cp *CardPermission) ValidAt(at time.Time) bool {
	if cp.ValidFrom != nil && at.Before(*cp.ValidFrom) {
		return false
	}
	if cp.ValidUntil != nil && at.After(*cp.ValidUntil) {
		return false
	}
	return true
}

// EffectiveTimeRestriction returns the per-assignment override when present,
// otherwise the base permission's restriction.
func (cp *CardPermission) EffectiveTimeRestriction() *TimeRestriction {
	if cp.OverrideTimeRestriction != nil {
		return cp.OverrideTimeRestriction
	}
	if cp.Permission != nil {
		return cp.Permission.TimeRestriction
	}
	return nil
}
