package models

import "gorm.io/gorm"

// Door is a controlled entry point. IsLocked is the emergency lock state and
// is orthogonal to the soft-delete active flag: a locked door denies all
// access regardless of permissions.
type Door struct {
	BaseModel

	Name     string `gorm:"not null" json:"name"`
	Location string `json:"location"`

	IsActive bool `gorm:"default:true" json:"is_active"`
	IsLocked bool `gorm:"default:false" json:"is_locked"`

	DepartmentID *string     `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `json:"department,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
