package models

import "gorm.io/gorm"

// Department groups users and doors. Departments are a flat list; hierarchy
// management lives outside this service.
type Department struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	Users []User `gorm:"foreignKey:DepartmentID" json:"users,omitempty"`
	Doors []Door `gorm:"foreignKey:DepartmentID" json:"doors,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
