package models

import "gorm.io/gorm"

// UserRole classifies platform users for access evaluation.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleSecurity UserRole = "security"
	RoleEmployee UserRole = "employee"
)

// ValidRole reports whether the role is one of the supported values.
func ValidRole(role UserRole) bool {
	switch role {
	case RoleAdmin, RoleSecurity, RoleEmployee:
		return true
	}
	return false
}

// User describes a card holder or operator.
type User struct {
	BaseModel

	Username   string `gorm:"uniqueIndex;not null" json:"username"`
	FullName   string `json:"full_name"`
	Email      string `gorm:"uniqueIndex" json:"email"`
	EmployeeID string `gorm:"uniqueIndex" json:"employee_id"`

	Role     UserRole `gorm:"not null;default:'employee'" json:"role"`
	Position string   `json:"position"`
	IsActive bool     `gorm:"default:true" json:"is_active"`

	DepartmentID *string     `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `json:"department,omitempty"`

	Cards []Card `gorm:"foreignKey:UserID" json:"cards,omitempty"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BypassesPermissions reports whether the user's role skips permission
// evaluation entirely.
func (u *User) BypassesPermissions() bool {
	return u.Role == RoleAdmin || u.Role == RoleSecurity
}
