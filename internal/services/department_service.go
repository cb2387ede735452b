package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
	apperrors "github.com/Sam-D-04/access-control-building/pkg/errors"
)

var (
	// ErrDepartmentNotFound indicates the requested department does not exist.
	ErrDepartmentNotFound = apperrors.New("DEPARTMENT_NOT_FOUND", "Department not found", http.StatusNotFound)
)

// CreateDepartmentInput captures new department metadata.
type CreateDepartmentInput struct {
	Name        string
	Description string
}

// UpdateDepartmentInput describes mutable department fields.
type UpdateDepartmentInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// DepartmentService manages the flat department list.
type DepartmentService struct {
	db *gorm.DB
}

// NewDepartmentService constructs a DepartmentService instance.
func NewDepartmentService(db *gorm.DB) (*DepartmentService, error) {
	if db == nil {
		return nil, errors.New("department service: db is required")
	}
	return &DepartmentService{db: db}, nil
}

// Create registers a new department.
func (s *DepartmentService) Create(ctx context.Context, input CreateDepartmentInput) (*models.Department, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("department name is required")
	}

	department := &models.Department{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(department).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("department name already exists")
		}
		return nil, fmt.Errorf("department service: create department: %w", err)
	}
	return department, nil
}

// GetByID loads a department.
func (s *DepartmentService) GetByID(ctx context.Context, id string) (*models.Department, error) {
	ctx = ensureContext(ctx)

	var department models.Department
	err := s.db.WithContext(ctx).First(&department, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDepartmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("department service: load department: %w", err)
	}
	return &department, nil
}

// List returns all departments ordered by name.
func (s *DepartmentService) List(ctx context.Context) ([]models.Department, error) {
	ctx = ensureContext(ctx)

	var departments []models.Department
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("department service: list departments: %w", err)
	}
	return departments, nil
}

// Update modifies department metadata.
func (s *DepartmentService) Update(ctx context.Context, id string, input UpdateDepartmentInput) (*models.Department, error) {
	ctx = ensureContext(ctx)

	department, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != department.Name {
			updates["name"] = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return department, nil
	}

	if err := s.db.WithContext(ctx).Model(department).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("department name already exists")
		}
		return nil, fmt.Errorf("department service: update department: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete soft-deletes the department.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Department{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("department service: delete department: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDepartmentNotFound
	}
	return nil
}
