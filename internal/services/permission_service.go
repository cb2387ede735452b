package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
	apperrors "github.com/Sam-D-04/access-control-building/pkg/errors"
)

var (
	// ErrPermissionNotFound indicates the requested permission does not exist.
	ErrPermissionNotFound = apperrors.New("PERMISSION_NOT_FOUND", "Permission not found", http.StatusNotFound)
)

// CreatePermissionInput captures a new access policy.
type CreatePermissionInput struct {
	Name            string
	Description     string
	DoorAccessMode  models.DoorAccessMode
	DoorIDs         []string
	TimeRestriction *models.TimeRestriction
	Priority        int
}

// UpdatePermissionInput describes mutable policy fields.
type UpdatePermissionInput struct {
	Name             *string
	Description      *string
	DoorAccessMode   *models.DoorAccessMode
	DoorIDs          []string
	TimeRestriction  *models.TimeRestriction
	ClearRestriction bool
	Priority         *int
	IsActive         *bool
}

// PermissionService manages reusable named access policies.
type PermissionService struct {
	db *gorm.DB
}

// NewPermissionService constructs a PermissionService instance.
func NewPermissionService(db *gorm.DB) (*PermissionService, error) {
	if db == nil {
		return nil, errors.New("permission service: db is required")
	}
	return &PermissionService{db: db}, nil
}

// Create registers a new permission.
func (s *PermissionService) Create(ctx context.Context, input CreatePermissionInput) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("permission name is required")
	}

	mode := input.DoorAccessMode
	if mode == "" {
		mode = models.DoorAccessSpecific
	}
	if !models.ValidDoorAccessMode(mode) {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown door access mode %q", mode))
	}

	if err := validateRestriction(input.TimeRestriction); err != nil {
		return nil, err
	}

	permission := &models.Permission{
		Name:            name,
		Description:     strings.TrimSpace(input.Description),
		DoorAccessMode:  mode,
		DoorIDs:         datatypes.NewJSONSlice(normaliseIDs(input.DoorIDs)),
		TimeRestriction: input.TimeRestriction,
		Priority:        input.Priority,
		IsActive:        true,
	}

	if err := s.db.WithContext(ctx).Create(permission).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("permission name already exists")
		}
		return nil, fmt.Errorf("permission service: create permission: %w", err)
	}
	return permission, nil
}

// GetByID loads a permission.
func (s *PermissionService) GetByID(ctx context.Context, id string) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	var permission models.Permission
	err := s.db.WithContext(ctx).First(&permission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPermissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("permission service: load permission: %w", err)
	}
	return &permission, nil
}

// List returns all permissions ordered by priority descending.
func (s *PermissionService) List(ctx context.Context) ([]models.Permission, error) {
	ctx = ensureContext(ctx)

	var permissions []models.Permission
	if err := s.db.WithContext(ctx).Order("priority DESC, name ASC").Find(&permissions).Error; err != nil {
		return nil, fmt.Errorf("permission service: list permissions: %w", err)
	}
	return permissions, nil
}

// Update modifies a permission.
func (s *PermissionService) Update(ctx context.Context, id string, input UpdatePermissionInput) (*models.Permission, error) {
	ctx = ensureContext(ctx)

	permission, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != permission.Name {
			updates["name"] = name
		}
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.DoorAccessMode != nil {
		if !models.ValidDoorAccessMode(*input.DoorAccessMode) {
			return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown door access mode %q", *input.DoorAccessMode))
		}
		updates["door_access_mode"] = *input.DoorAccessMode
	}
	if input.DoorIDs != nil {
		updates["door_ids"] = datatypes.NewJSONSlice(normaliseIDs(input.DoorIDs))
	}
	if input.ClearRestriction {
		updates["time_restriction"] = nil
	} else if input.TimeRestriction != nil {
		if err := validateRestriction(input.TimeRestriction); err != nil {
			return nil, err
		}
		updates["time_restriction"] = *input.TimeRestriction
	}
	if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return permission, nil
	}

	if err := s.db.WithContext(ctx).Model(permission).Updates(updates).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("permission name already exists")
		}
		return nil, fmt.Errorf("permission service: update permission: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete soft-deletes the permission. Existing assignments referencing it
// stop matching because the engine skips inactive permissions.
func (s *PermissionService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Permission{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("permission service: delete permission: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPermissionNotFound
	}
	return nil
}

func validateRestriction(tr *models.TimeRestriction) error {
	if tr == nil {
		return nil
	}

	for _, day := range tr.Days {
		if !knownWeekday(day) {
			return apperrors.NewBadRequest(fmt.Sprintf("unknown weekday %q", day))
		}
	}

	if tr.HasWindow() {
		if _, _, err := tr.WindowMinutes(); err != nil {
			return apperrors.NewBadRequest("time window must use HH:MM format")
		}
	} else if strings.TrimSpace(tr.StartTime) != "" || strings.TrimSpace(tr.EndTime) != "" {
		return apperrors.NewBadRequest("time window requires both start and end")
	}

	return nil
}

func knownWeekday(day string) bool {
	switch strings.ToLower(strings.TrimSpace(day)) {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}
