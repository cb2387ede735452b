package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
	apperrors "github.com/Sam-D-04/access-control-building/pkg/errors"
)

var (
	// ErrAssignmentNotFound indicates the requested assignment does not exist.
	ErrAssignmentNotFound = apperrors.New("ASSIGNMENT_NOT_FOUND", "Card permission assignment not found", http.StatusNotFound)
	// ErrAssignmentExists signals the permission is already assigned to the card.
	ErrAssignmentExists = apperrors.New("ASSIGNMENT_EXISTS", "Permission already assigned to card", http.StatusConflict)
)

// AssignPermissionInput binds a permission to a card with optional
// per-assignment overrides.
type AssignPermissionInput struct {
	CardID       string
	PermissionID string

	ValidFrom  *time.Time
	ValidUntil *time.Time

	OverrideDoors     bool
	CustomDoorIDs     []string
	AdditionalDoorIDs []string

	OverrideTimeRestriction *models.TimeRestriction
}

// UpdateAssignmentInput describes mutable assignment fields.
type UpdateAssignmentInput struct {
	ValidFrom  *time.Time
	ValidUntil *time.Time

	OverrideDoors     *bool
	CustomDoorIDs     []string
	AdditionalDoorIDs []string

	OverrideTimeRestriction *models.TimeRestriction
	ClearTimeOverride       bool

	IsActive *bool
}

// CardPermissionService manages the card-to-permission assignments the
// decision engine evaluates.
type CardPermissionService struct {
	db *gorm.DB
}

// NewCardPermissionService constructs a CardPermissionService instance.
func NewCardPermissionService(db *gorm.DB) (*CardPermissionService, error) {
	if db == nil {
		return nil, errors.New("card permission service: db is required")
	}
	return &CardPermissionService{db: db}, nil
}

// Assign links a permission to a card.
func (s *CardPermissionService) Assign(ctx context.Context, input AssignPermissionInput) (*models.CardPermission, error) {
	ctx = ensureContext(ctx)

	if err := s.ensureExists(ctx, &models.Card{}, input.CardID, ErrCardNotFound); err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, &models.Permission{}, input.PermissionID, ErrPermissionNotFound); err != nil {
		return nil, err
	}

	if err := validateRestriction(input.OverrideTimeRestriction); err != nil {
		return nil, err
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return nil, apperrors.NewBadRequest("valid_until must not precede valid_from")
	}

	assignment := &models.CardPermission{
		CardID:                  input.CardID,
		PermissionID:            input.PermissionID,
		ValidFrom:               input.ValidFrom,
		ValidUntil:              input.ValidUntil,
		OverrideDoors:           input.OverrideDoors,
		CustomDoorIDs:           datatypes.NewJSONSlice(normaliseIDs(input.CustomDoorIDs)),
		AdditionalDoorIDs:       datatypes.NewJSONSlice(normaliseIDs(input.AdditionalDoorIDs)),
		OverrideTimeRestriction: input.OverrideTimeRestriction,
		IsActive:                true,
	}

	if err := s.db.WithContext(ctx).Create(assignment).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrAssignmentExists
		}
		return nil, fmt.Errorf("card permission service: create assignment: %w", err)
	}
	return s.GetByID(ctx, assignment.ID)
}

// GetByID loads an assignment with its permission.
func (s *CardPermissionService) GetByID(ctx context.Context, id string) (*models.CardPermission, error) {
	ctx = ensureContext(ctx)

	var assignment models.CardPermission
	err := s.db.WithContext(ctx).Preload("Permission").First(&assignment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("card permission service: load assignment: %w", err)
	}
	return &assignment, nil
}

// ListByCard returns all assignments for a card, highest priority first.
func (s *CardPermissionService) ListByCard(ctx context.Context, cardID string) ([]models.CardPermission, error) {
	ctx = ensureContext(ctx)

	var assignments []models.CardPermission
	err := s.db.WithContext(ctx).
		Preload("Permission").
		Joins("JOIN permissions ON permissions.id = card_permissions.permission_id").
		Where("card_permissions.card_id = ?", cardID).
		Order("permissions.priority DESC").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("card permission service: list assignments: %w", err)
	}
	return assignments, nil
}

// Update modifies an assignment's window or overrides.
func (s *CardPermissionService) Update(ctx context.Context, id string, input UpdateAssignmentInput) (*models.CardPermission, error) {
	ctx = ensureContext(ctx)

	assignment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.ValidFrom != nil {
		updates["valid_from"] = *input.ValidFrom
	}
	if input.ValidUntil != nil {
		updates["valid_until"] = *input.ValidUntil
	}
	if input.OverrideDoors != nil {
		updates["override_doors"] = *input.OverrideDoors
	}
	if input.CustomDoorIDs != nil {
		updates["custom_door_ids"] = datatypes.NewJSONSlice(normaliseIDs(input.CustomDoorIDs))
	}
	if input.AdditionalDoorIDs != nil {
		updates["additional_door_ids"] = datatypes.NewJSONSlice(normaliseIDs(input.AdditionalDoorIDs))
	}
	if input.ClearTimeOverride {
		updates["override_time_restriction"] = nil
	} else if input.OverrideTimeRestriction != nil {
		if err := validateRestriction(input.OverrideTimeRestriction); err != nil {
			return nil, err
		}
		updates["override_time_restriction"] = *input.OverrideTimeRestriction
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return assignment, nil
	}

	if err := s.db.WithContext(ctx).Model(assignment).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("card permission service: update assignment: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Revoke removes the assignment.
func (s *CardPermissionService) Revoke(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.CardPermission{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("card permission service: revoke assignment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

func (s *CardPermissionService) ensureExists(ctx context.Context, model any, id string, notFound *apperrors.AppError) error {
	if id == "" {
		return apperrors.NewBadRequest("id is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("card permission service: check reference: %w", err)
	}
	if count == 0 {
		return notFound
	}
	return nil
}
