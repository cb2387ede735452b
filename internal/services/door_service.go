package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
	apperrors "github.com/Sam-D-04/access-control-building/pkg/errors"
	"github.com/Sam-D-04/access-control-building/pkg/metrics"
)

// CreateDoorInput captures new door metadata.
type CreateDoorInput struct {
	Name         string
	Location     string
	DepartmentID *string
}

// UpdateDoorInput describes mutable door fields.
type UpdateDoorInput struct {
	Name         *string
	Location     *string
	DepartmentID *string
	IsActive     *bool
}

// ListDoorsOptions controls door listing.
type ListDoorsOptions struct {
	Page         int
	PageSize     int
	DepartmentID string
}

// DoorService manages doors and their emergency lock state. Lock changes are
// published to live-monitoring subscribers.
type DoorService struct {
	db       *gorm.DB
	notifier AccessNotifier
}

// NewDoorService constructs a DoorService instance. The notifier may be nil.
func NewDoorService(db *gorm.DB, notifier AccessNotifier) (*DoorService, error) {
	if db == nil {
		return nil, errors.New("door service: db is required")
	}
	return &DoorService{db: db, notifier: notifier}, nil
}

// Create registers a new door.
func (s *DoorService) Create(ctx context.Context, input CreateDoorInput) (*models.Door, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("door name is required")
	}

	door := &models.Door{
		Name:         name,
		Location:     strings.TrimSpace(input.Location),
		IsActive:     true,
		DepartmentID: trimIDPtr(input.DepartmentID),
	}

	if err := s.db.WithContext(ctx).Create(door).Error; err != nil {
		return nil, fmt.Errorf("door service: create door: %w", err)
	}
	return door, nil
}

// GetByID loads a door.
func (s *DoorService) GetByID(ctx context.Context, id string) (*models.Door, error) {
	ctx = ensureContext(ctx)

	var door models.Door
	err := s.db.WithContext(ctx).Preload("Department").First(&door, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDoorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("door service: load door: %w", err)
	}
	return &door, nil
}

// List returns paginated doors, optionally filtered by department.
func (s *DoorService) List(ctx context.Context, opts ListDoorsOptions) ([]models.Door, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Door{})
	if opts.DepartmentID != "" {
		query = query.Where("department_id = ?", opts.DepartmentID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("door service: count doors: %w", err)
	}

	var doors []models.Door
	if err := query.
		Order("name ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&doors).Error; err != nil {
		return nil, 0, fmt.Errorf("door service: list doors: %w", err)
	}

	return doors, total, nil
}

// Update modifies door metadata.
func (s *DoorService) Update(ctx context.Context, id string, input UpdateDoorInput) (*models.Door, error) {
	ctx = ensureContext(ctx)

	door, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" && name != door.Name {
			updates["name"] = name
		}
	}
	if input.Location != nil {
		updates["location"] = strings.TrimSpace(*input.Location)
	}
	if input.DepartmentID != nil {
		updates["department_id"] = strings.TrimSpace(*input.DepartmentID)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		return door, nil
	}

	if err := s.db.WithContext(ctx).Model(door).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("door service: update door: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Lock engages the emergency lock. A locked door denies all access
// regardless of permissions until unlocked.
func (s *DoorService) Lock(ctx context.Context, id string) (*models.Door, error) {
	return s.setLocked(ctx, id, true)
}

// Unlock releases the emergency lock.
func (s *DoorService) Unlock(ctx context.Context, id string) (*models.Door, error) {
	return s.setLocked(ctx, id, false)
}

// Delete soft-deletes the door. Access logs keep their door references.
func (s *DoorService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Door{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("door service: delete door: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDoorNotFound
	}
	return nil
}

func (s *DoorService) setLocked(ctx context.Context, id string, locked bool) (*models.Door, error) {
	ctx = ensureContext(ctx)

	door, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Last-write-wins on the lock flag; serialization is the data store's
	// per-row consistency.
	if err := s.db.WithContext(ctx).Model(door).Update("is_locked", locked).Error; err != nil {
		return nil, fmt.Errorf("door service: update lock state: %w", err)
	}
	door.IsLocked = locked

	action := "unlock"
	if locked {
		action = "lock"
	}
	metrics.DoorLockChanges.WithLabelValues(action).Inc()

	if s.notifier != nil {
		s.notifier.PublishDoorEvent(DoorEvent{
			DoorID:     door.ID,
			DoorName:   door.Name,
			Locked:     locked,
			OccurredAt: time.Now(),
		})
	}

	return door, nil
}
