package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
	apperrors "github.com/Sam-D-04/access-control-building/pkg/errors"
)

var (
	// ErrCardNotFound indicates the requested card does not exist.
	ErrCardNotFound = apperrors.New("CARD_NOT_FOUND", "Card not found", http.StatusNotFound)
)

// IssueCardInput captures new card metadata.
type IssueCardInput struct {
	UID       string
	UserID    *string
	ExpiresAt *time.Time
}

// UpdateCardInput describes mutable card fields.
type UpdateCardInput struct {
	UserID      *string
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// ListCardsOptions controls card listing.
type ListCardsOptions struct {
	Page     int
	PageSize int
	UserID   string
}

// CardService handles card lifecycle: issue, reassign, deactivate,
// reactivate, and soft delete. Cards referenced by access logs are never
// physically removed.
type CardService struct {
	db *gorm.DB
}

// NewCardService constructs a CardService instance.
func NewCardService(db *gorm.DB) (*CardService, error) {
	if db == nil {
		return nil, errors.New("card service: db is required")
	}
	return &CardService{db: db}, nil
}

// Issue registers a new card.
func (s *CardService) Issue(ctx context.Context, input IssueCardInput) (*models.Card, error) {
	ctx = ensureContext(ctx)

	uid := strings.TrimSpace(input.UID)
	if uid == "" {
		return nil, apperrors.NewBadRequest("card uid is required")
	}

	if input.UserID != nil {
		if err := s.ensureUserExists(ctx, *input.UserID); err != nil {
			return nil, err
		}
	}

	card := &models.Card{
		UID:       uid,
		UserID:    trimIDPtr(input.UserID),
		IsActive:  true,
		IssuedAt:  time.Now(),
		ExpiresAt: input.ExpiresAt,
	}

	if err := s.db.WithContext(ctx).Create(card).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("card uid already exists")
		}
		return nil, fmt.Errorf("card service: create card: %w", err)
	}

	return card, nil
}

// GetByID loads a card with its owner and assignments.
func (s *CardService) GetByID(ctx context.Context, id string) (*models.Card, error) {
	ctx = ensureContext(ctx)

	var card models.Card
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Permissions.Permission").
		First(&card, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("card service: load card: %w", err)
	}
	return &card, nil
}

// List returns paginated cards, optionally filtered by owner.
func (s *CardService) List(ctx context.Context, opts ListCardsOptions) ([]models.Card, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	query := s.db.WithContext(ctx).Model(&models.Card{})
	if opts.UserID != "" {
		query = query.Where("user_id = ?", opts.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("card service: count cards: %w", err)
	}

	var cards []models.Card
	if err := query.
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&cards).Error; err != nil {
		return nil, 0, fmt.Errorf("card service: list cards: %w", err)
	}

	return cards, total, nil
}

// Update modifies card ownership or expiry.
func (s *CardService) Update(ctx context.Context, id string, input UpdateCardInput) (*models.Card, error) {
	ctx = ensureContext(ctx)

	card, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.UserID != nil {
		if err := s.ensureUserExists(ctx, *input.UserID); err != nil {
			return nil, err
		}
		updates["user_id"] = strings.TrimSpace(*input.UserID)
	}
	if input.ClearExpiry {
		updates["expires_at"] = nil
	} else if input.ExpiresAt != nil {
		updates["expires_at"] = *input.ExpiresAt
	}

	if len(updates) == 0 {
		return card, nil
	}

	if err := s.db.WithContext(ctx).Model(card).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("card service: update card: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Deactivate flags the card inactive without deleting it.
func (s *CardService) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

// Reactivate restores a deactivated card.
func (s *CardService) Reactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

// Delete soft-deletes the card. Access logs keep their card references.
func (s *CardService) Delete(ctx context.Context, id string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Card{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("card service: delete card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (s *CardService) setActive(ctx context.Context, id string, active bool) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Model(&models.Card{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("card service: update card state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCardNotFound
	}
	return nil
}

func (s *CardService) ensureUserExists(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperrors.NewBadRequest("user id is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("card service: check user: %w", err)
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}
