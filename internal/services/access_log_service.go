package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/models"
)

// AccessEntry captures one access decision to persist. Card and user may be
// nil when the presented credential could not be resolved.
type AccessEntry struct {
	CardID     *string
	UserID     *string
	DoorID     *string
	AccessTime time.Time
	Status     models.AccessStatus
	Reason     string
}

// AccessLogFilters encapsulates optional filters when querying access logs.
type AccessLogFilters struct {
	CardID string
	UserID string
	DoorID string
	Status string
	Since  *time.Time
	Until  *time.Time
}

// AccessLogListOptions controls pagination and filtering for log queries.
type AccessLogListOptions struct {
	Page     int
	PageSize int
	Filters  AccessLogFilters
}

// AccessLogService persists and retrieves the append-only access audit trail.
// Entries are never mutated; a failed write is surfaced to the caller because
// an unaudited access grant is a compliance gap.
type AccessLogService struct {
	db *gorm.DB
}

// NewAccessLogService constructs an AccessLogService using the provided database handle.
func NewAccessLogService(db *gorm.DB) (*AccessLogService, error) {
	if db == nil {
		return nil, errors.New("access log service: db is required")
	}
	return &AccessLogService{db: db}, nil
}

// Record stores one decision outcome.
func (s *AccessLogService) Record(ctx context.Context, entry AccessEntry) (*models.AccessLog, error) {
	ctx = ensureContext(ctx)

	if entry.Status != models.AccessGranted && entry.Status != models.AccessDenied {
		return nil, fmt.Errorf("access log service: invalid status %q", entry.Status)
	}

	accessTime := entry.AccessTime
	if accessTime.IsZero() {
		accessTime = time.Now()
	}

	log := models.AccessLog{
		CardID:       trimIDPtr(entry.CardID),
		UserID:       trimIDPtr(entry.UserID),
		DoorID:       trimIDPtr(entry.DoorID),
		AccessTime:   accessTime,
		Status:       entry.Status,
		DenialReason: strings.TrimSpace(entry.Reason),
	}

	if err := s.db.WithContext(ctx).Create(&log).Error; err != nil {
		return nil, fmt.Errorf("access log service: record entry: %w", err)
	}
	return &log, nil
}

// List returns paginated access logs ordered by access time descending.
func (s *AccessLogService) List(ctx context.Context, opts AccessLogListOptions) ([]models.AccessLog, int64, error) {
	ctx = ensureContext(ctx)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PageSize
	if perPage <= 0 || perPage > 200 {
		perPage = 50
	}

	var (
		results []models.AccessLog
		total   int64
	)

	query := s.db.WithContext(ctx).Model(&models.AccessLog{})
	query = applyAccessLogFilters(query, opts.Filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("access log service: count logs: %w", err)
	}

	if err := query.
		Preload("Card").
		Preload("User").
		Preload("Door").
		Order("access_time DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("access log service: list logs: %w", err)
	}

	return results, total, nil
}

// Export returns access logs that match the provided filters without pagination.
func (s *AccessLogService) Export(ctx context.Context, filters AccessLogFilters) ([]models.AccessLog, error) {
	ctx = ensureContext(ctx)

	var logs []models.AccessLog
	query := s.db.WithContext(ctx).Model(&models.AccessLog{})
	query = applyAccessLogFilters(query, filters)

	if err := query.
		Preload("Card").
		Preload("User").
		Preload("Door").
		Order("access_time DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("access log service: export logs: %w", err)
	}

	return logs, nil
}

// CleanupOlderThan removes access logs older than the supplied retention window (in days).
// Retention purges are an administrative maintenance task, distinct from the
// no-mutation rule that applies during normal operation.
func (s *AccessLogService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("access log service: retentionDays must be positive")
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := s.db.WithContext(ctx).Where("access_time < ?", cutoff).Delete(&models.AccessLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("access log service: cleanup logs: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func applyAccessLogFilters(query *gorm.DB, filters AccessLogFilters) *gorm.DB {
	if filters.CardID != "" {
		query = query.Where("card_id = ?", filters.CardID)
	}
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.DoorID != "" {
		query = query.Where("door_id = ?", filters.DoorID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Since != nil {
		query = query.Where("access_time >= ?", *filters.Since)
	}
	if filters.Until != nil {
		query = query.Where("access_time <= ?", *filters.Until)
	}
	return query
}

func trimIDPtr(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
