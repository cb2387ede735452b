package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/services"
	"github.com/Sam-D-04/access-control-building/pkg/logger"
)

const (
	defaultLogRetentionDays = 365
	defaultLogSpec          = "@daily"
	defaultCardSpec         = "@hourly"
)

// Cleaner coordinates background maintenance: enforcing the access log
// retention window and deactivating cards that passed their expiry.
type Cleaner struct {
	db        *gorm.DB
	logs      *services.AccessLogService
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	enabled   bool
	retention int

	logSchedule  string
	cardSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithLogRetentionDays adjusts how long access logs are retained.
func WithLogRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithLogSchedule overrides the cron specification for log retention enforcement.
func WithLogSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.logSchedule = spec
		}
	}
}

// WithCardSchedule overrides the cron specification for the expired card sweep.
func WithCardSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cardSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. A nil dependency
// results in the corresponding cleanup job being skipped.
func NewCleaner(db *gorm.DB, logs *services.AccessLogService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:           db,
		logs:         logs,
		now:          time.Now,
		retention:    defaultLogRetentionDays,
		logSchedule:  defaultLogSpec,
		cardSchedule: defaultCardSpec,
		log:          logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.logs != nil || cleaner.db != nil

	return cleaner
}

// Start registers cleanup jobs with the cron scheduler and launches it if at
// least one cleanup is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.logs != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.logSchedule, func() {
			ctx := context.Background()
			if _, err := c.logs.CleanupOlderThan(ctx, c.retention); err != nil {
				c.log.Warn("access log cleanup failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil {
		if _, err := c.cron.AddFunc(c.cardSchedule, func() {
			ctx := context.Background()
			if _, err := DeactivateExpiredCards(ctx, c.db, c.now()); err != nil {
				c.log.Warn("expired card sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured cleanup routines sequentially. Used in
// tests and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.logs != nil && c.retention > 0 {
		if _, err := c.logs.CleanupOlderThan(ctx, c.retention); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil {
		if _, err := DeactivateExpiredCards(ctx, c.db, c.now()); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// DeactivateExpiredCards flips is_active off for cards whose expiry has
// passed. The decision engine already denies expired cards regardless of the
// flag; the sweep keeps the admin views honest.
func DeactivateExpiredCards(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	if db == nil {
		return 0, errors.New("deactivate expired cards: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := db.WithContext(ctx).
		Table("cards").
		Where("deleted_at IS NULL").
		Where("is_active = ?", true).
		Where("expires_at IS NOT NULL AND expires_at < ?", now).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
