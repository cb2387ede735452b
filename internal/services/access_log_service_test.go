package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/database/testutil"
	"github.com/Sam-D-04/access-control-building/internal/models"
)

func newLogService(t *testing.T) (*AccessLogService, *gorm.DB) {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAccessLogService(db)
	require.NoError(t, err)
	return svc, db
}

func TestAccessLogRecordAndList(t *testing.T) {
	svc, _ := newLogService(t)
	ctx := context.Background()

	doorA := "11111111-1111-4111-8111-111111111111"
	doorB := "22222222-2222-4222-8222-222222222222"
	base := time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := svc.Record(ctx, AccessEntry{
			DoorID:     &doorA,
			AccessTime: base.Add(time.Duration(i) * time.Minute),
			Status:     models.AccessGranted,
		})
		require.NoError(t, err)
	}
	_, err := svc.Record(ctx, AccessEntry{
		DoorID:     &doorB,
		AccessTime: base.Add(time.Hour),
		Status:     models.AccessDenied,
		Reason:     "door locked",
	})
	require.NoError(t, err)

	all, total, err := svc.List(ctx, AccessLogListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, all, 4)
	// Newest first.
	require.Equal(t, models.AccessDenied, all[0].Status)

	denied, total, err := svc.List(ctx, AccessLogListOptions{
		Page: 1, PageSize: 10,
		Filters: AccessLogFilters{Status: "denied"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "door locked", denied[0].DenialReason)

	byDoor, total, err := svc.List(ctx, AccessLogListOptions{
		Page: 1, PageSize: 2,
		Filters: AccessLogFilters{DoorID: doorA},
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, byDoor, 2)

	since := base.Add(30 * time.Minute)
	recent, total, err := svc.List(ctx, AccessLogListOptions{
		Page: 1, PageSize: 10,
		Filters: AccessLogFilters{Since: &since},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, doorB, *recent[0].DoorID)
}

func TestAccessLogExport(t *testing.T) {
	svc, _ := newLogService(t)
	ctx := context.Background()

	base := time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := svc.Record(ctx, AccessEntry{
			AccessTime: base.Add(time.Duration(i) * time.Minute),
			Status:     models.AccessGranted,
		})
		require.NoError(t, err)
	}

	entries, err := svc.Export(ctx, AccessLogFilters{})
	require.NoError(t, err)
	require.Len(t, entries, 5)
}

func TestAccessLogCleanupOlderThan(t *testing.T) {
	svc, db := newLogService(t)
	ctx := context.Background()

	now := time.Now().UTC()
	old := now.AddDate(0, 0, -400)

	for _, at := range []time.Time{old, old.Add(time.Hour), now} {
		_, err := svc.Record(ctx, AccessEntry{AccessTime: at, Status: models.AccessDenied, Reason: "card expired"})
		require.NoError(t, err)
	}

	removed, err := svc.CleanupOlderThan(ctx, 365)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	var count int64
	require.NoError(t, db.Model(&models.AccessLog{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestAccessLogRecordToleratesUnknownReferences(t *testing.T) {
	svc, db := newLogService(t)
	ctx := context.Background()

	// A failed swipe can carry ids that never resolved to rows. The trail
	// must accept them anyway.
	cardID := "33333333-3333-4333-8333-333333333333"
	userID := "44444444-4444-4444-8444-444444444444"
	doorID := "55555555-5555-4555-8555-555555555555"

	entry, err := svc.Record(ctx, AccessEntry{
		CardID:     &cardID,
		UserID:     &userID,
		DoorID:     &doorID,
		AccessTime: time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC),
		Status:     models.AccessDenied,
		Reason:     "card not found",
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)

	var stored models.AccessLog
	require.NoError(t, db.First(&stored, "id = ?", entry.ID).Error)
	require.Equal(t, cardID, *stored.CardID)
	require.Equal(t, doorID, *stored.DoorID)
}
