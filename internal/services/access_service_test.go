package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/access"
	"github.com/Sam-D-04/access-control-building/internal/database/testutil"
	"github.com/Sam-D-04/access-control-building/internal/models"
)

// tuesdayMorning is a fixed in-week instant used as the test clock.
var tuesdayMorning = time.Date(2026, 9, 8, 9, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	accessEvents []AccessEvent
	doorEvents   []DoorEvent
}

func (f *fakeNotifier) PublishAccessEvent(event AccessEvent) {
	f.accessEvents = append(f.accessEvents, event)
}

func (f *fakeNotifier) PublishDoorEvent(event DoorEvent) {
	f.doorEvents = append(f.doorEvents, event)
}

type accessEnv struct {
	db       *gorm.DB
	svc      *AccessService
	logs     *AccessLogService
	notifier *fakeNotifier

	user *models.User
	card *models.Card
	door *models.Door
}

func newAccessEnv(t *testing.T) *accessEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	logs, err := NewAccessLogService(db)
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	svc, err := NewAccessService(db, logs, notifier, WithClock(func() time.Time { return tuesdayMorning }))
	require.NoError(t, err)

	env := &accessEnv{db: db, svc: svc, logs: logs, notifier: notifier}

	env.user = &models.User{
		Username:   "jsmith",
		FullName:   "Jordan Smith",
		EmployeeID: "EMP-1001",
		Role:       models.RoleEmployee,
		IsActive:   true,
	}
	require.NoError(t, db.Create(env.user).Error)

	env.card = &models.Card{
		UID:      "CARD-1001",
		UserID:   &env.user.ID,
		IsActive: true,
		IssuedAt: tuesdayMorning.Add(-24 * time.Hour),
	}
	require.NoError(t, db.Create(env.card).Error)

	env.door = &models.Door{Name: "Main Entrance", IsActive: true}
	require.NoError(t, db.Create(env.door).Error)

	return env
}

func (e *accessEnv) grantAllDoors(t *testing.T) *models.Permission {
	t.Helper()

	perm := &models.Permission{
		Name:           "All Doors",
		DoorAccessMode: models.DoorAccessAll,
		Priority:       10,
		IsActive:       true,
	}
	require.NoError(t, e.db.Create(perm).Error)
	require.NoError(t, e.db.Create(&models.CardPermission{
		CardID:       e.card.ID,
		PermissionID: perm.ID,
		IsActive:     true,
	}).Error)
	return perm
}

func (e *accessEnv) logCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.AccessLog{}).Count(&count).Error)
	return count
}

func TestCheckCardGrantFlow(t *testing.T) {
	env := newAccessEnv(t)
	env.grantAllDoors(t)

	decision, err := env.svc.CheckCard(context.Background(), CardScanInput{
		CardUID: "CARD-1001",
		DoorID:  env.door.ID,
	})
	require.NoError(t, err)
	require.True(t, decision.Granted)
	require.Equal(t, "All Doors", decision.MatchedPermission)

	var entry models.AccessLog
	require.NoError(t, env.db.First(&entry).Error)
	require.Equal(t, models.AccessGranted, entry.Status)
	require.Equal(t, env.card.ID, *entry.CardID)
	require.Equal(t, env.user.ID, *entry.UserID)
	require.Equal(t, env.door.ID, *entry.DoorID)
	require.True(t, entry.AccessTime.Equal(tuesdayMorning))

	require.Len(t, env.notifier.accessEvents, 1)
	require.True(t, env.notifier.accessEvents[0].Granted)
	require.Equal(t, "CARD-1001", env.notifier.accessEvents[0].CardUID)
	require.Equal(t, "Main Entrance", env.notifier.accessEvents[0].DoorName)
}

func TestCheckCardUnknownCardAudited(t *testing.T) {
	env := newAccessEnv(t)

	decision, err := env.svc.CheckCard(context.Background(), CardScanInput{
		CardUID: "CARD-GHOST",
		DoorID:  env.door.ID,
	})
	require.NoError(t, err)
	require.False(t, decision.Granted)
	require.Equal(t, access.ReasonCardNotFound, decision.Reason)

	var entry models.AccessLog
	require.NoError(t, env.db.First(&entry).Error)
	require.Nil(t, entry.CardID)
	require.Nil(t, entry.UserID)
	require.Equal(t, env.door.ID, *entry.DoorID)
	require.Equal(t, access.ReasonCardNotFound, entry.DenialReason)
}

func TestCheckCardUnknownDoorNotAudited(t *testing.T) {
	env := newAccessEnv(t)

	_, err := env.svc.CheckCard(context.Background(), CardScanInput{
		CardUID: "CARD-1001",
		DoorID:  "00000000-0000-0000-0000-000000000000",
	})
	require.ErrorIs(t, err, ErrDoorNotFound)
	require.EqualValues(t, 0, env.logCount(t))
}

func TestCheckCardLockedDoor(t *testing.T) {
	env := newAccessEnv(t)
	env.grantAllDoors(t)
	require.NoError(t, env.db.Model(env.door).Update("is_locked", true).Error)

	decision, err := env.svc.CheckCard(context.Background(), CardScanInput{
		CardUID: "CARD-1001",
		DoorID:  env.door.ID,
	})
	require.NoError(t, err)
	require.False(t, decision.Granted)
	require.Equal(t, access.ReasonDoorLocked, decision.Reason)
}

func TestCheckCardDiagnosticsBreakdown(t *testing.T) {
	env := newAccessEnv(t)

	other := &models.Door{Name: "Server Room", IsActive: true}
	require.NoError(t, env.db.Create(other).Error)

	perm := &models.Permission{
		Name:           "Server Room Only",
		DoorAccessMode: models.DoorAccessSpecific,
		DoorIDs:        []string{other.ID},
		Priority:       10,
		IsActive:       true,
	}
	require.NoError(t, env.db.Create(perm).Error)
	require.NoError(t, env.db.Create(&models.CardPermission{
		CardID:       env.card.ID,
		PermissionID: perm.ID,
		IsActive:     true,
	}).Error)

	plain, err := env.svc.CheckCard(context.Background(), CardScanInput{
		CardUID: "CARD-1001",
		DoorID:  env.door.ID,
	})
	require.NoError(t, err)
	require.False(t, plain.Granted)
	require.Equal(t, access.ReasonNoDoorPermission, plain.Reason)
	require.Empty(t, plain.Checked)

	verbose, err := env.svc.CheckCard(context.Background(), CardScanInput{
		CardUID:     "CARD-1001",
		DoorID:      env.door.ID,
		Diagnostics: true,
	})
	require.NoError(t, err)
	require.Len(t, verbose.Checked, 1)
	require.Equal(t, "door not in scope", verbose.Checked[0].Reason)
}

func TestCheckQRStalePayloadRejectedBeforeLookup(t *testing.T) {
	env := newAccessEnv(t)

	_, err := env.svc.CheckQR(context.Background(), QRScanInput{
		UserID:     env.user.ID,
		EmployeeID: "EMP-1001",
		Timestamp:  tuesdayMorning.Add(-3 * time.Minute).UnixMilli(),
		DoorID:     env.door.ID,
	})
	require.ErrorIs(t, err, ErrQRExpired)
	require.EqualValues(t, 0, env.logCount(t))
}

func TestCheckQRGrantUsesMostRecentActiveCard(t *testing.T) {
	env := newAccessEnv(t)
	env.grantAllDoors(t)

	decision, err := env.svc.CheckQR(context.Background(), QRScanInput{
		UserID:     env.user.ID,
		EmployeeID: "EMP-1001",
		Timestamp:  tuesdayMorning.Add(-30 * time.Second).UnixMilli(),
		DoorID:     env.door.ID,
	})
	require.NoError(t, err)
	require.True(t, decision.Granted)
}

func TestCheckQREmployeeIDMismatch(t *testing.T) {
	env := newAccessEnv(t)
	env.grantAllDoors(t)

	decision, err := env.svc.CheckQR(context.Background(), QRScanInput{
		UserID:     env.user.ID,
		EmployeeID: "EMP-9999",
		Timestamp:  tuesdayMorning.UnixMilli(),
		DoorID:     env.door.ID,
	})
	require.NoError(t, err)
	require.False(t, decision.Granted)
	require.Equal(t, "invalid QR credential", decision.Reason)

	var entry models.AccessLog
	require.NoError(t, env.db.First(&entry).Error)
	require.Nil(t, entry.UserID)
}

func TestCheckQRNoActiveCard(t *testing.T) {
	env := newAccessEnv(t)
	require.NoError(t, env.db.Model(env.card).Update("is_active", false).Error)

	decision, err := env.svc.CheckQR(context.Background(), QRScanInput{
		UserID:     env.user.ID,
		EmployeeID: "EMP-1001",
		Timestamp:  tuesdayMorning.UnixMilli(),
		DoorID:     env.door.ID,
	})
	require.NoError(t, err)
	require.False(t, decision.Granted)
	require.Equal(t, "no active card", decision.Reason)

	var entry models.AccessLog
	require.NoError(t, env.db.First(&entry).Error)
	require.Equal(t, env.user.ID, *entry.UserID)
	require.Nil(t, entry.CardID)
}

func TestCheckCardValidationErrors(t *testing.T) {
	env := newAccessEnv(t)

	_, err := env.svc.CheckCard(context.Background(), CardScanInput{DoorID: env.door.ID})
	require.Error(t, err)

	_, err = env.svc.CheckCard(context.Background(), CardScanInput{CardUID: "CARD-1001"})
	require.Error(t, err)
	require.EqualValues(t, 0, env.logCount(t))
}
