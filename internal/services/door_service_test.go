package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sam-D-04/access-control-building/internal/database/testutil"
)

func TestDoorLockUnlockPublishesEvents(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	notifier := &fakeNotifier{}
	svc, err := NewDoorService(db, notifier)
	require.NoError(t, err)
	ctx := context.Background()

	door, err := svc.Create(ctx, CreateDoorInput{Name: "Loading Dock", Location: "North wing"})
	require.NoError(t, err)
	require.False(t, door.IsLocked)

	locked, err := svc.Lock(ctx, door.ID)
	require.NoError(t, err)
	require.True(t, locked.IsLocked)

	unlocked, err := svc.Unlock(ctx, door.ID)
	require.NoError(t, err)
	require.False(t, unlocked.IsLocked)

	require.Len(t, notifier.doorEvents, 2)
	require.True(t, notifier.doorEvents[0].Locked)
	require.False(t, notifier.doorEvents[1].Locked)
	require.Equal(t, "Loading Dock", notifier.doorEvents[0].DoorName)
}

func TestDoorLockUnknownDoor(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewDoorService(db, nil)
	require.NoError(t, err)

	_, err = svc.Lock(context.Background(), "44444444-4444-4444-8444-444444444444")
	require.ErrorIs(t, err, ErrDoorNotFound)
}
