package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Sam-D-04/access-control-building/internal/database/testutil"
	"github.com/Sam-D-04/access-control-building/internal/models"
)

func newPermissionService(t *testing.T) *PermissionService {
	t.Helper()
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewPermissionService(db)
	require.NoError(t, err)
	return svc
}

func TestPermissionCreateValidatesRestriction(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePermissionInput{
		Name:            "Bad Days",
		DoorAccessMode:  models.DoorAccessAll,
		TimeRestriction: &models.TimeRestriction{Days: []string{"funday"}},
	})
	require.Error(t, err)

	_, err = svc.Create(ctx, CreatePermissionInput{
		Name:            "Bad Hours",
		DoorAccessMode:  models.DoorAccessAll,
		TimeRestriction: &models.TimeRestriction{StartTime: "25:00", EndTime: "26:00"},
	})
	require.Error(t, err)

	perm, err := svc.Create(ctx, CreatePermissionInput{
		Name:           "Office Hours",
		DoorAccessMode: models.DoorAccessAll,
		TimeRestriction: &models.TimeRestriction{
			Days:      []string{"monday", "friday"},
			StartTime: "08:00",
			EndTime:   "18:00",
		},
		Priority: 50,
	})
	require.NoError(t, err)
	require.NotNil(t, perm.TimeRestriction)
}

func TestPermissionRestrictionRoundTrip(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreatePermissionInput{
		Name:           "Night Shift",
		DoorAccessMode: models.DoorAccessAll,
		TimeRestriction: &models.TimeRestriction{
			Days:      []string{"monday"},
			StartTime: "18:00",
			EndTime:   "06:00",
		},
	})
	require.NoError(t, err)

	loaded, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.TimeRestriction)
	require.Equal(t, "18:00", loaded.TimeRestriction.StartTime)
	require.Equal(t, []string{"monday"}, loaded.TimeRestriction.Days)
}

func TestPermissionClearRestriction(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreatePermissionInput{
		Name:            "Temporary",
		DoorAccessMode:  models.DoorAccessAll,
		TimeRestriction: &models.TimeRestriction{StartTime: "08:00", EndTime: "18:00"},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdatePermissionInput{ClearRestriction: true})
	require.NoError(t, err)
	require.Nil(t, updated.TimeRestriction)
}

func TestPermissionDuplicateName(t *testing.T) {
	svc := newPermissionService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePermissionInput{Name: "Unique", DoorAccessMode: models.DoorAccessAll})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreatePermissionInput{Name: "Unique", DoorAccessMode: models.DoorAccessAll})
	require.Error(t, err)
}
