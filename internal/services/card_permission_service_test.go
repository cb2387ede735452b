package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Sam-D-04/access-control-building/internal/database/testutil"
	"github.com/Sam-D-04/access-control-building/internal/models"
)

type assignmentEnv struct {
	svc  *CardPermissionService
	db   *gorm.DB
	card *models.Card
	perm *models.Permission
}

func newAssignmentEnv(t *testing.T) *assignmentEnv {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewCardPermissionService(db)
	require.NoError(t, err)

	card := &models.Card{UID: "CARD-3001", IsActive: true}
	require.NoError(t, db.Create(card).Error)

	perm := &models.Permission{Name: "Warehouse", DoorAccessMode: models.DoorAccessAll, IsActive: true}
	require.NoError(t, db.Create(perm).Error)

	return &assignmentEnv{svc: svc, db: db, card: card, perm: perm}
}

func TestAssignAndListOrderedByPriority(t *testing.T) {
	env := newAssignmentEnv(t)
	ctx := context.Background()

	low := env.perm
	high := &models.Permission{Name: "Executive", DoorAccessMode: models.DoorAccessAll, Priority: 90, IsActive: true}
	require.NoError(t, env.db.Create(high).Error)

	_, err := env.svc.Assign(ctx, AssignPermissionInput{CardID: env.card.ID, PermissionID: low.ID})
	require.NoError(t, err)
	_, err = env.svc.Assign(ctx, AssignPermissionInput{CardID: env.card.ID, PermissionID: high.ID})
	require.NoError(t, err)

	assignments, err := env.svc.ListByCard(ctx, env.card.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, "Executive", assignments[0].Permission.Name)
	require.Equal(t, "Warehouse", assignments[1].Permission.Name)
}

func TestAssignDuplicateRejected(t *testing.T) {
	env := newAssignmentEnv(t)
	ctx := context.Background()

	_, err := env.svc.Assign(ctx, AssignPermissionInput{CardID: env.card.ID, PermissionID: env.perm.ID})
	require.NoError(t, err)

	_, err = env.svc.Assign(ctx, AssignPermissionInput{CardID: env.card.ID, PermissionID: env.perm.ID})
	require.ErrorIs(t, err, ErrAssignmentExists)
}

func TestAssignUnknownEntities(t *testing.T) {
	env := newAssignmentEnv(t)
	ctx := context.Background()
	ghost := "55555555-5555-4555-8555-555555555555"

	_, err := env.svc.Assign(ctx, AssignPermissionInput{CardID: ghost, PermissionID: env.perm.ID})
	require.ErrorIs(t, err, ErrCardNotFound)

	_, err = env.svc.Assign(ctx, AssignPermissionInput{CardID: env.card.ID, PermissionID: ghost})
	require.ErrorIs(t, err, ErrPermissionNotFound)
}

func TestAssignmentRevoke(t *testing.T) {
	env := newAssignmentEnv(t)
	ctx := context.Background()

	assignment, err := env.svc.Assign(ctx, AssignPermissionInput{CardID: env.card.ID, PermissionID: env.perm.ID})
	require.NoError(t, err)

	require.NoError(t, env.svc.Revoke(ctx, assignment.ID))
	_, err = env.svc.GetByID(ctx, assignment.ID)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}
