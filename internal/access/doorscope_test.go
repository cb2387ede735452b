package access

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Sam-D-04/access-control-building/internal/models"
)

func assignmentFor(perm *models.Permission) models.CardPermission {
	return models.CardPermission{Permission: perm, IsActive: true}
}

func TestDoorInScopeAllMode(t *testing.T) {
	assignment := assignmentFor(&models.Permission{DoorAccessMode: models.DoorAccessAll})

	require.True(t, DoorInScope(assignment, "door-a"))
	require.True(t, DoorInScope(assignment, "door-z"))
	require.False(t, DoorInScope(assignment, ""))
}

func TestDoorInScopeSpecificMode(t *testing.T) {
	assignment := assignmentFor(&models.Permission{
		DoorAccessMode: models.DoorAccessSpecific,
		DoorIDs:        datatypes.NewJSONSlice([]string{"door-a", "door-b"}),
	})

	require.True(t, DoorInScope(assignment, "door-a"))
	require.False(t, DoorInScope(assignment, "door-c"))
}

func TestDoorInScopeNoneMode(t *testing.T) {
	assignment := assignmentFor(&models.Permission{DoorAccessMode: models.DoorAccessNone})
	// Additions cannot widen an explicitly empty base scope.
	assignment.AdditionalDoorIDs = datatypes.NewJSONSlice([]string{"door-a"})

	require.False(t, DoorInScope(assignment, "door-a"))
}

func TestDoorInScopeOverrideReplacesBase(t *testing.T) {
	assignment := assignmentFor(&models.Permission{
		DoorAccessMode: models.DoorAccessSpecific,
		DoorIDs:        datatypes.NewJSONSlice([]string{"door-a"}),
	})
	assignment.OverrideDoors = true
	assignment.CustomDoorIDs = datatypes.NewJSONSlice([]string{"door-b"})

	require.False(t, DoorInScope(assignment, "door-a"))
	require.True(t, DoorInScope(assignment, "door-b"))
}

func TestDoorInScopeOverrideTrumpsAllMode(t *testing.T) {
	assignment := assignmentFor(&models.Permission{DoorAccessMode: models.DoorAccessAll})
	assignment.OverrideDoors = true
	assignment.CustomDoorIDs = datatypes.NewJSONSlice([]string{"door-b"})

	require.False(t, DoorInScope(assignment, "door-a"))
	require.True(t, DoorInScope(assignment, "door-b"))
}

func TestDoorInScopeAdditionsUnion(t *testing.T) {
	assignment := assignmentFor(&models.Permission{
		DoorAccessMode: models.DoorAccessSpecific,
		DoorIDs:        datatypes.NewJSONSlice([]string{"door-a"}),
	})
	assignment.AdditionalDoorIDs = datatypes.NewJSONSlice([]string{"door-c"})

	require.True(t, DoorInScope(assignment, "door-a"))
	require.True(t, DoorInScope(assignment, "door-c"))
	require.False(t, DoorInScope(assignment, "door-b"))
}

func TestDoorInScopeAdditionsAfterOverride(t *testing.T) {
	assignment := assignmentFor(&models.Permission{
		DoorAccessMode: models.DoorAccessSpecific,
		DoorIDs:        datatypes.NewJSONSlice([]string{"door-a"}),
	})
	assignment.OverrideDoors = true
	assignment.CustomDoorIDs = datatypes.NewJSONSlice([]string{"door-b"})
	assignment.AdditionalDoorIDs = datatypes.NewJSONSlice([]string{"door-c"})

	require.False(t, DoorInScope(assignment, "door-a"))
	require.True(t, DoorInScope(assignment, "door-b"))
	require.True(t, DoorInScope(assignment, "door-c"))
}

func TestDoorInScopeNilPermission(t *testing.T) {
	require.False(t, DoorInScope(models.CardPermission{}, "door-a"))
}
