package access

import (
	"strings"

	"github.com/Sam-D-04/access-control-building/internal/models"
)

// DoorInScope reports whether the assignment's effective door scope contains
// the target door.
//
// Scope resolution, in priority order:
//  1. An assignment with OverrideDoors set replaces the base permission's
//     scope with CustomDoorIDs, regardless of the base mode.
//  2. Otherwise the base mode applies: "all" is an unrestricted scope that
//     absorbs any additions, "specific" uses the permission's door list, and
//     "none" is out of scope immediately.
//  3. AdditionalDoorIDs are unioned in after whichever scope (overridden or
//     base) was selected.
func DoorInScope(assignment models.CardPermission, doorID string) bool {
	doorID = strings.TrimSpace(doorID)
	if doorID == "" || assignment.Permission == nil {
		return false
	}

	scope := make(map[string]struct{})

	if assignment.OverrideDoors {
		addToScope(scope, assignment.CustomDoorIDs)
	} else {
		switch assignment.Permission.DoorAccessMode {
		case models.DoorAccessAll:
			return true
		case models.DoorAccessSpecific:
			addToScope(scope, assignment.Permission.DoorIDs)
		case models.DoorAccessNone:
			return false
		default:
			return false
		}
	}

	addToScope(scope, assignment.AdditionalDoorIDs)

	_, ok := scope[doorID]
	return ok
}

func addToScope(scope map[string]struct{}, ids []string) {
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			scope[id] = struct{}{}
		}
	}
}
