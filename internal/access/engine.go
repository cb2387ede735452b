package access

import (
	"sort"
	"time"

	"github.com/Sam-D-04/access-control-building/internal/models"
)

// Denial reasons produced by the engine and its calling layer.
const (
	ReasonCardDeactivated    = "card deactivated"
	ReasonCardExpired        = "card expired"
	ReasonAccountDeactivated = "account deactivated"
	ReasonDoorLocked         = "door locked"
	ReasonNoPermissions      = "no permissions assigned"
	ReasonNoDoorPermission   = "no permission for this door"
	ReasonCardNotFound       = "card not found"
	ReasonSystemError        = "system error"
)

// Decision is the outcome of one access evaluation.
type Decision struct {
	Granted           bool                `json:"granted"`
	Reason            string              `json:"reason,omitempty"`
	MatchedPermission string              `json:"matched_permission,omitempty"`
	Checked           []CheckedPermission `json:"checked_permissions,omitempty"`
}

// CheckedPermission records why one assignment did not grant, for operator
// diagnosis. It is only exposed to privileged callers.
type CheckedPermission struct {
	PermissionID string `json:"permission_id"`
	Name         string `json:"name"`
	Reason       string `json:"reason"`
}

// Deny builds a denial decision.
func Deny(reason string) Decision {
	return Decision{Granted: false, Reason: reason}
}

// Input carries the already-loaded rows one evaluation operates on. Now is
// captured once by the caller and threaded through every check so an
// evaluation spanning a wall-clock boundary stays consistent.
type Input struct {
	Card        *models.Card
	User        *models.User
	Door        *models.Door
	Assignments []models.CardPermission
	Now         time.Time
}

// Evaluate produces a grant/deny verdict for a card/door/user triple. It is
// a pure function over its input: no I/O, no side effects. Persistence and
// notification are the caller's responsibility.
//
// Gate checks run in a fixed order, each an immediate deny: card active,
// card not expired, account active, door not emergency-locked. Admin and
// security roles then bypass permission evaluation entirely. Remaining
// requests scan active assignments in descending priority order; the first
// assignment whose validity window, time window, and door scope all match
// grants access. A non-matching assignment never blocks lower-priority ones.
func Evaluate(in Input) Decision {
	if in.Card == nil || !in.Card.IsActive {
		return Deny(ReasonCardDeactivated)
	}
	if in.Card.Expired(in.Now) {
		return Deny(ReasonCardExpired)
	}
	if in.User == nil || !in.User.IsActive {
		return Deny(ReasonAccountDeactivated)
	}
	if in.Door != nil && in.Door.IsLocked {
		return Deny(ReasonDoorLocked)
	}

	if in.User.BypassesPermissions() {
		return Decision{Granted: true}
	}

	assignments := activeAssignments(in.Assignments)
	if len(assignments) == 0 {
		return Deny(ReasonNoPermissions)
	}

	sort.SliceStable(assignments, func(i, j int) bool {
		return assignments[i].Permission.Priority > assignments[j].Permission.Priority
	})

	doorID := ""
	if in.Door != nil {
		doorID = in.Door.ID
	}

	checked := make([]CheckedPermission, 0, len(assignments))
	for _, assignment := range assignments {
		permission := assignment.Permission

		if !assignment.ValidAt(in.Now) {
			checked = append(checked, skipped(permission, "assignment validity window does not contain now"))
			continue
		}

		if ok, reason := WithinTimeWindow(assignment.EffectiveTimeRestriction(), in.Now); !ok {
			checked = append(checked, skipped(permission, reason))
			continue
		}

		if !DoorInScope(assignment, doorID) {
			checked = append(checked, skipped(permission, "door not in scope"))
			continue
		}

		return Decision{Granted: true, MatchedPermission: permission.Name}
	}

	return Decision{Granted: false, Reason: ReasonNoDoorPermission, Checked: checked}
}

func activeAssignments(assignments []models.CardPermission) []models.CardPermission {
	out := make([]models.CardPermission, 0, len(assignments))
	for _, assignment := range assignments {
		if !assignment.IsActive || assignment.Permission == nil || !assignment.Permission.IsActive {
			continue
		}
		out = append(out, assignment)
	}
	return out
}

func skipped(permission *models.Permission, reason string) CheckedPermission {
	return CheckedPermission{
		PermissionID: permission.ID,
		Name:         permission.Name,
		Reason:       reason,
	}
}
