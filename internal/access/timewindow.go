package access

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sam-D-04/access-control-building/internal/models"
)

// WithinTimeWindow evaluates a time restriction against an instant. A nil
// restriction is unrestricted. The returned reason is empty when allowed.
//
// Boundaries are inclusive. When the window crosses midnight (start > end),
// denial happens only when the instant is strictly inside the daytime gap:
// after the end and before the start. An 18:00-06:00 window therefore
// permits the whole overnight span.
func WithinTimeWindow(tr *models.TimeRestriction, at time.Time) (bool, string) {
	if tr == nil {
		return true, ""
	}

	if !tr.AllowsDay(at.Weekday()) {
		return false, fmt.Sprintf("outside allowed days (%s)", strings.ToLower(at.Weekday().String()))
	}

	if !tr.HasWindow() {
		return true, ""
	}

	start, end, err := tr.WindowMinutes()
	if err != nil {
		// Fail closed on malformed restrictions.
		return false, "invalid time restriction"
	}

	current := at.Hour()*60 + at.Minute()

	if start <= end {
		if current >= start && current <= end {
			return true, ""
		}
		return false, fmt.Sprintf("outside allowed hours (%s-%s)", tr.StartTime, tr.EndTime)
	}

	// Overnight window: deny only inside the daytime gap.
	if current < start && current > end {
		return false, fmt.Sprintf("outside allowed hours (%s-%s)", tr.StartTime, tr.EndTime)
	}
	return true, ""
}
