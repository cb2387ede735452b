package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeRestriction bounds a permission to a set of weekdays and a daily time
// window. Day names are lowercase English weekday names; StartTime and
// EndTime use "HH:MM". A window whose start is later than its end crosses
// midnight (e.g. 18:00-06:00 covers the overnight span).
type TimeRestriction struct {
	Days      []string `json:"days,omitempty"`
	StartTime string   `json:"start_time,omitempty"`
	EndTime   string   `json:"end_time,omitempty"`
}

// Scan parses the stored JSON document into the typed restriction. Parsing
// happens once here, at the repository boundary.
func (t *TimeRestriction) Scan(value any) error {
	if value == nil {
		*t = TimeRestriction{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("time restriction: unsupported column type %T", value)
	}

	if len(raw) == 0 {
		*t = TimeRestriction{}
		return nil
	}
	return json.Unmarshal(raw, t)
}

// Value serialises the restriction as a JSON document.
func (t TimeRestriction) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// GormDataType stores restrictions in a JSON column.
func (TimeRestriction) GormDataType() string {
	return "json"
}

// AllowsDay reports whether the weekday is permitted. An empty day set
// permits every day.
func (t TimeRestriction) AllowsDay(day time.Weekday) bool {
	if len(t.Days) == 0 {
		return true
	}

	name := strings.ToLower(day.String())
	for _, allowed := range t.Days {
		if strings.EqualFold(strings.TrimSpace(allowed), name) {
			return true
		}
	}
	return false
}

// HasWindow reports whether a daily time window is configured.
func (t TimeRestriction) HasWindow() bool {
	return strings.TrimSpace(t.StartTime) != "" && strings.TrimSpace(t.EndTime) != ""
}

// WindowMinutes returns the start and end boundaries as minutes since
// midnight.
func (t TimeRestriction) WindowMinutes() (start, end int, err error) {
	start, err = minutesOfDay(t.StartTime)
	if err != nil {
		return 0, 0, err
	}
	end, err = minutesOfDay(t.EndTime)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func minutesOfDay(value string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("time restriction: invalid time %q", value)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("time restriction: invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time restriction: invalid minute in %q", value)
	}

	return hour*60 + minute, nil
}
