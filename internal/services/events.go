package services

import "time"

// AccessEvent is the live-monitoring payload published after every decision.
// It mirrors the decision response enriched with display names.
type AccessEvent struct {
	Granted    bool      `json:"granted"`
	Reason     string    `json:"reason,omitempty"`
	CardUID    string    `json:"card_uid,omitempty"`
	UserName   string    `json:"user_name,omitempty"`
	DoorName   string    `json:"door_name,omitempty"`
	DoorID     string    `json:"door_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// DoorEvent reports an emergency lock state change.
type DoorEvent struct {
	DoorID     string    `json:"door_id"`
	DoorName   string    `json:"door_name"`
	Locked     bool      `json:"locked"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AccessNotifier publishes events to live-monitoring subscribers. Publishing
// is fire-and-forget: implementations must never block and never return an
// error to the decision path.
type AccessNotifier interface {
	PublishAccessEvent(event AccessEvent)
	PublishDoorEvent(event DoorEvent)
}
