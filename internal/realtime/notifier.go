package realtime

import (
	"github.com/Sam-D-04/access-control-building/internal/services"
)

// Notifier adapts the hub to the services.AccessNotifier capability. It is
// constructor-injected into the service layer so the decision engine never
// holds a broker reference. Publishing is best-effort: a hub with no
// subscribers simply drops the event.
type Notifier struct {
	hub *Hub
}

// NewNotifier wraps a hub.
func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

var _ services.AccessNotifier = (*Notifier)(nil)

// PublishAccessEvent broadcasts an access decision to live dashboards.
func (n *Notifier) PublishAccessEvent(event services.AccessEvent) {
	if n == nil || n.hub == nil {
		return
	}
	n.hub.Broadcast(TopicAccessEvents, Message{Event: "access_decision", Data: event})
}

// PublishDoorEvent broadcasts a door lock state change.
func (n *Notifier) PublishDoorEvent(event services.DoorEvent) {
	if n == nil || n.hub == nil {
		return
	}
	n.hub.Broadcast(TopicDoorEvents, Message{Event: "door_lock_changed", Data: event})
}
