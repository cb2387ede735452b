package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sam-D-04/access-control-building/internal/realtime"
)

// RealtimeHandler upgrades monitoring dashboards to a WebSocket stream.
type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// GET /api/ws?topics=access_events,door_events
func (h *RealtimeHandler) Serve(c *gin.Context) {
	topics := splitTopics(c.Query("topics"))
	if len(topics) == 0 {
		topics = []string{realtime.TopicAccessEvents, realtime.TopicDoorEvents}
	}
	h.hub.Serve(topics, c.Writer, c.Request)
}

func splitTopics(raw string) []string {
	var topics []string
	for _, topic := range strings.Split(raw, ",") {
		if topic = strings.TrimSpace(topic); topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}
