package realtime

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Sam-D-04/access-control-building/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16 // 64 KiB; control messages are tiny

	defaultBufferSize = 64
)

// Topics published by the access-control core.
const (
	TopicAccessEvents = "access_events"
	TopicDoorEvents   = "door_events"
)

// Message represents a JSON payload delivered to monitoring subscribers.
type Message struct {
	Topic string `json:"topic"`
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type controlMessage struct {
	Action string   `json:"action"`
	Topics []string `json:"topics"`
}

// Hub fans out topic-keyed events to connected dashboard clients. Publishing
// never blocks: slow clients are disconnected rather than stalling the
// access decision path.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]map[*connection]struct{}
	upgrader      websocket.Upgrader
	log           *zap.Logger
}

// NewHub constructs a realtime hub.
func NewHub() *Hub {
	return &Hub{
		subscriptions: make(map[string]map[*connection]struct{}),
		log:           logger.WithModule("realtime"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Allow same-origin requests and explicit localhost development.
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				originHost := hostWithoutPort(origin)
				requestHost := hostWithoutPort(r.Host)
				return originHost == requestHost || isLoopback(originHost)
			},
		},
	}
}

// Serve upgrades the HTTP connection to a WebSocket and subscribes the
// client to the provided topics. Clients can adjust subscriptions afterwards
// with subscribe/unsubscribe control messages.
func (h *Hub) Serve(topics []string, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newConnection(h, conn)
	h.subscribe(client, topics)

	go client.writeLoop()
	client.readLoop()
}

// Broadcast delivers a message to every subscriber of the topic.
func (h *Hub) Broadcast(topic string, message Message) {
	topic = normalizeTopic(topic)
	if topic == "" {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.subscriptions[topic]
	if len(clients) == 0 {
		return
	}

	message.Topic = topic
	for client := range clients {
		h.enqueue(client, message)
	}
}

// SubscriberCount reports how many connections listen on the topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[normalizeTopic(topic)])
}

func (h *Hub) subscribe(client *connection, topics []string) {
	if len(topics) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range uniqueTopics(topics) {
		if _, exists := client.topics[topic]; exists {
			continue
		}
		if h.subscriptions[topic] == nil {
			h.subscriptions[topic] = make(map[*connection]struct{})
		}
		client.topics[topic] = struct{}{}
		h.subscriptions[topic][client] = struct{}{}
	}
}

func (h *Hub) unsubscribe(client *connection, topics []string) {
	if len(topics) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, topic := range uniqueTopics(topics) {
		h.removeSubscriptionLocked(client, topic)
	}
}

func (h *Hub) unregister(client *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic := range client.topics {
		h.removeSubscriptionLocked(client, topic)
	}
}

func (h *Hub) removeSubscriptionLocked(client *connection, topic string) {
	clients, ok := h.subscriptions[topic]
	if !ok {
		return
	}

	delete(clients, client)
	if len(clients) == 0 {
		delete(h.subscriptions, topic)
	}
	delete(client.topics, topic)
}

func (h *Hub) enqueue(client *connection, message Message) {
	select {
	case client.send <- message:
	default:
		h.log.Warn("dropping backpressured subscriber")
		// Broadcast holds the hub read lock; close takes the write lock.
		go client.close()
	}
}

type connection struct {
	hub    *Hub
	socket *websocket.Conn
	topics map[string]struct{}
	send   chan Message
	once   sync.Once
}

func newConnection(hub *Hub, conn *websocket.Conn) *connection {
	return &connection{
		hub:    hub,
		socket: conn,
		topics: make(map[string]struct{}),
		send:   make(chan Message, defaultBufferSize),
	}
}

func (c *connection) readLoop() {
	defer c.close()

	c.socket.SetReadLimit(maxMessageSize)
	_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		_ = c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("unexpected close", zap.Error(err))
			}
			break
		}

		if len(payload) == 0 {
			continue
		}

		var ctrl controlMessage
		if err := json.Unmarshal(payload, &ctrl); err != nil {
			c.hub.log.Debug("invalid control payload", zap.Error(err))
			continue
		}

		switch strings.ToLower(strings.TrimSpace(ctrl.Action)) {
		case "subscribe":
			c.hub.subscribe(c, ctrl.Topics)
		case "unsubscribe":
			c.hub.unsubscribe(c, ctrl.Topics)
		case "ping":
			select {
			case c.send <- Message{Event: "pong"}:
			default:
			}
		default:
			c.hub.log.Debug("unsupported control action", zap.String("action", ctrl.Action))
		}
	}
}

func (c *connection) writeLoop() {
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *connection) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		close(c.send)
		_ = c.socket.Close()
	})
}

func hostWithoutPort(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}

	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		if parsed, err := url.Parse(host); err == nil {
			return hostWithoutPort(parsed.Host)
		}
	}

	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return strings.EqualFold(host, "localhost")
}

func normalizeTopic(topic string) string {
	return strings.ToLower(strings.TrimSpace(topic))
}

func uniqueTopics(topics []string) []string {
	unique := make(map[string]struct{}, len(topics))
	var result []string
	for _, topic := range topics {
		if topic = normalizeTopic(topic); topic != "" {
			if _, exists := unique[topic]; !exists {
				unique[topic] = struct{}{}
				result = append(result, topic)
			}
		}
	}
	return result
}
