// Package eventbus implements the agent-facing pub/sub event channel
// (spec.md §6.4) over websockets, generalized from the teacher corpus's
// WSHub pattern (codeready-toolchain/tarsy pkg/api/websocket.go) from an
// unscoped broadcast hub into a channel-scoped fan-out: each subscriber
// registers for exactly one channel (typically "browser:events:{room_name}",
// per §6.4) and only receives events published to that channel.
package eventbus

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/10xr-agents/browse-automation-service/internal/buffers"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
)

// replayCapacity bounds how many recent events per channel a newly connected
// subscriber is replayed before live events resume, so a websocket that
// dials in mid-session still sees the tail of what it missed.
const replayCapacity = 64

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one message delivered to subscribers of a channel.
type Event struct {
	Channel string `json:"channel"`
	Payload any    `json:"payload"`
}

// Hub fans out published events to websocket subscribers, scoped by
// channel name.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*websocket.Conn]bool
	recent      map[string]*buffers.RingBuffer[Event]
	log         *slog.Logger
}

// NewHub constructs an empty Hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		subscribers: map[string]map[*websocket.Conn]bool{},
		recent:      map[string]*buffers.RingBuffer[Event]{},
		log:         log,
	}
}

// Publish implements capability.PubSub: it fans event out to every
// subscriber currently registered on channel.
func (h *Hub) Publish(ctx context.Context, channel string, event any) error {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subscribers[channel]))
	for c := range h.subscribers[channel] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	msg := Event{Channel: channel, Payload: event}

	h.mu.Lock()
	rb, ok := h.recent[channel]
	if !ok {
		rb = buffers.NewRingBuffer[Event](replayCapacity)
		h.recent[channel] = rb
	}
	h.mu.Unlock()
	rb.WriteOne(msg)

	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			h.log.Warn("eventbus write failed, dropping subscriber", "channel", channel, "error", err)
			h.unregister(channel, c)
		}
	}
	return nil
}

// HandleWS upgrades the HTTP request to a websocket and subscribes the
// connection to the channel named by the "channel" query parameter.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		http.Error(w, "channel query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("eventbus upgrade failed", "error", err)
		return
	}
	h.register(channel, conn)

	h.mu.RLock()
	rb := h.recent[channel]
	h.mu.RUnlock()
	if rb != nil {
		for _, msg := range rb.ReadAll() {
			if err := conn.WriteJSON(msg); err != nil {
				h.unregister(channel, conn)
				return
			}
		}
	}

	go func() {
		defer h.unregister(channel, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(channel string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[channel] == nil {
		h.subscribers[channel] = map[*websocket.Conn]bool{}
	}
	h.subscribers[channel][conn] = true
}

func (h *Hub) unregister(channel string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.subscribers[channel]; ok {
		if _, present := conns[conn]; present {
			delete(conns, conn)
			_ = conn.Close()
		}
		if len(conns) == 0 {
			delete(h.subscribers, channel)
		}
	}
}

// SubscriberCount reports how many connections are subscribed to channel,
// for tests and operator diagnostics.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[channel])
}

var _ capability.PubSub = (*Hub)(nil)
