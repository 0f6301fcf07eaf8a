package spectate

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/lixenwraith/hushmaze/sound"
	"github.com/lixenwraith/hushmaze/vmath"
)

// Message types
const (
	MessageAdded   = "added"
	MessageRemoved = "removed"
)

// Message is one sound notification as sent to spectators
type Message struct {
	Type        string      `json:"type"`
	ID          uint64      `json:"id"`
	Class       string      `json:"class"`
	Category    string      `json:"category,omitempty"`
	Position    *vmath.Vec2 `json:"position,omitempty"`
	DecayRadius float64     `json:"decay_radius,omitempty"`
	Duration    float64     `json:"duration,omitempty"`
}

// Hub relays router notifications to websocket clients
// Router callbacks arrive on the simulation goroutine; clients register from HTTP goroutines
// A client whose queue is full is dropped rather than blocking the simulation
type Hub struct {
	mu      sync.Mutex
	clients map[*Connection]struct{}
	cancels []func()
	dropped int
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[*Connection]struct{})}
}

// Attach subscribes to every class on r; call from the simulation goroutine
func (h *Hub) Attach(r *sound.Router) {
	l := sound.ListenerFuncs{
		Added: func(ev sound.Event, class sound.Category) {
			pos := ev.Position
			h.publish(Message{
				Type:        MessageAdded,
				ID:          ev.Handle.ID(),
				Class:       class.String(),
				Category:    ev.Category.String(),
				Position:    &pos,
				DecayRadius: ev.DecayRadius,
				Duration:    ev.Duration,
			})
		},
		Removed: func(hd sound.Handle, class sound.Category) {
			h.publish(Message{
				Type:  MessageRemoved,
				ID:    hd.ID(),
				Class: class.String(),
			})
		},
	}
	for c := sound.Category(0); c < sound.CategoryCount; c++ {
		h.cancels = append(h.cancels, r.Subscribe(c, l))
	}
}

// Detach cancels router subscriptions; call from the simulation goroutine
func (h *Hub) Detach() {
	for _, cancel := range h.cancels {
		cancel()
	}
	h.cancels = nil
}

func (h *Hub) publish(m Message) {
	data, err := json.Marshal(m)
	if err != nil {
		log.Printf("spectate: marshal %s: %v", m.Type, err)
		return
	}
	h.Broadcast(data)
}

// Broadcast queues data on every client without blocking
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, c)
			c.closeSend()
			h.dropped++
			log.Printf("spectate: dropped slow client, %d remain", len(h.clients))
		}
	}
}

func (h *Hub) register(c *Connection) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many clients were cut off for falling behind
func (h *Hub) Dropped() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.closeSend()
	}
}
