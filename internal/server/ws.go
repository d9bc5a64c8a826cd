package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/gesturemagic/internal/app"
)

// DefaultParticleInterval is the snapshot period of /api/particles (~15 FPS).
const DefaultParticleInterval = 66 * time.Millisecond

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// SnapshotSource provides scene snapshots.
type SnapshotSource interface {
	Snapshot() app.Snapshot
}

// ParticlesHandler broadcasts scene snapshots via WebSocket.
type ParticlesHandler struct {
	source   SnapshotSource
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	once     sync.Once
}

// particle is one particle on the wire: position, scale and color.
type particle struct {
	P [3]float32 `json:"p"`
	S float32    `json:"s"`
	C string     `json:"c"`
}

type particlesMessage struct {
	app.State
	Particles []particle `json:"particles"`
	Timestamp int64      `json:"timestamp"`
}

// NewParticlesHandler creates a handler that sends a snapshot to every
// client each interval.
func NewParticlesHandler(source SnapshotSource, interval time.Duration) *ParticlesHandler {
	if interval <= 0 {
		interval = DefaultParticleInterval
	}
	h := &ParticlesHandler{
		source:   source,
		interval: interval,
		clients:  make(map[*websocket.Conn]bool),
		stopCh:   make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ParticlesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer h.remove(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *ParticlesHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops broadcasting and disconnects all clients.
func (h *ParticlesHandler) Close() {
	h.once.Do(func() {
		close(h.stopCh)

		h.mu.Lock()
		defer h.mu.Unlock()
		for conn := range h.clients {
			conn.Close()
		}
	})
}

func (h *ParticlesHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// broadcast sends scene snapshots to all connected clients.
func (h *ParticlesHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		msg, err := json.Marshal(encodeSnapshot(h.source.Snapshot()))
		if err != nil {
			log.Printf("encode snapshot: %v", err)
			continue
		}

		h.mu.RLock()
		var dead []*websocket.Conn
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				dead = append(dead, conn)
			}
		}
		h.mu.RUnlock()

		for _, conn := range dead {
			conn.Close()
			h.remove(conn)
		}
	}
}

func encodeSnapshot(snap app.Snapshot) particlesMessage {
	msg := particlesMessage{
		State:     snap.State,
		Particles: make([]particle, len(snap.Transforms)),
		Timestamp: time.Now().UnixMilli(),
	}
	for i, tr := range snap.Transforms {
		p := particle{
			P: [3]float32{float32(tr.Position.X), float32(tr.Position.Y), float32(tr.Position.Z)},
			S: float32(tr.Scale),
		}
		if i < len(snap.Colors) {
			p.C = snap.Colors[i].Hex()
		}
		msg.Particles[i] = p
	}
	return msg
}
