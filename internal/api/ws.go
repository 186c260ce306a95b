package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"deltaoption/internal/domain/pricefeed"
	"deltaoption/internal/events"
	"deltaoption/pkg/logger"
)

const wsWriteTimeout = 5 * time.Second

// PriceHub fans collected price ticks out to websocket subscribers.
// It implements the price feed broadcaster.
type PriceHub struct {
	upgrader websocket.Upgrader
	log      *logger.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewPriceHub creates a new websocket price hub
func NewPriceHub(log *logger.Logger) *PriceHub {
	return &PriceHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:   log,
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS serves GET /ws/prices
func (h *PriceHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("Websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	subscribers := len(h.conns)
	h.mu.Unlock()

	h.log.Infow("Price stream subscriber connected",
		"remote", conn.RemoteAddr().String(),
		"subscribers", subscribers,
	)

	// Drain incoming frames until the peer goes away.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// BroadcastTick pushes one tick to every subscriber, dropping any
// connection that fails to accept the write in time
func (h *PriceHub) BroadcastTick(tick pricefeed.Tick) {
	event := events.NewPriceTickEvent(tick)

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			h.drop(conn)
			continue
		}
		if err := conn.WriteJSON(event); err != nil {
			h.drop(conn)
		}
	}
}

// Close disconnects every subscriber
func (h *PriceHub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

func (h *PriceHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()

	if ok {
		_ = conn.Close()
		h.log.Debugw("Price stream subscriber disconnected",
			"remote", conn.RemoteAddr().String(),
		)
	}
}
