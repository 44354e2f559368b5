package notify

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
)

// Hub broadcasts statuses to connected WebSocket clients.
// New clients immediately receive the latest status.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	last   *Status
	closed bool
}

type subscriber struct {
	conn  *websocket.Conn
	queue *queue[Status]
}

// NewHub creates a Hub; nil logger uses slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// sameOrigin accepts requests without an Origin header and those whose Origin
// host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// Notify queues s for every client. It becomes the latest status unless it
// closes a superseded load, whose newer load already reported.
func (h *Hub) Notify(s Status) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !s.Superseded {
		h.last = &s
	}
	for sub := range h.subs {
		sub.queue.push(s)
	}
}

// Last returns the most recent status, or false before the first one.
func (h *Hub) Last() (Status, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.last == nil {
		return Status{}, false
	}
	return *h.last, true
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and streams statuses until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	sub := &subscriber{conn: conn, queue: newQueue[Status](8)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.subs[sub] = struct{}{}
	if h.last != nil {
		sub.queue.push(*h.last)
	}
	h.mu.Unlock()

	h.logger.Debug("status subscriber connected", "remote", r.RemoteAddr)

	go h.writeLoop(sub)
	h.readLoop(sub)
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for sub := range h.subs {
		sub.queue.close()
		delete(h.subs, sub)
	}
}

// readLoop discards client frames and unregisters on disconnect.
func (h *Hub) readLoop(sub *subscriber) {
	defer func() {
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		sub.queue.close()
		h.logger.Debug("status subscriber disconnected")
	}()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop sends queued statuses and periodic pings.
func (h *Hub) writeLoop(sub *subscriber) {
	defer sub.conn.Close()

	pings := time.NewTicker(pingInterval)
	defer pings.Stop()

	out := make(chan Status)
	go func() {
		defer close(out)
		for {
			s, ok := sub.queue.pop()
			if !ok {
				return
			}
			out <- s
		}
	}()

	for {
		select {
		case s, ok := <-out:
			if !ok {
				sub.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := sub.conn.WriteJSON(s); err != nil {
				h.logger.Debug("status write failed", "error", err)
				sub.queue.close()
				// Drain so the pump goroutine can exit.
				for range out {
				}
				return
			}
		case <-pings.C:
			if err := sub.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				sub.queue.close()
				for range out {
				}
				return
			}
		}
	}
}
