package transport

import (
	"log/slog"
	"sync"

	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/metrics"
)

// Hub tracks open panels and broadcasts host events to them.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[*conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{logger: logger, conns: make(map[*conn]struct{})}
}

// Notify logs n and shows it on every open panel.
func (h *Hub) Notify(n message.Notification) {
	if n.Level == message.LevelError {
		h.logger.Error(n.Value)
	} else {
		h.logger.Info(n.Value)
	}
	h.broadcast(n)
}

// Reload asks every open panel to rebuild itself.
func (h *Hub) Reload() {
	h.logger.Debug("reloading panels", "count", h.Count())
	h.broadcast(message.Reload{})
}

// Count returns the number of open panels.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) broadcast(resp message.Response) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		c.send(resp)
	}
}

func (h *Hub) add(c *conn) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	metrics.SetPanelConnections(n)
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	delete(h.conns, c)
	n := len(h.conns)
	h.mu.Unlock()
	metrics.SetPanelConnections(n)
}
