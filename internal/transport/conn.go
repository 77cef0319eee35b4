package transport

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rpggio/filetracker/internal/message"
	"github.com/rpggio/filetracker/internal/metrics"
	"github.com/rpggio/filetracker/internal/panel"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var connSeq atomic.Uint64

// conn is one open panel. The read loop owns the panel state; the write
// loop owns the socket writes.
type conn struct {
	ws     *websocket.Conn
	out    chan []byte
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	// The request context ends with the upgrade.
	ctx, cancel := context.WithCancel(context.Background())
	c := &conn{
		ws:     ws,
		out:    make(chan []byte, sendBuffer),
		ctx:    ctx,
		cancel: cancel,
		logger: s.logger.With("conn", connSeq.Add(1)),
	}

	s.hub.add(c)
	c.logger.Debug("panel connected", "remote_addr", r.RemoteAddr)

	go c.writePump()
	go s.readPump(c)
}

// send queues resp for the socket; it drops the frame when the panel is not
// keeping up.
func (c *conn) send(resp message.Response) {
	data, err := message.EncodeResponse(resp)
	if err != nil {
		c.logger.Error("encode response", "type", resp.Type(), "error", err)
		return
	}
	select {
	case c.out <- data:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("panel backpressure, dropping frame", "type", resp.Type())
	}
}

func (s *Server) readPump(c *conn) {
	defer func() {
		s.hub.remove(c)
		c.cancel()
		c.ws.Close()
		c.logger.Debug("panel disconnected")
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	state := panel.NewState()
	s.process(c, state, panel.MountRequests())

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		req, err := message.DecodeRequest(data)
		if err != nil {
			metrics.RecordMessageFailure("invalid")
			c.logger.Warn("dropping panel message", "error", err)
			continue
		}
		s.process(c, state, []message.Request{req})
	}
}

// process dispatches queue in order, forwards every response to the panel,
// folds it into state and dispatches the follow-ups the state asks for.
// The panel is re-rendered once the queue drains.
func (s *Server) process(c *conn, state *panel.State, queue []message.Request) {
	for len(queue) > 0 {
		req := queue[0]
		queue = queue[1:]
		s.handler.Handle(c.ctx, req, func(resp message.Response) {
			c.send(resp)
			queue = append(queue, state.Apply(resp)...)
		})
	}

	html, err := panel.Render(state.View())
	if err != nil {
		c.logger.Error("render panel", "error", err)
		return
	}
	c.send(message.Render{HTML: html})
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.cancel()
		c.ws.Close()
	}()

	for {
		select {
		case data := <-c.out:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
