package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pmercer/marketwire/internal/model"
)

// Commander is the command surface inbound frames drive.
type Commander interface {
	SetMode(mode model.DeliveryMode)
	RequestNext() bool
	SetFilter(symbol string)
	AddSymbols(ctx context.Context, symbols []string) map[string]bool
	RemoveSymbol(ctx context.Context, symbol string)
	TogglePriority(ctx context.Context, symbol string) bool
}

// Config holds hub tuning.
type Config struct {
	WriteTimeout time.Duration // per-frame write deadline (default: 10s)
	PingInterval time.Duration // keepalive cadence (default: 30s)
	PongTimeout  time.Duration // read deadline past the last pong (default: 75s)
	SendBuffer   int           // frames buffered per client (default: 64)
	ReadLimit    int64         // max inbound frame bytes (default: 4096)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		PongTimeout:  75 * time.Second,
		SendBuffer:   64,
		ReadLimit:    4096,
	}
}

// Hub fans pipeline events out to WebSocket clients and routes their
// commands back to the engine.
type Hub struct {
	cfg    Config
	cmd    Commander
	logger *slog.Logger

	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*session]struct{}
	closed   bool
}

// NewHub creates a Hub. cmd may be nil for broadcast-only use.
func NewHub(cfg Config, cmd Commander, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cfg: cfg,
		cmd: cmd,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:   logger,
		sessions: make(map[*session]struct{}),
	}
}

// BindCommander installs the command target. Call before serving; the
// hub is usually constructed ahead of the engine it drives.
func (h *Hub) BindCommander(cmd Commander) {
	h.cmd = cmd
}

// ServeHTTP upgrades the request and runs the client session.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	s := &session{
		hub:  h,
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.sessions[s] = struct{}{}
	count := len(h.sessions)
	h.mu.Unlock()

	h.logger.Info("stream client connected", "remote", r.RemoteAddr, "clients", count)

	go s.writePump()
	s.readPump(r.Context())
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	sessions := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// AlertReady broadcasts a delivered alert. Implements the delivery
// sink.
func (h *Hub) AlertReady(item model.AlertItem) {
	h.broadcast(alertFrame{
		Type:      FrameAlertReady,
		ID:        item.ID.String(),
		Symbol:    item.Symbol,
		Headline:  item.Payload.Headline,
		Body:      item.Payload.Description,
		Verdict:   item.Payload.Verdict,
		Sources:   item.Payload.Sources,
		URL:       item.Payload.URL,
		Impact:    item.Payload.Impact,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// QueueDepthChanged broadcasts the new queue depth.
func (h *Hub) QueueDepthChanged(depth int) {
	h.broadcast(depthFrame{Type: FrameQueueDepth, Depth: depth})
}

// UniverseSynced broadcasts a completed listing sync.
func (h *Hub) UniverseSynced(symbolCount int) {
	h.broadcast(syncFrame{Type: FrameUniverseSync, Symbols: symbolCount})
}

// PriceUpdated broadcasts a live quote.
func (h *Hub) PriceUpdated(quote model.PriceQuote) {
	h.broadcast(priceFrame{
		Type:      FramePrice,
		Symbol:    quote.Symbol,
		Price:     quote.Price,
		PrevPrice: quote.PrevPrice,
	})
}

// broadcast marshals a frame once and fans it out. A client whose send
// buffer is full loses the frame, not the connection.
func (h *Hub) broadcast(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("frame marshal failed", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.sessions {
		select {
		case s.send <- data:
		default:
			h.logger.Warn("slow stream client, dropping frame")
		}
	}
}

func (h *Hub) remove(s *session) {
	h.mu.Lock()
	delete(h.sessions, s)
	h.mu.Unlock()
}

// handleCommand dispatches one inbound frame.
func (h *Hub) handleCommand(ctx context.Context, s *session, cmd commandFrame) {
	if h.cmd == nil {
		return
	}

	switch cmd.Type {
	case CommandSetMode:
		switch cmd.Mode {
		case string(model.ModeAuto):
			h.cmd.SetMode(model.ModeAuto)
		case string(model.ModeManual):
			h.cmd.SetMode(model.ModeManual)
		default:
			h.logger.Warn("unknown delivery mode", "mode", cmd.Mode)
		}
	case CommandRequestNext:
		h.cmd.RequestNext()
	case CommandSetFilter:
		h.cmd.SetFilter(cmd.Symbol)
	case CommandAddSymbols:
		results := h.cmd.AddSymbols(ctx, cmd.Symbols)
		s.enqueue(addResultFrame{Type: FrameAddResult, Results: results})
	case CommandRemoveSymbol:
		h.cmd.RemoveSymbol(ctx, cmd.Symbol)
	case CommandTogglePriority:
		h.cmd.TogglePriority(ctx, cmd.Symbol)
	default:
		h.logger.Warn("unknown command frame", "type", cmd.Type)
	}
}

// session is one connected client.
type session struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
		s.hub.remove(s)
	})
}

// enqueue queues a frame for this client only.
func (s *session) enqueue(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case s.send <- data:
	default:
	}
}

// readPump consumes inbound command frames until the client goes away.
func (s *session) readPump(ctx context.Context) {
	defer s.close()

	s.conn.SetReadLimit(s.hub.cfg.ReadLimit)
	s.conn.SetReadDeadline(time.Now().Add(s.hub.cfg.PongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.hub.cfg.PongTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.hub.logger.Warn("stream client read failed", "err", err)
				}
			}
			return
		}

		var cmd commandFrame
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.hub.logger.Warn("malformed command frame", "err", err)
			continue
		}
		s.hub.handleCommand(ctx, s, cmd)
	}
}

// writePump serializes all writes to the connection and keeps the
// client alive with pings.
func (s *session) writePump() {
	ticker := time.NewTicker(s.hub.cfg.PingInterval)
	defer ticker.Stop()
	defer s.close()

	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.hub.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(s.hub.cfg.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				return
			}
		}
	}
}
