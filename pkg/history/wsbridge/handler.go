package wsbridge

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

// Config holds bridge settings.
type Config struct {
	// CheckOrigin validates the upgrade request origin.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// HelloTimeout bounds the wait for the client's hello frame.
	HelloTimeout time.Duration

	// WriteTimeout bounds each outbound frame.
	WriteTimeout time.Duration

	// MaxMessageSize caps inbound frames in bytes.
	MaxMessageSize int64

	// Rate and Burst limit inbound frames per connection.
	Rate  rate.Limit
	Burst int

	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		CheckOrigin:    SameOriginCheck,
		HelloTimeout:   5 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 4 * 1024,
		Rate:           20,
		Burst:          40,
	}
}

// SessionFunc runs one tab's navigation session. It should return once ctx
// is done; the connection is closed after it returns.
type SessionFunc func(ctx context.Context, c *Conn)

// Handler upgrades requests to bridge connections.
type Handler struct {
	cfg      Config
	upgrader websocket.Upgrader
	session  SessionFunc
	logger   *slog.Logger
	active   *atomic.Int64
}

// NewHandler creates a Handler. Zero fields in cfg take their defaults.
func NewHandler(cfg Config, session SessionFunc) *Handler {
	defaults := DefaultConfig()
	if cfg.CheckOrigin == nil {
		cfg.CheckOrigin = defaults.CheckOrigin
	}
	if cfg.HelloTimeout <= 0 {
		cfg.HelloTimeout = defaults.HelloTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.Rate <= 0 {
		cfg.Rate = defaults.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaults.Burst
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default().With("component", "wsbridge")
	}

	return &Handler{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
		session: session,
		logger:  cfg.Logger,
		active:  atomic.NewInt64(0),
	}
}

// Active returns the number of open bridge connections.
func (h *Handler) Active() int64 {
	return h.active.Load()
}

// ServeHTTP upgrades the request, waits for the hello frame and runs the
// session until either side goes away.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("bridge upgrade failed", "error", err)
		return
	}

	ws.SetReadLimit(h.cfg.MaxMessageSize)
	ws.SetReadDeadline(time.Now().Add(h.cfg.HelloTimeout))

	location, ok := h.readHello(ws)
	if !ok {
		ws.Close()
		return
	}
	ws.SetReadDeadline(time.Time{})

	c := newConn(ws, uuid.NewString(), location, h.cfg)
	h.active.Inc()
	defer h.active.Dec()
	c.logger.Info("bridge connected", "location", location)

	ctx, cancel := context.WithCancel(r.Context())
	go func() {
		c.readLoop()
		cancel()
	}()

	h.session(ctx, c)
	cancel()
	c.Close()
	c.logger.Info("bridge disconnected")
}

func (h *Handler) readHello(ws *websocket.Conn) (string, bool) {
	_, data, err := ws.ReadMessage()
	if err != nil {
		h.logger.Warn("bridge hello read failed", "error", err)
		return "", false
	}

	f, err := decodeFrame(data)
	if err != nil || f.Op != OpHello {
		h.rejectHello(ws, "expected hello frame")
		return "", false
	}
	if f.Path == "" {
		f.Path = "/"
	}
	if !strings.HasPrefix(f.Path, "/") {
		h.rejectHello(ws, "hello path must be absolute")
		return "", false
	}
	return f.Path, true
}

func (h *Handler) rejectHello(ws *websocket.Conn, reason string) {
	h.logger.Warn("bridge hello rejected", "reason", reason)
	deadline := time.Now().Add(h.cfg.WriteTimeout)
	ws.SetWriteDeadline(deadline)
	_ = ws.WriteJSON(Frame{Op: OpError, Error: reason})
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, deadline)
}

// SameOriginCheck accepts requests without an Origin header or whose
// origin host matches the request host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || r.Host == "" {
		return false
	}
	return u.Host == r.Host
}

// AllowOrigins extends SameOriginCheck with an allowlist of origins
// ("https://console.example.com"). "*" allows every origin.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		if _, ok := allowed["*"]; ok {
			return true
		}
		if SameOriginCheck(r) {
			return true
		}
		_, ok := allowed[r.Header.Get("Origin")]
		return ok
	}
}
