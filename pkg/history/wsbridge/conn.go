package wsbridge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"

	"github.com/vango-dev/navcore/pkg/router"
)

// ErrConnClosed is returned when writing to a closed bridge.
var ErrConnClosed = errors.New("wsbridge: connection closed")

// Conn is the session history of one browser tab. It implements
// history.Backend.
type Conn struct {
	ws      *websocket.Conn
	id      string
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	location  string
	listeners map[int]func(string)
	nextID    int

	closed  *atomic.Bool
	dropped *atomic.Int64
	done    chan struct{}
}

func newConn(ws *websocket.Conn, id, location string, cfg Config) *Conn {
	return &Conn{
		ws:        ws,
		id:        id,
		limiter:   rate.NewLimiter(cfg.Rate, cfg.Burst),
		timeout:   cfg.WriteTimeout,
		logger:    cfg.Logger.With("conn", id),
		location:  location,
		listeners: make(map[int]func(string)),
		closed:    atomic.NewBool(false),
		dropped:   atomic.NewInt64(0),
		done:      make(chan struct{}),
	}
}

// ID identifies the connection in logs.
func (c *Conn) ID() string {
	return c.id
}

// Location returns the tab's current location.
func (c *Conn) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// PushState asks the tab to push location.
func (c *Conn) PushState(location string) error {
	c.setLocation(location)
	return c.send(Frame{Op: OpPush, Path: location})
}

// ReplaceState asks the tab to replace its current entry.
func (c *Conn) ReplaceState(location string) error {
	c.setLocation(location)
	return c.send(Frame{Op: OpReplace, Path: location})
}

// Listen registers fn for pop frames.
func (c *Conn) Listen(fn func(location string)) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Render tells the tab which view to show.
func (c *Conn) Render(route router.ResolvedRoute, title string) error {
	return c.send(Frame{
		Op:     OpRender,
		Path:   route.Path,
		View:   route.ViewID,
		Params: route.Params,
		Title:  title,
	})
}

// Dropped returns the number of inbound frames discarded by the rate
// limiter.
func (c *Conn) Dropped() int64 {
	return c.dropped.Load()
}

// Done is closed when the connection ends.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Close closes the socket. It is safe to call more than once.
func (c *Conn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	close(c.done)

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.timeout))
	c.writeMu.Unlock()

	return c.ws.Close()
}

func (c *Conn) setLocation(location string) {
	c.mu.Lock()
	c.location = location
	c.mu.Unlock()
}

func (c *Conn) send(f Frame) error {
	if c.closed.Load() {
		return ErrConnClosed
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Warn("bridge write failed", "op", f.Op, "error", err)
		return err
	}
	return nil
}

// readLoop handles client frames until the socket fails.
func (c *Conn) readLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !c.closed.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug("bridge read ended", "error", err)
			}
			return
		}

		if !c.limiter.Allow() {
			n := c.dropped.Inc()
			c.logger.Warn("bridge frame dropped, rate limit exceeded", "dropped", n)
			continue
		}

		f, err := decodeFrame(data)
		if err != nil {
			c.logger.Warn("bad bridge frame", "error", err)
			continue
		}

		switch f.Op {
		case OpPop:
			if !strings.HasPrefix(f.Path, "/") {
				c.logger.Warn("pop frame without absolute path", "path", f.Path)
				continue
			}
			c.pop(f.Path)
		default:
			c.logger.Warn("unexpected bridge frame", "op", f.Op)
		}
	}
}

// pop records a traversal and notifies listeners outside the lock.
func (c *Conn) pop(location string) {
	c.mu.Lock()
	c.location = location
	fns := make([]func(string), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(location)
	}
}
