package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/vango-dev/navcore/pkg/history"
	"github.com/vango-dev/navcore/pkg/routepath"
	"github.com/vango-dev/navcore/pkg/router"
)

// History is the session history the controller keeps in sync.
// *history.Adapter implements it.
type History interface {
	Push(path string) error
	Replace(path string) error
	Location() string
	OnPopState(fn func(path string)) (cancel func())
}

// dispatchQueueSize bounds work queued for the event loop.
const dispatchQueueSize = 64

// notifyQueueSize bounds commits waiting for subscriber delivery.
const notifyQueueSize = 64

type result struct {
	route router.ResolvedRoute
	err   error
}

// flight is the navigation currently in Resolving.
type flight struct {
	req     Request
	from    *router.ResolvedRoute
	to      *router.ResolvedRoute
	ctx     context.Context
	cancel  context.CancelFunc
	started time.Time
	reply   chan result
}

// Controller orchestrates navigation and owns the navigation state.
type Controller struct {
	table        *router.Table
	history      History
	notFound     string
	maxRedirects int
	guards       []Guard
	viewGuards   map[string][]Guard
	observers    []Observer
	logger       *slog.Logger

	seq     *atomic.Uint64
	started *atomic.Bool
	closed  *atomic.Bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
	dispatchCh chan func()
	notifyCh   chan router.ResolvedRoute
	done       chan struct{}
	loopDone   chan struct{}
	stopPop    func()

	// current and inflight are owned by the event loop.
	current  *router.ResolvedRoute
	inflight *flight

	mu    sync.RWMutex
	state State

	subMu   sync.Mutex
	subs    map[int]func(router.ResolvedRoute)
	nextSub int

	// onStale runs on the loop whenever a stale guard result is discarded.
	onStale func(seq uint64)
}

// New creates a controller over an immutable route table.
// A nil history routes in memory only.
func New(table *router.Table, hist History, opts ...Option) (*Controller, error) {
	if table == nil {
		return nil, ErrNilTable
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		table:        table,
		history:      hist,
		notFound:     DefaultNotFoundView,
		maxRedirects: DefaultMaxRedirects,
		viewGuards:   make(map[string][]Guard),
		logger:       slog.Default().With("component", "nav"),
		seq:          atomic.NewUint64(0),
		started:      atomic.NewBool(false),
		closed:       atomic.NewBool(false),
		baseCtx:      ctx,
		baseCancel:   cancel,
		dispatchCh:   make(chan func(), dispatchQueueSize),
		notifyCh:     make(chan router.ResolvedRoute, notifyQueueSize),
		done:         make(chan struct{}),
		loopDone:     make(chan struct{}),
		subs:         make(map[int]func(router.ResolvedRoute)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.history == nil {
		c.history = history.NewAdapter(nil, history.WithLogger(c.logger))
	}
	return c, nil
}

// Start runs the event loop, subscribes to back/forward traversals and
// navigates to the history's current location without writing history.
//
// Start waits for the initial navigation. Its outcome is logged, not
// returned: a not-found or rejected initial location is a normal state.
func (c *Controller) Start(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.started.Swap(true) {
		return fmt.Errorf("nav: controller already started")
	}

	go c.loop()
	go c.notifyLoop()
	stop := c.history.OnPopState(c.handlePop)
	c.mu.Lock()
	if c.closed.Load() {
		c.mu.Unlock()
		stop()
		return ErrClosed
	}
	c.stopPop = stop
	c.mu.Unlock()

	route, err := c.submit(ctx, Request{Path: c.history.Location(), Trigger: TriggerInitial})
	if errors.Is(err, ErrClosed) || ctx.Err() != nil {
		return err
	}
	c.logger.Info("initial navigation",
		"path", route.Path,
		"view", route.ViewID,
		"outcome", OutcomeOf(err).String())
	return nil
}

// Close stops the controller. An in-flight navigation is cancelled.
func (c *Controller) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.mu.Lock()
	stop := c.stopPop
	c.stopPop = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
	c.baseCancel()
	close(c.done)
	if c.started.Load() {
		<-c.loopDone
	}
}

// Navigate performs a programmatic navigation and waits for its terminal
// state.
//
// It returns the committed route and nil; the not-found route and a
// *router.NoMatchError; or the unchanged current route and a
// *CancelledError. If ctx ends first the navigation is cancelled and
// ctx.Err() is returned.
func (c *Controller) Navigate(ctx context.Context, path string, opts ...NavigateOption) (router.ResolvedRoute, error) {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}
	return c.submit(ctx, Request{
		Path:    path,
		Replace: options.Replace,
		Trigger: TriggerProgrammatic,
	})
}

// NavigateTo navigates to a named route.
func (c *Controller) NavigateTo(ctx context.Context, name string, params map[string]string, opts ...NavigateOption) (router.ResolvedRoute, error) {
	path, err := c.table.Build(name, params)
	if err != nil {
		return c.currentRoute(), err
	}
	return c.Navigate(ctx, path, opts...)
}

// State returns a snapshot of the navigation state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := State{Current: cloneRoute(c.state.Current)}
	if c.state.Pending != nil {
		req := *c.state.Pending
		s.Pending = &req
	}
	return s
}

// Current returns the committed route.
func (c *Controller) Current() (router.ResolvedRoute, bool) {
	s := c.State()
	if s.Current == nil {
		return router.ResolvedRoute{}, false
	}
	return *s.Current, true
}

// Table returns the route table.
func (c *Controller) Table() *router.Table {
	return c.table
}

// NotFoundView returns the view committed when no route matches.
func (c *Controller) NotFoundView() string {
	return c.notFound
}

// Subscribe registers fn for every committed route, in commit order.
// fn runs on a dedicated goroutine, never on the event loop, so it may
// call Navigate.
func (c *Controller) Subscribe(fn func(router.ResolvedRoute)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// submit queues a request and waits for its result.
func (c *Controller) submit(ctx context.Context, req Request) (router.ResolvedRoute, error) {
	if !c.started.Load() {
		return router.ResolvedRoute{}, ErrNotStarted
	}

	req.ID = uuid.NewString()
	rep := make(chan result, 1)
	if !c.dispatch(func() { c.begin(req, rep) }) {
		return c.currentRoute(), ErrClosed
	}

	select {
	case res := <-rep:
		return res.route, res.err
	case <-ctx.Done():
		c.dispatch(func() { c.abandon(rep, ctx.Err()) })
		return c.currentRoute(), ctx.Err()
	case <-c.done:
		return c.currentRoute(), ErrClosed
	}
}

// dispatch queues fn to run on the event loop.
func (c *Controller) dispatch(fn func()) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.dispatchCh <- fn:
		return true
	case <-c.done:
		return false
	}
}

func (c *Controller) handlePop(path string) {
	c.dispatch(func() {
		c.begin(Request{ID: uuid.NewString(), Path: path, Trigger: TriggerPop}, nil)
	})
}

func (c *Controller) loop() {
	defer close(c.loopDone)
	for {
		select {
		case fn := <-c.dispatchCh:
			c.safeRun(fn)
		case <-c.done:
			if f := c.inflight; f != nil {
				c.cancelFlight(f, ErrClosed, false)
			}
			return
		}
	}
}

// safeRun runs loop work with panic recovery.
func (c *Controller) safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("navigation loop panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}

// begin moves a request into Resolving, superseding any in-flight one.
func (c *Controller) begin(req Request, rep chan result) {
	req.Seq = c.seq.Inc()
	if prev := c.inflight; prev != nil {
		c.cancelFlight(prev, ErrSuperseded, false)
	}

	f := &flight{
		req:     req,
		from:    cloneRoute(c.current),
		ctx:     c.baseCtx,
		started: time.Now(),
		reply:   rep,
	}
	for _, o := range c.observers {
		f.ctx = o.NavigationStart(f.ctx, req)
	}
	c.inflight = f
	c.publish()

	c.logger.Debug("navigation started",
		"id", req.ID,
		"seq", req.Seq,
		"path", req.Path,
		"trigger", req.Trigger.String())

	if err := routepath.ValidateNavPath(req.Path); err != nil {
		c.cancelFlight(f, err, true)
		return
	}

	to, err := c.table.Resolve(req.Path)
	if err != nil {
		_, query := routepath.SplitPathAndQuery(req.Path)
		f.to = &router.ResolvedRoute{
			ViewID: c.notFound,
			Params: map[string]string{},
			Path:   req.Path,
			Query:  query,
		}
		c.commit(f, OutcomeFailed, err)
		return
	}
	f.to = &to

	guards := c.guardsFor(to.ViewID)
	if len(guards) == 0 {
		c.commit(f, OutcomeCommitted, nil)
		return
	}

	gctx, cancel := context.WithCancel(f.ctx)
	f.cancel = cancel
	seq := req.Seq
	target := to.Clone()
	from := cloneRoute(f.from)
	go func() {
		d, err := runGuards(gctx, guards, target, from)
		c.dispatch(func() { c.guardsDone(seq, d, err) })
	}()
}

// guardsDone applies a guard decision unless its request was superseded.
func (c *Controller) guardsDone(seq uint64, d Decision, err error) {
	f := c.inflight
	if f == nil || f.req.Seq != seq {
		c.logger.Debug("discarding stale guard result", "seq", seq)
		if c.onStale != nil {
			c.onStale(seq)
		}
		return
	}

	switch {
	case err != nil:
		c.logger.Warn("guard failed", "path", f.req.Path, "error", err)
		c.cancelFlight(f, err, true)
	case d.kind == decisionReject:
		c.cancelFlight(f, &GuardRejection{ViewID: f.to.ViewID, Reason: d.reason}, true)
	case d.kind == decisionRedirect:
		c.redirect(f, d.target)
	default:
		c.commit(f, OutcomeCommitted, nil)
	}
}

// redirect cancels f and starts a navigation to target that inherits f's
// caller.
func (c *Controller) redirect(f *flight, target string) {
	if f.req.Redirects >= c.maxRedirects {
		c.cancelFlight(f, ErrRedirectLimit, true)
		return
	}

	rep := f.reply
	f.reply = nil
	c.cancelFlight(f, &RedirectError{To: target}, false)

	// Redirects out of the initial location or a traversal overwrite the
	// entry the browser is on.
	popped := f.req.Trigger == TriggerPop || f.req.popped
	c.begin(Request{
		ID:        uuid.NewString(),
		Path:      target,
		Replace:   f.req.Replace || f.req.Trigger == TriggerInitial || popped,
		Trigger:   TriggerProgrammatic,
		Redirects: f.req.Redirects + 1,
		popped:    popped,
	}, rep)
}

// abandon cancels the in-flight navigation if it still belongs to rep.
func (c *Controller) abandon(rep chan result, cause error) {
	f := c.inflight
	if f == nil || f.reply != rep {
		return
	}
	f.reply = nil
	c.cancelFlight(f, cause, true)
}

// commit makes f's target the current route.
func (c *Controller) commit(f *flight, outcome Outcome, navErr error) {
	if f.req.Seq != c.seq.Load() {
		c.cancelFlight(f, ErrSuperseded, false)
		return
	}
	if f.cancel != nil {
		f.cancel()
	}

	prev := c.current
	route := f.to.Clone()
	c.current = &route
	c.inflight = nil

	// Only programmatic navigations write history; a pop already moved it.
	// Re-navigating to the current path replaces rather than duplicating
	// the entry.
	if f.req.Trigger == TriggerProgrammatic {
		if f.req.Replace || (prev != nil && prev.Path == route.Path) {
			_ = c.history.Replace(route.Path)
		} else {
			_ = c.history.Push(route.Path)
		}
	}
	c.publish()

	select {
	case c.notifyCh <- route.Clone():
	case <-c.done:
	}

	if outcome == OutcomeFailed {
		c.logger.Info("no route matched, showing not-found view",
			"path", route.Path,
			"view", route.ViewID,
			"seq", f.req.Seq)
	} else {
		c.logger.Info("navigation committed",
			"path", route.Path,
			"view", route.ViewID,
			"seq", f.req.Seq,
			"trigger", f.req.Trigger.String())
	}

	c.end(f, outcome, navErr)
	c.reply(f, route.Clone(), navErr)
}

// cancelFlight ends f in Cancelled. With repush, a cancelled pop
// navigation, or a redirect out of one, pushes the current path back so
// the address bar matches the rendered view again.
func (c *Controller) cancelFlight(f *flight, cause error, repush bool) {
	if f.cancel != nil {
		f.cancel()
	}
	if c.inflight == f {
		c.inflight = nil
	}
	if repush && (f.req.Trigger == TriggerPop || f.req.popped) && c.current != nil {
		_ = c.history.Push(c.current.Path)
	}
	c.publish()

	err := &CancelledError{Path: f.req.Path, Cause: cause}
	c.logger.Info("navigation cancelled",
		"path", f.req.Path,
		"seq", f.req.Seq,
		"trigger", f.req.Trigger.String(),
		"cause", cause)

	c.end(f, OutcomeCancelled, err)
	c.reply(f, c.currentRoute(), err)
}

func (c *Controller) end(f *flight, outcome Outcome, err error) {
	t := Transition{
		Request:  f.req,
		From:     cloneRoute(f.from),
		To:       cloneRoute(f.to),
		Outcome:  outcome,
		Err:      err,
		Duration: time.Since(f.started),
	}
	for i := len(c.observers) - 1; i >= 0; i-- {
		c.observers[i].NavigationEnd(f.ctx, t)
	}
}

func (c *Controller) reply(f *flight, route router.ResolvedRoute, err error) {
	if f.reply == nil {
		return
	}
	f.reply <- result{route: route, err: err}
	f.reply = nil
}

// publish refreshes the reader snapshot from loop-owned state.
func (c *Controller) publish() {
	s := State{Current: cloneRoute(c.current)}
	if c.inflight != nil {
		req := c.inflight.req
		s.Pending = &req
	}
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) currentRoute() router.ResolvedRoute {
	route, _ := c.Current()
	return route
}

func (c *Controller) guardsFor(viewID string) []Guard {
	scoped := c.viewGuards[viewID]
	if len(c.guards) == 0 && len(scoped) == 0 {
		return nil
	}
	out := make([]Guard, 0, len(c.guards)+len(scoped))
	out = append(out, c.guards...)
	return append(out, scoped...)
}

func (c *Controller) notifyLoop() {
	for {
		select {
		case route := <-c.notifyCh:
			c.deliver(route)
		case <-c.done:
			return
		}
	}
}

func (c *Controller) deliver(route router.ResolvedRoute) {
	c.subMu.Lock()
	fns := make([]func(router.ResolvedRoute), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("subscriber panic", "panic", r, "path", route.Path)
				}
			}()
			fn(route.Clone())
		}()
	}
}

// runGuards runs guards in order until one does not allow.
func runGuards(ctx context.Context, guards []Guard, to router.ResolvedRoute, from *router.ResolvedRoute) (d Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			d = Decision{}
			err = fmt.Errorf("guard panic: %v", r)
		}
	}()

	for _, g := range guards {
		if cerr := ctx.Err(); cerr != nil {
			return Decision{}, cerr
		}
		dec, gerr := g.Check(ctx, to.Clone(), cloneRoute(from))
		if gerr != nil {
			return dec, gerr
		}
		if !dec.Allowed() {
			return dec, nil
		}
	}
	return Allow(), nil
}

func cloneRoute(r *router.ResolvedRoute) *router.ResolvedRoute {
	if r == nil {
		return nil
	}
	out := r.Clone()
	return &out
}
