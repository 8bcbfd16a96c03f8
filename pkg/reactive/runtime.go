package reactive

import (
	"log/slog"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
)

// Runtime owns a reactive graph and its tracking context.
//
// The tracking context is a single active-dependent slot plus a stack of the
// dependents it displaced. Effects and computeds push themselves while they
// evaluate so that reads can register against them; the previous dependent is
// restored on every exit path.
//
// A Runtime must be confined to a single goroutine.
type Runtime struct {
	id string

	// nodes is the arena of graph nodes, addressed by Handle.
	nodes map[Handle]*node
	next  Handle

	// active is the dependent currently collecting reads. 0 means untracked.
	active Handle

	// stack holds the dependents displaced by nested evaluations.
	stack []Handle

	logger   *slog.Logger
	observer Observer
	debug    DebugConfig
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		rt.logger = logger
	}
}

// WithObserver sets the observer notified of graph activity.
func WithObserver(o Observer) RuntimeOption {
	return func(rt *Runtime) {
		rt.observer = o
	}
}

// WithDebug sets the debug logging configuration.
func WithDebug(cfg DebugConfig) RuntimeOption {
	return func(rt *Runtime) {
		rt.debug = cfg
	}
}

// NewRuntime creates an empty Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		id:    ulid.Make().String(),
		nodes: make(map[Handle]*node),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var defaultRuntime atomic.Pointer[Runtime]

// Default returns the process-wide runtime used by the package-level
// constructors when no WithRuntime option is given.
func Default() *Runtime {
	if rt := defaultRuntime.Load(); rt != nil {
		return rt
	}
	defaultRuntime.CompareAndSwap(nil, NewRuntime())
	return defaultRuntime.Load()
}

// ID returns the runtime identifier used in logs and observer events.
func (rt *Runtime) ID() string {
	return rt.id
}

// SetLogger replaces the diagnostics logger. A nil logger falls back to
// slog.Default().
func (rt *Runtime) SetLogger(logger *slog.Logger) {
	rt.logger = logger
}

// SetObserver replaces the observer. A nil observer disables notifications.
func (rt *Runtime) SetObserver(o Observer) {
	rt.observer = o
}

// SetDebug replaces the debug logging configuration.
func (rt *Runtime) SetDebug(cfg DebugConfig) {
	rt.debug = cfg
}

// Len returns the number of live nodes in the graph.
func (rt *Runtime) Len() int {
	return len(rt.nodes)
}

// Tracking reports whether a dependent is currently collecting reads.
func (rt *Runtime) Tracking() bool {
	return rt.active != 0
}

// Untracked runs fn with no active dependent, so reads inside fn create no
// dependency edges.
func (rt *Runtime) Untracked(fn func()) {
	rt.push(0)
	defer rt.pop()
	fn()
}

func (rt *Runtime) log() *slog.Logger {
	if rt.logger != nil {
		return rt.logger
	}
	return slog.Default().With("component", "reactive", "runtime", rt.id)
}

func (rt *Runtime) obs() Observer {
	if rt.observer == nil {
		return NopObserver{}
	}
	return rt.observer
}

// push makes h the active dependent, saving the current one.
func (rt *Runtime) push(h Handle) {
	rt.stack = append(rt.stack, rt.active)
	rt.active = h
}

// pop restores the dependent saved by the matching push.
func (rt *Runtime) pop() {
	n := len(rt.stack) - 1
	rt.active = rt.stack[n]
	rt.stack = rt.stack[:n]
}

// evaluate runs fn with h as the active dependent.
func evaluate[T any](rt *Runtime, h Handle, fn func() T) T {
	rt.push(h)
	defer rt.pop()
	return fn()
}
