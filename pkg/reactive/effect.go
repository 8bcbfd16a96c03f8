package reactive

import (
	"time"

	"github.com/vango-dev/reactive/internal/errors"
)

// Cleanup is returned by an effect body to release what the run acquired.
// It is called before the next run and when the effect is disposed.
type Cleanup func()

// Effect is a reactive side effect that re-runs when its dependencies change.
//
// An Effect runs once when created. Every signal or computed it reads during
// a run becomes a dependency; the dependency set is rebuilt on each run, so
// reads behind conditions grow and shrink it over time. An Effect that reads
// nothing never runs again.
type Effect struct {
	rt     *Runtime
	handle Handle
	kind   Kind

	// fn is the effect body.
	fn func() Cleanup

	// cleanup is the cleanup returned by the last run.
	cleanup Cleanup

	// running guards against re-entrant execution.
	running bool

	// skipped is called when a re-entrant run is skipped.
	skipped func()

	disposed bool
}

// CreateEffect creates an effect and runs it immediately.
// A panic from the first run propagates to the caller; the effect stays
// registered and will run again when a dependency read before the panic
// changes.
//
// Example:
//
//	e := CreateEffect(func() Cleanup {
//	    fmt.Println("Count is:", count.Get())
//	    return func() { fmt.Println("Cleanup") }
//	})
//	defer e.Dispose()
func CreateEffect(fn func() Cleanup, opts ...Option) *Effect {
	if fn == nil {
		panic(errors.New("R002").WithDetail("CreateEffect requires a body"))
	}
	o := applyOptions(opts)
	e := newEffect(o.runtime, KindEffect, o.name, fn)
	e.execute()
	return e
}

func newEffect(rt *Runtime, kind Kind, name string, fn func() Cleanup) *Effect {
	e := &Effect{
		rt:   rt,
		kind: kind,
		fn:   fn,
	}
	e.handle = rt.register(kind, name, e.execute)
	rt.nodes[e.handle].state = func() (bool, bool) { return false, e.running }
	return e
}

// execute runs the effect body, re-collecting its dependencies.
func (e *Effect) execute() {
	if e.disposed {
		return
	}
	rt := e.rt
	if e.running {
		rt.reentered(e.handle)
		if e.skipped != nil {
			e.skipped()
		}
		return
	}

	e.running = true
	info := rt.info(e.handle)
	obs := rt.obs()
	obs.BeginRun(info)
	ok := false
	defer func() {
		e.running = false
		obs.EndRun(info, !ok)
	}()

	if rt.debug.LogEffectRuns && e.kind == KindEffect {
		start := time.Now()
		defer func() {
			rt.log().Debug("effect run",
				"name", info.Name,
				"handle", uint64(e.handle),
				"deps", len(rt.deps(e.handle)),
				"duration", time.Since(start))
		}()
	}

	if cleanup := e.cleanup; cleanup != nil {
		e.cleanup = nil
		cleanup()
	}

	rt.dropDeps(e.handle)
	next := evaluate(rt, e.handle, e.fn)

	if e.disposed {
		// Disposed from inside its own body; nothing else will run this
		// cleanup or drop the edges collected after Dispose.
		rt.release(e.handle)
		if next != nil {
			next()
		}
		ok = true
		return
	}
	e.cleanup = next
	ok = true
}

// Dispose runs the pending cleanup and unsubscribes the effect from all of
// its dependencies. Calling Dispose more than once is a no-op.
func (e *Effect) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	defer e.rt.release(e.handle)

	if cleanup := e.cleanup; cleanup != nil {
		e.cleanup = nil
		cleanup()
	}
}

// Disposer returns Dispose as a plain function.
func (e *Effect) Disposer() func() {
	return e.Dispose
}

// Handle returns the effect's subscription handle.
func (e *Effect) Handle() Handle {
	return e.handle
}

// Disposed reports whether Dispose has been called.
func (e *Effect) Disposed() bool {
	return e.disposed
}

func (rt *Runtime) deps(h Handle) []Handle {
	if n := rt.nodes[h]; n != nil {
		return n.deps
	}
	return nil
}

// reentered records a skipped re-entrant run.
func (rt *Runtime) reentered(h Handle) {
	info := rt.info(h)
	err := errors.New("R001").WithDetailf("%s %q (handle %d) was notified while its body was running", info.Kind, info.Name, h)
	rt.log().Warn("skipping re-entrant run",
		"code", err.Code,
		"kind", info.Kind.String(),
		"name", info.Name,
		"handle", uint64(h),
		"error", err)
	rt.obs().Reentered(info)
}
