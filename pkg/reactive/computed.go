package reactive

import (
	"time"

	"github.com/vango-dev/reactive/internal/errors"
)

// Computed is a lazily recomputed, memoized derived value.
//
// A Computed is both a dependent (of whatever its derive function reads) and
// a source (for whatever reads it). Upstream changes reach it through an
// internal invalidator effect that only marks it dirty and notifies its own
// dependents; the derive function runs again on the next Get or Peek.
//
// Unlike Signal, a Computed does not compare the recomputed value with the
// previous one: every upstream change that reaches it is announced.
type Computed[T any] struct {
	rt *Runtime

	// source is the node readers subscribe to.
	source Handle

	// invalidator is the internal effect subscribed to the derive
	// function's dependencies. Its dependency set is the set tracked by the
	// last computation.
	invalidator *Effect

	derive func() T

	// value is the cached result of the last successful computation.
	value T

	// dirty means value may be stale. Starts true.
	dirty bool

	// computing detects a derive function reading its own Computed.
	computing bool

	disposed bool
}

// NewComputed creates a Computed. derive is not called until the first read.
//
// Example:
//
//	area := NewComputed(func() int { return width.Get() * scale.Get() })
func NewComputed[T any](derive func() T, opts ...Option) *Computed[T] {
	if derive == nil {
		panic(errors.New("R002").WithDetail("NewComputed requires a derive function"))
	}
	o := applyOptions(opts)
	rt := o.runtime

	c := &Computed[T]{
		rt:     rt,
		derive: derive,
		dirty:  true,
	}
	c.source = rt.register(KindComputed, o.name, nil)
	rt.nodes[c.source].state = func() (bool, bool) { return c.dirty, c.computing }

	c.invalidator = newEffect(rt, KindInvalidator, o.name, c.invalidate)
	// A change that arrives while the invalidator is mid fan-out cannot be
	// announced again, but the cached value must still be discarded.
	c.invalidator.skipped = c.markDirty
	inv := rt.nodes[c.invalidator.handle]
	inv.owner = c.source
	inv.stale = c.markDirty
	c.invalidator.execute()
	return c
}

func (c *Computed[T]) markDirty() {
	c.dirty = true
}

// invalidate is the invalidator's body. It never recomputes.
func (c *Computed[T]) invalidate() Cleanup {
	c.dirty = true
	c.rt.fanOut(c.source)
	return nil
}

// Get returns the value, recomputing it first if a dependency changed, and
// subscribes the active dependent to this Computed.
func (c *Computed[T]) Get() T {
	value := c.Peek()
	c.rt.track(c.source)
	return value
}

// Peek returns the value without subscribing. It still recomputes when the
// cached value is stale.
func (c *Computed[T]) Peek() T {
	if c.disposed {
		// No longer invalidated, so every read derives afresh.
		var value T
		c.rt.Untracked(func() { value = c.derive() })
		return value
	}
	if c.dirty {
		c.recompute()
	}
	return c.value
}

// recompute re-runs derive with the invalidator as the active dependent.
func (c *Computed[T]) recompute() {
	rt := c.rt
	if c.computing {
		info := rt.info(c.source)
		panic(errors.New("R003").WithDetailf("computed %q (handle %d)", info.Name, c.source))
	}
	c.computing = true
	defer func() { c.computing = false }()

	var start time.Time
	if rt.debug.LogRecomputes {
		start = time.Now()
	}

	h := c.invalidator.handle
	rt.dropDeps(h)
	value := evaluate(rt, h, c.derive)

	c.value = value
	c.dirty = false

	info := rt.info(c.source)
	if rt.debug.LogRecomputes {
		rt.log().Debug("computed recompute",
			"name", info.Name,
			"handle", uint64(c.source),
			"deps", len(rt.deps(h)),
			"duration", time.Since(start))
	}
	rt.obs().Recomputed(info)
}

// Dispose unsubscribes from all tracked dependencies and drops every
// dependent. Calling Dispose more than once is a no-op.
func (c *Computed[T]) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	c.invalidator.Dispose()
	c.rt.release(c.source)
}

// Handle returns the handle dependents subscribe to.
func (c *Computed[T]) Handle() Handle {
	return c.source
}

// Unsubscribe removes the dependent identified by h.
func (c *Computed[T]) Unsubscribe(h Handle) {
	c.rt.unlink(c.source, h)
}
