package reactive

import (
	"fmt"
	"slices"
	"time"
)

// Handle identifies a node in a Runtime's graph. It is the subscription
// identity used by Unsubscribe. The zero Handle is never assigned.
type Handle uint64

// Kind is the role of a graph node.
type Kind uint8

const (
	KindSignal Kind = iota + 1
	KindComputed
	KindEffect
	// KindInvalidator is the internal effect through which a Computed learns
	// that one of its dependencies changed.
	KindInvalidator
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindComputed:
		return "computed"
	case KindEffect:
		return "effect"
	case KindInvalidator:
		return "invalidator"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	for c := KindSignal; c <= KindInvalidator; c++ {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("reactive: unknown node kind %q", text)
}

// node is one arena entry. Sources fill subs, dependents fill deps; a
// Computed is represented by two nodes (a source and an invalidator).
type node struct {
	kind Kind
	name string

	// subs are the dependents to notify when this source changes.
	subs []Handle

	// deps are the sources this dependent read during its last evaluation.
	deps []Handle

	// run is invoked during a fan-out. Only dependents set it.
	run func()

	// owner links an invalidator to its Computed's source node.
	owner Handle

	// stale marks an invalidator's Computed dirty without notifying.
	stale func()

	// state reports dirty/running flags for snapshots.
	state func() (dirty, running bool)
}

func (rt *Runtime) register(kind Kind, name string, run func()) Handle {
	rt.next++
	h := rt.next
	rt.nodes[h] = &node{kind: kind, name: name, run: run}
	return h
}

func (rt *Runtime) info(h Handle) NodeInfo {
	info := NodeInfo{Runtime: rt.id, Handle: h}
	if n := rt.nodes[h]; n != nil {
		info.Kind = n.kind
		info.Name = n.name
	}
	return info
}

// track records a dependency of the active dependent on source.
func (rt *Runtime) track(source Handle) {
	if rt.active == 0 {
		return
	}
	rt.link(source, rt.active)
}

// link adds the edge source -> dependent in both directions. It is
// idempotent and ignores released nodes.
func (rt *Runtime) link(source, dependent Handle) {
	src, dep := rt.nodes[source], rt.nodes[dependent]
	if src == nil || dep == nil {
		return
	}
	if !slices.Contains(src.subs, dependent) {
		src.subs = append(src.subs, dependent)
	}
	if !slices.Contains(dep.deps, source) {
		dep.deps = append(dep.deps, source)
	}
}

// unlink removes the edge source -> dependent in both directions.
func (rt *Runtime) unlink(source, dependent Handle) {
	if src := rt.nodes[source]; src != nil {
		src.subs = remove(src.subs, dependent)
	}
	if dep := rt.nodes[dependent]; dep != nil {
		dep.deps = remove(dep.deps, source)
	}
}

// dropDeps unsubscribes dependent from every source it reads and clears
// its dependency set.
func (rt *Runtime) dropDeps(dependent Handle) {
	dep := rt.nodes[dependent]
	if dep == nil {
		return
	}
	for _, source := range dep.deps {
		if src := rt.nodes[source]; src != nil {
			src.subs = remove(src.subs, dependent)
		}
	}
	dep.deps = dep.deps[:0]
}

// dropSubs detaches every dependent of source.
func (rt *Runtime) dropSubs(source Handle) {
	src := rt.nodes[source]
	if src == nil {
		return
	}
	for _, dependent := range src.subs {
		if dep := rt.nodes[dependent]; dep != nil {
			dep.deps = remove(dep.deps, source)
		}
	}
	src.subs = nil
}

// release removes h and all of its edges from the arena.
func (rt *Runtime) release(h Handle) {
	rt.dropDeps(h)
	rt.dropSubs(h)
	delete(rt.nodes, h)
}

// fanOut invokes a snapshot of source's dependents, in subscription order.
// Dependents subscribed during the fan-out wait for the next one; dependents
// released during it are skipped.
func (rt *Runtime) fanOut(source Handle) {
	src := rt.nodes[source]
	if src == nil || len(src.subs) == 0 {
		return
	}
	snapshot := slices.Clone(src.subs)

	info := rt.info(source)
	obs := rt.obs()
	obs.BeginFanOut(info, len(snapshot))
	ok := false
	defer func() {
		obs.EndFanOut(info, !ok)
	}()

	if rt.debug.LogFanOuts {
		start := time.Now()
		defer func() {
			rt.log().Debug("fan-out",
				"kind", info.Kind.String(),
				"name", info.Name,
				"dependents", len(snapshot),
				"duration", time.Since(start))
		}()
	}

	for _, h := range snapshot {
		if n := rt.nodes[h]; n != nil && n.run != nil {
			n.run()
		}
	}
	ok = true
}

// markStale flags every Computed downstream of source as dirty before any
// dependent runs. A dependent that reads two computeds during a fan-out
// would otherwise see the one whose invalidator has not run yet as clean.
func (rt *Runtime) markStale(source Handle) {
	var seen map[Handle]bool
	var walk func(h Handle)
	walk = func(h Handle) {
		n := rt.nodes[h]
		if n == nil {
			return
		}
		for _, sub := range n.subs {
			dep := rt.nodes[sub]
			if dep == nil || dep.stale == nil || seen[sub] {
				continue
			}
			if seen == nil {
				seen = make(map[Handle]bool)
			}
			seen[sub] = true
			dep.stale()
			walk(dep.owner)
		}
	}
	walk(source)
}

func remove(list []Handle, h Handle) []Handle {
	if i := slices.Index(list, h); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}
