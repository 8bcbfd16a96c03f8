package devtools

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// EventType identifies a devtools event.
type EventType string

const (
	EventFanOutBegin EventType = "fanout.begin"
	EventFanOutEnd   EventType = "fanout.end"
	EventRunBegin    EventType = "run.begin"
	EventRunEnd      EventType = "run.end"
	EventRecompute   EventType = "recompute"
	EventReentrant   EventType = "reentrant"
)

// Event is one observer callback, as sent to websocket clients.
type Event struct {
	Seq        uint64          `json:"seq"`
	Type       EventType       `json:"type"`
	Runtime    string          `json:"runtime"`
	Handle     reactive.Handle `json:"handle"`
	Kind       reactive.Kind   `json:"kind"`
	Name       string          `json:"name,omitempty"`
	Depth      int             `json:"depth"`
	Dependents int             `json:"dependents,omitempty"`
	Panicked   bool            `json:"panicked,omitempty"`
	Time       time.Time       `json:"time"`
}

// Hub is a reactive.Observer that broadcasts events to subscribers.
//
// Observer callbacks arrive on the runtime goroutine; Subscribe and
// Unsubscribe may be called from any goroutine. A subscriber whose buffer is
// full loses the event instead of stalling the runtime.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	buffer int

	seq     uint64
	depth   int
	dropped atomic.Uint64

	now func() time.Time
}

var _ reactive.Observer = (*Hub)(nil)

// Subscription receives events on C until Unsubscribe is called.
type Subscription struct {
	C <-chan Event

	ch      chan Event
	hub     *Hub
	dropped atomic.Uint64
}

// NewHub creates a hub whose subscribers buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		now:    time.Now,
	}
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() *Subscription {
	ch := make(chan Event, h.buffer)
	sub := &Subscription{C: ch, ch: ch, hub: h}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber and closes C. It is safe to call more
// than once.
func (s *Subscription) Unsubscribe() {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.ch)
}

// Dropped returns the number of events this subscriber lost.
func (s *Subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Dropped returns the number of events lost across all subscribers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

func (h *Hub) publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return
	}
	h.seq++
	ev.Seq = h.seq
	ev.Time = h.now()
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
		default:
			sub.dropped.Add(1)
			h.dropped.Add(1)
		}
	}
}

func newEvent(typ EventType, node reactive.NodeInfo, depth int) Event {
	return Event{
		Type:    typ,
		Runtime: node.Runtime,
		Handle:  node.Handle,
		Kind:    node.Kind,
		Name:    node.Name,
		Depth:   depth,
	}
}

// BeginFanOut implements reactive.Observer.
func (h *Hub) BeginFanOut(source reactive.NodeInfo, dependents int) {
	ev := newEvent(EventFanOutBegin, source, h.depth)
	ev.Dependents = dependents
	h.depth++
	h.publish(ev)
}

// EndFanOut implements reactive.Observer.
func (h *Hub) EndFanOut(source reactive.NodeInfo, panicked bool) {
	h.depth--
	ev := newEvent(EventFanOutEnd, source, h.depth)
	ev.Panicked = panicked
	h.publish(ev)
}

// BeginRun implements reactive.Observer.
func (h *Hub) BeginRun(dependent reactive.NodeInfo) {
	ev := newEvent(EventRunBegin, dependent, h.depth)
	h.depth++
	h.publish(ev)
}

// EndRun implements reactive.Observer.
func (h *Hub) EndRun(dependent reactive.NodeInfo, panicked bool) {
	h.depth--
	ev := newEvent(EventRunEnd, dependent, h.depth)
	ev.Panicked = panicked
	h.publish(ev)
}

// Recomputed implements reactive.Observer.
func (h *Hub) Recomputed(computed reactive.NodeInfo) {
	h.publish(newEvent(EventRecompute, computed, h.depth))
}

// Reentered implements reactive.Observer.
func (h *Hub) Reentered(dependent reactive.NodeInfo) {
	h.publish(newEvent(EventReentrant, dependent, h.depth))
}
