package devtools

import (
	"fmt"
	"slices"
	"testing"

	"github.com/vango-dev/reactive/pkg/reactive"
)

func drain(sub *Subscription) []Event {
	var events []Event
	for {
		select {
		case ev := <-sub.C:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestHubBroadcastsNestedEvents(t *testing.T) {
	hub := NewHub(64)
	rt := reactive.NewRuntime(reactive.WithObserver(hub))
	in := reactive.WithRuntime(rt)

	width := reactive.NewSignal(1, in, reactive.WithName("width"))
	area := reactive.NewComputed(func() int { return width.Get() * 2 }, in, reactive.WithName("area"))
	reactive.CreateEffect(func() reactive.Cleanup {
		_ = area.Get()
		return nil
	}, in, reactive.WithName("log"))

	sub := hub.Subscribe()
	defer sub.Unsubscribe()
	width.Set(2)

	var got []string
	for _, ev := range drain(sub) {
		got = append(got, fmt.Sprintf("%d %s %s", ev.Depth, ev.Type, ev.Name))
		if ev.Runtime != rt.ID() {
			t.Errorf("event runtime %q, want %q", ev.Runtime, rt.ID())
		}
	}
	want := []string{
		"0 fanout.begin width",
		"1 run.begin area",
		"2 fanout.begin area",
		"3 run.begin log",
		"4 recompute area",
		"3 run.end log",
		"2 fanout.end area",
		"1 run.end area",
		"0 fanout.end width",
	}
	if !slices.Equal(got, want) {
		t.Errorf("events:\n got  %v\n want %v", got, want)
	}
}

func TestHubSequenceNumbers(t *testing.T) {
	hub := NewHub(8)
	sub := hub.Subscribe()
	defer sub.Unsubscribe()

	hub.Recomputed(reactive.NodeInfo{Name: "a"})
	hub.Reentered(reactive.NodeInfo{Name: "b"})

	events := drain(sub)
	if len(events) != 2 || events[0].Seq != 1 || events[1].Seq != 2 {
		t.Fatalf("unexpected events %+v", events)
	}
	if events[1].Type != EventReentrant || events[0].Time.IsZero() {
		t.Errorf("unexpected event %+v", events[1])
	}
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewHub(2)
	slow := hub.Subscribe()
	defer slow.Unsubscribe()

	for i := 0; i < 5; i++ {
		hub.Recomputed(reactive.NodeInfo{Handle: reactive.Handle(i + 1)})
	}

	if got := len(drain(slow)); got != 2 {
		t.Errorf("expected 2 buffered events, got %d", got)
	}
	if slow.Dropped() != 3 || hub.Dropped() != 3 {
		t.Errorf("dropped = %d/%d, want 3", slow.Dropped(), hub.Dropped())
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(4)
	sub := hub.Subscribe()
	if hub.Len() != 1 {
		t.Fatalf("Len = %d, want 1", hub.Len())
	}

	sub.Unsubscribe()
	sub.Unsubscribe()

	if hub.Len() != 0 {
		t.Errorf("Len = %d, want 0", hub.Len())
	}
	if _, ok := <-sub.C; ok {
		t.Error("channel should be closed after Unsubscribe")
	}

	// Publishing with no subscribers must not panic.
	hub.BeginRun(reactive.NodeInfo{})
	hub.EndRun(reactive.NodeInfo{}, false)
}
