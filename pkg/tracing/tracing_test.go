package tracing

import (
	"context"
	"slices"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// recorder is a minimal in-memory TracerProvider.
type recorder struct {
	noop.TracerProvider
	spans []*recordedSpan
}

func (r *recorder) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{rec: r}
}

type recordingTracer struct {
	noop.Tracer
	rec *recorder
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	parent, _ := trace.SpanFromContext(ctx).(*recordedSpan)
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{
		name:   name,
		parent: parent,
		attrs:  cfg.Attributes(),
	}
	t.rec.spans = append(t.rec.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordedSpan struct {
	noop.Span
	name   string
	parent *recordedSpan
	attrs  []attribute.KeyValue
	events []string
	status codes.Code
	ended  bool
}

func (s *recordedSpan) IsRecording() bool { return !s.ended }

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) AddEvent(name string, _ ...trace.EventOption) {
	s.events = append(s.events, name)
}

func (s *recordedSpan) attr(key string) string {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

// label is "<span name>:<node name>".
func (s *recordedSpan) label() string {
	if s == nil {
		return ""
	}
	return s.name + ":" + s.attr("reactive.name")
}

func newTracedRuntime(t *testing.T, opts ...Option) (*recorder, *Observer, reactive.Option) {
	t.Helper()
	rec := &recorder{}
	obs := New(append([]Option{WithTracerProvider(rec)}, opts...)...)
	rt := reactive.NewRuntime(reactive.WithObserver(obs))
	return rec, obs, reactive.WithRuntime(rt)
}

func TestSpansNestDepthFirst(t *testing.T) {
	rec, obs, in := newTracedRuntime(t)

	width := reactive.NewSignal(1, in, reactive.WithName("width"))
	area := reactive.NewComputed(func() int { return width.Get() * 2 }, in, reactive.WithName("area"))
	reactive.CreateEffect(func() reactive.Cleanup {
		_ = area.Get()
		return nil
	}, in, reactive.WithName("log"))

	rec.spans = nil
	width.Set(2)

	var got []string
	for _, s := range rec.spans {
		got = append(got, s.parent.label()+" > "+s.label())
		if !s.ended {
			t.Errorf("span %s was not ended", s.label())
		}
		if s.status != codes.Ok {
			t.Errorf("span %s status = %v, want Ok", s.label(), s.status)
		}
	}
	want := []string{
		" > reactive.fanout:width",
		"reactive.fanout:width > reactive.run:area",
		"reactive.run:area > reactive.fanout:area",
		"reactive.fanout:area > reactive.run:log",
	}
	if !slices.Equal(got, want) {
		t.Errorf("spans:\n got  %v\n want %v", got, want)
	}

	run := rec.spans[3]
	if !slices.Equal(run.events, []string{"reactive.recompute"}) {
		t.Errorf("recompute event should land on the reading run, got %v", run.events)
	}
	if run.attr("reactive.kind") != "effect" {
		t.Errorf("reactive.kind = %q", run.attr("reactive.kind"))
	}
	if rec.spans[0].attr("reactive.dependents") != "1" {
		t.Errorf("reactive.dependents = %q", rec.spans[0].attr("reactive.dependents"))
	}
	if len(obs.frames) != 0 {
		t.Errorf("frames should be empty, got %d", len(obs.frames))
	}
}

func TestPanicMarksSpansAsErrors(t *testing.T) {
	rec, obs, in := newTracedRuntime(t)

	s := reactive.NewSignal(0, in, reactive.WithName("doc"))
	reactive.CreateEffect(func() reactive.Cleanup {
		if s.Get() == 1 {
			panic("layout failed")
		}
		return nil
	}, in, reactive.WithName("layout"))

	rec.spans = nil
	func() {
		defer func() { _ = recover() }()
		s.Set(1)
	}()

	if len(rec.spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(rec.spans))
	}
	for _, span := range rec.spans {
		if span.status != codes.Error || !span.ended {
			t.Errorf("span %s: status %v ended %t", span.label(), span.status, span.ended)
		}
	}
	if obs.Context() != context.Background() {
		t.Error("observer should return to the root context after unwinding")
	}
}

func TestFilterSkipsInvalidators(t *testing.T) {
	rec, _, in := newTracedRuntime(t, WithFilter(func(n reactive.NodeInfo) bool {
		return n.Kind != reactive.KindInvalidator
	}))

	x := reactive.NewSignal(1, in, reactive.WithName("x"))
	double := reactive.NewComputed(func() int { return x.Get() * 2 }, in, reactive.WithName("double"))
	reactive.CreateEffect(func() reactive.Cleanup {
		_ = double.Get()
		return nil
	}, in, reactive.WithName("print"))

	rec.spans = nil
	x.Set(2)

	var got []string
	for _, s := range rec.spans {
		got = append(got, s.parent.label()+" > "+s.label())
	}
	want := []string{
		" > reactive.fanout:x",
		"reactive.fanout:x > reactive.fanout:double",
		"reactive.fanout:double > reactive.run:print",
	}
	if !slices.Equal(got, want) {
		t.Errorf("spans:\n got  %v\n want %v", got, want)
	}
}

func TestReentrantSkipEvent(t *testing.T) {
	rec, _, in := newTracedRuntime(t)

	counter := reactive.NewSignal(0, in)
	reactive.CreateEffect(func() reactive.Cleanup {
		if n := counter.Get(); n < 3 {
			counter.Set(n + 1)
		}
		return nil
	}, in, reactive.WithName("bump"))

	// run:bump > fanout > (skipped run)
	fanout := rec.spans[1]
	if !slices.Equal(fanout.events, []string{"reactive.reentrant_skip"}) {
		t.Errorf("expected a reentrant event on the fan-out span, got %v", fanout.events)
	}
}

func TestRootContext(t *testing.T) {
	type key struct{}
	root := context.WithValue(context.Background(), key{}, "request")
	_, obs, in := newTracedRuntime(t, WithRoot(root))

	var inside context.Context
	reactive.CreateEffect(func() reactive.Cleanup {
		inside = obs.Context()
		return nil
	}, in)

	if inside.Value(key{}) != "request" {
		t.Error("span contexts should derive from the root context")
	}
	if trace.SpanFromContext(inside) == nil {
		t.Error("expected a span in the run context")
	}
}
