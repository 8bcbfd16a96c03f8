// Package tracing records reactive runtime activity as OpenTelemetry spans.
//
// Every fan-out and every effect or invalidator run becomes a span. Because
// propagation is synchronous and depth-first, spans nest exactly like the
// calls: a signal's fan-out span is the parent of the runs it triggers, which
// are the parents of the fan-outs their writes trigger.
//
// The tracer comes from the global OpenTelemetry provider unless one is
// given with WithTracerProvider. Configure the provider in main():
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	rt := reactive.NewRuntime(reactive.WithObserver(tracing.New()))
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// Default tracer name.
const defaultTracerName = "github.com/vango-dev/reactive"

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer.
	TracerName string

	// Provider supplies the tracer. Default: otel.GetTracerProvider().
	Provider trace.TracerProvider

	// Root is the context new top-level spans are started under.
	Root context.Context

	// Filter determines which nodes to trace. Return true to trace.
	// If nil, all nodes are traced. Filtered nodes still nest their
	// children under the nearest traced ancestor.
	Filter func(node reactive.NodeInfo) bool
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = tp
	}
}

// WithRoot sets the parent context of top-level spans.
func WithRoot(ctx context.Context) Option {
	return func(c *Config) {
		c.Root = ctx
	}
}

// WithFilter sets a filter function for nodes.
func WithFilter(filter func(node reactive.NodeInfo) bool) Option {
	return func(c *Config) {
		c.Filter = filter
	}
}

// Observer turns observer callbacks into spans.
type Observer struct {
	tracer trace.Tracer
	root   context.Context
	filter func(reactive.NodeInfo) bool

	// frames mirrors the nesting of Begin/End calls. A nil span marks a
	// filtered node.
	frames []frame
}

type frame struct {
	ctx  context.Context
	span trace.Span
}

var _ reactive.Observer = (*Observer)(nil)

// New creates a tracing observer.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	if config.Root == nil {
		config.Root = context.Background()
	}
	return &Observer{
		tracer: config.Provider.Tracer(config.TracerName),
		root:   config.Root,
		filter: config.Filter,
	}
}

// Context returns the context of the innermost open span, for code that wants
// to parent its own spans under the current run.
func (o *Observer) Context() context.Context {
	if n := len(o.frames); n > 0 {
		return o.frames[n-1].ctx
	}
	return o.root
}

func (o *Observer) begin(name string, node reactive.NodeInfo, attrs ...attribute.KeyValue) {
	parent := o.Context()
	if o.filter != nil && !o.filter(node) {
		o.frames = append(o.frames, frame{ctx: parent})
		return
	}
	attrs = append(attrs,
		attribute.String("reactive.runtime", node.Runtime),
		attribute.Int64("reactive.handle", int64(node.Handle)),
		attribute.String("reactive.kind", node.Kind.String()),
	)
	if node.Name != "" {
		attrs = append(attrs, attribute.String("reactive.name", node.Name))
	}
	ctx, span := o.tracer.Start(parent, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	o.frames = append(o.frames, frame{ctx: ctx, span: span})
}

func (o *Observer) end(panicked bool) {
	n := len(o.frames)
	if n == 0 {
		return
	}
	f := o.frames[n-1]
	o.frames = o.frames[:n-1]
	if f.span == nil {
		return
	}
	if panicked {
		f.span.SetStatus(codes.Error, "panic")
	} else {
		f.span.SetStatus(codes.Ok, "")
	}
	f.span.End()
}

// BeginFanOut implements reactive.Observer.
func (o *Observer) BeginFanOut(source reactive.NodeInfo, dependents int) {
	o.begin("reactive.fanout", source, attribute.Int("reactive.dependents", dependents))
}

// EndFanOut implements reactive.Observer.
func (o *Observer) EndFanOut(_ reactive.NodeInfo, panicked bool) {
	o.end(panicked)
}

// BeginRun implements reactive.Observer.
func (o *Observer) BeginRun(dependent reactive.NodeInfo) {
	o.begin("reactive.run", dependent)
}

// EndRun implements reactive.Observer.
func (o *Observer) EndRun(_ reactive.NodeInfo, panicked bool) {
	o.end(panicked)
}

// Recomputed implements reactive.Observer. The event lands on the span of
// whichever run read the Computed.
func (o *Observer) Recomputed(computed reactive.NodeInfo) {
	o.event("reactive.recompute", computed)
}

// Reentered implements reactive.Observer.
func (o *Observer) Reentered(dependent reactive.NodeInfo) {
	o.event("reactive.reentrant_skip", dependent)
}

func (o *Observer) event(name string, node reactive.NodeInfo) {
	span := trace.SpanFromContext(o.Context())
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(
		attribute.Int64("reactive.handle", int64(node.Handle)),
		attribute.String("reactive.kind", node.Kind.String()),
		attribute.String("reactive.name", node.Name),
	))
}
