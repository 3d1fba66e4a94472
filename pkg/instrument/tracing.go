package instrument

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// Default tracer name for reactive engines.
const defaultTracerName = "reactive"

// TracingConfig configures the OpenTelemetry observer.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "reactive").
	TracerName string

	// Filter determines which runs to trace.
	// Return true to trace the run, false to skip.
	// If nil, all runs are traced.
	Filter func(ev reactive.RunEvent) bool

	// AttributeExtractor extracts custom attributes per run.
	// Called for each traced run.
	AttributeExtractor func(ev reactive.RunEvent) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TracingOption configures the OpenTelemetry observer.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithRunFilter sets a filter function for runs.
func WithRunFilter(filter func(ev reactive.RunEvent) bool) TracingOption {
	return func(c *TracingConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ev reactive.RunEvent) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultTracingConfig() TracingConfig {
	return TracingConfig{
		TracerName: defaultTracerName,
	}
}

// Tracing implements reactive.Observer by emitting one span per runner run.
// Runs are observed after they finish, so spans are created with explicit
// start and end timestamps covering the measured duration.
//
// The tracer comes from the global OpenTelemetry tracer provider. Configure
// it in your main() before wiring the observer:
//
//	tp := sdktrace.NewTracerProvider(
//	    sdktrace.WithBatcher(exporter),
//	)
//	otel.SetTracerProvider(tp)
//
//	e := reactive.NewEngine(reactive.WithObserver(instrument.NewTracing()))
type Tracing struct {
	config TracingConfig
}

// NewTracing creates an OpenTelemetry observer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := defaultTracingConfig()
	for _, opt := range opts {
		opt(&config)
	}
	config.tracer = otel.Tracer(config.TracerName)
	return &Tracing{config: config}
}

// ObserveTrack implements reactive.Observer. Individual dependency links
// are too fine-grained for spans and are not traced.
func (t *Tracing) ObserveTrack(ev reactive.TrackEvent) {}

// ObserveTrigger implements reactive.Observer. Wake-ups surface through
// the spans of the runs they cause.
func (t *Tracing) ObserveTrigger(ev reactive.TriggerEvent) {}

// ObserveRun implements reactive.Observer.
func (t *Tracing) ObserveRun(ev reactive.RunEvent) {
	if t.config.Filter != nil && !t.config.Filter(ev) {
		return
	}

	kind := "plain"
	spanName := "reactive.run"
	if ev.Runner.Derived() {
		kind = "derived"
		spanName = "reactive.derive"
	}

	attrs := []attribute.KeyValue{
		attribute.Int64("reactive.runner_id", int64(ev.Runner.ID())),
		attribute.String("reactive.runner_kind", kind),
	}
	if t.config.AttributeExtractor != nil {
		attrs = append(attrs, t.config.AttributeExtractor(ev)...)
	}

	end := time.Now()
	_, span := t.config.tracer.Start(
		context.Background(),
		spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(end.Add(-ev.Duration)),
	)

	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(end))
}
