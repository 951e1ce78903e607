package guard

import (
	"context"

	"github.com/vango-dev/navguard/pkg/nav"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for navigation spans.
const defaultTracerName = "navguard"

// TracingConfig configures navigation tracing.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "navguard").
	TracerName string

	// Tracer overrides the tracer obtained from the global provider.
	Tracer trace.Tracer

	// AttributeExtractor adds custom attributes to each navigation span.
	AttributeExtractor func(to, from nav.Location) []attribute.KeyValue
}

// TracingOption configures navigation tracing.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracer sets the tracer directly.
func WithTracer(tracer trace.Tracer) TracingOption {
	return func(c *TracingConfig) {
		c.Tracer = tracer
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(to, from nav.Location) []attribute.KeyValue) TracingOption {
	return func(c *TracingConfig) {
		c.AttributeExtractor = extractor
	}
}

// Tracing creates one span per guarded navigation. A nil *Tracing records
// nothing.
//
// The tracer comes from the global OpenTelemetry provider unless WithTracer
// is given; configure the provider in main() before navigating:
//
//	otel.SetTracerProvider(tp)
//	g := guard.New(guard.Config{Tracing: guard.NewTracing()})
type Tracing struct {
	tracer  trace.Tracer
	extract func(to, from nav.Location) []attribute.KeyValue
}

// NewTracing creates navigation tracing.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Tracer == nil {
		config.Tracer = otel.Tracer(config.TracerName)
	}
	return &Tracing{tracer: config.Tracer, extract: config.AttributeExtractor}
}

func (t *Tracing) start(ctx context.Context, id string, to, from nav.Location) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	attrs := []attribute.KeyValue{
		attribute.String("navguard.navigation_id", id),
		attribute.String("navguard.to", to.FullPath),
		attribute.String("navguard.from", from.FullPath),
	}
	if to.Name != "" {
		attrs = append(attrs, attribute.String("navguard.route", to.Name))
	}
	if t.extract != nil {
		attrs = append(attrs, t.extract(to, from)...)
	}

	return t.tracer.Start(ctx, formatSpanName(to),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func (t *Tracing) end(span trace.Span, outcome string, dec *Decision, err error) {
	if t == nil {
		return
	}
	defer span.End()

	span.SetAttributes(attribute.String("navguard.outcome", outcome))
	if dec != nil {
		span.SetAttributes(attribute.Int("navguard.views", len(dec.Views)))
		if by := dec.Result.AbortedBy(); by != "" {
			span.SetAttributes(attribute.String("navguard.aborted_by", by))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// formatSpanName prefers the route name over the path to keep span names
// low-cardinality.
func formatSpanName(to nav.Location) string {
	if to.Name != "" {
		return "navguard " + to.Name
	}
	if to.Path == "" {
		return "navguard /"
	}
	return "navguard " + to.Path
}
