package guard

import (
	"context"
	"sync"
	"testing"

	"github.com/vango-dev/navguard/pkg/middleware"
	"github.com/vango-dev/navguard/pkg/nav"
	"github.com/vango-dev/navguard/pkg/view"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// recordingTracer records span names and start attributes and otherwise
// behaves like the no-op tracer.
type recordingTracer struct {
	noop.Tracer

	mu    sync.Mutex
	names []string
	attrs []attribute.KeyValue
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	r.mu.Lock()
	r.names = append(r.names, name)
	r.attrs = append(r.attrs, cfg.Attributes()...)
	r.mu.Unlock()
	return r.Tracer.Start(ctx, name, opts...)
}

func (r *recordingTracer) attr(key string) (attribute.Value, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kv := range r.attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingStartsSpanPerNavigation(t *testing.T) {
	tracer := &recordingTracer{}
	g := New(Config{
		Tracing: NewTracing(
			WithTracer(tracer),
			WithAttributeExtractor(func(to, from nav.Location) []attribute.KeyValue {
				return []attribute.KeyValue{attribute.String("test.attr", "ok")}
			}),
		),
	})

	to := nav.MustParse("/admin").Matched("admin", nil)
	dec, err := g.BeforeEach(context.Background(), to, nav.Location{},
		[]view.Ref{view.Static(&view.Definition{Name: "admin"})})
	if err != nil {
		t.Fatal(err)
	}

	if len(tracer.names) != 1 || tracer.names[0] != "navguard admin" {
		t.Errorf("span names = %v, want [navguard admin]", tracer.names)
	}
	if v, ok := tracer.attr("navguard.navigation_id"); !ok || v.AsString() != dec.ID {
		t.Errorf("navigation_id attribute = %v, want %s", v.AsString(), dec.ID)
	}
	if v, ok := tracer.attr("test.attr"); !ok || v.AsString() != "ok" {
		t.Error("custom attribute missing")
	}
}

func TestTracingPropagatesSpanContext(t *testing.T) {
	var seen context.Context
	g := New(Config{
		Registry: middleware.Load([]middleware.Module{{
			ID: "probe",
			Handler: func(ctx context.Context, to, from nav.Location) (middleware.Result, error) {
				seen = ctx
				return middleware.Continue, nil
			},
		}}),
		Tracing: NewTracing(WithTracerName("test")),
	})

	_, err := g.BeforeEach(context.Background(), nav.MustParse("/"), nav.Location{},
		[]view.Ref{view.Static(&view.Definition{Name: "v", Middleware: middleware.Names("probe")})})
	if err != nil {
		t.Fatal(err)
	}
	if seen == nil || trace.SpanFromContext(seen) == nil {
		t.Fatal("middleware did not receive a span context")
	}
}

func TestTracingNilSafe(t *testing.T) {
	var tr *Tracing
	ctx, span := tr.start(context.Background(), "id", nav.Location{}, nav.Location{})
	if ctx == nil || span == nil {
		t.Fatal("nil Tracing returned nil context or span")
	}
	tr.end(span, OutcomeContinue, nil, nil)
}

func TestFormatSpanName(t *testing.T) {
	tests := []struct {
		to   nav.Location
		want string
	}{
		{nav.Location{Path: "/a", Name: "a"}, "navguard a"},
		{nav.Location{Path: "/a/b"}, "navguard /a/b"},
		{nav.Location{}, "navguard /"},
	}
	for _, tt := range tests {
		if got := formatSpanName(tt.to); got != tt.want {
			t.Errorf("formatSpanName(%+v) = %q, want %q", tt.to, got, tt.want)
		}
	}
}
