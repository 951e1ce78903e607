package middleware

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/vango-dev/navguard/internal/errors"
	"github.com/vango-dev/navguard/pkg/nav"
)

// recorder builds handlers that log their invocation.
type recorder struct {
	calls []string
}

func (r *recorder) cont(name string) Handler {
	return func(ctx context.Context, to, from nav.Location) (Result, error) {
		r.calls = append(r.calls, name)
		return Continue, nil
	}
}

func (r *recorder) redirect(name string, payload any) Handler {
	return func(ctx context.Context, to, from nav.Location) (Result, error) {
		r.calls = append(r.calls, name)
		return Redirect(payload), nil
	}
}

func TestName(t *testing.T) {
	tests := map[string]string{
		"./check-auth.js": "check-auth",
		"./locale.go":     "locale",
		"locale":          "locale",
		"./rate.limit":    "rate.limit",
		"admin/guard.ts":  "admin/guard",
	}
	for id, want := range tests {
		if got := Name(id); got != want {
			t.Errorf("Name(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	rec := &recorder{}
	reg := Load([]Module{
		{ID: "./locale.js", Handler: rec.cont("first")},
		{ID: "./feature.go", Handler: rec.cont("feature")},
		{ID: "./broken.js"},
		{ID: "./locale.go", Handler: rec.cont("second")},
	})

	if reg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", reg.Len())
	}
	names := reg.Names()
	if fmt.Sprint(names) != "[broken feature locale]" {
		t.Errorf("Names() = %v", names)
	}

	h, ok := reg.Lookup("locale")
	if !ok || h == nil {
		t.Fatal("locale should be registered")
	}
	h(context.Background(), nav.Location{}, nav.Location{})
	if len(rec.calls) != 1 || rec.calls[0] != "second" {
		t.Errorf("later registration should win, calls = %v", rec.calls)
	}

	if h, ok := reg.Lookup("broken"); !ok || h != nil {
		t.Error("broken should be registered without a handler")
	}
	if _, ok := reg.Lookup("missing"); ok {
		t.Error("missing should not be registered")
	}
}

func TestNilRegistry(t *testing.T) {
	var reg *Registry
	if _, ok := reg.Lookup("x"); ok || reg.Len() != 0 || reg.Names() != nil {
		t.Error("nil registry should be empty")
	}
}

func TestCollect(t *testing.T) {
	global := Names("locale", "check-auth")
	outer := Names("admin")
	inner := Names("feature", "audit")

	seq := Collect(global, outer, nil, inner)

	var got []string
	for _, ref := range seq {
		got = append(got, ref.String())
	}
	want := "[locale check-auth admin feature audit]"
	if fmt.Sprint(got) != want {
		t.Errorf("Collect = %v, want %s", got, want)
	}

	global[0] = Named("changed")
	if seq[0].Name != "locale" {
		t.Error("Collect must copy the global slice")
	}
}

func TestRunAllContinue(t *testing.T) {
	rec := &recorder{}
	reg := Load([]Module{
		{ID: "a", Handler: rec.cont("a")},
		{ID: "b", Handler: rec.cont("b")},
		{ID: "c", Handler: rec.cont("c")},
	})

	aborts := 0
	ex := NewExecutor(reg, WithAbortHook(func(nav.Location, Result) { aborts++ }))

	res, err := ex.Run(context.Background(), Names("a", "b", "c"), nav.MustParse("/x"), nav.Location{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if res.Aborted() || res.Payload() != nil {
		t.Errorf("Run = %+v, want Continue", res)
	}
	if fmt.Sprint(rec.calls) != "[a b c]" {
		t.Errorf("calls = %v, want [a b c]", rec.calls)
	}
	if aborts != 0 {
		t.Errorf("abort hook fired %d times", aborts)
	}
}

func TestRunEmptySequence(t *testing.T) {
	res, err := NewExecutor(Load(nil)).Run(context.Background(), nil, nav.Location{}, nav.Location{})
	if err != nil || res.Aborted() {
		t.Errorf("Run(nil) = %+v, %v", res, err)
	}
}

func TestRunShortCircuit(t *testing.T) {
	rec := &recorder{}
	reg := Load([]Module{
		{ID: "a", Handler: rec.cont("a")},
		{ID: "b", Handler: rec.redirect("b", "/login")},
		{ID: "c", Handler: rec.cont("c")},
	})

	var hookPayload any
	hookCalls := 0
	ex := NewExecutor(reg, WithAbortHook(func(to nav.Location, r Result) {
		hookCalls++
		hookPayload = r.Payload()
		if len(rec.calls) != 2 {
			t.Errorf("hook should fire right after the aborting middleware, calls = %v", rec.calls)
		}
	}))

	res, err := ex.Run(context.Background(), Names("a", "b", "c"), nav.MustParse("/admin"), nav.Location{})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !res.Aborted() || res.Payload() != "/login" {
		t.Errorf("Run = %+v, want Redirect(/login)", res)
	}
	if res.AbortedBy() != "b" {
		t.Errorf("AbortedBy = %q, want b", res.AbortedBy())
	}
	if fmt.Sprint(rec.calls) != "[a b]" {
		t.Errorf("calls = %v, c must not run", rec.calls)
	}
	if hookCalls != 1 || hookPayload != "/login" {
		t.Errorf("hook calls = %d payload = %v", hookCalls, hookPayload)
	}
}

func TestRunPayloadUnmodified(t *testing.T) {
	target := nav.MustParse("/login?next=/admin")
	reg := Load([]Module{{ID: "guard", Handler: func(ctx context.Context, to, from nav.Location) (Result, error) {
		return Redirect(target), nil
	}}})

	res, err := NewExecutor(reg).Run(context.Background(), Names("guard"), nav.Location{}, nav.Location{})
	if err != nil {
		t.Fatal(err)
	}
	loc, ok := res.Payload().(nav.Location)
	if !ok || loc.FullPath != target.FullPath {
		t.Errorf("payload = %#v", res.Payload())
	}

	if !Abort().Aborted() || Abort().Payload() != false {
		t.Error("Abort() should carry false")
	}
	if RedirectTo("/x").Payload() != "/x" {
		t.Error("RedirectTo should carry the path")
	}
}

func TestRunUndefinedMiddlewareRaisesBeforeAnyHandler(t *testing.T) {
	for _, seq := range [][]Ref{
		Names("missing"),
		Names("a", "missing"),
		Names("a", "b", "missing"),
	} {
		t.Run(fmt.Sprint(len(seq)), func(t *testing.T) {
			rec := &recorder{}
			reg := Load([]Module{
				{ID: "a", Handler: rec.cont("a")},
				{ID: "b", Handler: rec.cont("b")},
			})

			_, err := NewExecutor(reg).Run(context.Background(), seq, nav.MustParse("/admin"), nav.Location{})
			if !stderrors.Is(err, errors.New("N001")) {
				t.Fatalf("err = %v, want N001", err)
			}
			if !errors.IsCategory(err, errors.CategoryConfig) {
				t.Error("undefined middleware should be a configuration error")
			}
			if len(rec.calls) != 0 {
				t.Errorf("no handler may run, calls = %v", rec.calls)
			}

			var ne *errors.NavError
			if stderrors.As(err, &ne) && ne.Route != "/admin" {
				t.Errorf("Route = %q, want /admin", ne.Route)
			}
		})
	}
}

func TestRunNilHandler(t *testing.T) {
	rec := &recorder{}
	reg := Load([]Module{
		{ID: "a", Handler: rec.cont("a")},
		{ID: "./empty.js"},
	})

	err := NewExecutor(reg).Validate(Names("a", "empty"))
	if !stderrors.Is(err, errors.New("N002")) {
		t.Fatalf("Validate err = %v, want N002", err)
	}

	_, err = NewExecutor(reg).Run(context.Background(), Names("a", "empty"), nav.Location{}, nav.Location{})
	if !stderrors.Is(err, errors.New("N002")) {
		t.Fatalf("Run err = %v, want N002", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v, want none", rec.calls)
	}
}

func TestRunInlineHandlers(t *testing.T) {
	rec := &recorder{}
	reg := Load([]Module{{ID: "a", Handler: rec.cont("a")}})

	seq := []Ref{Named("a"), Func(rec.redirect("inline", false)), Named("a")}
	res, err := NewExecutor(reg).Run(context.Background(), seq, nav.Location{}, nav.Location{})
	if err != nil {
		t.Fatal(err)
	}
	if res.AbortedBy() != "func#1" {
		t.Errorf("AbortedBy = %q, want func#1", res.AbortedBy())
	}
	if fmt.Sprint(rec.calls) != "[a inline]" {
		t.Errorf("calls = %v", rec.calls)
	}
	if seq[1].String() != "func" || !seq[1].IsInline() {
		t.Error("inline ref should describe itself as func")
	}
}

func TestRunHandlerError(t *testing.T) {
	boom := stderrors.New("boom")
	rec := &recorder{}
	reg := Load([]Module{
		{ID: "fails", Handler: func(ctx context.Context, to, from nav.Location) (Result, error) {
			return Continue, boom
		}},
		{ID: "after", Handler: rec.cont("after")},
	})

	to := nav.MustParse("/admin")
	_, err := NewExecutor(reg).Run(context.Background(), Names("fails", "after"), to, nav.Location{})
	if !stderrors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	var ne *errors.NavError
	if !stderrors.As(err, &ne) || ne.Code != "N070" || ne.Route != "/admin" {
		t.Errorf("err = %#v, want N070 on /admin", err)
	}
	if !errors.IsCategory(err, errors.CategoryMiddleware) {
		t.Errorf("category = %v, want middleware", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("after must not run, calls = %v", rec.calls)
	}
}

func TestRunHandlerCodedError(t *testing.T) {
	coded := errors.New("N020").WithRoute("/elsewhere")
	reg := Load([]Module{
		{ID: "fails", Handler: func(ctx context.Context, to, from nav.Location) (Result, error) {
			return Continue, coded
		}},
	})

	_, err := NewExecutor(reg).Run(context.Background(), Names("fails"), nav.MustParse("/admin"), nav.Location{})
	if err != error(coded) {
		t.Fatalf("err = %v, want the handler's error unchanged", err)
	}
	if coded.Route != "/elsewhere" {
		t.Errorf("route rewritten to %q", coded.Route)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	reg := Load([]Module{
		{ID: "cancels", Handler: func(ctx context.Context, to, from nav.Location) (Result, error) {
			cancel()
			return Continue, nil
		}},
		{ID: "after", Handler: rec.cont("after")},
	})

	_, err := NewExecutor(reg).Run(ctx, Names("cancels", "after"), nav.Location{}, nav.Location{})
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if errors.CodeOf(err) != "N071" {
		t.Errorf("code = %q, want N071", errors.CodeOf(err))
	}
	if len(rec.calls) != 0 {
		t.Errorf("after must not run, calls = %v", rec.calls)
	}
}
