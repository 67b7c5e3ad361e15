package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-goalform/pkg/breakdown"
	"github.com/goliatone/go-goalform/pkg/render"
	"github.com/goliatone/go-goalform/pkg/testsupport"
)

type stubBackend struct {
	payload any
	err     error
	goals   []string
}

func (b *stubBackend) BreakDown(_ context.Context, goal string) (any, error) {
	b.goals = append(b.goals, goal)
	return b.payload, b.err
}

func TestGenerate_DefaultsToHTML(t *testing.T) {
	backend := &stubBackend{payload: testsupport.SamplePayload()}
	gen := New(WithBackend(backend))

	output, err := gen.Generate(context.Background(), Request{Goal: "Learn guitar"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	markup := testsupport.ParseMarkup(t, output)
	if markup.ByID("task-1-1") == nil {
		t.Fatalf("expected checkbox task-1-1 in output:\n%s", output)
	}
	if diff := cmp.Diff([]string{"Learn guitar"}, backend.goals); diff != "" {
		t.Fatalf("backend goals mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"text", "vanilla"}, gen.Renderers()); diff != "" {
		t.Fatalf("renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_PayloadSkipsBackend(t *testing.T) {
	backend := &stubBackend{err: errors.New("should not be called")}
	gen := New(WithBackend(backend))

	output, err := gen.Generate(context.Background(), Request{
		Payload:       testsupport.SamplePayload(),
		Renderer:      "text",
		RenderOptions: render.RenderOptions{HideGoal: true},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if strings.HasPrefix(string(output), "Goal:") {
		t.Fatalf("expected goal heading to be hidden:\n%s", output)
	}
	if !strings.Contains(string(output), "## Basics\n") {
		t.Fatalf("expected text checklist:\n%s", output)
	}
	if len(backend.goals) != 0 {
		t.Fatalf("backend should not be called, got %v", backend.goals)
	}
}

func TestGenerate_Errors(t *testing.T) {
	backendErr := errors.New("boom")

	tests := map[string]struct {
		gen  *Orchestrator
		req  Request
		want func(error) bool
	}{
		"backend failure is returned unchanged": {
			gen:  New(WithBackend(&stubBackend{err: backendErr})),
			req:  Request{Goal: "x"},
			want: func(err error) bool { return errors.Is(err, backendErr) },
		},
		"no phases": {
			gen:  New(WithBackend(&stubBackend{payload: map[string]any{"phases": []any{}}})),
			req:  Request{Goal: "x"},
			want: func(err error) bool { return errors.Is(err, breakdown.ErrNoPhases) },
		},
		"malformed": {
			gen: New(),
			req: Request{Payload: map[string]any{"phases": []any{"oops"}}},
			want: func(err error) bool {
				var malformed *breakdown.MalformedError
				return errors.As(err, &malformed) && malformed.Path == "phases[0]"
			},
		},
		"missing backend": {
			gen:  New(),
			req:  Request{Goal: "x"},
			want: func(err error) bool { return err != nil && strings.Contains(err.Error(), "backend or payload") },
		},
		"unknown renderer": {
			gen:  New(),
			req:  Request{Payload: testsupport.SamplePayload(), Renderer: "pdf"},
			want: func(err error) bool { return err != nil && strings.Contains(err.Error(), `renderer "pdf"`) },
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tc.gen.Generate(context.Background(), tc.req)
			if !tc.want(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &stubBackend{payload: testsupport.SamplePayload()}
	_, err := New(WithBackend(backend)).Generate(ctx, Request{Goal: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(backend.goals) != 0 {
		t.Fatalf("backend should not be called")
	}
}

func TestGenerate_DefaultRendererFallsBackToFirstRegistered(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "plain"})
	gen := New(WithRegistry(registry), WithDefaultRenderer("missing"))

	output, err := gen.Generate(context.Background(), Request{Payload: testsupport.SamplePayload()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(output) != "plain:1" {
		t.Fatalf("output = %q", output)
	}
}

func TestGenerate_Transformer(t *testing.T) {
	payload := map[string]any{
		"goal": "Run",
		"phases": []any{
			map[string]any{"name": "Start", "tasks": []any{" ", "Buy shoes", ""}},
			map[string]any{"name": "Later", "tasks": []any{"Sign up"}},
		},
	}
	upper := TransformerFunc(func(_ context.Context, data *breakdown.GoalBreakdown) error {
		data.Goal = strings.ToUpper(data.Goal)
		return nil
	})
	gen := New(WithTransformer(Chain(DropBlankTasks(), nil, upper)))

	output, err := gen.Generate(context.Background(), Request{Payload: payload, Renderer: "text"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := "Goal: \"RUN\"\n\n## Start\n[ ] Buy shoes (task-1-1)\n\n## Later\n[ ] Sign up (task-2-1)\n"
	if diff := cmp.Diff(want, string(output)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	failing := New(WithTransformer(TransformerFunc(func(context.Context, *breakdown.GoalBreakdown) error {
		return errors.New("nope")
	})))
	if _, err := failing.Generate(context.Background(), Request{Payload: payload}); err == nil || !strings.Contains(err.Error(), "transform breakdown: nope") {
		t.Fatalf("expected transformer error, got %v", err)
	}
}

type stubRenderer struct {
	name string
}

func (r stubRenderer) Name() string        { return r.name }
func (r stubRenderer) ContentType() string { return "text/plain" }
func (r stubRenderer) Render(_ context.Context, data breakdown.GoalBreakdown, _ render.RenderOptions) ([]byte, error) {
	return []byte(r.name + ":" + string(rune('0'+len(data.Phases)))), nil
}
