// Package goalform is the top-level entry point: it re-exports the breakdown
// types and offers one-call helpers for the common wiring of client, HTTP
// handler and renderers.
package goalform

import (
	"context"
	"io/fs"
	"net/http"

	component "github.com/goliatone/go-goalform/components/goalform"
	"github.com/goliatone/go-goalform/pkg/breakdown"
	"github.com/goliatone/go-goalform/pkg/client"
	"github.com/goliatone/go-goalform/pkg/controller"
	"github.com/goliatone/go-goalform/pkg/orchestrator"
	"github.com/goliatone/go-goalform/pkg/render"
	"github.com/goliatone/go-goalform/pkg/renderers/vanilla"
)

// GoalBreakdown is the validated backend answer.
type GoalBreakdown = breakdown.GoalBreakdown

// Phase is one named group of tasks.
type Phase = breakdown.Phase

// RenderOptions describes per-request render tweaks.
type RenderOptions = render.RenderOptions

// Backend sends a goal to the breakdown endpoint.
type Backend = controller.Backend

// NewClient builds a client for the breakdown backend rooted at baseURL.
func NewClient(baseURL string, options ...client.Option) (*client.Client, error) {
	return client.New(baseURL, options...)
}

// NewHandler returns the goal form page and submit handler backed by backend.
func NewHandler(backend Backend, options ...component.OptionFn) http.Handler {
	fns := append([]component.OptionFn{component.WithBackend(backend)}, options...)
	return component.NewHandler(fns...)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML asks backend to break goal down and renders the checklist
// markup.
func GenerateHTML(ctx context.Context, backend Backend, goal string, options RenderOptions) ([]byte, error) {
	return orchestrator.New(orchestrator.WithBackend(backend)).Generate(ctx, orchestrator.Request{
		Goal:          goal,
		Renderer:      "vanilla",
		RenderOptions: options,
	})
}

// GenerateText is GenerateHTML for the plain-text checklist.
func GenerateText(ctx context.Context, backend Backend, goal string, options RenderOptions) ([]byte, error) {
	return orchestrator.New(orchestrator.WithBackend(backend)).Generate(ctx, orchestrator.Request{
		Goal:          goal,
		Renderer:      "text",
		RenderOptions: options,
	})
}

// FailureMessage formats err the way the goal form shows it.
func FailureMessage(err error) string {
	return controller.FailureMessage(err)
}

// EmbeddedTemplates exposes the built-in page and results templates so callers
// can copy or extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the embedded stylesheet.
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
