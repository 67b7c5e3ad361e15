package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-goalform/pkg/breakdown"
	"github.com/goliatone/go-goalform/pkg/render"
	"github.com/goliatone/go-goalform/pkg/renderers/text"
	"github.com/goliatone/go-goalform/pkg/renderers/vanilla"
)

const defaultRendererName = "vanilla"

// Backend answers a goal with the decoded JSON body of the breakdown
// endpoint. *client.Client satisfies it.
type Backend interface {
	BreakDown(ctx context.Context, goal string) (any, error)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithBackend sets the backend used for requests that carry a goal.
func WithBackend(backend Backend) Option {
	return func(o *Orchestrator) {
		o.backend = backend
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that can rewrite the breakdown
// after decoding and before rendering.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// Orchestrator runs a goal through the backend → decode → render pipeline.
// Without a registry it registers the vanilla (HTML) and text renderers.
type Orchestrator struct {
	backend         Backend
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one breakdown to render.
type Request struct {
	// Goal is sent to the backend. Ignored when Payload is set.
	Goal string

	// Payload lets callers that already hold a decoded response body skip
	// the backend.
	Payload any

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	RenderOptions render.RenderOptions
}

// Generate fetches (or takes) the payload, decodes it into a breakdown and
// renders it. Backend failures are returned unchanged so callers can build
// their own message from them.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	payload, err := o.resolvePayload(ctx, req)
	if err != nil {
		return nil, err
	}

	data, err := breakdown.Decode(payload)
	if err != nil {
		return nil, err
	}
	if err := o.applyTransformer(ctx, &data); err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, data, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

func (o *Orchestrator) resolvePayload(ctx context.Context, req Request) (any, error) {
	if req.Payload != nil {
		return req.Payload, nil
	}
	if o.backend == nil {
		return nil, errors.New("orchestrator: backend or payload is required")
	}
	return o.backend.BreakDown(ctx, req.Goal)
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}

	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}

	renderer, err := o.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, data *breakdown.GoalBreakdown) error {
	if o.transformer == nil || data == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, data); err != nil {
		return fmt.Errorf("orchestrator: transform breakdown: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
		o.registry.MustRegister(text.New())
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}

	o.defaultsApplied = true
}
