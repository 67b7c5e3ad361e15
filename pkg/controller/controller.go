package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-goalform/pkg/breakdown"
	"github.com/goliatone/go-goalform/pkg/render"
)

const (
	// NoPhasesMessage is shown when the backend answers without any phases.
	NoPhasesMessage = "Could not break down your goal into phases. It might be too simple, or an unexpected format was returned."

	errorPrefix = "An error occurred: "
)

// ErrStale reports that a newer submission replaced this one before it
// finished. Its response was discarded.
var ErrStale = errors.New("controller: superseded by a newer submission")

// Backend sends a goal to the breakdown endpoint and returns the decoded JSON
// body. *client.Client satisfies it.
type Backend interface {
	BreakDown(ctx context.Context, goal string) (any, error)
}

// Option customises the controller.
type Option func(*Controller)

// WithSurface sets the display the controller drives. Nil keeps the no-op
// surface.
func WithSurface(surface Surface) Option {
	return func(c *Controller) {
		if surface != nil {
			c.surface = surface
		}
	}
}

// WithLogger overrides the logger failures are reported to.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRenderOptions sets the options passed to the renderer on every render.
func WithRenderOptions(options render.RenderOptions) Option {
	return func(c *Controller) {
		c.renderOptions = options
	}
}

// Outcome describes how a submission ended.
type Outcome struct {
	Breakdown breakdown.GoalBreakdown
	Err       error
	// Stale is set when a newer submission started before this one
	// finished; nothing was written to the surface for it.
	Stale bool
}

// Controller runs the submit cycle: clear the previous result, show the
// loading indicator, call the backend, then render the breakdown or report
// the failure.
//
// Staleness and request sharing only apply between submissions made through
// the same Controller. The HTTP component builds one per request and the CLI
// submits one goal at a time, so embedders that want either guarantee must
// share a Controller across submissions.
type Controller struct {
	backend       Backend
	renderer      render.Renderer
	surface       Surface
	logger        *log.Logger
	renderOptions render.RenderOptions

	group singleflight.Group

	mu     sync.Mutex
	latest uint64
}

// New constructs a Controller.
func New(backend Backend, renderer render.Renderer, options ...Option) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("controller: backend is required")
	}
	if renderer == nil {
		return nil, errors.New("controller: renderer is required")
	}

	c := &Controller{
		backend:  backend,
		renderer: renderer,
		surface:  noopSurface{},
		logger:   log.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// Surface returns the display the controller drives.
func (c *Controller) Surface() Surface {
	return c.surface
}

// Ready puts the surface in its initial state: no loading indicator and no
// error.
func (c *Controller) Ready() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.SetLoading(false)
	c.surface.HideError()
}

// Submit sends goal to the backend and renders the answer. Only the most
// recent submission writes to the surface; identical goals in flight at the
// same time share one backend request.
func (c *Controller) Submit(ctx context.Context, goal string) Outcome {
	if ctx == nil {
		ctx = context.Background()
	}

	seq := c.begin(goal)
	defer c.finish(seq)

	payload, err := c.send(ctx, goal)
	if err != nil {
		if !c.commit(seq, func() { c.showFailure(err) }) {
			c.logger.Printf("goalform: discarded stale failure for %q: %v", goal, err)
			return Outcome{Err: err, Stale: true}
		}
		c.logger.Printf("goalform: submit failed: %v", err)
		return Outcome{Err: err}
	}

	var (
		result    breakdown.GoalBreakdown
		renderErr error
	)
	committed := c.commit(seq, func() {
		result, renderErr = c.render(ctx, payload)
	})
	if !committed {
		c.logger.Printf("goalform: discarded stale response for %q", goal)
		return Outcome{Err: ErrStale, Stale: true}
	}
	if renderErr != nil {
		return Outcome{Breakdown: result, Err: renderErr}
	}
	return Outcome{Breakdown: result}
}

// Render validates payload and replaces the results container with its
// markup. A payload without phases shows NoPhasesMessage instead.
func (c *Controller) Render(ctx context.Context, payload any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.render(ctx, payload)
	return err
}

func (c *Controller) begin(goal string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest++
	if recorder, ok := c.surface.(goalRecorder); ok {
		recorder.SetGoal(goal)
	}
	c.surface.HideError()
	c.surface.ReplaceResults(nil)
	c.surface.SetLoading(true)
	return c.latest
}

func (c *Controller) finish(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq == c.latest {
		c.surface.SetLoading(false)
	}
}

// commit runs write while holding the surface lock, but only if seq is still
// the latest submission.
func (c *Controller) commit(seq uint64, write func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.latest {
		return false
	}
	write()
	return true
}

// send shares one backend call between identical goals. The shared call is
// detached from the caller's cancellation so an abandoned submission cannot
// abort a request a newer one has joined; each caller still stops waiting when
// its own ctx ends.
func (c *Controller) send(ctx context.Context, goal string) (any, error) {
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(goal, func() (any, error) {
		return c.backend.BreakDown(shared, goal)
	})
	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// render must be called with c.mu held.
func (c *Controller) render(ctx context.Context, payload any) (breakdown.GoalBreakdown, error) {
	data, err := breakdown.Decode(payload)
	if errors.Is(err, breakdown.ErrNoPhases) {
		c.logger.Printf("goalform: response has no phases")
		c.surface.ShowError(NoPhasesMessage)
		return breakdown.GoalBreakdown{}, err
	}
	if err != nil {
		c.logger.Printf("goalform: submit failed: %v", err)
		c.showFailure(err)
		return breakdown.GoalBreakdown{}, err
	}

	markup, err := c.renderer.Render(ctx, data, c.renderOptions)
	if err != nil {
		err = fmt.Errorf("controller: render %s: %w", c.renderer.Name(), err)
		c.logger.Printf("goalform: submit failed: %v", err)
		c.showFailure(err)
		return data, err
	}
	c.surface.ReplaceResults(markup)
	return data, nil
}

func (c *Controller) showFailure(err error) {
	c.surface.ShowError(FailureMessage(err))
}

// FailureMessage is the text shown in the error area for err.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	return errorPrefix + err.Error()
}
