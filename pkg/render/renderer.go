package render

import (
	"context"

	"github.com/goliatone/go-goalform/pkg/breakdown"
)

// Renderer converts a validated GoalBreakdown into a byte representation
// (HTML fragment, plain text checklist, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, data breakdown.GoalBreakdown, options RenderOptions) ([]byte, error)
}
