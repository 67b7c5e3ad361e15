package orchestrator

import (
	"context"
	"strings"

	"github.com/goliatone/go-goalform/pkg/breakdown"
)

// Transformer rewrites a decoded breakdown before it is rendered.
type Transformer interface {
	Transform(ctx context.Context, data *breakdown.GoalBreakdown) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, data *breakdown.GoalBreakdown) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, data *breakdown.GoalBreakdown) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, data)
}

// Chain runs transformers in order, stopping at the first error.
func Chain(transformers ...Transformer) Transformer {
	return TransformerFunc(func(ctx context.Context, data *breakdown.GoalBreakdown) error {
		for _, t := range transformers {
			if t == nil {
				continue
			}
			if err := t.Transform(ctx, data); err != nil {
				return err
			}
		}
		return nil
	})
}

// DropBlankTasks removes tasks that are empty after trimming. Phases are kept
// even when they end up empty so task ids of later phases do not shift.
func DropBlankTasks() Transformer {
	return TransformerFunc(func(_ context.Context, data *breakdown.GoalBreakdown) error {
		for i := range data.Phases {
			tasks := data.Phases[i].Tasks[:0]
			for _, task := range data.Phases[i].Tasks {
				if strings.TrimSpace(task) != "" {
					tasks = append(tasks, task)
				}
			}
			data.Phases[i].Tasks = tasks
		}
		return nil
	})
}
