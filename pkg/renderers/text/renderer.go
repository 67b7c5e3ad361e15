package text

import (
	"context"
	"strings"

	"github.com/goliatone/go-goalform/pkg/breakdown"
	"github.com/goliatone/go-goalform/pkg/render"
)

// Renderer prints a breakdown as a plain checklist for terminals:
//
//	Goal: "Learn guitar"
//
//	## Basics
//	[ ] Buy a guitar (task-1-1)
//	[x] Learn chords (task-1-2)
type Renderer struct{}

var _ render.Renderer = Renderer{}

// New returns the text renderer.
func New() Renderer {
	return Renderer{}
}

func (Renderer) Name() string {
	return "text"
}

func (Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (Renderer) Render(ctx context.Context, data breakdown.GoalBreakdown, options render.RenderOptions) ([]byte, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var b strings.Builder
	if !options.HideGoal {
		b.WriteString(`Goal: "`)
		b.WriteString(singleLine(data.Goal))
		b.WriteString("\"\n")
	}

	for i, phase := range data.Phases {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("## ")
		b.WriteString(singleLine(phase.Name))
		b.WriteByte('\n')

		for j, task := range phase.Tasks {
			id := breakdown.TaskID(i+1, j+1)
			if options.IsChecked(id) {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
			b.WriteString(singleLine(task))
			b.WriteString(" (")
			b.WriteString(id)
			b.WriteString(")\n")
		}
	}
	return []byte(b.String()), nil
}

// singleLine keeps one checklist entry per line when backend text carries
// line breaks.
func singleLine(value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return value
	}
	return strings.Join(strings.Fields(value), " ")
}
