package render

// RenderOptions describe per-render data that renderers can use to customise
// their output without touching the breakdown itself.
type RenderOptions struct {
	// Checked marks tasks as completed, keyed by task id ("task-1-2"). The
	// server uses it when it re-renders a checklist the user already ticked.
	Checked map[string]bool
	// HideGoal suppresses the goal heading above the phases.
	HideGoal bool
}

// IsChecked reports whether the task with the given id is marked.
func (o RenderOptions) IsChecked(id string) bool {
	if len(o.Checked) == 0 {
		return false
	}
	return o.Checked[id]
}
