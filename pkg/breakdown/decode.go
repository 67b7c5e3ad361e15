package breakdown

import (
	"errors"
	"fmt"
)

// ErrNoPhases reports a payload without a usable phases list: nil, not an
// object, phases missing, phases not a list, or an empty list.
var ErrNoPhases = errors.New("breakdown: payload has no phases")

// MalformedError reports a payload whose phases exist but do not match the
// expected shape. Path uses JSON-ish notation such as "phases[1].tasks[0]".
type MalformedError struct {
	Path   string
	Reason string
}

func (e *MalformedError) Error() string {
	if e == nil {
		return "breakdown: malformed payload"
	}
	if e.Path == "" {
		return "breakdown: malformed payload: " + e.Reason
	}
	return fmt.Sprintf("breakdown: malformed payload at %s: %s", e.Path, e.Reason)
}

// Decode validates an untyped value (typically the result of decoding a JSON
// body into any) and converts it into a GoalBreakdown.
//
// A missing goal decodes to "" and a phase without tasks decodes to an empty
// task list; everything else that deviates from the expected shape is an
// error.
func Decode(payload any) (GoalBreakdown, error) {
	root, ok := payload.(map[string]any)
	if !ok || root == nil {
		return GoalBreakdown{}, ErrNoPhases
	}

	rawPhases, ok := root["phases"].([]any)
	if !ok || len(rawPhases) == 0 {
		return GoalBreakdown{}, ErrNoPhases
	}

	out := GoalBreakdown{
		Phases: make([]Phase, 0, len(rawPhases)),
	}

	switch goal := root["goal"].(type) {
	case nil:
	case string:
		out.Goal = goal
	default:
		return GoalBreakdown{}, &MalformedError{Path: "goal", Reason: fmt.Sprintf("expected string, got %s", typeName(goal))}
	}

	for i, rawPhase := range rawPhases {
		phase, err := decodePhase(i, rawPhase)
		if err != nil {
			return GoalBreakdown{}, err
		}
		out.Phases = append(out.Phases, phase)
	}
	return out, nil
}

func decodePhase(index int, raw any) (Phase, error) {
	path := fmt.Sprintf("phases[%d]", index)

	fields, ok := raw.(map[string]any)
	if !ok {
		return Phase{}, &MalformedError{Path: path, Reason: fmt.Sprintf("expected object, got %s", typeName(raw))}
	}

	name, ok := fields["name"].(string)
	if !ok && fields["name"] != nil {
		return Phase{}, &MalformedError{Path: path + ".name", Reason: fmt.Sprintf("expected string, got %s", typeName(fields["name"]))}
	}

	phase := Phase{Name: name, Tasks: []string{}}

	rawTasks, present := fields["tasks"]
	if !present || rawTasks == nil {
		return phase, nil
	}
	tasks, ok := rawTasks.([]any)
	if !ok {
		return Phase{}, &MalformedError{Path: path + ".tasks", Reason: fmt.Sprintf("expected list, got %s", typeName(rawTasks))}
	}

	phase.Tasks = make([]string, 0, len(tasks))
	for j, rawTask := range tasks {
		task, ok := rawTask.(string)
		if !ok {
			return Phase{}, &MalformedError{
				Path:   fmt.Sprintf("%s.tasks[%d]", path, j),
				Reason: fmt.Sprintf("expected string, got %s", typeName(rawTask)),
			}
		}
		phase.Tasks = append(phase.Tasks, task)
	}
	return phase, nil
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
