package breakdown

import "fmt"

// GoalBreakdown is the phase/task decomposition returned by the backend for a
// single goal. Values only live for the duration of one render cycle.
type GoalBreakdown struct {
	Goal   string  `json:"goal"`
	Phases []Phase `json:"phases"`
}

// Phase is a named, ordered group of tasks.
type Phase struct {
	Name  string   `json:"name"`
	Tasks []string `json:"tasks"`
}

// TaskCount returns the number of tasks across all phases.
func (b GoalBreakdown) TaskCount() int {
	total := 0
	for _, phase := range b.Phases {
		total += len(phase.Tasks)
	}
	return total
}

// TaskID builds the checkbox identifier for a task from its 1-based phase and
// task positions, e.g. TaskID(1, 2) == "task-1-2".
func TaskID(phaseIndex, taskIndex int) string {
	return fmt.Sprintf("task-%d-%d", phaseIndex, taskIndex)
}
