package prompt

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyGoal is returned by the goal validator for blank input.
var ErrEmptyGoal = errors.New("please enter a goal")

// GoalMessage is the question shown when asking for a goal.
const GoalMessage = "What goal do you want to break down?"

// AskGoal prompts for a goal, multi-line when multiline is set. Blank input
// is rejected by the prompt's validator.
func AskGoal(ctx context.Context, driver Driver, multiline bool) (string, error) {
	if driver == nil {
		return "", errors.New("prompt: driver is nil")
	}
	var (
		goal string
		err  error
	)
	if multiline {
		goal, err = driver.TextArea(ctx, TextAreaConfig{
			Message:   GoalMessage,
			Help:      "Finish with an empty line. Ctrl+C aborts.",
			Validator: ValidateGoal,
		})
	} else {
		goal, err = driver.Input(ctx, InputConfig{
			Message:   GoalMessage,
			Help:      "Ctrl+C aborts.",
			Validator: ValidateGoal,
		})
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(goal), nil
}

// ValidateGoal rejects goals that are empty after trimming.
func ValidateGoal(goal string) error {
	if strings.TrimSpace(goal) == "" {
		return ErrEmptyGoal
	}
	return nil
}
