package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-goalform/pkg/breakdown"
)

// LoadPayload reads a JSON fixture into an untyped value, the same shape the
// client hands to the controller after decoding a backend response.
func LoadPayload(path string) (any, error) {
	if path == "" {
		return nil, errors.New("testsupport: payload path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read payload: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("testsupport: unmarshal payload: %w", err)
	}
	return out, nil
}

// MustLoadPayload is LoadPayload for tests.
func MustLoadPayload(t *testing.T, path string) any {
	t.Helper()

	payload, err := LoadPayload(path)
	if err != nil {
		t.Fatalf("load payload: %v", err)
	}
	return payload
}

// MustLoadBreakdown loads a JSON fixture and validates it into a
// GoalBreakdown.
func MustLoadBreakdown(t *testing.T, path string) breakdown.GoalBreakdown {
	t.Helper()

	out, err := breakdown.Decode(MustLoadPayload(t, path))
	if err != nil {
		t.Fatalf("decode breakdown: %v", err)
	}
	return out
}

// SampleBreakdown returns the "Learn guitar" breakdown used across tests.
func SampleBreakdown() breakdown.GoalBreakdown {
	return breakdown.GoalBreakdown{
		Goal: "Learn guitar",
		Phases: []breakdown.Phase{
			{Name: "Basics", Tasks: []string{"Buy a guitar", "Learn chords"}},
		},
	}
}

// SamplePayload returns SampleBreakdown in its untyped wire form.
func SamplePayload() map[string]any {
	return map[string]any{
		"goal": "Learn guitar",
		"phases": []any{
			map[string]any{
				"name":  "Basics",
				"tasks": []any{"Buy a guitar", "Learn chords"},
			},
		},
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
