package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-goalform/internal/config"
	"github.com/goliatone/go-goalform/pkg/prompt"
)

const fixtureYAML = `fixtures:
  - goal: Learn guitar
    phases:
      - name: Basics
        tasks:
          - Buy a guitar
          - Learn chords
  - goal: Too vague
    status: 400
    error: Goal too vague
`

type scriptedDriver struct {
	goals    []string
	confirms []bool
	asked    []string
}

func (d *scriptedDriver) Input(_ context.Context, cfg prompt.InputConfig) (string, error) {
	d.asked = append(d.asked, "input")
	return d.next(cfg.Validator)
}

func (d *scriptedDriver) TextArea(_ context.Context, cfg prompt.TextAreaConfig) (string, error) {
	d.asked = append(d.asked, "textarea")
	return d.next(cfg.Validator)
}

func (d *scriptedDriver) Confirm(context.Context, prompt.ConfirmConfig) (bool, error) {
	d.asked = append(d.asked, "confirm")
	if len(d.confirms) == 0 {
		return false, prompt.ErrAborted
	}
	answer := d.confirms[0]
	d.confirms = d.confirms[1:]
	return answer, nil
}

func (d *scriptedDriver) next(validator func(string) error) (string, error) {
	if len(d.goals) == 0 {
		return "", prompt.ErrAborted
	}
	goal := d.goals[0]
	d.goals = d.goals[1:]
	if validator != nil {
		if err := validator(goal); err != nil {
			return "", err
		}
	}
	return goal, nil
}

func newFixtureSession(t *testing.T, driver prompt.Driver, opts runOptions) (*session, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0o644); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := log.New(io.Discard, "", 0)
	cfg := config.Config{
		Backend:  config.BackendConfig{Contract: true},
		Fixtures: config.FixturesConfig{Path: path},
	}
	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}

	renderers, err := newRenderers(cfg)
	if err != nil {
		t.Fatalf("new renderers: %v", err)
	}
	format := opts.Format
	if format == "" {
		format = "text"
	}
	renderer, err := renderers.Get(format)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	var out, errOut bytes.Buffer
	s, err := newSession(backend, renderer, driver, &out, &errOut, logger, opts)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s, &out, &errOut
}

func TestSession_GoalFlagPrintsChecklist(t *testing.T) {
	driver := &scriptedDriver{}
	opts := runOptions{Goal: "Learn guitar", Checked: checkedSet("task-1-2, ")}
	s, out, errOut := newFixtureSession(t, driver, opts)

	if err := s.run(context.Background(), opts); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := "Goal: \"Learn guitar\"\n\n## Basics\n[ ] Buy a guitar (task-1-1)\n[x] Learn chords (task-1-2)\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected stderr: %q", errOut.String())
	}
	if len(driver.asked) != 0 {
		t.Fatalf("goal flag should skip prompts, asked %v", driver.asked)
	}
}

func TestSession_FailurePrintsMessage(t *testing.T) {
	opts := runOptions{Goal: "Too vague", HideGoal: true}
	s, out, errOut := newFixtureSession(t, &scriptedDriver{}, opts)

	err := s.run(context.Background(), opts)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected errFailed, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected stdout: %q", out.String())
	}
	if got := errOut.String(); got != "An error occurred: Goal too vague\n" {
		t.Fatalf("stderr = %q", got)
	}
}

func TestSession_PromptLoop(t *testing.T) {
	driver := &scriptedDriver{
		goals:    []string{"Too vague", "Learn guitar"},
		confirms: []bool{true, false},
	}
	opts := runOptions{HideGoal: true, Multiline: true}
	s, out, errOut := newFixtureSession(t, driver, opts)

	err := s.run(context.Background(), opts)
	if !errors.Is(err, errFailed) {
		t.Fatalf("expected errFailed after a failed goal, got %v", err)
	}

	if diff := cmp.Diff([]string{"textarea", "confirm", "textarea", "confirm"}, driver.asked); diff != "" {
		t.Fatalf("prompt sequence mismatch (-want +got):\n%s", diff)
	}
	want := "## Basics\n[ ] Buy a guitar (task-1-1)\n[ ] Learn chords (task-1-2)\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	if got := errOut.String(); got != "An error occurred: Goal too vague\n" {
		t.Fatalf("stderr = %q", got)
	}
}

func TestSession_AbortEndsCleanly(t *testing.T) {
	driver := &scriptedDriver{}
	s, out, _ := newFixtureSession(t, driver, runOptions{})

	if err := s.run(context.Background(), runOptions{}); err != nil {
		t.Fatalf("abort should end without error, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if diff := cmp.Diff([]string{"input"}, driver.asked); diff != "" {
		t.Fatalf("prompt sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestSession_HTMLFormat(t *testing.T) {
	opts := runOptions{Goal: "Learn guitar", Format: "vanilla"}
	s, out, _ := newFixtureSession(t, &scriptedDriver{}, opts)

	if err := s.run(context.Background(), opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{`<h3`, `id="task-1-1"`, "Buy a guitar"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("html output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCheckedSet(t *testing.T) {
	if got := checkedSet(" , "); got != nil {
		t.Fatalf("expected nil for empty list, got %v", got)
	}
	want := map[string]bool{"task-1-1": true, "task-2-3": true}
	if diff := cmp.Diff(want, checkedSet("task-1-1, task-2-3")); diff != "" {
		t.Fatalf("checked mismatch (-want +got):\n%s", diff)
	}
}
