// Command goalform-cli asks for a goal in the terminal and prints its
// breakdown as a plain-text checklist.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-goalform/internal/config"
	"github.com/goliatone/go-goalform/pkg/prompt"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (defaults to GOALFORM_CONFIG or ~/.config/goalform/config.yaml)")
		backendURL = flag.String("backend", "", "Breakdown backend URL override")
		fixtures   = flag.String("fixtures", "", "Answer goals from this fixture file instead of a backend")
		goal       = flag.String("goal", "", "Goal to break down (prompts when empty)")
		multiline  = flag.Bool("multiline", false, "Prompt for the goal with a multi-line editor")
		hideGoal   = flag.Bool("hide-goal", false, "Omit the goal heading from the output")
		checked    = flag.String("checked", "", "Comma separated task ids to print as done, e.g. task-1-1")
		format     = flag.String("format", "text", "Output format: text or vanilla (HTML fragment)")
		verbose    = flag.Bool("v", false, "Log request failures to stderr")
	)
	flag.Parse()

	var cfg config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *backendURL != "" {
		cfg.Backend.URL = *backendURL
	}
	if *fixtures != "" {
		cfg.Fixtures.Path = *fixtures
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "goalform: ", log.LstdFlags)
	}

	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("backend: %v", err)
	}

	opts := runOptions{
		Goal:      *goal,
		Multiline: *multiline,
		HideGoal:  *hideGoal,
		Checked:   checkedSet(*checked),
		Format:    *format,
	}

	renderers, err := newRenderers(cfg)
	if err != nil {
		log.Fatalf("renderers: %v", err)
	}
	renderer, err := renderers.Get(opts.Format)
	if err != nil {
		log.Fatalf("format: %v (available: %s)", err, strings.Join(renderers.List(), ", "))
	}
	s, err := newSession(backend, renderer, prompt.NewSurveyDriver(), os.Stdout, os.Stderr, logger, opts)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	if err := s.run(ctx, opts); err != nil {
		if errors.Is(err, errFailed) {
			os.Exit(1)
		}
		log.Fatalf("%v", err)
	}
}

func checkedSet(raw string) map[string]bool {
	out := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out[trimmed] = true
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
