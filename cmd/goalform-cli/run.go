package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/goliatone/go-goalform/internal/config"
	"github.com/goliatone/go-goalform/internal/wiring"
	"github.com/goliatone/go-goalform/pkg/client"
	"github.com/goliatone/go-goalform/pkg/controller"
	"github.com/goliatone/go-goalform/pkg/fixturebackend"
	"github.com/goliatone/go-goalform/pkg/prompt"
	"github.com/goliatone/go-goalform/pkg/render"
	"github.com/goliatone/go-goalform/pkg/renderers/text"
)

// errFailed marks a run where at least one goal ended in an error message.
var errFailed = errors.New("goal breakdown failed")

type runOptions struct {
	Goal      string
	Multiline bool
	HideGoal  bool
	Checked   map[string]bool
	Format    string
}

// session drives one or more goals through the controller and writes the
// checklist, or the error message, to out.
type session struct {
	ctrl   *controller.Controller
	state  *controller.State
	driver prompt.Driver
	out    io.Writer
	errOut io.Writer
}

func newSession(backend controller.Backend, renderer render.Renderer, driver prompt.Driver, out, errOut io.Writer, logger *log.Logger, opts runOptions) (*session, error) {
	state := controller.NewState()
	ctrl, err := controller.New(backend, renderer,
		controller.WithSurface(state),
		controller.WithLogger(logger),
		controller.WithRenderOptions(render.RenderOptions{
			HideGoal: opts.HideGoal,
			Checked:  opts.Checked,
		}),
	)
	if err != nil {
		return nil, err
	}
	ctrl.Ready()
	return &session{ctrl: ctrl, state: state, driver: driver, out: out, errOut: errOut}, nil
}

func (s *session) run(ctx context.Context, opts runOptions) error {
	if strings.TrimSpace(opts.Goal) != "" {
		return s.breakDown(ctx, opts.Goal)
	}

	failed := false
	for {
		goal, err := prompt.AskGoal(ctx, s.driver, opts.Multiline)
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				break
			}
			return err
		}
		if err := s.breakDown(ctx, goal); err != nil {
			if !errors.Is(err, errFailed) {
				return err
			}
			failed = true
		}

		again, err := s.driver.Confirm(ctx, prompt.ConfirmConfig{Message: "Break down another goal?"})
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				break
			}
			return err
		}
		if !again {
			break
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

func (s *session) breakDown(ctx context.Context, goal string) error {
	s.ctrl.Submit(ctx, goal)
	view := s.state.Snapshot()
	if view.ErrorVisible {
		fmt.Fprintln(s.errOut, view.ErrorMessage)
		return errFailed
	}
	if _, err := s.out.Write(view.Results); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// newRenderers registers the output formats the CLI can print.
func newRenderers(cfg config.Config) (*render.Registry, error) {
	registry := render.NewRegistry()
	registry.MustRegister(text.New())
	html, err := wiring.NewPageRenderer(cfg)
	if err != nil {
		return nil, err
	}
	registry.MustRegister(html)
	return registry, nil
}

// newBackend returns the breakdown client. With a fixture file the fixture
// handler is served on a loopback listener for the lifetime of ctx.
func newBackend(ctx context.Context, cfg config.Config, logger *log.Logger) (*client.Client, error) {
	if cfg.Fixtures.Path == "" {
		return wiring.NewClient(ctx, cfg.Backend.URL, cfg.Backend)
	}

	store, err := fixturebackend.Load(cfg.Fixtures.Path)
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for fixtures: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(client.DefaultPath, fixturebackend.NewHandler(store, fixturebackend.WithLogger(logger)))
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Printf("fixtures: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	return wiring.NewClient(ctx, "http://"+listener.Addr().String(), cfg.Backend)
}
