package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/goliatone/go-goalform/components/goalform"
	"github.com/goliatone/go-goalform/internal/config"
	"github.com/goliatone/go-goalform/internal/devreload"
	"github.com/goliatone/go-goalform/internal/wiring"
	"github.com/goliatone/go-goalform/pkg/client"
	"github.com/goliatone/go-goalform/pkg/fixturebackend"
	"github.com/goliatone/go-goalform/pkg/renderers/vanilla"
)

// app holds the assembled HTTP handler and the pieces the dev reloader
// touches.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	handler  http.Handler
	routes   goalform.Routes
	renderer *vanilla.Renderer
	fixtures *fixturebackend.Store
	backend  *client.Client
}

func newApp(ctx context.Context, cfg config.Config, logger *log.Logger) (*app, error) {
	if logger == nil {
		logger = log.Default()
	}
	a := &app{cfg: cfg, logger: logger}

	backendURL := cfg.Backend.URL
	if cfg.Fixtures.Path != "" {
		store, err := fixturebackend.Load(cfg.Fixtures.Path)
		if err != nil {
			return nil, err
		}
		a.fixtures = store
		backendURL, err = wiring.LocalURL(cfg.Server.Addr)
		if err != nil {
			return nil, err
		}
	}

	backend, err := wiring.NewClient(ctx, backendURL, cfg.Backend)
	if err != nil {
		return nil, err
	}
	a.backend = backend

	renderer, err := wiring.NewPageRenderer(cfg)
	if err != nil {
		return nil, err
	}
	a.renderer = renderer

	mux := http.NewServeMux()
	routes, err := goalform.RegisterRoutes(mux, "",
		goalform.WithBackend(backend),
		goalform.WithRenderer(renderer),
		goalform.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("register goal form: %w", err)
	}
	a.routes = routes

	if a.fixtures != nil {
		mux.Handle(client.DefaultPath, fixturebackend.NewHandler(a.fixtures, fixturebackend.WithLogger(logger)))
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	a.handler = mux
	return a, nil
}

// watch starts the configured file watchers and blocks until ctx is done.
func (a *app) watch(ctx context.Context) {
	var wg sync.WaitGroup
	start := func(path string, onChange func(string)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := devreload.Watch(ctx, path, onChange, devreload.WithLogger(a.logger)); err != nil {
				a.logger.Printf("devreload: %v", err)
			}
		}()
	}

	if a.cfg.Templates.Watch && a.cfg.Templates.Dir != "" {
		start(a.cfg.Templates.Dir, a.reloadTemplates)
	}
	if a.cfg.Fixtures.Watch && a.fixtures != nil {
		start(a.cfg.Fixtures.Path, a.reloadFixtures)
	}
	wg.Wait()
}

func (a *app) reloadTemplates(path string) {
	if a.renderer.Reload() {
		a.logger.Printf("templates reloaded (%s)", path)
	}
}

func (a *app) reloadFixtures(path string) {
	if err := a.fixtures.Reload(); err != nil {
		a.logger.Printf("fixtures reload failed, keeping previous set: %v", err)
		return
	}
	a.logger.Printf("fixtures reloaded (%s): %d goals", path, a.fixtures.Len())
}
