// Command goalform-server serves the goal breakdown form. It forwards goals to
// the configured breakdown backend, or answers them from a fixture file when
// one is configured.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-goalform/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "Config file (defaults to GOALFORM_CONFIG or ~/.config/goalform/config.yaml)")
		addr       = flag.String("addr", "", "Listen address override")
		backendURL = flag.String("backend", "", "Breakdown backend URL override")
		fixtures   = flag.String("fixtures", "", "Serve breakdowns from this fixture file")
		templates  = flag.String("templates", "", "Load page templates from this directory")
		watch      = flag.Bool("watch", false, "Reload templates and fixtures when they change")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *backendURL != "" {
		cfg.Backend.URL = *backendURL
	}
	if *fixtures != "" {
		cfg.Fixtures.Path = *fixtures
	}
	if *templates != "" {
		cfg.Templates.Dir = *templates
	}
	if *watch {
		cfg.Templates.Watch = cfg.Templates.Dir != ""
		cfg.Fixtures.Watch = cfg.Fixtures.Path != ""
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := log.Default()
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	go a.watch(ctx)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: a.handler,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	log.Printf("goal form listening on %s%s", cfg.Server.Addr, a.routes.Page)
	if cfg.Fixtures.Path != "" {
		log.Printf("answering goals from %s (%d fixtures)", cfg.Fixtures.Path, a.fixtures.Len())
	} else {
		log.Printf("forwarding goals to %s", a.backend.URL())
	}

	select {
	case err := <-errChan:
		log.Fatalf("listen: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Grace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}
