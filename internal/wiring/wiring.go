// Package wiring builds the goal form collaborators shared by the server and
// the CLI from a loaded config.Config.
package wiring

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/goliatone/go-goalform/internal/config"
	"github.com/goliatone/go-goalform/pkg/client"
	"github.com/goliatone/go-goalform/pkg/contract"
	"github.com/goliatone/go-goalform/pkg/renderers/vanilla"
	"github.com/goliatone/go-goalform/pkg/themefile"
)

// NewClient builds the breakdown client for baseURL using the backend
// settings. When the contract is enabled the endpoint comes from the embedded
// OpenAPI document and successful responses are validated against it.
func NewClient(ctx context.Context, baseURL string, cfg config.BackendConfig) (*client.Client, error) {
	options := []client.Option{client.WithTimeout(cfg.Timeout)}
	if cfg.Contract {
		doc, err := contract.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("wiring: load contract: %w", err)
		}
		options = append(options, client.WithContract(doc))
	}

	c, err := client.New(baseURL, options...)
	if err != nil {
		return nil, fmt.Errorf("wiring: build client: %w", err)
	}
	return c, nil
}

// NewPageRenderer builds the HTML renderer with the configured template
// directory and theme manifest.
func NewPageRenderer(cfg config.Config) (*vanilla.Renderer, error) {
	var options []vanilla.Option
	if cfg.Templates.Dir != "" {
		options = append(options, vanilla.WithTemplatesDir(cfg.Templates.Dir))
	}
	if cfg.Theme.Path != "" {
		selector, err := themefile.Load(cfg.Theme.Path)
		if err != nil {
			return nil, fmt.Errorf("wiring: load theme: %w", err)
		}
		options = append(options, vanilla.WithThemeSelector(selector, cfg.Theme.Name, cfg.Theme.Variant))
	}

	renderer, err := vanilla.New(options...)
	if err != nil {
		return nil, fmt.Errorf("wiring: build renderer: %w", err)
	}
	return renderer, nil
}

// LocalURL turns a listen address into a URL the process can dial itself on.
// Wildcard and empty hosts map to the loopback address.
func LocalURL(addr string) (string, error) {
	host, port, err := net.SplitHostPort(strings.TrimSpace(addr))
	if err != nil {
		return "", fmt.Errorf("wiring: parse listen address %q: %w", addr, err)
	}
	if port == "" || port == "0" {
		return "", fmt.Errorf("wiring: listen address %q has no fixed port", addr)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port), nil
}
