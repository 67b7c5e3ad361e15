package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-goalform/pkg/breakdown"
	"github.com/goliatone/go-goalform/pkg/render"
	rendertemplate "github.com/goliatone/go-goalform/pkg/render/template"
	gotemplate "github.com/goliatone/go-goalform/pkg/render/template/gotemplate"
)

const (
	defaultTitle       = "Goal Breakdown"
	defaultPrompt      = "What goal do you want to break down?"
	defaultSubmitLabel = "Break it down"
)

// Option configures the vanilla renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templatesDir     string
	templateRenderer rendertemplate.TemplateRenderer
	themeSelector    theme.ThemeSelector
	themeName        string
	themeVariant     string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. It must
// provide results.tmpl and page.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. Files missing
// from the directory fall back to the embedded bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithThemeSelector resolves theme tokens for RenderPage. Tokens are emitted
// as --goalform-<token> custom properties on the body element.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(cfg *config) {
		cfg.themeSelector = selector
		cfg.themeName = strings.TrimSpace(name)
		cfg.themeVariant = strings.TrimSpace(variant)
	}
}

// Renderer renders goal breakdowns as HTML checklists and the surrounding
// goal form page.
type Renderer struct {
	templates     rendertemplate.TemplateRenderer
	themeSelector theme.ThemeSelector
	themeName     string
	themeVariant  string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engineOptions := []gotemplate.Option{
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		}
		if cfg.templatesDir != "" {
			engineOptions = append(engineOptions, gotemplate.WithBaseDir(cfg.templatesDir))
		}
		engine, err := gotemplate.New(engineOptions...)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:     renderer,
		themeSelector: cfg.themeSelector,
		themeName:     cfg.themeName,
		themeVariant:  cfg.themeVariant,
	}, nil
}

// Templates returns the underlying template renderer.
func (r *Renderer) Templates() rendertemplate.TemplateRenderer {
	return r.templates
}

// Reload drops cached templates so edits on disk show up on the next render.
// It reports false when the template renderer has no cache to reset.
func (r *Renderer) Reload() bool {
	if r == nil {
		return false
	}
	resetter, ok := r.templates.(interface{ Reset() })
	if !ok {
		return false
	}
	resetter.Reset()
	return true
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render builds the results container markup for a breakdown. Phase and task
// text is escaped by the template engine and the output is restricted to the
// checklist elements.
func (r *Renderer) Render(ctx context.Context, data breakdown.GoalBreakdown, options render.RenderOptions) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	result, err := r.templates.RenderTemplate(resultsTemplate, resultsView(data, options))
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render results: %w", err)
	}
	return sanitizeResults([]byte(result)), nil
}

// Page is the state of the goal form document: the form itself plus the
// loading indicator, error area and results container.
type Page struct {
	Title        string
	Prompt       string
	SubmitLabel  string
	Action       string
	GoalField    string
	Goal         string
	Loading      bool
	ErrorVisible bool
	ErrorMessage string
	Results      []byte
	Hidden       []render.HiddenField
	Stylesheet   string
}

// RenderPage renders the full goal form document.
func (r *Renderer) RenderPage(ctx context.Context, page Page) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	themeView, err := r.themeView()
	if err != nil {
		return nil, err
	}

	hidden := make([]map[string]any, 0, len(page.Hidden))
	for _, field := range render.SortedHiddenFields(page.Hidden...) {
		hidden = append(hidden, map[string]any{"name": field.Name, "value": field.Value})
	}

	view := map[string]any{
		"title":         fallback(page.Title, defaultTitle),
		"prompt":        fallback(page.Prompt, defaultPrompt),
		"submit_label":  fallback(page.SubmitLabel, defaultSubmitLabel),
		"action":        page.Action,
		"goal_field":    fallback(page.GoalField, render.GoalFieldName),
		"goal":          page.Goal,
		"loading":       page.Loading,
		"error_visible": page.ErrorVisible,
		"error_message": page.ErrorMessage,
		"results":       string(sanitizeResults(page.Results)),
		"hidden":        hidden,
		"stylesheet":    page.Stylesheet,
		"theme":         themeView,
		"classes":       chromeClasses(),
		"ids": map[string]any{
			"form":    render.FormElementID,
			"loading": render.LoadingElementID,
			"error":   render.ErrorElementID,
			"results": render.ResultsElementID,
		},
	}

	result, err := r.templates.RenderTemplate(pageTemplate, view)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render page: %w", err)
	}
	return []byte(result), nil
}

func resultsView(data breakdown.GoalBreakdown, options render.RenderOptions) map[string]any {
	phases := make([]any, 0, len(data.Phases))
	for i, phase := range data.Phases {
		tasks := make([]any, 0, len(phase.Tasks))
		for j, task := range phase.Tasks {
			id := breakdown.TaskID(i+1, j+1)
			tasks = append(tasks, map[string]any{
				"id":      id,
				"text":    task,
				"checked": options.IsChecked(id),
			})
		}
		phases = append(phases, map[string]any{
			"name":  phase.Name,
			"tasks": tasks,
		})
	}

	return map[string]any{
		"goal":      data.Goal,
		"hide_goal": options.HideGoal,
		"phases":    phases,
		"classes":   chromeClasses(),
	}
}

func (r *Renderer) themeView() (map[string]any, error) {
	view := map[string]any{}
	if r.themeSelector == nil {
		return view, nil
	}

	selection, err := r.themeSelector.Select(r.themeName, r.themeVariant)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: select theme: %w", err)
	}
	if selection == nil {
		return view, nil
	}

	view["name"] = selection.Theme
	view["variant"] = selection.Variant
	if selection.Manifest != nil {
		view["style"] = cssVarsStyle(selection.Manifest.Tokens)
	}
	return view, nil
}

func cssVarsStyle(tokens map[string]string) string {
	if len(tokens) == 0 {
		return ""
	}
	keys := make([]string, 0, len(tokens))
	for key := range tokens {
		if cssIdent(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(tokens[key])
		if value == "" || strings.ContainsAny(value, ";{}<>\"'\\") {
			continue
		}
		parts = append(parts, "--goalform-"+key+": "+value)
	}
	return strings.Join(parts, "; ")
}

func cssIdent(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
