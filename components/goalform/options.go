package goalform

import (
	"log"
	"net/http"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-goalform/pkg/controller"
	"github.com/goliatone/go-goalform/pkg/render"
	"github.com/goliatone/go-goalform/pkg/renderers/vanilla"
)

// GuardFunc rejects a submission before it reaches the backend, e.g. a CSRF
// or session check. Errors implementing HTTPError choose the status code.
type GuardFunc func(r *http.Request) error

type Options struct {
	// BasePath prefixes the generated form action and stylesheet link. It is
	// set by RegisterRoutes.
	BasePath   string
	RoutePath  string
	SubmitPath string
	AssetsPath string
	GoalField  string
	Title      string

	Backend       controller.Backend
	Renderer      *vanilla.Renderer
	RenderOptions render.RenderOptions
	Hidden        []render.HiddenField
	Guard         GuardFunc
	Logger        *log.Logger

	ThemeSelector theme.ThemeSelector
	ThemeName     string
	ThemeVariant  string
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:  "/",
		SubmitPath: "/goal",
		AssetsPath: "/assets/",
		GoalField:  render.GoalFieldName,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/"
	}
	if opts.SubmitPath == "" {
		opts.SubmitPath = "/goal"
	}
	if opts.AssetsPath == "" {
		opts.AssetsPath = "/assets/"
	}
	if opts.GoalField == "" {
		opts.GoalField = render.GoalFieldName
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Hidden != nil {
		opts.Hidden = append([]render.HiddenField{}, opts.Hidden...)
	}
	return opts
}

func WithBasePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.BasePath = path
	}
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSubmitPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SubmitPath = path
	}
}

func WithAssetsPath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.AssetsPath = path
	}
}

func WithGoalField(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.GoalField = name
	}
}

func WithTitle(title string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Title = title
	}
}

// WithBackend sets the breakdown backend, usually a *client.Client.
func WithBackend(backend controller.Backend) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Backend = backend
	}
}

// WithRenderer supplies a preconfigured vanilla renderer. When unset the
// handler builds one from the theme options.
func WithRenderer(renderer *vanilla.Renderer) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Renderer = renderer
	}
}

func WithRenderOptions(options render.RenderOptions) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RenderOptions = options
	}
}

func WithHiddenFields(fields ...render.HiddenField) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Hidden = append(o.Hidden, fields...)
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithLogger(logger *log.Logger) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Logger = logger
	}
}

func WithTheme(selector theme.ThemeSelector, name, variant string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.ThemeSelector = selector
		o.ThemeName = name
		o.ThemeVariant = variant
	}
}
