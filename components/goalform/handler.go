package goalform

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-goalform/pkg/controller"
	"github.com/goliatone/go-goalform/pkg/renderers/vanilla"
)

const maxFormBytes = 64 << 10

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// submitResponse is the JSON body returned to clients that ask for JSON.
type submitResponse struct {
	Goal    string `json:"goal"`
	Loading bool   `json:"loading"`
	Error   string `json:"error"`
	Results string `json:"results"`
}

// Handler builds a net/http handler with default options plus any overrides.
// It serves the page, the submit endpoint and the stylesheet relative to the
// handler root.
func Handler(fns ...OptionFn) http.Handler {
	return NewHandler(fns...)
}

func NewHandler(fns ...OptionFn) http.Handler {
	opts := NewOptions(fns...)
	return HandlerWithOptions(opts)
}

// HandlerWithOptions builds the combined handler from a pre-constructed
// Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	s := newServer(opts)

	mux := http.NewServeMux()
	s.register(mux, "")
	return mux
}

type server struct {
	opts     Options
	renderer *vanilla.Renderer
	err      error
}

func newServer(opts Options) *server {
	s := &server{opts: opts, renderer: opts.Renderer}
	if s.renderer == nil {
		var rendererOpts []vanilla.Option
		if opts.ThemeSelector != nil {
			rendererOpts = append(rendererOpts, vanilla.WithThemeSelector(opts.ThemeSelector, opts.ThemeName, opts.ThemeVariant))
		}
		s.renderer, s.err = vanilla.New(rendererOpts...)
		if s.err != nil {
			opts.Logger.Printf("goalform: build renderer: %v", s.err)
		}
	}
	return s
}

// register mounts the page, submit and asset handlers under basePath.
func (s *server) register(mux Mux, basePath string) Routes {
	routes := Routes{
		Page:   mountPath(basePath, s.opts.RoutePath),
		Submit: mountPath(basePath, s.opts.SubmitPath),
		Assets: strings.TrimRight(mountPath(basePath, s.opts.AssetsPath), "/") + "/",
	}
	mux.Handle(routes.Page, s.pageHandler(routes.Page))
	mux.Handle(routes.Submit, s.submitHandler())
	mux.Handle(routes.Assets, s.assetsHandler(routes.Assets))
	return routes
}

func (s *server) pageHandler(pattern string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		// A pattern ending in "/" matches the whole subtree on a ServeMux.
		if strings.HasSuffix(pattern, "/") && r.URL.Path != pattern {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		state := controller.NewState()
		if ctrl, err := s.controller(state); err == nil {
			ctrl.Ready()
		}
		s.writePage(w, r, state.Snapshot())
	})
}

func (s *server) submitHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if s.opts.Guard != nil {
			if err := s.opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			code := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				code = http.StatusRequestEntityTooLarge
			}
			http.Error(w, http.StatusText(code), code)
			return
		}
		goal := r.PostForm.Get(s.opts.GoalField)

		state := controller.NewState()
		ctrl, err := s.controller(state)
		if err != nil {
			s.opts.Logger.Printf("goalform: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		ctrl.Submit(r.Context(), goal)
		view := state.Snapshot()

		if wantsJSON(r.Header.Get("Accept")) {
			writeJSON(w, submitResponse{
				Goal:    view.Goal,
				Loading: view.Loading,
				Error:   view.ErrorMessage,
				Results: string(view.Results),
			})
			return
		}
		s.writePage(w, r, view)
	})
}

func (s *server) assetsHandler(prefix string) http.Handler {
	files := http.FileServer(http.FS(vanilla.AssetsFS()))
	return http.StripPrefix(prefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}

func (s *server) controller(state *controller.State) (*controller.Controller, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.opts.Backend == nil {
		return nil, errors.New("goalform: backend not configured")
	}
	return controller.New(s.opts.Backend, s.renderer,
		controller.WithSurface(state),
		controller.WithLogger(s.opts.Logger),
		controller.WithRenderOptions(s.opts.RenderOptions),
	)
}

func (s *server) writePage(w http.ResponseWriter, r *http.Request, view controller.View) {
	if s.err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	page, err := s.renderer.RenderPage(requestContext(r), vanilla.Page{
		Title:        s.opts.Title,
		Action:       mountPath(s.opts.BasePath, s.opts.SubmitPath),
		GoalField:    s.opts.GoalField,
		Goal:         view.Goal,
		Loading:      view.Loading,
		ErrorVisible: view.ErrorVisible,
		ErrorMessage: view.ErrorMessage,
		Results:      view.Results,
		Hidden:       s.opts.Hidden,
		Stylesheet:   StylesheetURL(s.opts.BasePath, s.opts.AssetsPath),
	})
	if err != nil {
		s.opts.Logger.Printf("goalform: render page: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(page)))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(page)
}

// StylesheetURL returns the URL the page links the embedded stylesheet from.
func StylesheetURL(basePath, assetsPath string) string {
	return strings.TrimRight(mountPath(basePath, assetsPath), "/") + "/" + vanilla.StylesheetName
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(payload)
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

// wantsJSON reports whether the Accept header ranks application/json above
// text/html.
func wantsJSON(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}
	jsonQ, htmlQ := -1.0, -1.0
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				q = parsed
			}
		}
		switch mediaType {
		case "application/json":
			jsonQ = max(jsonQ, q)
		case "text/html":
			htmlQ = max(htmlQ, q)
		}
	}
	return jsonQ > 0 && jsonQ > htmlQ
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
