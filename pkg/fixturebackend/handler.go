package fixturebackend

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-goalform/pkg/breakdown"
)

// MaxGoalLength is the longest goal, in characters, the backend accepts.
const MaxGoalLength = 1000

const (
	msgEmptyGoal = "Please enter a goal."
	msgNoFixture = "No breakdown is available for this goal."
)

var fencedJSON = regexp.MustCompile("(?s)```json\n(.*?)```")

// Option customises the handler.
type Option func(*Handler)

// WithLogger sets the logger used for failed responses.
func WithLogger(logger *log.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithField overrides the form field the goal is read from.
func WithField(name string) Option {
	return func(h *Handler) {
		if name = strings.TrimSpace(name); name != "" {
			h.field = name
		}
	}
}

// Handler answers POST /break_down_goal from a fixture Store. It applies the
// same request checks and error bodies as the real backend.
type Handler struct {
	store  *Store
	field  string
	logger *log.Logger
}

var _ http.Handler = (*Handler)(nil)

// NewHandler returns a handler backed by store.
func NewHandler(store *Store, options ...Option) *Handler {
	h := &Handler{
		store:  store,
		field:  "goal",
		logger: log.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body.")
		return
	}

	goal := strings.TrimSpace(r.PostForm.Get(h.field))
	if goal == "" {
		writeError(w, http.StatusBadRequest, msgEmptyGoal)
		return
	}
	if utf8.RuneCountInString(goal) > MaxGoalLength {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Goal is too long. Please keep it under %d characters.", MaxGoalLength))
		return
	}

	fixture, ok := h.store.Lookup(goal)
	if !ok {
		writeError(w, http.StatusNotFound, msgNoFixture)
		return
	}

	if fixture.Status >= http.StatusBadRequest || fixture.Error != "" {
		status := fixture.Status
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
		h.logger.Printf("fixturebackend: canned failure for %q: %d", goal, status)
		writeError(w, status, fixture.Error)
		return
	}

	if fixture.Raw != "" {
		payload, err := parseModelText(fixture.Raw)
		if err != nil {
			h.logger.Printf("fixturebackend: %v", err)
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to parse the model response as JSON: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, payload)
		return
	}

	phases := fixture.Phases
	if phases == nil {
		phases = []breakdown.Phase{}
	}
	writeJSON(w, http.StatusOK, breakdown.GoalBreakdown{Goal: goal, Phases: phases})
}

// parseModelText extracts the first ```json fenced block from text, or uses
// the whole text when there is none.
func parseModelText(text string) (any, error) {
	candidate := text
	if match := fencedJSON.FindStringSubmatch(text); match != nil {
		candidate = match[1]
	}
	var payload any
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	body := map[string]string{}
	if message != "" {
		body["error"] = message
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
