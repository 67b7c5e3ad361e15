package controller

import (
	"sync"

	"github.com/goliatone/go-goalform/pkg/render"
)

// Element ids of the page areas a Surface stands in for.
const (
	FormID    = render.FormElementID
	LoadingID = render.LoadingElementID
	ErrorID   = render.ErrorElementID
	ResultsID = render.ResultsElementID
	GoalField = render.GoalFieldName
)

// Surface is the display the controller drives: the loading indicator, the
// error area and the results container.
type Surface interface {
	SetLoading(visible bool)
	ShowError(message string)
	HideError()
	ReplaceResults(markup []byte)
}

// goalRecorder is implemented by surfaces that echo the submitted goal back
// into the form.
type goalRecorder interface {
	SetGoal(goal string)
}

// View is a point-in-time copy of a State.
type View struct {
	Goal         string `json:"goal"`
	Loading      bool   `json:"loading"`
	ErrorVisible bool   `json:"errorVisible"`
	ErrorMessage string `json:"error"`
	Results      []byte `json:"-"`
}

// State is an in-memory Surface. The HTTP component renders a page from its
// snapshot and tests assert against it.
type State struct {
	mu   sync.Mutex
	view View
}

var _ Surface = (*State)(nil)

// NewState returns a State with every area hidden and empty.
func NewState() *State {
	return &State{}
}

func (s *State) SetLoading(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Loading = visible
}

func (s *State) ShowError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ErrorVisible = true
	s.view.ErrorMessage = message
}

func (s *State) HideError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.ErrorVisible = false
	s.view.ErrorMessage = ""
}

func (s *State) ReplaceResults(markup []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(markup) == 0 {
		s.view.Results = nil
		return
	}
	s.view.Results = append([]byte(nil), markup...)
}

func (s *State) SetGoal(goal string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Goal = goal
}

// Snapshot returns a copy of the current view.
func (s *State) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.view
	if s.view.Results != nil {
		out.Results = append([]byte(nil), s.view.Results...)
	}
	return out
}

type noopSurface struct{}

func (noopSurface) SetLoading(bool)       {}
func (noopSurface) ShowError(string)      {}
func (noopSurface) HideError()            {}
func (noopSurface) ReplaceResults([]byte) {}
