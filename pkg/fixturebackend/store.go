package fixturebackend

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-goalform/pkg/breakdown"
)

// Fixture is one canned backend answer.
//
// Phases is returned as the breakdown. Raw, when set, is returned as model
// text instead: a ```json fenced block inside it is extracted, otherwise the
// whole text is parsed. Status and Error produce a failure response.
type Fixture struct {
	Goal   string            `json:"goal" yaml:"goal"`
	Phases []breakdown.Phase `json:"phases" yaml:"phases"`
	Raw    string            `json:"raw,omitempty" yaml:"raw"`
	Status int               `json:"status,omitempty" yaml:"status"`
	Error  string            `json:"error,omitempty" yaml:"error"`
}

type fixtureFile struct {
	Default  *Fixture  `yaml:"default"`
	Fixtures []Fixture `yaml:"fixtures"`
}

// Store holds fixtures keyed by normalised goal text. It is safe for
// concurrent use and can be reloaded while serving.
type Store struct {
	mu       sync.RWMutex
	source   string
	fixtures map[string]Fixture
	fallback *Fixture
}

// Load reads a YAML fixture file.
func Load(path string) (*Store, error) {
	store := &Store{source: path}
	if err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Parse builds a store from YAML content.
func Parse(data []byte) (*Store, error) {
	store := &Store{}
	if err := store.replace(data, "inline"); err != nil {
		return nil, err
	}
	return store, nil
}

// Source returns the file the store was loaded from, or "" for parsed
// content.
func (s *Store) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// Reload re-reads the fixture file. On error the previous fixtures stay in
// place.
func (s *Store) Reload() error {
	if s == nil || s.source == "" {
		return fmt.Errorf("fixturebackend: store has no source file")
	}
	data, err := os.ReadFile(s.source)
	if err != nil {
		return fmt.Errorf("fixturebackend: read %s: %w", s.source, err)
	}
	return s.replace(data, s.source)
}

// Lookup returns the fixture for goal. Without an exact match the closest
// goal within MaxTypoRatio of its length is used, then the default entry.
func (s *Store) Lookup(goal string) (Fixture, bool) {
	if s == nil {
		return Fixture{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := normaliseGoal(goal)
	if fixture, ok := s.fixtures[key]; ok {
		return fixture, true
	}
	if fixture, ok := s.closest(key); ok {
		return fixture, true
	}
	if s.fallback != nil {
		return *s.fallback, true
	}
	return Fixture{}, false
}

// MaxTypoRatio bounds fuzzy goal matching: the edit distance may be at most
// this fraction of the fixture goal's length. Goals shorter than 1/ratio
// characters only match exactly.
const MaxTypoRatio = 0.2

func (s *Store) closest(key string) (Fixture, bool) {
	var (
		best     Fixture
		bestKey  string
		bestDist = -1
	)
	for candidate, fixture := range s.fixtures {
		limit := int(float64(len([]rune(candidate))) * MaxTypoRatio)
		if limit == 0 {
			continue
		}
		dist := levenshtein.ComputeDistance(key, candidate)
		if dist > limit {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && candidate < bestKey) {
			best, bestKey, bestDist = fixture, candidate, dist
		}
	}
	return best, bestDist >= 0
}

// Len returns the number of goal-specific fixtures.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fixtures)
}

func (s *Store) replace(data []byte, source string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("fixturebackend: file %s is empty", source)
	}

	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("fixturebackend: parse %s: %w", source, err)
	}

	fixtures := make(map[string]Fixture, len(file.Fixtures))
	for i, fixture := range file.Fixtures {
		key := normaliseGoal(fixture.Goal)
		if key == "" {
			return fmt.Errorf("fixturebackend: %s: fixture %d has no goal", source, i)
		}
		if _, exists := fixtures[key]; exists {
			return fmt.Errorf("fixturebackend: %s: duplicate fixture for goal %q", source, fixture.Goal)
		}
		fixtures[key] = fixture
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures = fixtures
	s.fallback = file.Default
	return nil
}

func normaliseGoal(goal string) string {
	return strings.ToLower(strings.Join(strings.Fields(goal), " "))
}
