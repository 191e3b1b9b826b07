package dashboard

import (
	"strings"
	"sync"

	"github.com/hpungsan/wxdash/internal/district"
	"github.com/hpungsan/wxdash/internal/errors"
)

// Panel is the suggestion panel state. Matches is empty when hidden.
type Panel struct {
	Visible bool             `json:"visible"`
	Query   string           `json:"query"`
	Matches []district.Match `json:"matches"`
}

// Selector holds the selection view: the input text, the suggestion panel,
// and the commit action that validates the text against the directory.
type Selector struct {
	notifier Notifier
	nav      Navigator

	mu    sync.Mutex
	dir   *district.Directory
	text  string
	panel Panel
}

// NewSelector creates a selector over dir. dir may be nil until the
// directory has loaded; every lookup then misses.
func NewSelector(dir *district.Directory, notifier Notifier, nav Navigator) *Selector {
	return &Selector{dir: dir, notifier: notifier, nav: nav}
}

// SetDirectory replaces the directory and clears any visible suggestions.
func (s *Selector) SetDirectory(dir *district.Directory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir = dir
	s.panel = Panel{}
}

// Directory returns the current directory.
func (s *Selector) Directory() *district.Directory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

// Input records new input text and recomputes the suggestion panel.
func (s *Selector) Input(text string) Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.panel = suggest(s.dir, text)
	return s.panel
}

func suggest(dir *district.Directory, text string) Panel {
	matches := dir.Suggest(text)
	if len(matches) == 0 {
		return Panel{}
	}
	return Panel{Visible: true, Query: strings.TrimSpace(text), Matches: matches}
}

// Choose writes the canonical form of name into the input and hides the
// panel. It reports false if name is not a directory entry.
func (s *Selector) Choose(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.dir.Resolve(name)
	if !ok {
		return false
	}
	s.text = d.Name
	s.panel = Panel{}
	return true
}

// ChooseIndex chooses the i-th visible suggestion.
func (s *Selector) ChooseIndex(i int) bool {
	s.mu.Lock()
	if !s.panel.Visible || i < 0 || i >= len(s.panel.Matches) {
		s.mu.Unlock()
		return false
	}
	name := s.panel.Matches[i].Name
	s.mu.Unlock()
	return s.Choose(name)
}

// Dismiss hides the panel, as for a click outside the input.
func (s *Selector) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel = Panel{}
}

// Value returns the current input text.
func (s *Selector) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Panel returns the current suggestion panel.
func (s *Selector) Panel() Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel
}

// Commit validates the input text. On success it navigates to the
// dashboard with the canonical name; otherwise it shows an
// INVALID_SELECTION notice and leaves all state unchanged.
func (s *Selector) Commit() (string, error) {
	s.mu.Lock()
	dir, text := s.dir, s.text
	s.mu.Unlock()

	name, ok := Validate(dir, text)
	if !ok {
		err := errors.NewInvalidSelection(text)
		if s.notifier != nil {
			s.notifier.ShowNotice(err)
		}
		return "", err
	}
	if s.nav != nil {
		s.nav.ToResult(name)
	}
	return name, nil
}

// Validate resolves text to a canonical directory name, ignoring case and
// surrounding whitespace.
func Validate(dir *district.Directory, text string) (string, bool) {
	d, ok := dir.Resolve(text)
	if !ok {
		return "", false
	}
	return d.Name, true
}
