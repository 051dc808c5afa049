// Package session holds one user's editing state over a loaded catalogue:
// the checked set, the list-choice state and whether the session has hit a
// fatal error. Sessions are not safe for concurrent use by more than one
// editor, but their accessors may be read concurrently.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"bridge/internal/arc"
	"bridge/internal/lists"
	"bridge/internal/loader"
	"bridge/internal/logging"
	"bridge/internal/selection"
)

var (
	// ErrSessionFailed is returned by Save and Generate once a fatal error
	// has been recorded.
	ErrSessionFailed = errors.New("session is in an error state")

	// ErrEmptySelection is returned by Generate when nothing is checked.
	ErrEmptySelection = errors.New("no variables selected")
)

// Session is the editing state of one CRF.
type Session struct {
	mu sync.RWMutex

	id      string
	loaded  *loader.Loaded
	choices lists.Choices
	checked map[string]bool
	presets []arc.Preset
	failure error
}

// New starts a session over loaded with nothing checked. The loaded value
// is not modified.
func New(loaded *loader.Loaded) *Session {
	s := &Session{
		id:      uuid.NewString(),
		loaded:  loaded,
		choices: loaded.Choices.Clone(),
		checked: make(map[string]bool),
	}
	logging.SessionDebug("session %s: ARC %s %s", s.id, s.Version(), s.Language())
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Version returns the catalogue version.
func (s *Session) Version() string { return s.loaded.Catalogue.Version }

// Language returns the catalogue language.
func (s *Session) Language() string { return s.loaded.Catalogue.Language }

// Commit returns the commit the catalogue was read from.
func (s *Session) Commit() string { return s.loaded.Commit }

// Catalogue returns the session catalogue. Callers must not modify it.
func (s *Session) Catalogue() *arc.Catalogue { return s.loaded.Catalogue }

// Loaded returns the loader output the session was started from.
func (s *Session) Loaded() *loader.Loaded { return s.loaded }

// Choices returns a copy of the list-choice state.
func (s *Session) Choices() lists.Choices {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.choices.Clone()
}

// Checked returns the checked variables in catalogue order.
func (s *Session) Checked() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkedLocked()
}

func (s *Session) checkedLocked() []string {
	var out []string
	for _, r := range s.loaded.Catalogue.Rows {
		if s.checked[r.Variable] {
			out = append(out, r.Variable)
		}
	}
	return out
}

// Presets returns the presets applied so far.
func (s *Session) Presets() []arc.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.presets)
}

// Err returns the fatal error recorded on the session, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failure
}

// Check marks variables as checked. Unknown variables are rejected and
// nothing is changed.
func (s *Session) Check(variables ...string) error {
	for _, v := range variables {
		if !s.loaded.Catalogue.Has(v) {
			return fmt.Errorf("session: unknown variable %q", v)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range variables {
		s.checked[v] = true
	}
	return nil
}

// Uncheck clears variables from the checked set.
func (s *Session) Uncheck(variables ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range variables {
		delete(s.checked, v)
	}
}

// ApplyPreset checks every member of the preset group/name.
func (s *Session) ApplyPreset(group, name string) error {
	p, ok := s.loaded.Catalogue.FindPreset(group, name)
	if !ok {
		return fmt.Errorf("session: no preset %q", arc.Preset{Group: group, Name: name}.Label())
	}
	vars := s.loaded.Catalogue.PresetVariables(p.Column)
	if err := s.Check(vars...); err != nil {
		return err
	}
	s.mu.Lock()
	if !slices.Contains(s.presets, p) {
		s.presets = append(s.presets, p)
	}
	s.mu.Unlock()
	logging.Session("session %s: preset %s checked %d variables", s.id, p.Label(), len(vars))
	return nil
}

// SetChoices selects exactly labels among the options of a list variable.
func (s *Session) SetChoices(variable string, labels []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.choices.Select(variable, labels)
}

// Resolve runs the selection resolver over the current state. A fatal
// error marks the session failed.
func (s *Session) Resolve() (*selection.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolveLocked()
}

func (s *Session) resolveLocked() (*selection.Result, error) {
	if s.failure != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionFailed, s.failure)
	}
	res, err := selection.Resolve(s.checkedLocked(), s.loaded.Catalogue, s.choices, s.loaded.Phrases)
	if err != nil {
		if arc.IsFatal(err) {
			s.failure = err
			logging.SessionError("session %s failed: %v", s.id, err)
		}
		return nil, err
	}
	return res, nil
}

// SwitchLanguage moves the session onto next, a fresh load of the same
// version in another language. The checked set is kept and list selections
// are carried over by option number.
func (s *Session) SwitchLanguage(next *loader.Loaded) error {
	if next.Catalogue.Version != s.Version() {
		return fmt.Errorf("session: cannot switch from %s to %s", s.Version(), next.Catalogue.Version)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return fmt.Errorf("%w: %v", ErrSessionFailed, s.failure)
	}
	from := s.loaded.Catalogue.Language
	s.choices = next.Choices.CarrySelections(s.choices)
	for v := range s.checked {
		if !next.Catalogue.Has(v) {
			delete(s.checked, v)
		}
	}
	s.loaded = next
	logging.Session("session %s: switched %s -> %s", s.id, from, next.Catalogue.Language)
	return nil
}
