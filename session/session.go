package session

import (
	"fmt"

	"github.com/LessGoh/Claude-QA-UI-v2/core"
)

// Session is one user's upload context.
// A Session belongs to a single interaction and is not safe for concurrent mutation.
type Session struct {
	User      string
	Selection core.IndexScope
}

// SelectIndex switches the session to scope.
func (s *Session) SelectIndex(scope core.IndexScope) error {
	if _, err := core.IndexName(scope, s.User); err != nil {
		return err
	}
	s.Selection = scope
	return nil
}

// SelectIndexByName switches to the scope implied by an index name.
// An empty name selects the user's personal index.
func (s *Session) SelectIndexByName(name string) error {
	scope := core.ScopeOfIndex(name, s.User)
	if err := s.SelectIndex(scope); err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	if current, _ := s.CurrentIndexName(); current != name {
		return fmt.Errorf("%w: %q is not visible to %s", core.ErrInvalidIndexScope, name, s.User)
	}
	return nil
}

// CurrentIndexName returns the concrete name of the selected index.
func (s *Session) CurrentIndexName() (string, error) {
	return core.IndexName(s.Selection, s.User)
}
