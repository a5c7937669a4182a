package core

import (
	"fmt"
	"strings"
)

// IndexScope selects which logical vector index a batch is written to.
type IndexScope int

const (
	// ScopePersonal is the per-user index.
	ScopePersonal IndexScope = iota + 1
	// ScopeShared is the team-wide index.
	ScopeShared
)

const (
	indexPrefix     = "pdf-qa"
	personalPrefix  = indexPrefix + "-personal-"
	sharedIndexName = indexPrefix + "-shared"
)

// String returns the lowercase scope name.
func (s IndexScope) String() string {
	switch s {
	case ScopePersonal:
		return "personal"
	case ScopeShared:
		return "shared"
	default:
		return fmt.Sprintf("IndexScope(%d)", int(s))
	}
}

// ParseIndexScope parses "personal" or "shared" (case-insensitive).
func ParseIndexScope(s string) (IndexScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personal":
		return ScopePersonal, nil
	case "shared":
		return ScopeShared, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndexScope, s)
	}
}

// IndexName returns the concrete index name for a scope.
// Personal indexes are suffixed with the owner.
func IndexName(scope IndexScope, owner string) (string, error) {
	switch scope {
	case ScopePersonal:
		if owner == "" {
			return "", ErrEmptyUser
		}
		return personalPrefix + owner, nil
	case ScopeShared:
		return sharedIndexName, nil
	default:
		return "", fmt.Errorf("%w: value %d", ErrInvalidIndexScope, scope)
	}
}

// ScopeOfIndex infers the scope of an index name as seen by user.
// An empty name falls back to the user's personal index.
func ScopeOfIndex(name, user string) IndexScope {
	if name == "" || strings.HasSuffix(name, "-"+user) {
		return ScopePersonal
	}
	return ScopeShared
}
