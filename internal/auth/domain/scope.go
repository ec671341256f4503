package domain

import (
	"fmt"
	"strings"

	apperrors "github.com/allisson/registry/internal/errors"
)

// WildcardKey matches every repository key, including the literal "*" resource
// used for tenant-wide administrative actions.
const WildcardKey = "*"

// scopeSeparator splits the repository key from the role in the canonical form.
const scopeSeparator = ":"

// Scope grants a role on a repository key (or on every key via the wildcard).
// The canonical serialization is the lowercase string "<key>:<role>".
type Scope struct {
	Key  string
	Role Role
}

// ParseScope parses the canonical "<key>:<role>" form. The string must contain
// exactly one separator, the key must be non-empty, and the role must parse
// (case-insensitively). Failures are reported as ErrInvalidInput.
func ParseScope(text string) (Scope, error) {
	parts := strings.Split(text, scopeSeparator)
	if len(parts) != 2 {
		return Scope{}, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("malformed scope %q: expected <repository-key>:<role>", text),
		)
	}

	key := strings.ToLower(strings.TrimSpace(parts[0]))
	if key == "" {
		return Scope{}, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("malformed scope %q: repository key is empty", text),
		)
	}

	role, err := ParseRole(parts[1])
	if err != nil {
		return Scope{}, err
	}

	return Scope{Key: key, Role: role}, nil
}

// ParseScopes parses a list of scope strings, deduplicating on the canonical
// serialization. All parse failures are collected and reported together.
func ParseScopes(texts []string) ([]Scope, error) {
	var parseErrors []string
	scopes := make([]Scope, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))

	for _, text := range texts {
		scope, err := ParseScope(text)
		if err != nil {
			parseErrors = append(parseErrors, err.Error())
			continue
		}
		if _, ok := seen[scope.String()]; ok {
			continue
		}
		seen[scope.String()] = struct{}{}
		scopes = append(scopes, scope)
	}

	if len(parseErrors) > 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, strings.Join(parseErrors, "; "))
	}

	return scopes, nil
}

// String returns the canonical lowercase serialization "<key>:<role>".
func (s Scope) String() string {
	return s.Key + scopeSeparator + s.Role.String()
}

// Matches reports whether the scope applies to the target repository key.
// A wildcard scope applies to every key, including the literal "*" resource.
func (s Scope) Matches(targetKey string) bool {
	return s.Key == WildcardKey || s.Key == targetKey
}

// HasRole reports whether any scope matches the target key (exact match or
// wildcard) with a role rank of at least the required role. This is the sole
// authorization primitive; every protected operation calls it before
// proceeding.
func HasRole(scopes []Scope, targetKey string, required Role) bool {
	for _, scope := range scopes {
		if scope.Matches(targetKey) && scope.Role.Satisfies(required) {
			return true
		}
	}
	return false
}

// ScopeStrings serializes scopes to their canonical forms, for persistence
// and API responses.
func ScopeStrings(scopes []Scope) []string {
	out := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		out = append(out, scope.String())
	}
	return out
}
