// Package membership holds the identity and membership rules shared by
// workspaces, projects and task assignment.
package membership

import (
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/taskflow-api/internal/models"
)

// CanonicalID normalizes a raw user or workspace id. UUIDs are rendered in their
// canonical lower-case form so that differently formatted copies of the
// same id compare equal.
func CanonicalID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if id, err := uuid.Parse(trimmed); err == nil {
		return id.String()
	}
	return strings.ToLower(trimmed)
}

// Canonical returns the canonical id of a reference, whether it is resolved
// or bare.
func Canonical(ref models.UserRef) string {
	return CanonicalID(ref.RawID())
}

// SameUser reports whether two references denote the same user.
func SameUser(a, b models.UserRef) bool {
	ca := Canonical(a)
	return ca != "" && ca == Canonical(b)
}

// IDSet is a set of canonical user ids.
type IDSet map[string]struct{}

func (s IDSet) Has(id string) bool {
	_, ok := s[CanonicalID(id)]
	return ok
}

func (s IDSet) add(id string) {
	if c := CanonicalID(id); c != "" {
		s[c] = struct{}{}
	}
}
