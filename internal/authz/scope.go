package authz

import (
	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
)

// Scope is the accessible-workspace set of a caller: every workspace the
// caller owns or is listed in.
type Scope struct {
	ids   map[string]string
	order []string
}

// NewScope keeps only the workspaces the user can access, so callers may
// pass a superset of candidates.
func NewScope(userID string, candidates []models.Workspace) Scope {
	s := Scope{ids: make(map[string]string, len(candidates))}
	for i := range candidates {
		ws := &candidates[i]
		if !membership.HasAccess(ws, userID) {
			continue
		}
		key := membership.CanonicalID(ws.ID)
		if _, dup := s.ids[key]; dup {
			continue
		}
		s.ids[key] = ws.ID
		s.order = append(s.order, ws.ID)
	}
	return s
}

// Contains compares canonical ids, so an upper-case copy of a workspace
// UUID still matches.
func (s Scope) Contains(workspaceID string) bool {
	_, ok := s.ids[membership.CanonicalID(workspaceID)]
	return ok
}

// IDs returns the accessible workspace ids in candidate order.
func (s Scope) IDs() []string {
	return append([]string(nil), s.order...)
}

func (s Scope) Empty() bool {
	return len(s.order) == 0
}

// Require fails with ErrForbidden when the workspace is outside the scope.
func (s Scope) Require(workspaceID string) error {
	_, err := s.Resolve(workspaceID)
	return err
}

// Resolve returns the stored id of an in-scope workspace.
func (s Scope) Resolve(workspaceID string) (string, error) {
	if id, ok := s.ids[membership.CanonicalID(workspaceID)]; ok {
		return id, nil
	}
	return "", forbidden("Forbidden")
}
