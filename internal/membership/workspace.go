package membership

import (
	"errors"
	"time"

	"github.com/yukikurage/taskflow-api/internal/models"
)

var (
	ErrAlreadyOwner      = errors.New("user is already the owner of this workspace")
	ErrAlreadyMember     = errors.New("user is already a member of this workspace")
	ErrCannotRemoveOwner = errors.New("cannot remove the workspace owner")
	ErrMemberNotFound    = errors.New("member not found in workspace")
)

// MemberIDs returns the canonical ids of everyone with access to the
// workspace: the owner plus every members entry. The owner appears once even
// when also listed in Members.
func MemberIDs(ws *models.Workspace) IDSet {
	set := make(IDSet, len(ws.Members)+1)
	set.add(ws.OwnerID)
	for _, m := range ws.Members {
		set.add(m.User.RawID())
	}
	return set
}

func IsOwner(ws *models.Workspace, userID string) bool {
	c := CanonicalID(userID)
	return c != "" && c == CanonicalID(ws.OwnerID)
}

// HasAccess reports whether the user is the owner or a listed member.
func HasAccess(ws *models.Workspace, userID string) bool {
	return MemberIDs(ws).Has(userID)
}

// RoleOf returns the user's role in the workspace. The owner always gets
// WorkspaceRoleOwner. ok is false for unrelated users.
func RoleOf(ws *models.Workspace, userID string) (role models.WorkspaceRole, ok bool) {
	if IsOwner(ws, userID) {
		return models.WorkspaceRoleOwner, true
	}
	c := CanonicalID(userID)
	for _, m := range ws.Members {
		if Canonical(m.User) == c {
			return m.Role, true
		}
	}
	return "", false
}

// AddMember appends the user to the workspace members list. Role defaults to
// member. The workspace is modified in place; persisting and verifying the
// write is the caller's job.
func AddMember(ws *models.Workspace, userID string, role models.WorkspaceRole, now time.Time) error {
	if IsOwner(ws, userID) {
		return ErrAlreadyOwner
	}
	if MemberIDs(ws).Has(userID) {
		return ErrAlreadyMember
	}
	if role == "" {
		role = models.WorkspaceRoleMember
	}

	ws.Members = append(ws.Members, models.WorkspaceMember{
		User:     models.RefTo(CanonicalID(userID)),
		Role:     role,
		JoinedAt: now,
	})
	return nil
}

// RemoveMember drops every members entry that resolves to the user.
func RemoveMember(ws *models.Workspace, userID string) error {
	if IsOwner(ws, userID) {
		return ErrCannotRemoveOwner
	}

	before := len(ws.Members)
	ws.Members = without(ws.Members, userID)
	if len(ws.Members) == before {
		return ErrMemberNotFound
	}
	return nil
}

// Strip removes the user from Members without the owner and presence
// checks. It reports whether anything changed.
func Strip(ws *models.Workspace, userID string) bool {
	before := len(ws.Members)
	ws.Members = without(ws.Members, userID)
	return len(ws.Members) != before
}

func without(members []models.WorkspaceMember, userID string) []models.WorkspaceMember {
	c := CanonicalID(userID)
	kept := make([]models.WorkspaceMember, 0, len(members))
	for _, m := range members {
		if Canonical(m.User) == c {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// RosterEntry is one line of a workspace roster.
type RosterEntry struct {
	User models.UserRef
	Role models.WorkspaceRole
}

// Roster lists the owner first, then every member not equal to the owner.
// Duplicate members entries are collapsed.
func Roster(ws *models.Workspace) []RosterEntry {
	entries := make([]RosterEntry, 0, len(ws.Members)+1)
	seen := make(IDSet, len(ws.Members)+1)

	if ws.OwnerID != "" {
		entries = append(entries, RosterEntry{
			User: models.RefTo(CanonicalID(ws.OwnerID)),
			Role: models.WorkspaceRoleOwner,
		})
		seen.add(ws.OwnerID)
	}

	for _, m := range ws.Members {
		id := Canonical(m.User)
		if id == "" || seen.Has(id) {
			continue
		}
		seen.add(id)
		role := m.Role
		if role == "" {
			role = models.WorkspaceRoleMember
		}
		entries = append(entries, RosterEntry{User: m.User, Role: role})
	}
	return entries
}
