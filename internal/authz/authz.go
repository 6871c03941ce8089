// Package authz decides whether a caller may perform an operation on a
// workspace, project, task or user. Decisions are pure: callers load the
// entities and act on the returned error.
package authz

import (
	"errors"

	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")

	ErrCannotDeleteSelf  = errors.New("you cannot delete your own account")
	ErrCannotDeleteAdmin = errors.New("cannot delete another admin user")
)

// Denial carries the client-facing reason of a rejected check. It matches
// its Kind with errors.Is.
type Denial struct {
	Kind   error
	Reason string
}

func (d *Denial) Error() string { return d.Reason }

func (d *Denial) Unwrap() error { return d.Kind }

func forbidden(reason string) error {
	return &Denial{Kind: ErrForbidden, Reason: reason}
}

func requireAdmin(caller *models.User, reason string) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if !caller.IsAdmin() {
		return forbidden(reason)
	}
	return nil
}

func CanCreateWorkspace(caller *models.User) error {
	return requireAdmin(caller, "Only admins can create workspaces")
}

func CanDeleteWorkspace(caller *models.User) error {
	return requireAdmin(caller, "Only admins can delete workspaces")
}

func CanManageWorkspaceMembers(caller *models.User) error {
	return requireAdmin(caller, "Only admins can manage workspace members")
}

func CanCreateProject(caller *models.User) error {
	return requireAdmin(caller, "Only admins can create projects")
}

// CanViewWorkspace allows workspace members and system admins.
func CanViewWorkspace(caller *models.User, ws *models.Workspace) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.IsAdmin() || membership.HasAccess(ws, caller.ID) {
		return nil
	}
	return forbidden("You are not a member of this workspace")
}

// CanUpdateWorkspace allows the owner and system admins.
func CanUpdateWorkspace(caller *models.User, ws *models.Workspace) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.IsAdmin() || membership.IsOwner(ws, caller.ID) {
		return nil
	}
	return forbidden("Only the workspace owner or an admin can update this workspace")
}

// CanAccessProject gates reading, updating and deleting a project: the
// caller must belong to the project's workspace.
func CanAccessProject(caller *models.User, ws *models.Workspace) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.IsAdmin() || membership.HasAccess(ws, caller.ID) {
		return nil
	}
	return forbidden("You do not have access to this project")
}

// CanAccessTask gates task reads and writes, including task creation in a
// project of the workspace.
func CanAccessTask(caller *models.User, ws *models.Workspace) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.IsAdmin() || membership.HasAccess(ws, caller.ID) {
		return nil
	}
	return forbidden("You do not have access to this task")
}

func CanDeleteUser(caller, target *models.User) error {
	if err := requireAdmin(caller, "Only admins can delete users"); err != nil {
		return err
	}
	if membership.CanonicalID(caller.ID) == membership.CanonicalID(target.ID) {
		return ErrCannotDeleteSelf
	}
	if target.IsAdmin() {
		return ErrCannotDeleteAdmin
	}
	return nil
}
