package authz

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/taskflow-api/internal/models"
)

func user(role models.SystemRole) *models.User {
	return &models.User{ID: uuid.NewString(), Role: role}
}

func TestAdminOnlyOperations(t *testing.T) {
	checks := map[string]func(*models.User) error{
		"create workspace": CanCreateWorkspace,
		"delete workspace": CanDeleteWorkspace,
		"manage members":   CanManageWorkspaceMembers,
		"create project":   CanCreateProject,
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, check(user(models.SystemRoleAdmin)))
			assert.ErrorIs(t, check(user(models.SystemRoleMember)), ErrForbidden)
			assert.ErrorIs(t, check(user(models.SystemRoleViewer)), ErrForbidden)
			assert.ErrorIs(t, check(nil), ErrUnauthenticated)
		})
	}
}

func TestDenialCarriesReason(t *testing.T) {
	err := CanCreateWorkspace(user(models.SystemRoleMember))

	var denial *Denial
	assert.True(t, errors.As(err, &denial))
	assert.Equal(t, "Only admins can create workspaces", err.Error())
}

func TestWorkspaceScopedAccess(t *testing.T) {
	owner := user(models.SystemRoleMember)
	member := user(models.SystemRoleViewer)
	stranger := user(models.SystemRoleMember)
	admin := user(models.SystemRoleAdmin)

	ws := &models.Workspace{
		ID:      uuid.NewString(),
		OwnerID: owner.ID,
		Members: []models.WorkspaceMember{{User: models.RefTo(member.ID), Role: models.WorkspaceRoleMember}},
	}

	for _, check := range []func(*models.User, *models.Workspace) error{CanViewWorkspace, CanAccessProject, CanAccessTask} {
		assert.NoError(t, check(owner, ws))
		assert.NoError(t, check(member, ws))
		assert.NoError(t, check(admin, ws))
		assert.ErrorIs(t, check(stranger, ws), ErrForbidden)
		assert.ErrorIs(t, check(nil, ws), ErrUnauthenticated)
	}

	assert.NoError(t, CanUpdateWorkspace(owner, ws))
	assert.NoError(t, CanUpdateWorkspace(admin, ws))
	assert.ErrorIs(t, CanUpdateWorkspace(member, ws), ErrForbidden)
}

func TestCanDeleteUser(t *testing.T) {
	admin := user(models.SystemRoleAdmin)

	assert.NoError(t, CanDeleteUser(admin, user(models.SystemRoleMember)))
	assert.ErrorIs(t, CanDeleteUser(admin, admin), ErrCannotDeleteSelf)
	assert.ErrorIs(t, CanDeleteUser(admin, user(models.SystemRoleAdmin)), ErrCannotDeleteAdmin)
	assert.ErrorIs(t, CanDeleteUser(user(models.SystemRoleMember), user(models.SystemRoleViewer)), ErrForbidden)
	assert.ErrorIs(t, CanDeleteUser(nil, admin), ErrUnauthenticated)
}

func TestScope(t *testing.T) {
	me := uuid.NewString()
	owned := models.Workspace{ID: uuid.NewString(), OwnerID: me}
	joined := models.Workspace{
		ID:      uuid.NewString(),
		OwnerID: uuid.NewString(),
		Members: []models.WorkspaceMember{{User: models.RefTo(me)}},
	}
	foreign := models.Workspace{ID: uuid.NewString(), OwnerID: uuid.NewString()}

	scope := NewScope(me, []models.Workspace{owned, joined, foreign, owned})

	assert.Equal(t, []string{owned.ID, joined.ID}, scope.IDs())
	assert.NoError(t, scope.Require(joined.ID))
	assert.NoError(t, scope.Require(strings.ToUpper(joined.ID)))
	resolved, err := scope.Resolve(" " + strings.ToUpper(owned.ID))
	assert.NoError(t, err)
	assert.Equal(t, owned.ID, resolved)
	assert.ErrorIs(t, scope.Require(foreign.ID), ErrForbidden)
	assert.False(t, scope.Empty())
	assert.True(t, NewScope(me, nil).Empty())
}
