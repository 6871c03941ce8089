package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
	"go.uber.org/zap"
)

func userRoutes(env *handlerTestEnv, as *models.User) http.Handler {
	handler := NewUserHandler(env.userService, zap.NewNop())

	r := env.router(as)
	r.GET("/api/users", handler.ListUsers)
	r.DELETE("/api/users/:id", handler.DeleteUser)
	return r
}

func TestUserHandler_List(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := env.createUser(t, "Alice", "alice@example.com", models.SystemRoleMember)
	env.createUser(t, "Bob", "bob@example.com", models.SystemRoleMember)

	w := doJSON(t, userRoutes(env, alice), http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "bob@example.com")
	require.NotContains(t, w.Body.String(), "hashed")
}

func TestUserHandler_Delete(t *testing.T) {
	env := setupHandlerTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Admin", "admin@example.com", models.SystemRoleAdmin)
	other := env.createUser(t, "Other", "other@example.com", models.SystemRoleAdmin)
	bob := env.createUser(t, "Bob", "bob@example.com", models.SystemRoleMember)

	ws, err := env.workspaceService.CreateWorkspace(ctx, admin, services.CreateWorkspaceInput{Name: "Eng"})
	require.NoError(t, err)
	_, _, err = env.workspaceService.AddMember(ctx, admin, ws.ID, services.AddMemberInput{TargetUserID: bob.ID})
	require.NoError(t, err)

	tests := []struct {
		name   string
		as     *models.User
		target string
		status int
	}{
		{"member cannot delete", bob, admin.ID, http.StatusForbidden},
		{"self", admin, admin.ID, http.StatusBadRequest},
		{"another admin", admin, other.ID, http.StatusBadRequest},
		{"missing user", admin, "missing", http.StatusNotFound},
		{"member", admin, bob.ID, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, userRoutes(env, tt.as), http.MethodDelete, "/api/users/"+tt.target, nil)
			require.Equal(t, tt.status, w.Code)
		})
	}

	stored, err := env.workspaces.FindByID(ctx, ws.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 1)
	require.Equal(t, admin.ID, stored.Members[0].User.RawID())
}
