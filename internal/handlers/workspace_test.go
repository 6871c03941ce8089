package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow-api/internal/dto"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
	"go.uber.org/zap"
)

type workspaceResponse struct {
	Success   bool             `json:"success"`
	Workspace dto.WorkspaceDTO `json:"workspace"`
	Member    *dto.MemberDTO   `json:"member"`
}

func workspaceRoutes(env *handlerTestEnv, as *models.User) http.Handler {
	handler := NewWorkspaceHandler(env.workspaceService, env.userService, zap.NewNop())

	r := env.router(as)
	r.GET("/api/workspaces", handler.ListWorkspaces)
	r.POST("/api/workspaces", handler.CreateWorkspace)
	r.GET("/api/workspaces/:workspaceId", handler.GetWorkspace)
	r.PATCH("/api/workspaces/:workspaceId", handler.UpdateWorkspace)
	r.DELETE("/api/workspaces/:workspaceId", handler.DeleteWorkspace)
	r.POST("/api/workspaces/:workspaceId/members", handler.AddMember)
	r.DELETE("/api/workspaces/:workspaceId/members/:memberId", handler.RemoveMember)
	return r
}

func TestWorkspaceHandler_CreateAndGet(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@example.com", models.SystemRoleAdmin)
	r := workspaceRoutes(env, admin)

	w := doJSON(t, r, http.MethodPost, "/api/workspaces", map[string]string{"name": "Eng"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created workspaceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.True(t, created.Success)
	require.Equal(t, "Eng", created.Workspace.Name)
	require.Equal(t, admin.ID, created.Workspace.Owner.RawID())
	require.True(t, created.Workspace.Owner.IsResolved())
	require.Equal(t, "Admin", created.Workspace.Owner.User.Name)

	w = doJSON(t, r, http.MethodGet, "/api/workspaces/"+created.Workspace.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var fetched workspaceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	require.Equal(t, created.Workspace.ID, fetched.Workspace.ID)
	require.Equal(t, models.WorkspaceRoleOwner, fetched.Workspace.YourRole)
}

func TestWorkspaceHandler_CreateForbiddenForMembers(t *testing.T) {
	env := setupHandlerTestEnv(t)
	member := env.createUser(t, "Member", "member@example.com", models.SystemRoleMember)
	r := workspaceRoutes(env, member)

	w := doJSON(t, r, http.MethodPost, "/api/workspaces", map[string]string{"name": "Eng"})
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "FORBIDDEN", decodeError(t, w).Code)

	var count int64
	require.NoError(t, env.db.Model(&models.Workspace{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestWorkspaceHandler_Unauthenticated(t *testing.T) {
	env := setupHandlerTestEnv(t)
	r := workspaceRoutes(env, nil)

	w := doJSON(t, r, http.MethodGet, "/api/workspaces", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)
}

func TestWorkspaceHandler_MembersLifecycle(t *testing.T) {
	env := setupHandlerTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Admin", "admin@example.com", models.SystemRoleAdmin)
	bob := env.createUser(t, "Bob", "bob@example.com", models.SystemRoleMember)

	ws, err := env.workspaceService.CreateWorkspace(ctx, admin, services.CreateWorkspaceInput{Name: "Eng"})
	require.NoError(t, err)

	r := workspaceRoutes(env, admin)
	membersURL := "/api/workspaces/" + ws.ID + "/members"

	w := doJSON(t, r, http.MethodPost, membersURL, map[string]string{"targetUserId": bob.ID, "role": "viewer"})
	require.Equal(t, http.StatusOK, w.Code)

	var added workspaceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &added))
	require.NotNil(t, added.Member)
	require.Equal(t, bob.ID, added.Member.ID)
	require.Equal(t, models.WorkspaceRoleViewer, added.Member.Role)

	w = doJSON(t, r, http.MethodPost, membersURL, map[string]string{"targetUserId": bob.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "ALREADY_EXISTS", decodeError(t, w).Code)

	w = doJSON(t, r, http.MethodPost, membersURL, map[string]string{"targetUserId": admin.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodDelete, membersURL+"/"+admin.ID, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_OPERATION", decodeError(t, w).Code)

	w = doJSON(t, r, http.MethodDelete, membersURL+"/"+bob.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, membersURL+"/"+bob.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkspaceHandler_AddMemberUnknownUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := env.createUser(t, "Admin", "admin@example.com", models.SystemRoleAdmin)
	ws, err := env.workspaceService.CreateWorkspace(context.Background(), admin, services.CreateWorkspaceInput{Name: "Eng"})
	require.NoError(t, err)

	r := workspaceRoutes(env, admin)
	w := doJSON(t, r, http.MethodPost, "/api/workspaces/"+ws.ID+"/members", map[string]string{"targetUserId": "missing"})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "User not found", decodeError(t, w).Error)
}

func TestWorkspaceHandler_DeleteHidesFromMembers(t *testing.T) {
	env := setupHandlerTestEnv(t)
	ctx := context.Background()
	admin := env.createUser(t, "Admin", "admin@example.com", models.SystemRoleAdmin)
	bob := env.createUser(t, "Bob", "bob@example.com", models.SystemRoleMember)

	ws, err := env.workspaceService.CreateWorkspace(ctx, admin, services.CreateWorkspaceInput{Name: "Eng"})
	require.NoError(t, err)
	_, _, err = env.workspaceService.AddMember(ctx, admin, ws.ID, services.AddMemberInput{TargetUserID: bob.ID})
	require.NoError(t, err)

	w := doJSON(t, workspaceRoutes(env, bob), http.MethodDelete, "/api/workspaces/"+ws.ID, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, workspaceRoutes(env, admin), http.MethodDelete, "/api/workspaces/"+ws.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, workspaceRoutes(env, bob), http.MethodGet, "/api/workspaces", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Workspaces []dto.WorkspaceDTO `json:"workspaces"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Empty(t, listed.Workspaces)
}
