package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/dto"
	apierrors "github.com/yukikurage/taskflow-api/internal/errors"
	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
	"go.uber.org/zap"
)

// WorkspaceHandler handles workspace and membership endpoints.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	users            UserDirectory
	logger           *zap.Logger
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService *services.WorkspaceService, users UserDirectory, logger *zap.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		users:            users,
		logger:           logger,
	}
}

// ListWorkspaces returns the workspaces the caller owns or belongs to.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	workspaces, err := h.workspaceService.ListWorkspaces(c.Request.Context(), caller)
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	dir, ok := lookupUsers(c, h.users, h.logger, dto.WorkspaceUserIDs(workspaces...))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"workspaces": dto.ToWorkspaceDTOs(workspaces, dir, caller.ID),
	})
}

// CreateWorkspace creates a workspace owned by the caller.
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req dto.CreateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}

	ws, err := h.workspaceService.CreateWorkspace(c.Request.Context(), caller, services.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	h.respondWorkspace(c, http.StatusCreated, ws, caller, nil)
}

// GetWorkspace returns a single workspace.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	ws, err := h.workspaceService.GetWorkspace(c.Request.Context(), caller, c.Param("workspaceId"))
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	h.respondWorkspace(c, http.StatusOK, ws, caller, nil)
}

// UpdateWorkspace changes the name or description of a workspace.
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateWorkspaceRequest
	if !bindJSON(c, &req) {
		return
	}

	ws, err := h.workspaceService.UpdateWorkspace(c.Request.Context(), caller, c.Param("workspaceId"), services.UpdateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	h.respondWorkspace(c, http.StatusOK, ws, caller, nil)
}

// DeleteWorkspace removes a workspace with its projects and tasks.
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := h.workspaceService.DeleteWorkspace(c.Request.Context(), caller, c.Param("workspaceId")); err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Workspace deleted successfully",
	})
}

// AddMember adds a user to the workspace.
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	ws, member, err := h.workspaceService.AddMember(c.Request.Context(), caller, c.Param("workspaceId"), services.AddMemberInput{
		TargetUserID: req.TargetUserID,
		Role:         req.Role,
	})
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	role, _ := membership.RoleOf(ws, member.ID)

	h.respondWorkspace(c, http.StatusOK, ws, caller, gin.H{"member": dto.ToMemberDTO(*member, role)})
}

// RemoveMember removes a member from the workspace.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	ws, err := h.workspaceService.RemoveMember(c.Request.Context(), caller, c.Param("workspaceId"), c.Param("memberId"))
	if err != nil {
		h.respondWorkspaceError(c, err)
		return
	}

	h.respondWorkspace(c, http.StatusOK, ws, caller, gin.H{"message": "Member removed successfully"})
}

func (h *WorkspaceHandler) respondWorkspace(c *gin.Context, status int, ws *models.Workspace, caller *models.User, extra gin.H) {
	dir, ok := lookupUsers(c, h.users, h.logger, dto.WorkspaceUserIDs(*ws))
	if !ok {
		return
	}

	body := gin.H{
		"success":   true,
		"workspace": dto.ToWorkspaceDTO(*ws, dir, caller.ID),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func (h *WorkspaceHandler) respondWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, membership.ErrAlreadyOwner):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeAlreadyExists, "User is already the owner of this workspace", nil)
	case errors.Is(err, membership.ErrAlreadyMember):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeAlreadyExists, "User is already a member of this workspace", nil)
	case errors.Is(err, membership.ErrCannotRemoveOwner):
		apierrors.BadRequestWithCode(c, apierrors.ErrCodeInvalidOperation, "Cannot remove the workspace owner", nil)
	case errors.Is(err, membership.ErrMemberNotFound):
		apierrors.NotFound(c, "Member not found in workspace")
	case errors.Is(err, services.ErrMembershipWriteFailed):
		apierrors.OperationFailed(c, "Member was not successfully saved to database", nil)
	default:
		respondCommonError(c, h.logger, err)
	}
}
