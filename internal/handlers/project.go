package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/dto"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
	"go.uber.org/zap"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
	users          UserDirectory
	logger         *zap.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, users UserDirectory, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		users:          users,
		logger:         logger,
	}
}

// ListProjects returns projects of the caller's workspaces. The optional
// ?workspace= query narrows the list to one workspace.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), caller, c.Query("workspace"))
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	dir, ok := lookupUsers(c, h.users, h.logger, dto.ProjectUserIDs(projects...))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"projects": dto.ToProjectDTOs(projects, dir, caller.ID),
	})
}

// CreateProject creates a project.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), caller, req.ToInput())
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	h.respondProject(c, http.StatusCreated, project, caller)
}

// GetProject returns a single project.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	h.respondProject(c, http.StatusOK, project, caller)
}

// UpdateProject applies a partial update to a project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), caller, c.Param("id"), req.ToInput())
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	h.respondProject(c, http.StatusOK, project, caller)
}

// DeleteProject removes a project and its tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project deleted successfully",
	})
}

// ListMembers returns the project roster with users resolved.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	members, err := h.projectService.ListMembers(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"members": dto.ToRosterDTOs(members),
	})
}

func (h *ProjectHandler) respondProject(c *gin.Context, status int, project *models.Project, caller *models.User) {
	dir, ok := lookupUsers(c, h.users, h.logger, dto.ProjectUserIDs(*project))
	if !ok {
		return
	}

	c.JSON(status, gin.H{
		"success": true,
		"project": dto.ToProjectDTO(*project, dir, caller.ID),
	})
}
