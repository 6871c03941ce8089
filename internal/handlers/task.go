package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow-api/internal/dto"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
	"go.uber.org/zap"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	taskService *services.TaskService
	users       UserDirectory
	logger      *zap.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, users UserDirectory, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		users:       users,
		logger:      logger,
	}
}

// ListTasks returns tasks visible to the caller, filtered by the optional
// ?project= and ?status= query parameters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), caller, services.ListTasksInput{
		ProjectID: c.Query("project"),
		Status:    c.Query("status"),
	})
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	dir, ok := lookupUsers(c, h.users, h.logger, dto.TaskUserIDs(tasks...))
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   dto.ToTaskDTOs(tasks, dir),
	})
}

// CreateTask creates a task in a project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), caller, req.ToInput())
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	h.respondTask(c, http.StatusCreated, task)
}

// GetTask returns a single task.
func (h *TaskHandler) GetTask(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	h.respondTask(c, http.StatusOK, task)
}

// UpdateTask applies a partial update to a task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), caller, c.Param("id"), req.ToInput())
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	h.respondTask(c, http.StatusOK, task)
}

// DeleteTask removes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
	})
}

// AddComment appends a comment by the caller.
func (h *TaskHandler) AddComment(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.AddComment(c.Request.Context(), caller, c.Param("id"), req.Content)
	if err != nil {
		respondCommonError(c, h.logger, err)
		return
	}

	h.respondTask(c, http.StatusCreated, task)
}

func (h *TaskHandler) respondTask(c *gin.Context, status int, task *models.Task) {
	dir, ok := lookupUsers(c, h.users, h.logger, dto.TaskUserIDs(*task))
	if !ok {
		return
	}

	c.JSON(status, gin.H{
		"success": true,
		"task":    dto.ToTaskDTO(*task, dir),
	})
}
