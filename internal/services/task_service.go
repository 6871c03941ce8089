package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yukikurage/taskflow-api/internal/authz"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	assignments   *AssignmentResolver
	now           func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	projectRepo repository.ProjectRepository,
	workspaceRepo repository.WorkspaceRepository,
	assignments *AssignmentResolver,
) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		assignments:   assignments,
		now:           time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID string
	Status    string
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title          string
	Description    string
	ProjectID      string
	Status         models.TaskStatus
	Priority       models.Priority
	DueDate        *time.Time
	AssignedTo     []string
	AssignedEmails string
	Tags           []string
}

// UpdateTaskInput represents input for updating a task. Supplying either
// AssignedTo or AssignedEmails replaces the assignee list.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	Priority       *models.Priority
	DueDate        *time.Time
	Tags           *[]string
	AssignedTo     *[]string
	AssignedEmails *string
}

// ListTasks returns tasks of the caller's accessible workspaces, optionally
// narrowed to one project and one status.
func (s *TaskService) ListTasks(ctx context.Context, caller *models.User, input ListTasksInput) ([]models.Task, error) {
	if caller == nil {
		return nil, authz.ErrUnauthenticated
	}

	workspaces, err := s.workspaceRepo.ListForUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	scope := authz.NewScope(caller.ID, workspaces)

	filter := repository.TaskFilter{WorkspaceIDs: scope.IDs()}
	if input.ProjectID != "" {
		project, err := s.findProject(ctx, input.ProjectID)
		if err != nil {
			return nil, err
		}
		if err := scope.Require(project.WorkspaceID); err != nil {
			return nil, err
		}
		filter.WorkspaceIDs = []string{project.WorkspaceID}
		filter.ProjectID = &project.ID
	}
	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, invalid("status", fmt.Sprintf("%q is not a valid task status", input.Status))
		}
		filter.Status = &status
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// CreateTask creates a task after validating its assignees. Nothing is
// written when any assignee is rejected.
func (s *TaskService) CreateTask(ctx context.Context, caller *models.User, input CreateTaskInput) (*models.Task, error) {
	if caller == nil {
		return nil, authz.ErrUnauthenticated
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("title", "Task title is required")
	}
	if strings.TrimSpace(input.ProjectID) == "" {
		return nil, invalid("projectId", "Project ID is required")
	}

	project, err := s.findProject(ctx, strings.TrimSpace(input.ProjectID))
	if err != nil {
		return nil, err
	}
	ws, err := s.findWorkspace(ctx, project.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if err := authz.CanAccessTask(caller, ws); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		ProjectID:   project.ID,
		WorkspaceID: ws.ID,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        cleanTags(input.Tags),
		CreatedByID: membership.CanonicalID(caller.ID),
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	assignees, err := s.assignments.Resolve(ctx, ws, input.AssignedTo, input.AssignedEmails)
	if err != nil {
		return nil, err
	}
	task.AssignedTo = refs(assignees)
	task.StampCompletion(s.now())

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// GetTask retrieves a task of a workspace the caller belongs to.
func (s *TaskService) GetTask(ctx context.Context, caller *models.User, id string) (*models.Task, error) {
	task, _, err := s.accessibleTask(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the given changes. CompletedAt is stamped the first
// time the task becomes completed and never moves afterwards.
func (s *TaskService) UpdateTask(ctx context.Context, caller *models.User, id string, input UpdateTaskInput) (*models.Task, error) {
	task, ws, err := s.accessibleTask(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, invalid("title", "Task title is required")
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		task.Tags = cleanTags(*input.Tags)
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	var columns []string
	if input.AssignedTo != nil || input.AssignedEmails != nil {
		var ids []string
		if input.AssignedTo != nil {
			ids = *input.AssignedTo
		}
		var emails string
		if input.AssignedEmails != nil {
			emails = *input.AssignedEmails
		}
		assignees, err := s.assignments.Resolve(ctx, ws, ids, emails)
		if err != nil {
			return nil, err
		}
		task.AssignedTo = refs(assignees)
		columns = append(columns, "assigned_to")
	}

	task.StampCompletion(s.now())
	if err := s.taskRepo.Update(ctx, task, columns...); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, caller *models.User, id string) error {
	if _, _, err := s.accessibleTask(ctx, caller, id); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// AddComment appends a comment by the caller to the task.
func (s *TaskService) AddComment(ctx context.Context, caller *models.User, id, content string) (*models.Task, error) {
	task, _, err := s.accessibleTask(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("content", "Comment content is required")
	}

	task.Comments = append(task.Comments, models.TaskComment{
		ID:        uuid.NewString(),
		User:      models.RefTo(membership.CanonicalID(caller.ID)),
		Content:   content,
		CreatedAt: s.now(),
	})

	if err := s.taskRepo.UpdateComments(ctx, task.ID, task.Comments); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return task, nil
}

func (s *TaskService) accessibleTask(ctx context.Context, caller *models.User, id string) (*models.Task, *models.Workspace, error) {
	if caller == nil {
		return nil, nil, authz.ErrUnauthenticated
	}

	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	ws, err := s.findWorkspace(ctx, task.WorkspaceID)
	if err != nil {
		return nil, nil, err
	}
	if err := authz.CanAccessTask(caller, ws); err != nil {
		return nil, nil, err
	}
	return task, ws, nil
}

func (s *TaskService) findProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *TaskService) findWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	ws, err := s.workspaceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return ws, nil
}

func validateTask(t *models.Task) error {
	if utf8.RuneCountInString(t.Title) > constants.MaxTaskTitleLength {
		return invalid("title", "Task title cannot be more than 200 characters")
	}
	if utf8.RuneCountInString(t.Description) > constants.MaxTaskDescriptionLength {
		return invalid("description", "Description cannot be more than 2000 characters")
	}
	if !t.Status.Valid() {
		return invalid("status", fmt.Sprintf("%q is not a valid task status", t.Status))
	}
	if !t.Priority.Valid() {
		return invalid("priority", fmt.Sprintf("%q is not a valid priority", t.Priority))
	}
	return nil
}

func refs(ids []string) []models.UserRef {
	out := make([]models.UserRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.RefTo(id))
	}
	return out
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
