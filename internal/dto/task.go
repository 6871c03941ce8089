package dto

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
)

// CreateTaskRequest is the body of POST /api/tasks. Assignees may be given
// as ids (or user objects) and as a comma separated email list.
type CreateTaskRequest struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	ProjectID      string            `json:"projectId"`
	Status         models.TaskStatus `json:"status"`
	Priority       models.Priority   `json:"priority"`
	DueDate        *Date             `json:"dueDate"`
	AssignedTo     []models.UserRef  `json:"assignedTo"`
	AssignedEmails string            `json:"assignedEmails"`
	Tags           []string          `json:"tags"`
}

// ToInput converts the request to service input
func (r CreateTaskRequest) ToInput() services.CreateTaskInput {
	return services.CreateTaskInput{
		Title:          r.Title,
		Description:    r.Description,
		ProjectID:      r.ProjectID,
		Status:         r.Status,
		Priority:       r.Priority,
		DueDate:        r.DueDate.Ptr(),
		AssignedTo:     rawIDs(r.AssignedTo),
		AssignedEmails: r.AssignedEmails,
		Tags:           r.Tags,
	}
}

// UpdateTaskRequest is the body of PUT /api/tasks/:id
type UpdateTaskRequest struct {
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Status         *models.TaskStatus `json:"status"`
	Priority       *models.Priority   `json:"priority"`
	DueDate        *Date              `json:"dueDate"`
	Tags           *[]string          `json:"tags"`
	AssignedTo     *[]models.UserRef  `json:"assignedTo"`
	AssignedEmails *string            `json:"assignedEmails"`
}

// ToInput converts the request to service input
func (r UpdateTaskRequest) ToInput() services.UpdateTaskInput {
	input := services.UpdateTaskInput{
		Title:          r.Title,
		Description:    r.Description,
		Status:         r.Status,
		Priority:       r.Priority,
		DueDate:        r.DueDate.Ptr(),
		Tags:           r.Tags,
		AssignedEmails: r.AssignedEmails,
	}
	if r.AssignedTo != nil {
		ids := rawIDs(*r.AssignedTo)
		input.AssignedTo = &ids
	}
	return input
}

// CommentRequest is the body of POST /api/tasks/:id/comments
type CommentRequest struct {
	Content string `json:"content"`
}

// TaskCommentDTO represents a comment with its author resolved
type TaskCommentDTO struct {
	ID        string         `json:"id"`
	User      models.UserRef `json:"user"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Project     string            `json:"project"`
	Workspace   string            `json:"workspace"`
	Status      models.TaskStatus `json:"status"`
	Priority    models.Priority   `json:"priority"`
	AssignedTo  []models.UserRef  `json:"assignedTo"`
	CreatedBy   models.UserRef    `json:"createdBy"`
	DueDate     *time.Time        `json:"dueDate"`
	Tags        []string          `json:"tags"`
	Comments    []TaskCommentDTO  `json:"comments"`
	CompletedAt *time.Time        `json:"completedAt"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// TaskUserIDs lists the user ids referenced by the tasks
func TaskUserIDs(tasks ...models.Task) []string {
	var ids []string
	for _, t := range tasks {
		ids = append(ids, t.CreatedByID)
		for _, ref := range t.AssignedTo {
			ids = append(ids, ref.RawID())
		}
		for _, comment := range t.Comments {
			ids = append(ids, comment.User.RawID())
		}
	}
	return ids
}

// ToTaskDTO converts a Task model, resolving users from dir
func ToTaskDTO(task models.Task, dir Directory) TaskDTO {
	comments := make([]TaskCommentDTO, len(task.Comments))
	for i, comment := range task.Comments {
		comments[i] = TaskCommentDTO{
			ID:        comment.ID,
			User:      dir.Ref(comment.User),
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt,
		}
	}

	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Project:     task.ProjectID,
		Workspace:   task.WorkspaceID,
		Status:      task.Status,
		Priority:    task.Priority,
		AssignedTo:  dir.refs(task.AssignedTo),
		CreatedBy:   dir.RefID(task.CreatedByID),
		DueDate:     task.DueDate,
		Tags:        tags,
		Comments:    comments,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task, dir Directory) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskDTO(task, dir)
	}
	return out
}

func rawIDs(refs []models.UserRef) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.IsZero() {
			continue
		}
		ids = append(ids, ref.RawID())
	}
	return ids
}
