package repository

import (
	"context"

	"github.com/yukikurage/taskflow-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByEmails returns the users whose email is in the list
	FindByEmails(ctx context.Context, emails []string) ([]models.User, error)

	// FindByIDs returns the users whose ID is in the list
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)

	// List returns every user, newest first
	List(ctx context.Context) ([]models.User, error)

	// Delete removes the user record only
	Delete(ctx context.Context, id string) error
}

// WorkspaceRepository defines the interface for workspace data access
type WorkspaceRepository interface {
	// Create creates a new workspace
	Create(ctx context.Context, ws *models.Workspace) error

	// FindByID finds a workspace by ID
	FindByID(ctx context.Context, id string) (*models.Workspace, error)

	// FindOwnedBy lists workspaces owned by the user, oldest first
	FindOwnedBy(ctx context.Context, ownerID string) ([]models.Workspace, error)

	// ListForUser lists workspaces the user owns or is a member of, newest first
	ListForUser(ctx context.Context, userID string) ([]models.Workspace, error)

	// ListMentioning lists workspaces whose members list references the user
	ListMentioning(ctx context.Context, userID string) ([]models.Workspace, error)

	// Update writes name and description
	Update(ctx context.Context, ws *models.Workspace) error

	// UpdateMembers writes only the embedded members list
	UpdateMembers(ctx context.Context, id string, members []models.WorkspaceMember) error

	// Delete removes the workspace together with its projects and tasks
	Delete(ctx context.Context, id string) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	WorkspaceIDs []string
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error

	FindByID(ctx context.Context, id string) (*models.Project, error)

	// List retrieves projects in the given workspaces, newest first
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)

	Update(ctx context.Context, project *models.Project) error

	// UpdateMembers writes only the embedded members list
	UpdateMembers(ctx context.Context, id string, members []models.ProjectMember) error

	// ListMentioning lists projects whose members list references the user
	ListMentioning(ctx context.Context, userID string) ([]models.Project, error)

	// Delete removes the project and its tasks
	Delete(ctx context.Context, id string) error

	// DeleteCreatedBy removes every project created by the user and their
	// tasks, returning the number of projects removed
	DeleteCreatedBy(ctx context.Context, userID string) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	WorkspaceIDs []string
	ProjectID    *string
	Status       *models.TaskStatus
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error

	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves tasks with filtering, newest first
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	Update(ctx context.Context, task *models.Task, columns ...string) error

	// UpdateComments writes only the comment list
	UpdateComments(ctx context.Context, id string, comments []models.TaskComment) error

	// UpdateAssignees writes only the assignee list
	UpdateAssignees(ctx context.Context, id string, assignees []models.UserRef) error

	// ListAssignedTo lists tasks whose assignee list references the user
	ListAssignedTo(ctx context.Context, userID string) ([]models.Task, error)

	Delete(ctx context.Context, id string) error
}
