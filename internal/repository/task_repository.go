package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskflow-api/internal/database"
	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}
	if len(filter.WorkspaceIDs) == 0 {
		return tasks, nil
	}

	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.InWorkspaces(filter.WorkspaceIDs))

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	if err := query.Scopes(database.NewestFirst).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update saves every column of the task
var taskFields = []string{
	"title", "description", "status", "priority", "due_date", "tags", "completed_at", "updated_at",
}

// Update writes the editable task fields plus any extra columns named, such
// as "assigned_to" when the assignees were replaced. Comments are only
// written by UpdateComments.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task, columns ...string) error {
	selected := append(append([]string(nil), taskFields...), columns...)
	return r.db.WithContext(ctx).
		Model(task).
		Select(selected).
		Updates(task).Error
}

func (r *GormTaskRepository) UpdateComments(ctx context.Context, id string, comments []models.TaskComment) error {
	result := r.db.WithContext(ctx).
		Model(&models.Task{ID: id}).
		Select("comments", "updated_at").
		Updates(&models.Task{Comments: comments, UpdatedAt: time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormTaskRepository) UpdateAssignees(ctx context.Context, id string, assignees []models.UserRef) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{ID: id}).
		Select("assigned_to", "updated_at").
		Updates(&models.Task{AssignedTo: assignees, UpdatedAt: time.Now()}).Error
}

func (r *GormTaskRepository) ListAssignedTo(ctx context.Context, userID string) ([]models.Task, error) {
	var candidates []models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.MentionsUser("assigned_to", userID)).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	tasks := candidates[:0]
	for _, t := range candidates {
		for _, ref := range t.AssignedTo {
			if membership.SameUser(ref, models.RefTo(userID)) {
				tasks = append(tasks, t)
				break
			}
		}
	}
	return tasks, nil
}

// Delete removes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
