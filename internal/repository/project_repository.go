package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskflow-api/internal/database"
	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *GormProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	projects := []models.Project{}
	if len(filter.WorkspaceIDs) == 0 {
		return projects, nil
	}

	if err := r.db.WithContext(ctx).
		Scopes(database.InWorkspaces(filter.WorkspaceIDs), database.NewestFirst).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).
		Model(project).
		Select("name", "description", "status", "priority", "start_date", "end_date", "color", "updated_at").
		Updates(project).Error
}

func (r *GormProjectRepository) UpdateMembers(ctx context.Context, id string, members []models.ProjectMember) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{ID: id}).
		Select("members", "updated_at").
		Updates(&models.Project{Members: members, UpdatedAt: time.Now()}).Error
}

func (r *GormProjectRepository) ListMentioning(ctx context.Context, userID string) ([]models.Project, error) {
	var candidates []models.Project
	if err := r.db.WithContext(ctx).
		Scopes(database.MentionsUser("members", userID)).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	projects := candidates[:0]
	for _, p := range candidates {
		if membership.ProjectMemberIDs(&p).Has(userID) {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

// Delete removes the project's tasks and then the project, in one transaction.
func (r *GormProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormProjectRepository) DeleteCreatedBy(ctx context.Context, userID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&models.Project{}).
			Where("created_by_id = ?", userID).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("project_id IN ?", ids).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		result := tx.Where("id IN ?", ids).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	return deleted, err
}
