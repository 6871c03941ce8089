package repository

import (
	"context"
	"time"

	"github.com/yukikurage/taskflow-api/internal/database"
	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormWorkspaceRepository is a GORM implementation of WorkspaceRepository
type GormWorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(db *gorm.DB) WorkspaceRepository {
	return &GormWorkspaceRepository{db: db}
}

func (r *GormWorkspaceRepository) Create(ctx context.Context, ws *models.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

func (r *GormWorkspaceRepository) FindByID(ctx context.Context, id string) (*models.Workspace, error) {
	var ws models.Workspace
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ws).Error; err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *GormWorkspaceRepository) FindOwnedBy(ctx context.Context, ownerID string) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&workspaces).Error; err != nil {
		return nil, err
	}
	return workspaces, nil
}

// ListForUser prefilters in SQL and confirms membership on the decoded
// members list, so resolved and bare references are both honored.
func (r *GormWorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	var candidates []models.Workspace
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? OR members LIKE ?", userID, database.MentionPattern(userID)).
		Scopes(database.NewestFirst).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	workspaces := candidates[:0]
	for _, ws := range candidates {
		if membership.HasAccess(&ws, userID) {
			workspaces = append(workspaces, ws)
		}
	}
	return workspaces, nil
}

func (r *GormWorkspaceRepository) ListMentioning(ctx context.Context, userID string) ([]models.Workspace, error) {
	var candidates []models.Workspace
	if err := r.db.WithContext(ctx).
		Scopes(database.MentionsUser("members", userID)).
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	workspaces := candidates[:0]
	for _, ws := range candidates {
		for _, m := range ws.Members {
			if membership.Canonical(m.User) == membership.CanonicalID(userID) {
				workspaces = append(workspaces, ws)
				break
			}
		}
	}
	return workspaces, nil
}

// Update writes the editable fields only. Members go through UpdateMembers
// so a rename never rewrites a stale member list.
func (r *GormWorkspaceRepository) Update(ctx context.Context, ws *models.Workspace) error {
	return r.db.WithContext(ctx).
		Model(ws).
		Select("name", "description", "updated_at").
		Updates(ws).Error
}

func (r *GormWorkspaceRepository) UpdateMembers(ctx context.Context, id string, members []models.WorkspaceMember) error {
	result := r.db.WithContext(ctx).
		Model(&models.Workspace{ID: id}).
		Select("members", "updated_at").
		Updates(&models.Workspace{Members: members, UpdatedAt: time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes tasks, then projects, then the workspace, in one transaction.
func (r *GormWorkspaceRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("workspace_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("workspace_id = ?", id).Delete(&models.Project{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Workspace{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
