package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/taskflow-api/internal/authz"
	"github.com/yukikurage/taskflow-api/internal/constants"
	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/metrics"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkspaceService provides business logic for workspace operations.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name        string
	Description string
}

// UpdateWorkspaceInput holds the fields to change; nil leaves a field as is.
type UpdateWorkspaceInput struct {
	Name        *string
	Description *string
}

// AddMemberInput names the user to add and their workspace role.
type AddMemberInput struct {
	TargetUserID string
	Role         models.WorkspaceRole
}

// ListWorkspaces returns every workspace the caller owns or is a member of.
func (s *WorkspaceService) ListWorkspaces(ctx context.Context, caller *models.User) ([]models.Workspace, error) {
	if caller == nil {
		return nil, authz.ErrUnauthenticated
	}
	workspaces, err := s.workspaceRepo.ListForUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return workspaces, nil
}

// CreateWorkspace creates a workspace owned by the caller, who is also
// listed as its first admin member.
func (s *WorkspaceService) CreateWorkspace(ctx context.Context, caller *models.User, input CreateWorkspaceInput) (*models.Workspace, error) {
	if err := authz.CanCreateWorkspace(caller); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "Workspace name is required")
	}
	if err := validateWorkspaceFields(name, input.Description); err != nil {
		return nil, err
	}

	ws := &models.Workspace{
		Name:        name,
		Description: input.Description,
		OwnerID:     membership.CanonicalID(caller.ID),
		Members: []models.WorkspaceMember{{
			User:     models.RefTo(membership.CanonicalID(caller.ID)),
			Role:     models.WorkspaceRoleAdmin,
			JoinedAt: s.now(),
		}},
	}
	if err := s.workspaceRepo.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return ws, nil
}

// GetWorkspace returns a workspace visible to the caller.
func (s *WorkspaceService) GetWorkspace(ctx context.Context, caller *models.User, id string) (*models.Workspace, error) {
	if caller == nil {
		return nil, authz.ErrUnauthenticated
	}
	ws, err := s.findWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanViewWorkspace(caller, ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// UpdateWorkspace changes the name and description.
func (s *WorkspaceService) UpdateWorkspace(ctx context.Context, caller *models.User, id string, input UpdateWorkspaceInput) (*models.Workspace, error) {
	if caller == nil {
		return nil, authz.ErrUnauthenticated
	}
	ws, err := s.findWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CanUpdateWorkspace(caller, ws); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalid("name", "Workspace name is required")
		}
		ws.Name = name
	}
	if input.Description != nil {
		ws.Description = *input.Description
	}
	if err := validateWorkspaceFields(ws.Name, ws.Description); err != nil {
		return nil, err
	}

	if err := s.workspaceRepo.Update(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}
	return ws, nil
}

// DeleteWorkspace removes the workspace with all of its projects and tasks.
func (s *WorkspaceService) DeleteWorkspace(ctx context.Context, caller *models.User, id string) error {
	if err := authz.CanDeleteWorkspace(caller); err != nil {
		return err
	}
	if _, err := s.findWorkspace(ctx, id); err != nil {
		return err
	}

	if err := s.workspaceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	return nil
}

// AddMember adds the target user to the workspace and confirms the stored
// workspace lists them. A write that is not visible on re-read is retried
// up to MembershipWriteAttempts times before ErrMembershipWriteFailed.
func (s *WorkspaceService) AddMember(ctx context.Context, caller *models.User, id string, input AddMemberInput) (*models.Workspace, *models.User, error) {
	if err := authz.CanManageWorkspaceMembers(caller); err != nil {
		return nil, nil, err
	}

	targetID := strings.TrimSpace(input.TargetUserID)
	if targetID == "" {
		return nil, nil, invalid("targetUserId", "targetUserId is required")
	}
	role := input.Role
	if role == "" {
		role = models.WorkspaceRoleMember
	}
	if !role.Valid() {
		return nil, nil, invalid("role", "Role must be one of admin, member, viewer")
	}

	if _, err := s.findWorkspace(ctx, id); err != nil {
		return nil, nil, err
	}

	target, err := s.userRepo.FindByID(ctx, membership.CanonicalID(targetID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	for attempt := 1; attempt <= constants.MembershipWriteAttempts; attempt++ {
		ws, err := s.findWorkspace(ctx, id)
		if err != nil {
			return nil, nil, err
		}

		if err := membership.AddMember(ws, target.ID, role, s.now()); err != nil {
			// A previous attempt may have landed after its verification read.
			if attempt > 1 && errors.Is(err, membership.ErrAlreadyMember) {
				return ws, target, nil
			}
			return nil, nil, err
		}

		if err := s.workspaceRepo.UpdateMembers(ctx, ws.ID, ws.Members); err != nil {
			return nil, nil, fmt.Errorf("failed to save workspace: %w", err)
		}

		stored, err := s.findWorkspace(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to verify workspace save: %w", err)
		}
		if membership.MemberIDs(stored).Has(target.ID) {
			return stored, target, nil
		}

		s.metrics.MembershipWriteFail.Inc()
		s.logger.Warn("workspace member not visible after write",
			zap.String("workspace_id", id),
			zap.String("user_id", target.ID),
			zap.Int("attempt", attempt),
		)
	}

	return nil, nil, ErrMembershipWriteFailed
}

// RemoveMember removes a member. The owner can never be removed this way.
func (s *WorkspaceService) RemoveMember(ctx context.Context, caller *models.User, id, memberID string) (*models.Workspace, error) {
	if err := authz.CanManageWorkspaceMembers(caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(memberID) == "" {
		return nil, invalid("memberId", "Workspace ID and member ID are required")
	}

	ws, err := s.findWorkspace(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := membership.RemoveMember(ws, memberID); err != nil {
		return nil, err
	}

	if err := s.workspaceRepo.UpdateMembers(ctx, ws.ID, ws.Members); err != nil {
		return nil, fmt.Errorf("failed to save workspace: %w", err)
	}
	return ws, nil
}

func (s *WorkspaceService) findWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	ws, err := s.workspaceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}
	return ws, nil
}

func validateWorkspaceFields(name, description string) error {
	if utf8.RuneCountInString(name) > constants.MaxWorkspaceNameLength {
		return invalid("name", "Workspace name cannot be more than 100 characters")
	}
	if utf8.RuneCountInString(description) > constants.MaxWorkspaceDescriptionLength {
		return invalid("description", "Description cannot be more than 500 characters")
	}
	return nil
}
