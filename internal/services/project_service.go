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
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"gorm.io/gorm"
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	userRepo      repository.UserRepository
	now           func() time.Time
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	workspaceRepo repository.WorkspaceRepository,
	userRepo repository.UserRepository,
) *ProjectService {
	return &ProjectService{
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		userRepo:      userRepo,
		now:           time.Now,
	}
}

// CreateProjectInput represents parameters to create a project. An empty
// WorkspaceID selects the caller's default workspace.
type CreateProjectInput struct {
	Name        string
	Description string
	WorkspaceID string
	Status      models.ProjectStatus
	Priority    models.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Color       string
}

// UpdateProjectInput holds the fields to change; nil leaves a field as is.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	Priority    *models.Priority
	StartDate   *time.Time
	EndDate     *time.Time
	Color       *string
}

// ProjectMember is one resolved entry of a project's roster.
type ProjectMember struct {
	User models.UserRef
	Role models.WorkspaceRole
}

// ListProjects returns the projects of the caller's accessible workspaces,
// or of one of them when workspaceID is set.
func (s *ProjectService) ListProjects(ctx context.Context, caller *models.User, workspaceID string) ([]models.Project, error) {
	scope, err := s.scopeFor(ctx, caller)
	if err != nil {
		return nil, err
	}

	filter := repository.ProjectFilter{WorkspaceIDs: scope.IDs()}
	if workspaceID != "" {
		id, err := scope.Resolve(workspaceID)
		if err != nil {
			return nil, err
		}
		filter.WorkspaceIDs = []string{id}
	}

	projects, err := s.projectRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a project with the caller as its manager.
func (s *ProjectService) CreateProject(ctx context.Context, caller *models.User, input CreateProjectInput) (*models.Project, error) {
	if err := authz.CanCreateProject(caller); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("name", "Project name is required")
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Color:       input.Color,
		CreatedByID: membership.CanonicalID(caller.ID),
	}
	if project.Status == "" {
		project.Status = models.ProjectStatusPlanning
	}
	if project.Priority == "" {
		project.Priority = models.PriorityMedium
	}
	if project.Color == "" {
		project.Color = constants.DefaultProjectColor
	}
	if err := validateProject(project); err != nil {
		return nil, err
	}

	ws, err := s.targetWorkspace(ctx, caller, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	project.WorkspaceID = ws.ID
	membership.AddProjectMember(project, caller.ID, models.ProjectRoleManager)

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// GetProject returns a project of a workspace the caller belongs to.
func (s *ProjectService) GetProject(ctx context.Context, caller *models.User, id string) (*models.Project, error) {
	project, _, err := s.accessibleProject(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	return project, nil
}

// UpdateProject applies the given changes.
func (s *ProjectService) UpdateProject(ctx context.Context, caller *models.User, id string, input UpdateProjectInput) (*models.Project, error) {
	project, _, err := s.accessibleProject(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, invalid("name", "Project name is required")
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.Priority != nil {
		project.Priority = *input.Priority
	}
	if input.StartDate != nil {
		project.StartDate = input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.Color != nil {
		project.Color = *input.Color
	}
	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return project, nil
}

// DeleteProject removes the project and its tasks.
func (s *ProjectService) DeleteProject(ctx context.Context, caller *models.User, id string) error {
	if _, _, err := s.accessibleProject(ctx, caller, id); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// ListMembers returns the roster of the project's workspace: the owner first
// with role owner, then every member.
func (s *ProjectService) ListMembers(ctx context.Context, caller *models.User, id string) ([]ProjectMember, error) {
	_, ws, err := s.accessibleProject(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	roster := membership.Roster(ws)
	ids := make([]string, 0, len(roster))
	for _, entry := range roster {
		ids = append(ids, membership.Canonical(entry.User))
	}

	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	byID := make(map[string]*models.User, len(users))
	for i := range users {
		byID[membership.CanonicalID(users[i].ID)] = &users[i]
	}

	members := make([]ProjectMember, 0, len(roster))
	for _, entry := range roster {
		ref := entry.User
		if u, ok := byID[membership.Canonical(ref)]; ok {
			ref = models.ResolvedRef(u)
		}
		members = append(members, ProjectMember{User: ref, Role: entry.Role})
	}
	return members, nil
}

// accessibleProject loads a project and its workspace and checks that the
// caller belongs to that workspace.
func (s *ProjectService) accessibleProject(ctx context.Context, caller *models.User, id string) (*models.Project, *models.Workspace, error) {
	if caller == nil {
		return nil, nil, authz.ErrUnauthenticated
	}

	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProjectNotFound
		}
		return nil, nil, fmt.Errorf("failed to find project: %w", err)
	}

	ws, err := s.workspaceRepo.FindByID(ctx, project.WorkspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if err := authz.CanAccessProject(caller, ws); err != nil {
		return nil, nil, err
	}
	return project, ws, nil
}

// targetWorkspace returns the named workspace, or the caller's first owned
// workspace, creating "My Workspace" when the caller owns none.
func (s *ProjectService) targetWorkspace(ctx context.Context, caller *models.User, workspaceID string) (*models.Workspace, error) {
	if workspaceID != "" {
		ws, err := s.workspaceRepo.FindByID(ctx, workspaceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrWorkspaceNotFound
			}
			return nil, fmt.Errorf("failed to find workspace: %w", err)
		}
		return ws, nil
	}

	owned, err := s.workspaceRepo.FindOwnedBy(ctx, membership.CanonicalID(caller.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to find default workspace: %w", err)
	}
	if len(owned) > 0 {
		return &owned[0], nil
	}

	ws := &models.Workspace{
		Name:        constants.DefaultWorkspaceName,
		Description: constants.DefaultWorkspaceDescription,
		OwnerID:     membership.CanonicalID(caller.ID),
		Members: []models.WorkspaceMember{{
			User:     models.RefTo(membership.CanonicalID(caller.ID)),
			Role:     models.WorkspaceRoleAdmin,
			JoinedAt: s.now(),
		}},
	}
	if err := s.workspaceRepo.Create(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to create default workspace: %w", err)
	}
	return ws, nil
}

func (s *ProjectService) scopeFor(ctx context.Context, caller *models.User) (authz.Scope, error) {
	if caller == nil {
		return authz.Scope{}, authz.ErrUnauthenticated
	}
	workspaces, err := s.workspaceRepo.ListForUser(ctx, caller.ID)
	if err != nil {
		return authz.Scope{}, fmt.Errorf("failed to list workspaces: %w", err)
	}
	return authz.NewScope(caller.ID, workspaces), nil
}

func validateProject(p *models.Project) error {
	if utf8.RuneCountInString(p.Name) > constants.MaxProjectNameLength {
		return invalid("name", "Project name cannot be more than 100 characters")
	}
	if utf8.RuneCountInString(p.Description) > constants.MaxProjectDescriptionLength {
		return invalid("description", "Description cannot be more than 1000 characters")
	}
	if !p.Status.Valid() {
		return invalid("status", fmt.Sprintf("%q is not a valid project status", p.Status))
	}
	if !p.Priority.Valid() {
		return invalid("priority", fmt.Sprintf("%q is not a valid priority", p.Priority))
	}
	return nil
}
