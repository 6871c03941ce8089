package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskflow-api/internal/authz"
	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/metrics"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserService lists users and removes them together with every trace they
// leave in workspaces, projects and tasks.
type UserService struct {
	userRepo      repository.UserRepository
	workspaceRepo repository.WorkspaceRepository
	projectRepo   repository.ProjectRepository
	taskRepo      repository.TaskRepository
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	workspaceRepo repository.WorkspaceRepository,
	projectRepo repository.ProjectRepository,
	taskRepo repository.TaskRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		projectRepo:   projectRepo,
		taskRepo:      taskRepo,
		metrics:       m,
		logger:        logger,
	}
}

// ListUsers returns every user, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Directory loads the given users keyed by canonical id. Unknown ids are
// left out.
func (s *UserService) Directory(ctx context.Context, ids []string) (map[string]models.User, error) {
	wanted := make([]string, 0, len(ids))
	for _, id := range ids {
		if c := membership.CanonicalID(id); c != "" {
			wanted = append(wanted, c)
		}
	}

	users, err := s.userRepo.FindByIDs(ctx, dedupe(wanted))
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	dir := make(map[string]models.User, len(users))
	for _, u := range users {
		dir[membership.CanonicalID(u.ID)] = u
	}
	return dir, nil
}

type cascadeStep struct {
	name string
	run  func(ctx context.Context, userID string) error
}

// DeleteUser removes the target user. Every cleanup step runs even when an
// earlier one fails; failures are logged, counted and returned together as
// a *CascadeError.
func (s *UserService) DeleteUser(ctx context.Context, caller *models.User, targetID string) error {
	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to find user: %w", err)
		}
		if err := authz.CanDeleteUser(caller, &models.User{ID: targetID}); err != nil {
			return err
		}
		return ErrUserNotFound
	}

	if err := authz.CanDeleteUser(caller, target); err != nil {
		return err
	}

	steps := []cascadeStep{
		{"workspace_members", s.pullFromWorkspaces},
		{"owned_workspaces", s.deleteOwnedWorkspaces},
		{"project_members", s.pullFromProjects},
		{"created_projects", s.deleteCreatedProjects},
		{"task_assignees", s.pullFromTasks},
		{"user_record", s.userRepo.Delete},
	}

	var failed []string
	var errs []error
	for _, step := range steps {
		if err := step.run(ctx, target.ID); err != nil {
			s.logger.Error("user delete step failed",
				zap.String("step", step.name),
				zap.String("user_id", target.ID),
				zap.Error(err),
			)
			s.metrics.CascadeStepFail.WithLabelValues(step.name).Inc()
			failed = append(failed, step.name)
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	if len(errs) > 0 {
		return &CascadeError{Steps: failed, Err: errors.Join(errs...)}
	}

	s.logger.Info("user deleted", zap.String("user_id", target.ID), zap.String("by", caller.ID))
	return nil
}

func (s *UserService) pullFromWorkspaces(ctx context.Context, userID string) error {
	workspaces, err := s.workspaceRepo.ListMentioning(ctx, userID)
	if err != nil {
		return err
	}

	var errs []error
	for i := range workspaces {
		ws := &workspaces[i]
		if membership.Strip(ws, userID) {
			errs = append(errs, s.workspaceRepo.UpdateMembers(ctx, ws.ID, ws.Members))
		}
	}
	return errors.Join(errs...)
}

func (s *UserService) deleteOwnedWorkspaces(ctx context.Context, userID string) error {
	workspaces, err := s.workspaceRepo.FindOwnedBy(ctx, userID)
	if err != nil {
		return err
	}

	var errs []error
	for _, ws := range workspaces {
		errs = append(errs, s.workspaceRepo.Delete(ctx, ws.ID))
	}
	return errors.Join(errs...)
}

func (s *UserService) pullFromProjects(ctx context.Context, userID string) error {
	projects, err := s.projectRepo.ListMentioning(ctx, userID)
	if err != nil {
		return err
	}

	var errs []error
	for i := range projects {
		p := &projects[i]
		if membership.StripProjectMember(p, userID) {
			errs = append(errs, s.projectRepo.UpdateMembers(ctx, p.ID, p.Members))
		}
	}
	return errors.Join(errs...)
}

func (s *UserService) deleteCreatedProjects(ctx context.Context, userID string) error {
	_, err := s.projectRepo.DeleteCreatedBy(ctx, userID)
	return err
}

// pullFromTasks removes only this user from assignee lists; tasks stay.
func (s *UserService) pullFromTasks(ctx context.Context, userID string) error {
	tasks, err := s.taskRepo.ListAssignedTo(ctx, userID)
	if err != nil {
		return err
	}

	var errs []error
	for i := range tasks {
		t := &tasks[i]
		if membership.StripAssignee(t, userID) {
			errs = append(errs, s.taskRepo.UpdateAssignees(ctx, t.ID, t.AssignedTo))
		}
	}
	return errors.Join(errs...)
}
