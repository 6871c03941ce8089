package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/repository"
	"github.com/yukikurage/taskflow-api/internal/utils"
)

// AssignmentResolver turns the assignee ids and emails of a task request
// into user ids, accepting only members of the task's workspace.
type AssignmentResolver struct {
	userRepo repository.UserRepository
}

// NewAssignmentResolver creates a new AssignmentResolver
func NewAssignmentResolver(userRepo repository.UserRepository) *AssignmentResolver {
	return &AssignmentResolver{userRepo: userRepo}
}

// Resolve validates explicit ids, then the comma separated email list, and
// returns the union of both in input order. Checks fail in this order:
// ids outside the workspace, unknown emails, emails of non-members. Nothing
// is written.
func (r *AssignmentResolver) Resolve(ctx context.Context, ws *models.Workspace, explicitIDs []string, emails string) ([]string, error) {
	members := membership.MemberIDs(ws)

	var resolved []string
	var invalidIDs []string
	for _, raw := range explicitIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if !members.Has(id) {
			invalidIDs = append(invalidIDs, id)
			continue
		}
		resolved = append(resolved, membership.CanonicalID(id))
	}
	if len(invalidIDs) > 0 {
		return nil, &AssigneeError{Kind: ErrInvalidAssignees, Values: invalidIDs}
	}

	emailList := utils.ParseEmailList(emails)
	if len(emailList) > 0 {
		users, err := r.userRepo.FindByEmails(ctx, emailList)
		if err != nil {
			return nil, fmt.Errorf("failed to look up assignees: %w", err)
		}
		byEmail := make(map[string]models.User, len(users))
		for _, u := range users {
			byEmail[utils.NormalizeEmail(u.Email)] = u
		}

		var unknown, outsiders []string
		var fromEmails []string
		for _, email := range emailList {
			u, ok := byEmail[email]
			switch {
			case !ok:
				unknown = append(unknown, email)
			case !members.Has(u.ID):
				outsiders = append(outsiders, email)
			default:
				fromEmails = append(fromEmails, membership.CanonicalID(u.ID))
			}
		}
		if len(unknown) > 0 {
			return nil, &AssigneeError{Kind: ErrUnknownEmails, Values: unknown}
		}
		if len(outsiders) > 0 {
			return nil, &AssigneeError{Kind: ErrNotWorkspaceMembers, Values: outsiders}
		}
		resolved = append(resolved, fromEmails...)
	}

	return dedupe(resolved), nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
