package dto

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
)

// CreateWorkspaceRequest is the body of POST /api/workspaces
type CreateWorkspaceRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateWorkspaceRequest is the body of PATCH /api/workspaces/:workspaceId
type UpdateWorkspaceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// AddMemberRequest is the body of POST /api/workspaces/:workspaceId/members
type AddMemberRequest struct {
	TargetUserID string               `json:"targetUserId"`
	Role         models.WorkspaceRole `json:"role"`
}

// WorkspaceMemberDTO represents a members entry with its user resolved
type WorkspaceMemberDTO struct {
	User     models.UserRef       `json:"user"`
	Role     models.WorkspaceRole `json:"role"`
	JoinedAt time.Time            `json:"joinedAt"`
}

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       models.UserRef       `json:"owner"`
	Members     []WorkspaceMemberDTO `json:"members"`
	YourRole    models.WorkspaceRole `json:"yourRole,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// MemberDTO is the summary of an added member
type MemberDTO struct {
	ID    string               `json:"id"`
	Name  string               `json:"name"`
	Email string               `json:"email"`
	Role  models.WorkspaceRole `json:"role"`
}

// WorkspaceUserIDs lists the user ids referenced by the workspaces
func WorkspaceUserIDs(workspaces ...models.Workspace) []string {
	var ids []string
	for _, ws := range workspaces {
		ids = append(ids, ws.OwnerID)
		for _, m := range ws.Members {
			ids = append(ids, m.User.RawID())
		}
	}
	return ids
}

// ToWorkspaceDTO converts a Workspace model, resolving users from dir and
// reporting the viewer's role.
func ToWorkspaceDTO(ws models.Workspace, dir Directory, viewerID string) WorkspaceDTO {
	members := make([]WorkspaceMemberDTO, len(ws.Members))
	for i, m := range ws.Members {
		members[i] = WorkspaceMemberDTO{
			User:     dir.Ref(m.User),
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
	}

	out := WorkspaceDTO{
		ID:          ws.ID,
		Name:        ws.Name,
		Description: ws.Description,
		Owner:       dir.RefID(ws.OwnerID),
		Members:     members,
		CreatedAt:   ws.CreatedAt,
		UpdatedAt:   ws.UpdatedAt,
	}
	if role, ok := membership.RoleOf(&ws, viewerID); ok {
		out.YourRole = role
	}
	return out
}

// ToWorkspaceDTOs converts a slice of workspaces
func ToWorkspaceDTOs(workspaces []models.Workspace, dir Directory, viewerID string) []WorkspaceDTO {
	out := make([]WorkspaceDTO, len(workspaces))
	for i, ws := range workspaces {
		out[i] = ToWorkspaceDTO(ws, dir, viewerID)
	}
	return out
}

// ToMemberDTO summarizes the user added to a workspace
func ToMemberDTO(user models.User, role models.WorkspaceRole) MemberDTO {
	if role == "" {
		role = models.WorkspaceRoleMember
	}
	return MemberDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  role,
	}
}
