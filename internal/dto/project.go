package dto

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
	"github.com/yukikurage/taskflow-api/internal/services"
)

// CreateProjectRequest is the body of POST /api/projects
type CreateProjectRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	WorkspaceID string               `json:"workspaceId"`
	Status      models.ProjectStatus `json:"status"`
	Priority    models.Priority      `json:"priority"`
	StartDate   *Date                `json:"startDate"`
	EndDate     *Date                `json:"endDate"`
	Color       string               `json:"color"`
}

// ToInput converts the request to service input
func (r CreateProjectRequest) ToInput() services.CreateProjectInput {
	return services.CreateProjectInput{
		Name:        r.Name,
		Description: r.Description,
		WorkspaceID: r.WorkspaceID,
		Status:      r.Status,
		Priority:    r.Priority,
		StartDate:   r.StartDate.Ptr(),
		EndDate:     r.EndDate.Ptr(),
		Color:       r.Color,
	}
}

// UpdateProjectRequest is the body of PUT /api/projects/:id
type UpdateProjectRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Status      *models.ProjectStatus `json:"status"`
	Priority    *models.Priority      `json:"priority"`
	StartDate   *Date                 `json:"startDate"`
	EndDate     *Date                 `json:"endDate"`
	Color       *string               `json:"color"`
}

// ToInput converts the request to service input
func (r UpdateProjectRequest) ToInput() services.UpdateProjectInput {
	return services.UpdateProjectInput{
		Name:        r.Name,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		StartDate:   r.StartDate.Ptr(),
		EndDate:     r.EndDate.Ptr(),
		Color:       r.Color,
	}
}

// ProjectMemberDTO represents a project members entry
type ProjectMemberDTO struct {
	User models.UserRef     `json:"user"`
	Role models.ProjectRole `json:"role"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Workspace   string               `json:"workspace"`
	Status      models.ProjectStatus `json:"status"`
	Priority    models.Priority      `json:"priority"`
	StartDate   *time.Time           `json:"startDate"`
	EndDate     *time.Time           `json:"endDate"`
	Color       string               `json:"color"`
	Members     []ProjectMemberDTO   `json:"members"`
	YourRole    models.ProjectRole   `json:"yourRole,omitempty"`
	CreatedBy   models.UserRef       `json:"createdBy"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// RosterEntryDTO is one line of GET /api/projects/:id/members
type RosterEntryDTO struct {
	ID     string               `json:"id"`
	Name   string               `json:"name"`
	Email  string               `json:"email"`
	Avatar *string              `json:"avatar"`
	Role   models.WorkspaceRole `json:"role"`
}

// ProjectUserIDs lists the user ids referenced by the projects
func ProjectUserIDs(projects ...models.Project) []string {
	var ids []string
	for _, p := range projects {
		ids = append(ids, p.CreatedByID)
		for _, m := range p.Members {
			ids = append(ids, m.User.RawID())
		}
	}
	return ids
}

// ToProjectDTO converts a Project model, resolving users from dir. YourRole
// is the viewer's project role, empty when the viewer is not listed.
func ToProjectDTO(p models.Project, dir Directory, viewerID string) ProjectDTO {
	members := make([]ProjectMemberDTO, len(p.Members))
	for i, m := range p.Members {
		members[i] = ProjectMemberDTO{User: dir.Ref(m.User), Role: m.Role}
	}
	yourRole, _ := membership.ProjectRole(&p, viewerID)

	return ProjectDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Workspace:   p.WorkspaceID,
		Status:      p.Status,
		Priority:    p.Priority,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Color:       p.Color,
		Members:     members,
		YourRole:    yourRole,
		CreatedBy:   dir.RefID(p.CreatedByID),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project, dir Directory, viewerID string) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p, dir, viewerID)
	}
	return out
}

// ToRosterDTOs flattens a project roster. Users that could not be resolved
// keep their id with empty details.
func ToRosterDTOs(members []services.ProjectMember) []RosterEntryDTO {
	out := make([]RosterEntryDTO, len(members))
	for i, m := range members {
		entry := RosterEntryDTO{ID: m.User.RawID(), Role: m.Role}
		if m.User.User != nil {
			entry.Name = m.User.User.Name
			entry.Email = m.User.User.Email
			entry.Avatar = m.User.User.Avatar
		}
		out[i] = entry
	}
	return out
}
