package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on-hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusArchived  ProjectStatus = "archived"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

type ProjectRole string

const (
	ProjectRoleManager ProjectRole = "manager"
	ProjectRoleMember  ProjectRole = "member"
	ProjectRoleViewer  ProjectRole = "viewer"
)

func (r ProjectRole) Valid() bool {
	switch r {
	case ProjectRoleManager, ProjectRoleMember, ProjectRoleViewer:
		return true
	}
	return false
}

type ProjectMember struct {
	User UserRef     `json:"user"`
	Role ProjectRole `json:"role"`
}

type Project struct {
	ID          string          `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	WorkspaceID string          `gorm:"type:varchar(36);index;not null" json:"workspace"`
	Status      ProjectStatus   `gorm:"type:varchar(20);not null;default:'planning'" json:"status"`
	Priority    Priority        `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	Color       string          `gorm:"type:varchar(20)" json:"color"`
	Members     []ProjectMember `gorm:"type:text;serializer:json" json:"members"`
	CreatedByID string          `gorm:"type:varchar(36);index;not null" json:"createdBy"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
