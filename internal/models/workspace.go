package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkspaceRole string

const (
	WorkspaceRoleAdmin  WorkspaceRole = "admin"
	WorkspaceRoleMember WorkspaceRole = "member"
	WorkspaceRoleViewer WorkspaceRole = "viewer"

	// WorkspaceRoleOwner is never stored in Members; it is reported for the
	// workspace owner by role lookups.
	WorkspaceRoleOwner WorkspaceRole = "owner"
)

func (r WorkspaceRole) Valid() bool {
	switch r {
	case WorkspaceRoleAdmin, WorkspaceRoleMember, WorkspaceRoleViewer:
		return true
	}
	return false
}

type WorkspaceMember struct {
	User     UserRef       `json:"user"`
	Role     WorkspaceRole `json:"role"`
	JoinedAt time.Time     `json:"joinedAt"`
}

type Workspace struct {
	ID          string            `gorm:"type:varchar(36);primarykey" json:"id"`
	Name        string            `gorm:"type:varchar(100);not null" json:"name"`
	Description string            `gorm:"type:varchar(500)" json:"description"`
	OwnerID     string            `gorm:"type:varchar(36);index;not null" json:"owner"`
	Members     []WorkspaceMember `gorm:"type:text;serializer:json" json:"members"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
