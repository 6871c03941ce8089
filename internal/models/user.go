package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemRole is the global role of a user, independent of any workspace.
type SystemRole string

const (
	SystemRoleAdmin  SystemRole = "admin"
	SystemRoleMember SystemRole = "member"
	SystemRoleViewer SystemRole = "viewer"
)

func (r SystemRole) Valid() bool {
	switch r {
	case SystemRoleAdmin, SystemRoleMember, SystemRoleViewer:
		return true
	}
	return false
}

type User struct {
	ID           string     `gorm:"type:varchar(36);primarykey" json:"id"`
	Name         string     `gorm:"type:varchar(60);not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	Role         SystemRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	Avatar       *string    `gorm:"type:varchar(512)" json:"avatar"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = SystemRoleMember
	}
	return nil
}

// IsAdmin reports whether the user holds the global admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == SystemRoleAdmin
}
