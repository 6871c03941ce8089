package dto

import (
	"time"

	"github.com/yukikurage/taskflow-api/internal/membership"
	"github.com/yukikurage/taskflow-api/internal/models"
)

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      models.SystemRole `json:"role"`
	Avatar    *string           `json:"avatar"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// Directory holds the users referenced by a response, keyed by canonical id.
type Directory map[string]models.User

// Ref returns the resolved form of ref when the user is known, and ref
// unchanged otherwise.
func (d Directory) Ref(ref models.UserRef) models.UserRef {
	if u, ok := d[membership.Canonical(ref)]; ok {
		return models.ResolvedRef(&u)
	}
	return ref
}

// RefID resolves a bare user id.
func (d Directory) RefID(id string) models.UserRef {
	return d.Ref(models.RefTo(id))
}

func (d Directory) refs(refs []models.UserRef) []models.UserRef {
	out := make([]models.UserRef, len(refs))
	for i, ref := range refs {
		out[i] = d.Ref(ref)
	}
	return out
}
