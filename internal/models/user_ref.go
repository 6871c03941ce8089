package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserSummary is the resolved form of a user reference.
type UserSummary struct {
	ID     string     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Email  string     `json:"email,omitempty"`
	Role   SystemRole `json:"role,omitempty"`
	Avatar *string    `json:"avatar,omitempty"`
}

// UserRef points at a user. On the wire and in embedded lists it is either
// the bare id (a JSON string) or a resolved object carrying the id.
// Compare references with membership.Canonical, never with ==.
type UserRef struct {
	ID   string
	User *UserSummary
}

// RefTo returns an unresolved reference to id.
func RefTo(id string) UserRef {
	return UserRef{ID: id}
}

// ResolvedRef returns a reference carrying the user's public fields.
func ResolvedRef(u *User) UserRef {
	return UserRef{
		ID: u.ID,
		User: &UserSummary{
			ID:     u.ID,
			Name:   u.Name,
			Email:  u.Email,
			Role:   u.Role,
			Avatar: u.Avatar,
		},
	}
}

// RawID returns the id as stored, without normalization.
func (r UserRef) RawID() string {
	if r.User != nil && r.User.ID != "" {
		return r.User.ID
	}
	return r.ID
}

func (r UserRef) IsResolved() bool {
	return r.User != nil
}

func (r UserRef) IsZero() bool {
	return r.RawID() == ""
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.IsResolved() {
		return json.Marshal(r.User)
	}
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = UserRef{}

	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &r.ID)
	case '{':
		var obj struct {
			UserSummary
			MongoID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.ID == "" {
			obj.ID = obj.MongoID
		}
		summary := obj.UserSummary
		r.ID = summary.ID
		r.User = &summary
		return nil
	default:
		return fmt.Errorf("user reference must be a string or an object, got %s", data)
	}
}
