package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrProjectNotFound   = errors.New("project not found")
	ErrTaskNotFound      = errors.New("task not found")

	ErrMissingFields      = errors.New("please provide all required fields")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMembershipWriteFailed = errors.New("member was not successfully saved to database")

	ErrInvalidAssignees    = errors.New("invalid assignees")
	ErrUnknownEmails       = errors.New("unknown emails")
	ErrNotWorkspaceMembers = errors.New("not workspace members")
)

// ValidationError reports a rejected input field. Message is safe to return
// to clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AssigneeError lists the offending values of one failed assignee check.
// Kind is ErrInvalidAssignees, ErrUnknownEmails or ErrNotWorkspaceMembers.
type AssigneeError struct {
	Kind   error
	Values []string
}

func (e *AssigneeError) Error() string {
	list := strings.Join(e.Values, ", ")
	switch e.Kind {
	case ErrInvalidAssignees:
		return fmt.Sprintf("The following user IDs are not members of this workspace: %s", list)
	case ErrUnknownEmails:
		return fmt.Sprintf("The following email addresses were not found: %s", list)
	case ErrNotWorkspaceMembers:
		return fmt.Sprintf("The following users are not members of this workspace: %s", list)
	}
	return fmt.Sprintf("%v: %s", e.Kind, list)
}

func (e *AssigneeError) Unwrap() error { return e.Kind }

// CascadeError collects the failed steps of a best-effort cascade.
type CascadeError struct {
	Steps []string
	Err   error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade failed at %s: %v", strings.Join(e.Steps, ", "), e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }
