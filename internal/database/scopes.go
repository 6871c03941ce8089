package database

import (
	"fmt"

	"gorm.io/gorm"
)

// InWorkspaces restricts a query to rows whose workspace_id is in ids. An
// empty list matches nothing.
func InWorkspaces(ids []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(ids) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where("workspace_id IN ?", ids)
	}
}

// NewestFirst orders by creation time, newest first.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

// MentionsUser narrows a query to rows whose JSON column contains the quoted
// user id. It is a coarse prefilter: callers must confirm the match against
// the decoded list.
func MentionsUser(column, userID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s LIKE ?", column), MentionPattern(userID))
	}
}

// MentionPattern is the LIKE pattern matching a quoted user id inside a
// JSON-encoded column.
func MentionPattern(userID string) string {
	return "%\"" + userID + "\"%"
}
