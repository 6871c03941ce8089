package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type compositeIndex struct {
	table   string
	name    string
	columns []string
}

// Listing and cascade queries filter by these column pairs.
var compositeIndexes = []compositeIndex{
	{"tasks", "idx_tasks_workspace_status", []string{"workspace_id", "status"}},
	{"tasks", "idx_tasks_project_created", []string{"project_id", "created_at"}},
	{"projects", "idx_projects_workspace_created", []string{"workspace_id", "created_at"}},
	{"workspaces", "idx_workspaces_owner_created", []string{"owner_id", "created_at"}},
}

// AddIndexes creates the composite indexes that the model tags do not
// declare. Existing indexes are left alone.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
