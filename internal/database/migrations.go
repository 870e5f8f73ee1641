package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the lookup indexes the struct tags do not declare.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Membership lookups by user
		{"team_members", "idx_team_members_user_active", "user_id, is_active"},
		{"task_assignees", "idx_task_assignees_user_id", "user_id"},

		// Listing
		{"tasks", "idx_tasks_status", "status"},
		{"comments", "idx_comments_timestamp", "timestamp"},
		{"files", "idx_files_current", "project_id, is_current"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}
