package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yukikurage/devboard-api/internal/models"
	"gorm.io/gorm"
)

type index struct {
	model  any
	table  string
	name   string
	column string
}

// lookupIndexes back the filter, ownership and count queries.
var lookupIndexes = []index{
	{&models.Task{}, "tasks", "idx_tasks_creator_id", "creator_id"},
	{&models.Task{}, "tasks", "idx_tasks_assignee_id", "assignee_id"},
	{&models.Task{}, "tasks", "idx_tasks_status", "status"},
	{&models.Task{}, "tasks", "idx_tasks_priority", "priority"},
	{&models.Task{}, "tasks", "idx_tasks_created_at", "created_at"},
	{&models.Comment{}, "comments", "idx_comments_task_id", "task_id"},
	{&models.Comment{}, "comments", "idx_comments_user_id", "user_id"},
}

// AddIndexes creates any missing lookup index.
func AddIndexes(db *gorm.DB, log zerolog.Logger) error {
	m := db.Migrator()
	for _, idx := range lookupIndexes {
		if m.HasIndex(idx.model, idx.name) {
			log.Debug().Str("index", idx.name).Msg("index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.column)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info().Str("index", idx.name).Str("table", idx.table).Str("column", idx.column).Msg("created index")
	}

	return nil
}
