package repository

import (
	"fmt"
	"strings"

	"github.com/yukikurage/devboard-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// groupableTaskColumns guards CountGroupedBy against arbitrary column names.
var groupableTaskColumns = map[string]bool{
	"status":   true,
	"priority": true,
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *GormTaskRepository) applyFilter(query *gorm.DB, filter TaskFilter) *gorm.DB {
	if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id IS NOT NULL AND tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.CreatorID != nil {
		query = query.Where("tasks.creator_id = ?", *filter.CreatorID)
	}
	if filter.ParticipantID != nil {
		query = query.Where("(tasks.creator_id = ? OR tasks.assignee_id = ?)", *filter.ParticipantID, *filter.ParticipantID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if filter.Unassigned {
		query = query.Where("tasks.assignee_id IS NULL")
	}
	if filter.CreatedSince != nil {
		query = query.Where("tasks.created_at >= ?", *filter.CreatedSince)
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where(
			`(LOWER(tasks.title) LIKE ? ESCAPE '!' OR LOWER(COALESCE(tasks.description, '')) LIKE ? ESCAPE '!')`,
			pattern, pattern,
		)
	}
	return query
}

// List retrieves tasks matching the filter, newest first
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, error) {
	var tasks []models.Task

	query := r.applyFilter(r.db.Model(&models.Task{}), filter)
	if err := query.
		Preload("Creator").
		Preload("Assignee").
		Order("tasks.created_at DESC").
		Order("tasks.id DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Count counts tasks matching the filter
func (r *GormTaskRepository) Count(filter TaskFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.Model(&models.Task{}), filter).Count(&count).Error
	return count, err
}

// CountGroupedBy counts tasks per distinct value of a status-like column
func (r *GormTaskRepository) CountGroupedBy(column string) (map[string]int64, error) {
	if !groupableTaskColumns[column] {
		return nil, fmt.Errorf("task repository: cannot group by %q", column)
	}

	var rows []struct {
		Value string
		Total int64
	}
	if err := r.db.Model(&models.Task{}).
		Select(column + " AS value, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Total
	}
	return counts, nil
}

// CountPerUser counts tasks per user for the creator_id or assignee_id column
func (r *GormTaskRepository) CountPerUser(column string) (map[uint64]int64, error) {
	if column != "creator_id" && column != "assignee_id" {
		return nil, fmt.Errorf("task repository: cannot count per user by %q", column)
	}

	var rows []struct {
		UserID uint64
		Total  int64
	}
	if err := r.db.Model(&models.Task{}).
		Select(column + " AS user_id, COUNT(*) AS total").
		Where(column + " IS NOT NULL").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit("Creator", "Assignee", "Comments").Save(task).Error
}

// Delete soft deletes a task and its comments
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Exists reports whether a live task exists
func (r *GormTaskRepository) Exists(id uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// escapeLike escapes LIKE wildcards using '!', which reads the same in every supported dialect.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
