package repository

import (
	"time"

	"github.com/yukikurage/devboard-api/internal/models"
	"gorm.io/gorm"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

func (r *GormCommentRepository) Create(comment *models.Comment) error {
	return r.db.Omit("Task", "User").Create(comment).Error
}

func (r *GormCommentRepository) FindByID(id uint64) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.Preload("User").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *GormCommentRepository) ListByTask(taskID uint64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *GormCommentRepository) Delete(id uint64) error {
	result := r.db.Delete(&models.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormCommentRepository) CountByTask(taskID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("task_id = ?", taskID).Count(&count).Error
	return count, err
}

// CountByTaskIDs issues a single grouped query; tasks without comments are absent from the map.
func (r *GormCommentRepository) CountByTaskIDs(taskIDs []uint64) (map[uint64]int64, error) {
	counts := make(map[uint64]int64, len(taskIDs))
	if len(taskIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		TaskID uint64
		Total  int64
	}
	if err := r.db.Model(&models.Comment{}).
		Select("task_id, COUNT(*) AS total").
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.TaskID] = row.Total
	}
	return counts, nil
}

func (r *GormCommentRepository) CountByUser(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *GormCommentRepository) CountGroupedByUser() (map[uint64]int64, error) {
	var rows []struct {
		UserID uint64
		Total  int64
	}
	if err := r.db.Model(&models.Comment{}).
		Select("user_id, COUNT(*) AS total").
		Group("user_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[uint64]int64, len(rows))
	for _, row := range rows {
		counts[row.UserID] = row.Total
	}
	return counts, nil
}

func (r *GormCommentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Count(&count).Error
	return count, err
}

func (r *GormCommentRepository) CountCreatedSince(t time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("created_at >= ?", t).Count(&count).Error
	return count, err
}
