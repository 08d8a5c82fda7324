package dto

import (
	"time"

	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       models.TaskStatus   `json:"status"`
	Priority     models.TaskPriority `json:"priority"`
	Creator      UserSummaryDTO      `json:"creator"`
	Assignee     *UserSummaryDTO     `json:"assignee"`
	CommentCount int64               `json:"commentCount"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// TaskDetailDTO is a task with its comments, newest first
type TaskDetailDTO struct {
	TaskDTO
	Comments []CommentDTO `json:"comments"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64         `json:"id"`
	Content   string         `json:"content"`
	TaskID    uint64         `json:"taskId"`
	User      UserSummaryDTO `json:"user"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// TaskSuggestionDTO is an unsaved task proposed from free text
type TaskSuggestionDTO struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
}

// Conversion functions

// ToTaskDTO converts a TaskView to TaskDTO
func ToTaskDTO(view services.TaskView) TaskDTO {
	task := view.Task
	dto := TaskDTO{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       task.Status,
		Priority:     task.Priority,
		Creator:      ToUserSummaryDTO(task.Creator),
		CommentCount: view.CommentCount,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}

	// Include assignee if preloaded
	if task.Assignee != nil {
		assignee := ToUserSummaryDTO(*task.Assignee)
		dto.Assignee = &assignee
	}

	return dto
}

// ToTaskDTOs converts a slice of TaskViews, never returning nil
func ToTaskDTOs(views []services.TaskView) []TaskDTO {
	items := make([]TaskDTO, len(views))
	for i, v := range views {
		items[i] = ToTaskDTO(v)
	}
	return items
}

// ToTaskDetailDTO converts a TaskDetail to TaskDetailDTO
func ToTaskDetailDTO(detail services.TaskDetail) TaskDetailDTO {
	return TaskDetailDTO{
		TaskDTO:  ToTaskDTO(detail.TaskView),
		Comments: ToCommentDTOs(detail.Comments),
	}
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		Content:   comment.Content,
		TaskID:    comment.TaskID,
		User:      ToUserSummaryDTO(comment.User),
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	items := make([]CommentDTO, len(comments))
	for i, c := range comments {
		items[i] = ToCommentDTO(c)
	}
	return items
}

func ToTaskSuggestionDTOs(suggestions []services.TaskSuggestion) []TaskSuggestionDTO {
	items := make([]TaskSuggestionDTO, len(suggestions))
	for i, s := range suggestions {
		items[i] = TaskSuggestionDTO{Title: s.Title, Description: s.Description, Priority: s.Priority}
	}
	return items
}
