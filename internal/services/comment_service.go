package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/repository"
	"gorm.io/gorm"
)

// CommentService handles task comments
type CommentService struct {
	commentRepo repository.CommentRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	log         zerolog.Logger
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	log zerolog.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		log:         log,
	}
}

// CreateComment adds a comment by the actor to an existing task
func (s *CommentService) CreateComment(actor Actor, taskID uint64, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationError("content is required")
	}

	if exists, err := s.taskRepo.Exists(taskID); err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	} else if !exists {
		return nil, ErrTaskNotFound
	}

	author, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find author: %w", err)
	}

	comment := &models.Comment{
		Content: content,
		TaskID:  taskID,
		UserID:  author.ID,
	}
	if err := s.commentRepo.Create(comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	comment.User = *author

	s.log.Info().Uint64("comment_id", comment.ID).Uint64("task_id", taskID).Msg("comment added")
	return comment, nil
}

// ListComments returns a task's comments newest first. Unknown tasks have no comments.
func (s *CommentService) ListComments(taskID uint64) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment if the caller wrote it or is an admin
func (s *CommentService) DeleteComment(actor Actor, commentID uint64) error {
	comment, err := s.commentRepo.FindByID(commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to find comment: %w", err)
	}

	caller, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find caller: %w", err)
	}

	if !CanDeleteComment(*comment, ActorFromUser(*caller)) {
		s.log.Warn().Uint64("comment_id", commentID).Uint64("actor_id", actor.ID).Msg("comment delete denied")
		return ErrCommentAccessDenied
	}

	if err := s.commentRepo.Delete(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}

// CountComments counts the comments on a task
func (s *CommentService) CountComments(taskID uint64) (int64, error) {
	return s.commentRepo.CountByTask(taskID)
}
