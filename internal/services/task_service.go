package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/yukikurage/devboard-api/internal/constants"
	"github.com/yukikurage/devboard-api/internal/metrics"
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	commentRepo repository.CommentRepository
	policy      UpdatePolicy
	suggester   TaskSuggester
	log         zerolog.Logger
}

// NewTaskService creates a new TaskService. suggester may be nil.
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	commentRepo repository.CommentRepository,
	policy UpdatePolicy,
	suggester TaskSuggester,
	log zerolog.Logger,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		policy:      policy,
		suggester:   suggester,
		log:         log,
	}
}

// TaskView is a task with its creator and assignee loaded and its comment count.
type TaskView struct {
	Task         models.Task
	CommentCount int64
}

// TaskDetail adds the task's comments, newest first.
type TaskDetail struct {
	TaskView
	Comments []models.Comment
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus   // defaults to TODO
	Priority    models.TaskPriority // defaults to MEDIUM
	AssigneeID  *uint64
}

// UpdateTaskInput represents input for updating a task. Nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  *uint64
}

// FilterParams are the raw list filters as received from the client.
type FilterParams struct {
	AssigneeID *uint64
	CreatorID  *uint64
	Priority   string
	Status     string
	Search     string
}

// TaskQuery is a parsed set of list filters.
type TaskQuery struct {
	Filter repository.TaskFilter
	// MatchNone is set when a filter value can never match, e.g. an unknown priority.
	MatchNone bool
	// Rejected holds the filter values that caused MatchNone.
	Rejected []string
}

// ParseFilter turns raw list parameters into a TaskQuery. Priority and status are
// matched case-insensitively; unknown values make the query match nothing instead
// of failing. A blank search is ignored.
func ParseFilter(p FilterParams) TaskQuery {
	var q TaskQuery
	q.Filter.AssigneeID = p.AssigneeID
	q.Filter.CreatorID = p.CreatorID

	if raw := strings.TrimSpace(p.Priority); raw != "" {
		priority, err := models.ParseTaskPriority(strings.ToUpper(raw))
		if err != nil {
			q.MatchNone = true
			q.Rejected = append(q.Rejected, "priority="+p.Priority)
		} else {
			q.Filter.Priority = &priority
		}
	}
	if raw := strings.TrimSpace(p.Status); raw != "" {
		status, err := models.ParseTaskStatus(strings.ToUpper(raw))
		if err != nil {
			q.MatchNone = true
			q.Rejected = append(q.Rejected, "status="+p.Status)
		} else {
			q.Filter.Status = &status
		}
	}
	if search := strings.TrimSpace(p.Search); search != "" {
		q.Filter.Search = strings.ToLower(search)
	}

	return q
}

// ListTasks returns every task matching all filters of q, newest first
func (s *TaskService) ListTasks(q TaskQuery) ([]TaskView, error) {
	if q.MatchNone {
		s.log.Warn().Strs("rejected", q.Rejected).Msg("task filter value matches no task")
		return []TaskView{}, nil
	}

	tasks, err := s.taskRepo.List(q.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return s.withCommentCounts(tasks)
}

// ListTasksByStatus returns tasks in exactly the given status
func (s *TaskService) ListTasksByStatus(status models.TaskStatus) ([]TaskView, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by status: %w", err)
	}
	return s.withCommentCounts(tasks)
}

// ListMyTasks returns tasks the user created or is assigned to
func (s *TaskService) ListMyTasks(userID uint64) ([]TaskView, error) {
	tasks, err := s.taskRepo.List(repository.TaskFilter{ParticipantID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list user tasks: %w", err)
	}
	return s.withCommentCounts(tasks)
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*TaskView, error) {
	task, err := s.findTask(taskID, "Creator", "Assignee")
	if err != nil {
		return nil, err
	}

	count, err := s.commentRepo.CountByTask(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return &TaskView{Task: *task, CommentCount: count}, nil
}

// GetTaskDetail returns a task together with its comments
func (s *TaskService) GetTaskDetail(taskID uint64) (*TaskDetail, error) {
	task, err := s.findTask(taskID, "Creator", "Assignee")
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByTask(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	return &TaskDetail{
		TaskView: TaskView{Task: *task, CommentCount: int64(len(comments))},
		Comments: comments,
	}, nil
}

// CreateTask creates a task owned by the actor
func (s *TaskService) CreateTask(actor Actor, input CreateTaskInput) (*TaskView, error) {
	title := strings.TrimSpace(input.Title)
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(actor.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find creator: %w", err)
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	if input.AssigneeID != nil {
		if err := s.ensureAssignee(*input.AssigneeID); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
		CreatorID:   actor.ID,
		AssigneeID:  input.AssigneeID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	s.log.Info().Uint64("task_id", task.ID).Uint64("creator_id", actor.ID).Msg("task created")

	created, err := s.findTask(task.ID, "Creator", "Assignee")
	if err != nil {
		return nil, err
	}
	return &TaskView{Task: *created}, nil
}

// UpdateTask applies the non-nil fields of input when the update policy allows it
func (s *TaskService) UpdateTask(actor Actor, taskID uint64, input UpdateTaskInput) (*TaskView, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanUpdate(*task, actor) {
		s.log.Warn().Uint64("task_id", taskID).Uint64("actor_id", actor.ID).Msg("task update denied")
		return nil, ErrTaskAccessDenied
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		if err := validateDescription(*input.Description); err != nil {
			return nil, err
		}
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.AssigneeID != nil {
		if err := s.ensureAssignee(*input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(task.ID)
}

// DeleteTask deletes a task if the caller is its creator or an admin
func (s *TaskService) DeleteTask(actor Actor, taskID uint64) error {
	task, err := s.findTask(taskID)
	if err != nil {
		return err
	}

	caller, err := s.userRepo.FindByID(actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find caller: %w", err)
	}

	if !CanDeleteTask(*task, ActorFromUser(*caller)) {
		s.log.Warn().Uint64("task_id", taskID).Uint64("actor_id", actor.ID).Msg("task delete denied")
		return ErrTaskAccessDenied
	}

	if err := s.deleteTask(taskID); err != nil {
		return err
	}

	metrics.TasksDeletedTotal.WithLabelValues("owner").Inc()
	s.log.Info().Uint64("task_id", taskID).Uint64("actor_id", actor.ID).Msg("task deleted")
	return nil
}

// AdminDeleteTask deletes any task. Callers must have checked the admin role.
func (s *TaskService) AdminDeleteTask(taskID uint64) error {
	if err := s.deleteTask(taskID); err != nil {
		return err
	}

	metrics.TasksDeletedTotal.WithLabelValues("admin").Inc()
	s.log.Info().Uint64("task_id", taskID).Msg("task deleted by admin")
	return nil
}

// IsCreator reports whether username created the task. Unknown tasks yield false.
func (s *TaskService) IsCreator(taskID uint64, username string) bool {
	task, err := s.taskRepo.FindByID(taskID, "Creator")
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error().Err(err).Uint64("task_id", taskID).Msg("failed to check task creator")
		}
		return false
	}
	return task.Creator.Username == username
}

// TaskExists reports whether a live task exists
func (s *TaskService) TaskExists(taskID uint64) (bool, error) {
	return s.taskRepo.Exists(taskID)
}

// SuggestTasks extracts task suggestions from free text. Nothing is persisted.
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]TaskSuggestion, error) {
	if s.suggester == nil {
		return nil, ErrAIServiceUnavailable
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("text is required")
	}
	if utf8.RuneCountInString(text) > constants.MaxAIInputLength {
		return nil, validationError("text must be at most %d characters", constants.MaxAIInputLength)
	}

	raw, err := s.suggester.SuggestTasks(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tasks: %w", err)
	}

	suggestions := make([]TaskSuggestion, 0, len(raw))
	for _, sg := range raw {
		sg.Title = strings.TrimSpace(sg.Title)
		if sg.Title == "" {
			continue
		}
		if utf8.RuneCountInString(sg.Title) > constants.MaxTitleLength {
			sg.Title = string([]rune(sg.Title)[:constants.MaxTitleLength])
		}
		if utf8.RuneCountInString(sg.Description) > constants.MaxDescriptionLength {
			sg.Description = string([]rune(sg.Description)[:constants.MaxDescriptionLength])
		}
		priority, err := models.ParseTaskPriority(strings.ToUpper(strings.TrimSpace(string(sg.Priority))))
		if err != nil {
			priority = models.TaskPriorityMedium
		}
		sg.Priority = priority

		suggestions = append(suggestions, sg)
		if len(suggestions) == constants.MaxAISuggestedTasks {
			break
		}
	}

	return suggestions, nil
}

func (s *TaskService) deleteTask(taskID uint64) error {
	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) findTask(taskID uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) ensureAssignee(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to find assignee: %w", err)
	}
	return nil
}

func (s *TaskService) withCommentCounts(tasks []models.Task) ([]TaskView, error) {
	ids := make([]uint64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	counts, err := s.commentRepo.CountByTaskIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	views := make([]TaskView, len(tasks))
	for i, t := range tasks {
		views[i] = TaskView{Task: t, CommentCount: counts[t.ID]}
	}
	return views, nil
}

func validateTitle(title string) error {
	if title == "" {
		return validationError("title is required")
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return validationError("title must be at most %d characters", constants.MaxTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > constants.MaxDescriptionLength {
		return validationError("description must be at most %d characters", constants.MaxDescriptionLength)
	}
	return nil
}
