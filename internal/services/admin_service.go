package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/repository"
	"gorm.io/gorm"
)

// AdminService computes reporting data. Every call reads fresh counts.
type AdminService struct {
	userRepo    repository.UserRepository
	taskRepo    repository.TaskRepository
	commentRepo repository.CommentRepository
	log         zerolog.Logger
	now         func() time.Time
}

func NewAdminService(
	userRepo repository.UserRepository,
	taskRepo repository.TaskRepository,
	commentRepo repository.CommentRepository,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		taskRepo:    taskRepo,
		commentRepo: commentRepo,
		log:         log,
		now:         time.Now,
	}
}

// UserSummary is a user with activity counts.
type UserSummary struct {
	User          models.User
	TasksCreated  int64
	TasksAssigned int64
	CommentsCount int64
}

// Dashboard holds the aggregate counts shown to administrators.
type Dashboard struct {
	TotalUsers    int64
	TotalTasks    int64
	TotalComments int64
	Admins        int64
	Users         int64
	ByStatus      map[models.TaskStatus]int64
	ByPriority    map[models.TaskPriority]int64
	Unassigned    int64
	UsersToday    int64
	TasksToday    int64
	CommentsToday int64
	ActivitySince time.Time
}

// ListUserSummaries returns a summary for every user
func (s *AdminService) ListUserSummaries() ([]UserSummary, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	created, err := s.taskRepo.CountPerUser("creator_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count created tasks: %w", err)
	}
	assigned, err := s.taskRepo.CountPerUser("assignee_id")
	if err != nil {
		return nil, fmt.Errorf("failed to count assigned tasks: %w", err)
	}
	comments, err := s.commentRepo.CountGroupedByUser()
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	summaries := make([]UserSummary, len(users))
	for i, u := range users {
		summaries[i] = UserSummary{
			User:          u,
			TasksCreated:  created[u.ID],
			TasksAssigned: assigned[u.ID],
			CommentsCount: comments[u.ID],
		}
	}
	return summaries, nil
}

// GetUserSummary returns the summary of one user
func (s *AdminService) GetUserSummary(userID uint64) (*UserSummary, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	created, err := s.taskRepo.Count(repository.TaskFilter{CreatorID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to count created tasks: %w", err)
	}
	assigned, err := s.taskRepo.Count(repository.TaskFilter{AssigneeID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to count assigned tasks: %w", err)
	}
	comments, err := s.commentRepo.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	return &UserSummary{
		User:          *user,
		TasksCreated:  created,
		TasksAssigned: assigned,
		CommentsCount: comments,
	}, nil
}

// GetDashboard counts users, tasks and comments
func (s *AdminService) GetDashboard() (*Dashboard, error) {
	d := &Dashboard{
		ByStatus:   make(map[models.TaskStatus]int64, len(models.TaskStatuses)),
		ByPriority: make(map[models.TaskPriority]int64, len(models.TaskPriorities)),
	}

	var err error
	if d.TotalUsers, err = s.userRepo.Count(nil); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if d.TotalTasks, err = s.taskRepo.Count(repository.TaskFilter{}); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	if d.TotalComments, err = s.commentRepo.Count(); err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}

	adminRole, userRole := models.RoleAdmin, models.RoleUser
	if d.Admins, err = s.userRepo.Count(&adminRole); err != nil {
		return nil, fmt.Errorf("failed to count admins: %w", err)
	}
	if d.Users, err = s.userRepo.Count(&userRole); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	byStatus, err := s.taskRepo.CountGroupedBy("status")
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by status: %w", err)
	}
	for _, st := range models.TaskStatuses {
		d.ByStatus[st] = byStatus[string(st)]
	}

	byPriority, err := s.taskRepo.CountGroupedBy("priority")
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks by priority: %w", err)
	}
	for _, p := range models.TaskPriorities {
		d.ByPriority[p] = byPriority[string(p)]
	}

	if d.Unassigned, err = s.taskRepo.Count(repository.TaskFilter{Unassigned: true}); err != nil {
		return nil, fmt.Errorf("failed to count unassigned tasks: %w", err)
	}

	now := s.now().UTC()
	d.ActivitySince = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.UsersToday, err = s.userRepo.CountCreatedSince(d.ActivitySince); err != nil {
		return nil, fmt.Errorf("failed to count new users: %w", err)
	}
	if d.TasksToday, err = s.taskRepo.Count(repository.TaskFilter{CreatedSince: &d.ActivitySince}); err != nil {
		return nil, fmt.Errorf("failed to count new tasks: %w", err)
	}
	if d.CommentsToday, err = s.commentRepo.CountCreatedSince(d.ActivitySince); err != nil {
		return nil, fmt.Errorf("failed to count new comments: %w", err)
	}

	s.log.Info().
		Int64("users", d.TotalUsers).
		Int64("tasks", d.TotalTasks).
		Int64("comments", d.TotalComments).
		Msg("generated dashboard")
	return d, nil
}
