package repository

import (
	"errors"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/yukikurage/devboard-api/internal/models"
	"gorm.io/gorm"
)

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = errors.New("repository: duplicate key")

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching every set field of the filter, newest first
	List(filter TaskFilter) ([]models.Task, error)

	// Count counts tasks matching the filter
	Count(filter TaskFilter) (int64, error)

	// CountGroupedBy counts tasks per distinct value of column
	CountGroupedBy(column string) (map[string]int64, error)

	// CountPerUser counts tasks per user ID held in column (creator_id or assignee_id)
	CountPerUser(column string) (map[uint64]int64, error)

	// Update saves every field of the task
	Update(task *models.Task) error

	// Delete soft deletes a task together with its comments
	Delete(id uint64) error

	// Exists reports whether a live task with the given ID exists
	Exists(id uint64) (bool, error)
}

// TaskFilter holds the conjunctive predicates for listing and counting tasks.
// Nil or zero fields are ignored.
type TaskFilter struct {
	AssigneeID    *uint64
	CreatorID     *uint64
	ParticipantID *uint64 // creator OR assignee
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	Search        string // lowercase substring of title or description
	Unassigned    bool
	CreatedSince  *time.Time
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user, returning ErrDuplicate on username or email conflicts
	Create(user *models.User) error

	// Update saves the user, returning ErrDuplicate on email conflicts
	Update(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// ExistsByUsername reports whether the username is taken
	ExistsByUsername(username string) (bool, error)

	// ExistsByEmail reports whether the email is taken
	ExistsByEmail(email string) (bool, error)

	// List returns every user ordered by ID
	List() ([]models.User, error)

	// Count counts users, optionally restricted to a role
	Count(role *models.Role) (int64, error)

	// CountCreatedSince counts users registered at or after t
	CountCreatedSince(t time.Time) (int64, error)
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a new comment
	Create(comment *models.Comment) error

	// FindByID finds a comment by ID
	FindByID(id uint64) (*models.Comment, error)

	// ListByTask lists a task's comments newest first, with authors loaded
	ListByTask(taskID uint64) ([]models.Comment, error)

	// Delete soft deletes a comment
	Delete(id uint64) error

	// CountByTask counts comments on a task
	CountByTask(taskID uint64) (int64, error)

	// CountByTaskIDs counts comments for each of the given tasks
	CountByTaskIDs(taskIDs []uint64) (map[uint64]int64, error)

	// CountByUser counts comments written by a user
	CountByUser(userID uint64) (int64, error)

	// CountGroupedByUser counts comments per author
	CountGroupedByUser() (map[uint64]int64, error)

	// Count counts all comments
	Count() (int64, error)

	// CountCreatedSince counts comments added at or after t
	CountCreatedSince(t time.Time) (int64, error)
}

// translateError maps unique-constraint failures from any supported driver to ErrDuplicate.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return ErrDuplicate
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}
