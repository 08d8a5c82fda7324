package database

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yukikurage/devboard-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	username, email, password, nickname string
	role                                models.Role
}

var seedUsers = []seedUser{
	{"admin", "admin@devboard.com", "admin123", "System Admin", models.RoleAdmin},
	{"developer", "dev@devboard.com", "dev123", "Lead Developer", models.RoleUser},
}

type seedTask struct {
	title, description string
	status             models.TaskStatus
	priority           models.TaskPriority
	creator, assignee  string
}

var seedTasks = []seedTask{
	{"Set up project structure", "Initialize backend and frontend projects with a clean directory layout",
		models.TaskStatusDone, models.TaskPriorityHigh, "admin", ""},
	{"Configure database", "Run MySQL in Docker and SQLite for local development",
		models.TaskStatusDone, models.TaskPriorityMedium, "admin", "developer"},
	{"Implement task CRUD API", "REST endpoints for creating, reading, updating and deleting tasks",
		models.TaskStatusDone, models.TaskPriorityHigh, "developer", ""},
	{"Build task board frontend", "Board UI with routing and navigation",
		models.TaskStatusInProgress, models.TaskPriorityHigh, "developer", "developer"},
	{"Add user authentication", "JWT bearer authentication for every API route",
		models.TaskStatusTodo, models.TaskPriorityMedium, "admin", "developer"},
	{"Create admin dashboard", "Administrative view of users, tasks and comments",
		models.TaskStatusTodo, models.TaskPriorityLow, "admin", ""},
	{"Deploy to production", "CI/CD pipeline and cloud deployment",
		models.TaskStatusTodo, models.TaskPriorityLow, "admin", ""},
	{"Write unit tests", "Test coverage for services and handlers",
		models.TaskStatusInProgress, models.TaskPriorityMedium, "developer", "developer"},
}

// seedComments are keyed by index into seedTasks.
var seedComments = []struct {
	task    int
	author  string
	content string
}{
	{0, "developer", "The directory layout looks clean and well organized."},
	{0, "admin", "Thanks! Kept it close to the usual Go project layout."},
	{1, "developer", "Docker compose setup works, both MySQL and SQLite configurations are tested."},
	{3, "developer", "Good progress on the board UI."},
	{3, "admin", "Ping me if you need help with routing or state management."},
	{3, "developer", "How should the frontend store the bearer token?"},
	{7, "developer", "Test helpers are in place, starting with the service layer."},
}

// SeedSampleData inserts demo users, tasks and comments. Each group is only
// seeded when its table is empty.
func SeedSampleData(db *gorm.DB, log zerolog.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		users, err := seedSampleUsers(tx, log)
		if err != nil {
			return err
		}

		var taskCount int64
		if err := tx.Model(&models.Task{}).Count(&taskCount).Error; err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}
		if taskCount > 0 {
			log.Info().Int64("tasks", taskCount).Msg("tasks already present, skipping sample data")
			return nil
		}
		if users == nil {
			users, err = lookupSeedUsers(tx)
			if err != nil {
				return err
			}
		}

		tasks := make([]models.Task, 0, len(seedTasks))
		for _, st := range seedTasks {
			task := models.Task{
				Title:       st.title,
				Description: st.description,
				Status:      st.status,
				Priority:    st.priority,
				CreatorID:   users[st.creator],
			}
			if st.assignee != "" {
				id := users[st.assignee]
				task.AssigneeID = &id
			}
			tasks = append(tasks, task)
		}
		if err := tx.Create(&tasks).Error; err != nil {
			return fmt.Errorf("failed to seed tasks: %w", err)
		}

		comments := make([]models.Comment, 0, len(seedComments))
		for _, sc := range seedComments {
			comments = append(comments, models.Comment{
				Content: sc.content,
				TaskID:  tasks[sc.task].ID,
				UserID:  users[sc.author],
			})
		}
		if err := tx.Create(&comments).Error; err != nil {
			return fmt.Errorf("failed to seed comments: %w", err)
		}

		log.Info().Int("tasks", len(tasks)).Int("comments", len(comments)).Msg("sample data initialized")
		return nil
	})
}

// seedSampleUsers returns nil when users already existed.
func seedSampleUsers(tx *gorm.DB, log zerolog.Logger) (map[string]uint64, error) {
	var count int64
	if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	ids := make(map[string]uint64, len(seedUsers))
	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash seed password: %w", err)
		}
		user := models.User{
			Username:     su.username,
			Email:        su.email,
			PasswordHash: string(hash),
			Nickname:     su.nickname,
			Role:         su.role,
		}
		if err := tx.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", su.username, err)
		}
		ids[su.username] = user.ID
	}

	log.Info().Int("users", len(ids)).Msg("sample users initialized")
	return ids, nil
}

func lookupSeedUsers(tx *gorm.DB) (map[string]uint64, error) {
	ids := make(map[string]uint64, len(seedUsers))
	for _, su := range seedUsers {
		var user models.User
		if err := tx.Where("username = ?", su.username).First(&user).Error; err != nil {
			return nil, fmt.Errorf("seed user %s not found: %w", su.username, err)
		}
		ids[su.username] = user.ID
	}
	return ids, nil
}
