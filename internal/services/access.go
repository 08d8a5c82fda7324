package services

import (
	"fmt"

	"github.com/yukikurage/devboard-api/internal/models"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID       uint64
	Username string
	Role     models.Role
}

// ActorFromUser builds the actor for a loaded user record.
func ActorFromUser(u models.User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanDeleteTask allows the creator and admins.
func CanDeleteTask(task models.Task, actor Actor) bool {
	return actor.IsAdmin() || task.CreatorID == actor.ID
}

// CanDeleteComment allows the author and admins.
func CanDeleteComment(comment models.Comment, actor Actor) bool {
	return actor.IsAdmin() || comment.UserID == actor.ID
}

// UpdatePolicy decides who may edit a task.
type UpdatePolicy string

const (
	// UpdateByAnyUser lets every authenticated user edit any task.
	UpdateByAnyUser UpdatePolicy = "any"
	// UpdateByParticipants restricts edits to the creator, the assignee and admins.
	UpdateByParticipants UpdatePolicy = "participants"
)

func ParseUpdatePolicy(s string) (UpdatePolicy, error) {
	switch UpdatePolicy(s) {
	case UpdateByAnyUser, UpdateByParticipants:
		return UpdatePolicy(s), nil
	}
	return "", fmt.Errorf("unknown task update policy %q", s)
}

func (p UpdatePolicy) CanUpdate(task models.Task, actor Actor) bool {
	switch p {
	case UpdateByParticipants:
		return actor.IsAdmin() || task.CreatorID == actor.ID || task.IsAssignedTo(actor.ID)
	default:
		return true
	}
}
