package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/devboard-api/internal/errors"
	"github.com/yukikurage/devboard-api/internal/services"
)

// TaskOwnership answers the questions the task owner gate needs.
type TaskOwnership interface {
	IsCreator(taskID uint64, username string) bool
	TaskExists(taskID uint64) (bool, error)
}

// RequireTaskOwnerOrAdmin lets the request through when the caller is an
// admin or created the task in the :id parameter. A missing task yields 404.
func RequireTaskOwnerOrAdmin(tasks TaskOwnership) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.Error(apierrors.BadRequest("Invalid task ID"))
			c.Abort()
			return
		}

		actor, ok := GetActor(c)
		if !ok {
			c.Error(apierrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if actor.IsAdmin() || tasks.IsCreator(taskID, actor.Username) {
			c.Next()
			return
		}

		exists, err := tasks.TaskExists(taskID)
		switch {
		case err != nil:
			c.Error(err)
		case !exists:
			c.Error(services.ErrTaskNotFound)
		default:
			c.Error(services.ErrTaskAccessDenied)
		}
		c.Abort()
	}
}
