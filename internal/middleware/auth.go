package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/devboard-api/internal/constants"
	apierrors "github.com/yukikurage/devboard-api/internal/errors"
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/services"
)

// TokenVerifier resolves a bearer token to its user.
type TokenVerifier interface {
	VerifyToken(token string) (*models.User, error)
}

// RequireAuth checks the bearer token and stores the caller in the context.
// The user is reloaded on every request so role changes apply at once.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(constants.HeaderAuthorization)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], constants.TokenType) || strings.TrimSpace(parts[1]) == "" {
			c.Error(apierrors.ErrUnauthorized)
			c.Abort()
			return
		}

		user, err := verifier.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyActor, services.ActorFromUser(*user))
		c.Next()
	}
}

// GetActor retrieves the authenticated caller from context
func GetActor(c *gin.Context) (services.Actor, bool) {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

// RequireAdmin allows only ADMIN callers. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.Error(apierrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !actor.IsAdmin() {
			c.Error(apierrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
