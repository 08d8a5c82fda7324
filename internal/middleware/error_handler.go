package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/devboard-api/internal/constants"
	"github.com/yukikurage/devboard-api/internal/dto"
	apierrors "github.com/yukikurage/devboard-api/internal/errors"
)

// ErrorHandler turns the last error recorded with c.Error into an envelope.
// Unexpected errors are logged and reported with a generic message.
func ErrorHandler(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		apiErr, expected := apierrors.Resolve(err)
		if !expected {
			log.Error().
				Err(err).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString(constants.ContextKeyRequestID)).
				Msg("unexpected error")
		}

		c.JSON(apiErr.Status, dto.Fail(apiErr.Code, apiErr.Message, apiErr.Details))
	}
}
