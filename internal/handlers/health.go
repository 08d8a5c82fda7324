package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Pinger checks the database connection.
type Pinger func() error

type HealthHandler struct {
	ping Pinger
	log  zerolog.Logger
}

func NewHealthHandler(ping Pinger, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, log: log}
}

// Health reports liveness and database reachability
func (h *HealthHandler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(); err != nil {
			h.log.Error().Err(err).Msg("health check: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "down",
				"database": "unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
		"message":  "DevBoard API is running",
	})
}
