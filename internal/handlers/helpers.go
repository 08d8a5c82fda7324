package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/devboard-api/internal/dto"
	apierrors "github.com/yukikurage/devboard-api/internal/errors"
	"github.com/yukikurage/devboard-api/internal/middleware"
	"github.com/yukikurage/devboard-api/internal/services"
)

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.Success(data))
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessMessage(message))
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, dto.Success(data))
}

// bindJSON binds the request body, recording a validation error on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Error(apierrors.FromBinding(err))
		return false
	}
	return true
}

func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.Error(apierrors.BadRequest("Invalid " + name))
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.Error(apierrors.BadRequest("Invalid " + name))
		return nil, false
	}
	return &id, true
}

func currentActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.Error(apierrors.ErrUnauthorized)
	}
	return actor, ok
}
