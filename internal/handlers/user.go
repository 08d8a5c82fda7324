package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/devboard-api/internal/dto"
	"github.com/yukikurage/devboard-api/internal/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile returns the caller's full profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(actor.ID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToUserProfileDTO(*user))
}

// UpdateProfile changes the caller's email, nickname or avatar
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	type UpdateProfileRequest struct {
		Email    *string `json:"email" binding:"omitempty,email,max=255"`
		Nickname *string `json:"nickname" binding:"omitempty,max=50"`
		Avatar   *string `json:"avatar" binding:"omitempty,max=255"`
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.userService.UpdateProfile(actor.ID, services.ProfileUpdate{
		Email:    req.Email,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
	}); err != nil {
		c.Error(err)
		return
	}
	respondMessage(c, "Profile updated successfully")
}

// ListUsers returns every user. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers()
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToUserProfileDTOs(users))
}
