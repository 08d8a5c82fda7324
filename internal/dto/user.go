package dto

import (
	"time"

	"github.com/yukikurage/devboard-api/internal/constants"
	"github.com/yukikurage/devboard-api/internal/models"
	"github.com/yukikurage/devboard-api/internal/services"
)

// UserSummaryDTO is the public projection of a user embedded in tasks and comments
type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// UserProfileDTO is the full self-view of a user. It never carries the password hash.
type UserProfileDTO struct {
	ID        uint64      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Nickname  string      `json:"nickname"`
	Avatar    string      `json:"avatar"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// JwtResponse is returned by a successful login
type JwtResponse struct {
	Token    string      `json:"token"`
	Type     string      `json:"type"`
	ID       uint64      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Nickname string      `json:"nickname"`
	Avatar   string      `json:"avatar"`
	Role     models.Role `json:"role"`
}

// AdminUserSummaryDTO is a user with activity counts
type AdminUserSummaryDTO struct {
	ID            uint64      `json:"id"`
	Username      string      `json:"username"`
	Email         string      `json:"email"`
	Nickname      string      `json:"nickname"`
	Avatar        string      `json:"avatar"`
	Role          models.Role `json:"role"`
	CreatedAt     time.Time   `json:"createdAt"`
	LastActiveAt  time.Time   `json:"lastActiveAt"`
	TasksCreated  int64       `json:"tasksCreated"`
	TasksAssigned int64       `json:"tasksAssigned"`
	CommentsCount int64       `json:"commentsCount"`
	IsActive      bool        `json:"isActive"`
}

func ToUserSummaryDTO(user models.User) UserSummaryDTO {
	return UserSummaryDTO{
		ID:       user.ID,
		Username: user.Username,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	}
}

func ToUserProfileDTO(user models.User) UserProfileDTO {
	return UserProfileDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Nickname:  user.Nickname,
		Avatar:    user.Avatar,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func ToUserProfileDTOs(users []models.User) []UserProfileDTO {
	items := make([]UserProfileDTO, len(users))
	for i, u := range users {
		items[i] = ToUserProfileDTO(u)
	}
	return items
}

func ToJwtResponse(result services.AuthResult) JwtResponse {
	return JwtResponse{
		Token:    result.Token,
		Type:     constants.TokenType,
		ID:       result.User.ID,
		Username: result.User.Username,
		Email:    result.User.Email,
		Nickname: result.User.Nickname,
		Avatar:   result.User.Avatar,
		Role:     result.User.Role,
	}
}

// ToAdminUserSummaryDTO converts a UserSummary. Accounts cannot be disabled, so
// every user is active; the last update stands in for last activity.
func ToAdminUserSummaryDTO(s services.UserSummary) AdminUserSummaryDTO {
	return AdminUserSummaryDTO{
		ID:            s.User.ID,
		Username:      s.User.Username,
		Email:         s.User.Email,
		Nickname:      s.User.Nickname,
		Avatar:        s.User.Avatar,
		Role:          s.User.Role,
		CreatedAt:     s.User.CreatedAt,
		LastActiveAt:  s.User.UpdatedAt,
		TasksCreated:  s.TasksCreated,
		TasksAssigned: s.TasksAssigned,
		CommentsCount: s.CommentsCount,
		IsActive:      true,
	}
}

func ToAdminUserSummaryDTOs(summaries []services.UserSummary) []AdminUserSummaryDTO {
	items := make([]AdminUserSummaryDTO, len(summaries))
	for i, s := range summaries {
		items[i] = ToAdminUserSummaryDTO(s)
	}
	return items
}
