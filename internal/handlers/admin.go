package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/devboard-api/internal/dto"
	"github.com/yukikurage/devboard-api/internal/services"
)

// AdminHandler serves the reporting endpoints. Routes are gated by RequireAdmin.
type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	summaries, err := h.adminService.ListUserSummaries()
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToAdminUserSummaryDTOs(summaries))
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	summary, err := h.adminService.GetUserSummary(userID)
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToAdminUserSummaryDTO(*summary))
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.adminService.GetDashboard()
	if err != nil {
		c.Error(err)
		return
	}
	respondOK(c, dto.ToDashboardDTO(*d))
}
