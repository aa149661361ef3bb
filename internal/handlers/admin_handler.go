package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rigforge/internal/services"
)

// AdminHandler handles admin reporting requests.
type AdminHandler struct {
	adminService services.AdminServicer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService services.AdminServicer) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetStats returns application-wide counts.
// @Summary     Application stats
// @Description Get user, build, and catalog part counts
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.AppStats "Stats"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/stats [get]
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// GetUsers lists every registered account.
// @Summary     List users
// @Description Get every account's username and registration date
// @Tags        admin
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]services.UserSummary "Users"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Admin access required"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /admin/users [get]
func (h *AdminHandler) GetUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
