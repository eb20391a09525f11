package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/middleware"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/service"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
	"github.com/AshiqAbdulkhader/FSAD-version2/pkg/response"
)

// DashboardHandler exposes the admin dashboard aggregates.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Stats godoc
// @Summary Dashboard statistics
// @Description Aggregate counts over equipment, users and requests (admin only)
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, cached, err := h.service.Stats(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, map[string]interface{}{"cached": cached})
}
