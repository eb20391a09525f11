package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/middleware"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/service"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
	"github.com/AshiqAbdulkhader/FSAD-version2/pkg/response"
)

// RequestHandler handles borrowing-request lifecycle endpoints.
type RequestHandler struct {
	service *service.RequestService
	exports *service.ExportService
}

// NewRequestHandler creates a new request handler.
func NewRequestHandler(svc *service.RequestService, exports *service.ExportService) *RequestHandler {
	return &RequestHandler{service: svc, exports: exports}
}

// List godoc
// @Summary List borrowing requests
// @Description Staff/admin see all requests; students see their own
// @Tags Requests
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	requests, err := h.service.List(c.Request.Context(), claims, statusFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests)
}

// Get godoc
// @Summary Get borrowing request
// @Description Get one request; restricted to staff/admin and the requester
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail)
}

// Create godoc
// @Summary Create borrowing request
// @Description Submit a date-ranged borrowing request for an equipment item
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body models.CreateRequestInput true "Create payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Create(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var input models.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	req, err := h.service.Create(c.Request.Context(), claims.UserID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, req)
}

// Approve godoc
// @Summary Approve borrowing request
// @Description Approve a pending request (staff/admin only)
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/approve [put]
func (h *RequestHandler) Approve(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req, err := h.service.Approve(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, req)
}

// Reject godoc
// @Summary Reject borrowing request
// @Description Reject a pending request (staff/admin only)
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/reject [put]
func (h *RequestHandler) Reject(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Reject(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Return godoc
// @Summary Mark equipment returned
// @Description Close an approved request (staff/admin only)
// @Tags Requests
// @Produce json
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests/{id}/return [put]
func (h *RequestHandler) Return(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.MarkReturned(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Export godoc
// @Summary Export borrowing requests
// @Description Download the visible request list as CSV or PDF (staff/admin only)
// @Tags Requests
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /requests/export [get]
func (h *RequestHandler) Export(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.Requests(c.Request.Context(), claims, format, statusFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func statusFilter(c *gin.Context) *models.RequestStatus {
	raw := c.Query("status")
	if raw == "" {
		return nil
	}
	status := models.RequestStatus(raw)
	return &status
}
