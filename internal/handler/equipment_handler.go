package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/service"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
	"github.com/AshiqAbdulkhader/FSAD-version2/pkg/response"
)

// EquipmentHandler handles equipment catalogue endpoints.
type EquipmentHandler struct {
	service *service.EquipmentService
}

// NewEquipmentHandler creates a new equipment handler.
func NewEquipmentHandler(svc *service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{service: svc}
}

// List godoc
// @Summary List equipment
// @Description List equipment with category/search filters and today's availability
// @Tags Equipment
// @Produce json
// @Param category query string false "Category filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /equipment [get]
func (h *EquipmentHandler) List(c *gin.Context) {
	filter := models.EquipmentFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, items)
}

// Get godoc
// @Summary Get equipment
// @Description Get one equipment item with today's availability
// @Tags Equipment
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /equipment/{id} [get]
func (h *EquipmentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

// Categories godoc
// @Summary List categories
// @Description List distinct equipment categories
// @Tags Equipment
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /equipment/categories [get]
func (h *EquipmentHandler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, categories)
}

// Create godoc
// @Summary Create equipment
// @Description Create a new equipment item (admin only)
// @Tags Equipment
// @Accept json
// @Produce json
// @Param payload body service.CreateEquipmentRequest true "Create payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /equipment [post]
func (h *EquipmentHandler) Create(c *gin.Context) {
	var req service.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, item)
}

// Update godoc
// @Summary Update equipment
// @Description Update equipment fields (admin only)
// @Tags Equipment
// @Accept json
// @Produce json
// @Param id path string true "Equipment ID"
// @Param payload body service.UpdateEquipmentRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /equipment/{id} [put]
func (h *EquipmentHandler) Update(c *gin.Context) {
	var req service.UpdateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

// Delete godoc
// @Summary Delete equipment
// @Description Delete an equipment item (admin only); blocked while active requests exist
// @Tags Equipment
// @Produce json
// @Param id path string true "Equipment ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /equipment/{id} [delete]
func (h *EquipmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
