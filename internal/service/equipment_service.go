package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
)

type equipmentRepository interface {
	List(ctx context.Context, filter models.EquipmentFilter) ([]models.Equipment, error)
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, item *models.Equipment) error
	Update(ctx context.Context, item *models.Equipment) error
	Delete(ctx context.Context, id string) error
}

type activeRequestCounter interface {
	CountActiveForEquipment(ctx context.Context, equipmentID string) (int, error)
}

// CreateEquipmentRequest represents payload for creating equipment.
type CreateEquipmentRequest struct {
	Name        string                    `json:"name" validate:"required"`
	Category    string                    `json:"category" validate:"required"`
	Condition   models.EquipmentCondition `json:"condition" validate:"required,oneof=excellent good fair poor"`
	Quantity    int                       `json:"quantity" validate:"omitempty,min=1"`
	Description string                    `json:"description"`
}

// UpdateEquipmentRequest carries a partial equipment update. Nil fields are
// left untouched.
type UpdateEquipmentRequest struct {
	Name        *string                    `json:"name"`
	Category    *string                    `json:"category"`
	Condition   *models.EquipmentCondition `json:"condition"`
	Quantity    *int                       `json:"quantity"`
	Description *string                    `json:"description"`
}

// EquipmentService handles catalogue management and availability annotation.
type EquipmentService struct {
	repo         equipmentRepository
	requests     activeRequestCounter
	availability *AvailabilityService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewEquipmentService creates an instance of EquipmentService.
func NewEquipmentService(repo equipmentRepository, requests activeRequestCounter, availability *AvailabilityService, validate *validator.Validate, logger *zap.Logger) *EquipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EquipmentService{repo: repo, requests: requests, availability: availability, validator: validate, logger: logger}
}

// List returns equipment matching the filter, each annotated with the units
// free today.
func (s *EquipmentService) List(ctx context.Context, filter models.EquipmentFilter) ([]models.EquipmentDetail, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list equipment")
	}

	details := make([]models.EquipmentDetail, 0, len(items))
	for _, item := range items {
		available, err := s.availability.AvailableToday(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, models.EquipmentDetail{Equipment: item, Available: available})
	}
	return details, nil
}

// Get returns one equipment item annotated with today's availability.
func (s *EquipmentService) Get(ctx context.Context, id string) (*models.EquipmentDetail, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}

	available, err := s.availability.AvailableToday(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return &models.EquipmentDetail{Equipment: *item, Available: available}, nil
}

// Categories returns the distinct categories in use.
func (s *EquipmentService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	return categories, nil
}

// Create adds a new equipment item. Quantity defaults to one unit.
func (s *EquipmentService) Create(ctx context.Context, req CreateEquipmentRequest) (*models.Equipment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid equipment payload")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	item := &models.Equipment{
		Name:        req.Name,
		Category:    req.Category,
		Condition:   req.Condition,
		Quantity:    quantity,
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create equipment")
	}

	s.logger.Info("equipment created", zap.String("equipment_id", item.ID), zap.String("category", item.Category))
	return item, nil
}

// Update applies the provided fields to an existing item.
func (s *EquipmentService) Update(ctx context.Context, id string, req UpdateEquipmentRequest) (*models.Equipment, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Condition != nil {
		switch *req.Condition {
		case models.ConditionExcellent, models.ConditionGood, models.ConditionFair, models.ConditionPoor:
			item.Condition = *req.Condition
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid condition")
		}
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "quantity must be at least 1")
		}
		item.Quantity = *req.Quantity
	}
	if req.Description != nil {
		item.Description = *req.Description
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update equipment")
	}

	s.logger.Info("equipment updated", zap.String("equipment_id", item.ID))
	return item, nil
}

// Delete removes an item. Deletion is blocked while pending or approved
// requests still reference the equipment.
func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}

	active, err := s.requests.CountActiveForEquipment(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active requests")
	}
	if active > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "equipment has pending or approved borrowing requests")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete equipment")
	}

	s.logger.Info("equipment deleted", zap.String("equipment_id", id))
	return nil
}
