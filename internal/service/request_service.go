package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/repository"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
)

type requestRepository interface {
	Create(ctx context.Context, req *models.BorrowingRequest) error
	FindByID(ctx context.Context, id string) (*models.BorrowingRequest, error)
	FindDetailByID(ctx context.Context, id string) (*models.BorrowingRequestDetail, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.BorrowingRequestDetail, error)
	CountOverlappingApproved(ctx context.Context, equipmentID string, start, end models.Date, excludeRequestID string) (int, error)
	Approve(ctx context.Context, requestID, approverID string, now time.Time) (*models.BorrowingRequest, error)
	Reject(ctx context.Context, requestID, approverID string, now time.Time) (bool, error)
	MarkReturned(ctx context.Context, requestID string, now time.Time) (bool, error)
}

type requestEquipmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
}

// RequestService owns the borrowing-request lifecycle: creation with the
// optimistic capacity check, the authoritative approval gate, rejection and
// return. Capacity is evaluated twice on purpose: creation only blocks a
// request when the pool is already exhausted, while approval is the binding
// admission decision.
type RequestService struct {
	repo      requestRepository
	equipment requestEquipmentRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRequestService creates an instance of RequestService.
func NewRequestService(repo requestRepository, equipment requestEquipmentRepository, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RequestService{repo: repo, equipment: equipment, validator: validate, logger: logger, now: time.Now}
}

// Create validates the requested range and records a pending request. Only
// when the overlapping approved count already meets the equipment quantity is
// creation refused; a pending request never reserves capacity by itself.
func (s *RequestService) Create(ctx context.Context, requesterID string, input models.CreateRequestInput) (*models.BorrowingRequest, error) {
	if err := s.validator.Struct(input); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	if input.StartDate.After(input.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must be before or equal to end date")
	}
	if input.StartDate.Before(models.Today()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date cannot be in the past")
	}

	item, err := s.equipment.FindByID(ctx, input.EquipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}

	overlapping, err := s.repo.CountOverlappingApproved(ctx, item.ID, input.StartDate, input.EndDate, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count overlapping approvals")
	}
	if overlapping >= item.Quantity {
		return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "")
	}

	req := &models.BorrowingRequest{
		UserID:      requesterID,
		EquipmentID: item.ID,
		RequestDate: s.now().UTC(),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      models.StatusPending,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create request")
	}

	s.logger.Info("borrowing request created",
		zap.String("request_id", req.ID),
		zap.String("equipment_id", req.EquipmentID),
		zap.String("range", req.StartDate.String()+".."+req.EndDate.String()),
	)

	return req, nil
}

// Approve commits a pending request into approved status. The capacity recount
// and the status flip happen inside one storage transaction; on capacity
// failure the request stays pending.
func (s *RequestService) Approve(ctx context.Context, requestID string, actor *models.JWTClaims) (*models.BorrowingRequest, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	req, err := s.repo.Approve(ctx, requestID, actor.UserID, s.now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		case errors.Is(err, repository.ErrNotPending):
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "request is not pending")
		case errors.Is(err, repository.ErrNoCapacity):
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, "cannot approve: equipment not available for the selected dates")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve request")
		}
	}

	s.logger.Info("borrowing request approved", zap.String("request_id", req.ID), zap.String("approver", actor.UserID))
	return req, nil
}

// Reject moves a pending request into rejected status.
func (s *RequestService) Reject(ctx context.Context, requestID string, actor *models.JWTClaims) error {
	if err := requireManager(actor); err != nil {
		return err
	}

	updated, err := s.repo.Reject(ctx, requestID, actor.UserID, s.now().UTC())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
	}
	if !updated {
		return s.transitionFailure(ctx, requestID, "only pending requests can be rejected")
	}

	s.logger.Info("borrowing request rejected", zap.String("request_id", requestID), zap.String("approver", actor.UserID))
	return nil
}

// MarkReturned closes an approved request, recording the return timestamp.
func (s *RequestService) MarkReturned(ctx context.Context, requestID string, actor *models.JWTClaims) error {
	if err := requireManager(actor); err != nil {
		return err
	}

	updated, err := s.repo.MarkReturned(ctx, requestID, s.now().UTC())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark request returned")
	}
	if !updated {
		return s.transitionFailure(ctx, requestID, "only approved requests can be marked as returned")
	}

	s.logger.Info("borrowing request returned", zap.String("request_id", requestID))
	return nil
}

// List returns the requests visible to the caller, newest first. Staff and
// admins see everything; students only their own.
func (s *RequestService) List(ctx context.Context, actor *models.JWTClaims, status *models.RequestStatus) ([]models.BorrowingRequestDetail, error) {
	if status != nil && !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
	}

	filter := models.RequestFilter{Status: status}
	if !actor.Role.CanManageRequests() {
		filter.UserID = actor.UserID
	}

	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// Get returns a single request, restricted to staff/admin and the requester.
func (s *RequestService) Get(ctx context.Context, requestID string, actor *models.JWTClaims) (*models.BorrowingRequestDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}

	if !actor.Role.CanManageRequests() && detail.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "")
	}

	return detail, nil
}

// transitionFailure distinguishes a missing request from an illegal transition
// after a conditional update matched no rows.
func (s *RequestService) transitionFailure(ctx context.Context, requestID, message string) error {
	if _, err := s.repo.FindByID(ctx, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	return appErrors.Clone(appErrors.ErrInvalidState, message)
}

// requireManager re-checks the actor's role even though route middleware has
// already gated the call.
func requireManager(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	if !actor.Role.CanManageRequests() {
		return appErrors.Clone(appErrors.ErrForbidden, "staff or admin role required")
	}
	return nil
}
