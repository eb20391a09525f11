package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
)

type availabilityEquipmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Equipment, error)
}

type overlapCounter interface {
	CountOverlappingApproved(ctx context.Context, equipmentID string, start, end models.Date, excludeRequestID string) (int, error)
}

// AvailabilityService computes how many units of an equipment pool are free
// over a date range, given existing approved bookings. Pure queries, no state.
type AvailabilityService struct {
	equipment availabilityEquipmentRepository
	requests  overlapCounter
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(equipment availabilityEquipmentRepository, requests overlapCounter) *AvailabilityService {
	return &AvailabilityService{equipment: equipment, requests: requests}
}

// AvailableUnits returns quantity minus the overlapping approved count for
// [start, end], clamped at zero. The clamped value is for display only; the
// capacity checks in the request lifecycle use the raw count against quantity.
func (s *AvailabilityService) AvailableUnits(ctx context.Context, equipmentID string, start, end models.Date) (int, error) {
	item, err := s.equipment.FindByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "equipment not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load equipment")
	}

	count, err := s.requests.CountOverlappingApproved(ctx, equipmentID, start, end, "")
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count overlapping approvals")
	}

	available := item.Quantity - count
	if available < 0 {
		available = 0
	}
	return available, nil
}

// AvailableToday is AvailableUnits for the single-day range [today, today],
// used to annotate equipment listings.
func (s *AvailabilityService) AvailableToday(ctx context.Context, equipmentID string) (int, error) {
	today := models.Today()
	return s.AvailableUnits(ctx, equipmentID, today, today)
}

// OverlappingApproved exposes the raw overlap count for a range, optionally
// excluding one request id (used by the approval gate to avoid self-counting).
func (s *AvailabilityService) OverlappingApproved(ctx context.Context, equipmentID string, start, end models.Date, excludeRequestID string) (int, error) {
	count, err := s.requests.CountOverlappingApproved(ctx, equipmentID, start, end, excludeRequestID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count overlapping approvals")
	}
	return count, nil
}
