package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
)

// Sentinel errors surfaced by the conditional approve transition. The service
// layer maps them onto the API error taxonomy.
var (
	// ErrNotPending signals that a request left the pending state before the
	// transition could be applied.
	ErrNotPending = errors.New("request is not pending")
	// ErrNoCapacity signals that the overlap recount inside the approve
	// transaction found the equipment pool exhausted.
	ErrNoCapacity = errors.New("equipment capacity exhausted for range")
)

const requestDetailColumns = `br.id, br.user_id, u.name AS user_name, u.email AS user_email,
br.equipment_id, e.name AS equipment_name, br.request_date,
br.start_date, br.end_date, br.status, br.approved_by, br.approval_date, br.return_date`

// RequestRepository provides database access for borrowing requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository creates a new instance of RequestRepository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts a new borrowing request.
func (r *RequestRepository) Create(ctx context.Context, req *models.BorrowingRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.RequestDate.IsZero() {
		req.RequestDate = time.Now().UTC()
	}

	const query = `INSERT INTO borrowing_requests (id, user_id, equipment_id, request_date, start_date, end_date, status) VALUES (:id, :user_id, :equipment_id, :request_date, :start_date, :end_date, :status)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create borrowing request: %w", err)
	}
	return nil
}

// FindByID returns a borrowing request by identifier.
func (r *RequestRepository) FindByID(ctx context.Context, id string) (*models.BorrowingRequest, error) {
	const query = `SELECT id, user_id, equipment_id, request_date, start_date, end_date, status, approved_by, approval_date, return_date FROM borrowing_requests WHERE id = $1 LIMIT 1`
	var req models.BorrowingRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request by id: %w", err)
	}
	return &req, nil
}

// FindDetailByID returns a request joined with requester and equipment fields.
func (r *RequestRepository) FindDetailByID(ctx context.Context, id string) (*models.BorrowingRequestDetail, error) {
	query := `SELECT ` + requestDetailColumns + `
FROM borrowing_requests br
JOIN users u ON br.user_id = u.id
JOIN equipment e ON br.equipment_id = e.id
WHERE br.id = $1 LIMIT 1`
	var detail models.BorrowingRequestDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find request detail by id: %w", err)
	}
	return &detail, nil
}

// List returns requests matching the filter, newest first.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.BorrowingRequestDetail, error) {
	query := `SELECT ` + requestDetailColumns + `
FROM borrowing_requests br
JOIN users u ON br.user_id = u.id
JOIN equipment e ON br.equipment_id = e.id
WHERE 1=1`
	var args []interface{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND br.user_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND br.status = $%d", len(args))
	}

	query += " ORDER BY br.request_date DESC"

	var requests []models.BorrowingRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// CountOverlappingApproved counts approved requests for the equipment whose
// inclusive date range overlaps [start, end], optionally excluding one request
// id. This is the single overlap query behind every capacity decision.
func (r *RequestRepository) CountOverlappingApproved(ctx context.Context, equipmentID string, start, end models.Date, excludeRequestID string) (int, error) {
	query := `SELECT COUNT(*) FROM borrowing_requests WHERE equipment_id = $1 AND status = 'approved' AND start_date <= $3 AND end_date >= $2`
	args := []interface{}{equipmentID, start, end}
	if excludeRequestID != "" {
		args = append(args, excludeRequestID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count overlapping approved requests: %w", err)
	}
	return count, nil
}

// CountActiveForEquipment counts pending and approved requests referencing the
// equipment. Used to guard deletion.
func (r *RequestRepository) CountActiveForEquipment(ctx context.Context, equipmentID string) (int, error) {
	const query = `SELECT COUNT(*) FROM borrowing_requests WHERE equipment_id = $1 AND status IN ('pending', 'approved')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, equipmentID); err != nil {
		return 0, fmt.Errorf("count active requests for equipment: %w", err)
	}
	return count, nil
}

// Approve applies the pending -> approved transition as one serializable
// transaction: the request row and the equipment row are locked, the overlap
// count is recomputed excluding the request itself, and the status flips only
// while capacity remains. Returns ErrNotPending or ErrNoCapacity when the
// preconditions fail; the request is left untouched in both cases.
func (r *RequestRepository) Approve(ctx context.Context, requestID, approverID string, now time.Time) (req *models.BorrowingRequest, err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin approve transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current models.BorrowingRequest
	const lockRequest = `SELECT id, user_id, equipment_id, request_date, start_date, end_date, status, approved_by, approval_date, return_date FROM borrowing_requests WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &current, lockRequest, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock request: %w", err)
	}

	if current.Status != models.StatusPending {
		err = ErrNotPending
		return nil, err
	}

	// Locking the equipment row serialises concurrent approvals per pool.
	var quantity int
	const lockEquipment = `SELECT quantity FROM equipment WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &quantity, lockEquipment, current.EquipmentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("lock equipment: %w", err)
	}

	var overlapping int
	const countQuery = `SELECT COUNT(*) FROM borrowing_requests WHERE equipment_id = $1 AND status = 'approved' AND id <> $2 AND start_date <= $4 AND end_date >= $3`
	if err = tx.GetContext(ctx, &overlapping, countQuery, current.EquipmentID, current.ID, current.StartDate, current.EndDate); err != nil {
		return nil, fmt.Errorf("recount overlapping approvals: %w", err)
	}

	if overlapping >= quantity {
		err = ErrNoCapacity
		return nil, err
	}

	const updateQuery = `UPDATE borrowing_requests SET status = 'approved', approved_by = $2, approval_date = $3 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, updateQuery, current.ID, approverID, now); err != nil {
		return nil, fmt.Errorf("approve request: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approve transaction: %w", err)
	}

	current.Status = models.StatusApproved
	current.ApprovedBy = &approverID
	current.ApprovalDate = &now
	return &current, nil
}

// Reject applies the pending -> rejected transition. The status precondition
// is part of the update, so a concurrent transition cannot be overwritten.
// Returns false when no pending row matched.
func (r *RequestRepository) Reject(ctx context.Context, requestID, approverID string, now time.Time) (bool, error) {
	const query = `UPDATE borrowing_requests SET status = 'rejected', approved_by = $2, approval_date = $3 WHERE id = $1 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, requestID, approverID, now)
	if err != nil {
		return false, fmt.Errorf("reject request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reject request rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkReturned applies the approved -> returned transition with the same
// conditional-update guard as Reject.
func (r *RequestRepository) MarkReturned(ctx context.Context, requestID string, now time.Time) (bool, error) {
	const query = `UPDATE borrowing_requests SET status = 'returned', return_date = $2 WHERE id = $1 AND status = 'approved'`
	result, err := r.db.ExecContext(ctx, query, requestID, now)
	if err != nil {
		return false, fmt.Errorf("mark request returned: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark returned rows affected: %w", err)
	}
	return affected > 0, nil
}
