package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// StatusCount is a group-by row keyed by a free-form label.
type StatusCount struct {
	Label string `db:"label"`
	Count int    `db:"count"`
}

// DashboardRepository exposes the aggregate count queries behind the admin
// dashboard. Read only.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository creates a new instance of DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// CountEquipment returns the total number of equipment records.
func (r *DashboardRepository) CountEquipment(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM equipment`)
}

// CountUsers returns the total number of user records.
func (r *DashboardRepository) CountUsers(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

// CountPendingRequests returns the number of requests awaiting a decision.
func (r *DashboardRepository) CountPendingRequests(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM borrowing_requests WHERE status = 'pending'`)
}

// CountActiveBorrowings returns approved requests whose range contains today.
func (r *DashboardRepository) CountActiveBorrowings(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM borrowing_requests WHERE status = 'approved' AND CURRENT_DATE BETWEEN start_date AND end_date`)
}

// EquipmentByCategory groups equipment counts by category.
func (r *DashboardRepository) EquipmentByCategory(ctx context.Context) ([]StatusCount, error) {
	const query = `SELECT category AS label, COUNT(*) AS count FROM equipment GROUP BY category`
	var rows []StatusCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("group equipment by category: %w", err)
	}
	return rows, nil
}

// RequestsByStatus groups borrowing request counts by status.
func (r *DashboardRepository) RequestsByStatus(ctx context.Context) ([]StatusCount, error) {
	const query = `SELECT status AS label, COUNT(*) AS count FROM borrowing_requests GROUP BY status`
	var rows []StatusCount
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("group requests by status: %w", err)
	}
	return rows, nil
}

func (r *DashboardRepository) count(ctx context.Context, query string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("dashboard count: %w", err)
	}
	return count, nil
}
