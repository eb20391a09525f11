package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
)

func newRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func requestRow(id string, status models.RequestStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "equipment_id", "request_date", "start_date", "end_date", "status", "approved_by", "approval_date", "return_date"}).
		AddRow(id, "user-1", "equip-1", time.Now(), time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), status, nil, nil, nil)
}

func TestRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("INSERT INTO borrowing_requests").
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.BorrowingRequest{
		UserID:      "user-1",
		EquipmentID: "equip-1",
		StartDate:   models.NewDate(2026, time.March, 1),
		EndDate:     models.NewDate(2026, time.March, 5),
		Status:      models.StatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.NotEmpty(t, req.ID)
	assert.False(t, req.RequestDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("SELECT id, user_id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCountOverlappingApproved(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	start := models.NewDate(2026, time.March, 1)
	end := models.NewDate(2026, time.March, 5)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM borrowing_requests WHERE equipment_id = $1 AND status = 'approved' AND start_date <= $3 AND end_date >= $2")).
		WithArgs("equip-1", start, end).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountOverlappingApproved(context.Background(), "equip-1", start, end, "")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryCountOverlappingApprovedExcludesSelf(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	start := models.NewDate(2026, time.March, 1)
	end := models.NewDate(2026, time.March, 5)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM borrowing_requests WHERE equipment_id = $1 AND status = 'approved' AND start_date <= $3 AND end_date >= $2 AND id <> $4")).
		WithArgs("equip-1", start, end, "req-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := repo.CountOverlappingApproved(context.Background(), "equip-1", start, end, "req-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryApprove(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)
	now := time.Date(2026, time.February, 20, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id, equipment_id, request_date, start_date, end_date, status, approved_by, approval_date, return_date FROM borrowing_requests WHERE id = \\$1 FOR UPDATE").
		WithArgs("req-1").
		WillReturnRows(requestRow("req-1", models.StatusPending))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM equipment WHERE id = $1 FOR UPDATE")).
		WithArgs("equip-1").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM borrowing_requests WHERE equipment_id = $1 AND status = 'approved' AND id <> $2 AND start_date <= $4 AND end_date >= $3")).
		WithArgs("equip-1", "req-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE borrowing_requests SET status = 'approved', approved_by = $2, approval_date = $3 WHERE id = $1")).
		WithArgs("req-1", "staff-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req, err := repo.Approve(context.Background(), "req-1", "staff-1", now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, req.Status)
	require.NotNil(t, req.ApprovedBy)
	assert.Equal(t, "staff-1", *req.ApprovedBy)
	require.NotNil(t, req.ApprovalDate)
	assert.Equal(t, now, *req.ApprovalDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryApproveNotPending(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs("req-1").
		WillReturnRows(requestRow("req-1", models.StatusRejected))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), "req-1", "staff-1", time.Now())
	assert.ErrorIs(t, err, ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryApproveNoCapacity(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM borrowing_requests WHERE id = \\$1 FOR UPDATE").
		WithArgs("req-1").
		WillReturnRows(requestRow("req-1", models.StatusPending))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT quantity FROM equipment WHERE id = $1 FOR UPDATE")).
		WithArgs("equip-1").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("equip-1", "req-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), "req-1", "staff-1", time.Now())
	assert.ErrorIs(t, err, ErrNoCapacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryRejectOnlyPending(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE borrowing_requests SET status = 'rejected', approved_by = $2, approval_date = $3 WHERE id = $1 AND status = 'pending'")).
		WithArgs("req-1", "staff-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.Reject(context.Background(), "req-1", "staff-1", now)
	require.NoError(t, err)
	assert.True(t, updated)

	mock.ExpectExec("UPDATE borrowing_requests SET status = 'rejected'").
		WithArgs("req-2", "staff-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err = repo.Reject(context.Background(), "req-2", "staff-1", now)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryMarkReturnedOnlyApproved(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE borrowing_requests SET status = 'returned', return_date = $2 WHERE id = $1 AND status = 'approved'")).
		WithArgs("req-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err := repo.MarkReturned(context.Background(), "req-1", now)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListFiltersByUserAndStatus(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "user_name", "user_email", "equipment_id", "equipment_name", "request_date", "start_date", "end_date", "status", "approved_by", "approval_date", "return_date"}).
		AddRow("req-1", "user-1", "Student A", "a@example.com", "equip-1", "Microscope", time.Now(), time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC), "pending", nil, nil, nil)

	status := models.StatusPending
	mock.ExpectQuery("FROM borrowing_requests br").
		WithArgs("user-1", status).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), models.RequestFilter{UserID: "user-1", Status: &status})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Microscope", list[0].EquipmentName)
	assert.Equal(t, models.StatusPending, list[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
