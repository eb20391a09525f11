package models

import "time"

// RequestStatus is the lifecycle state of a borrowing request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusReturned RequestStatus = "returned"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusReturned:
		return true
	}
	return false
}

// BorrowingRequest represents a date-ranged request against an equipment pool.
// StartDate and EndDate form an inclusive range.
type BorrowingRequest struct {
	ID           string        `db:"id" json:"id"`
	UserID       string        `db:"user_id" json:"user_id"`
	EquipmentID  string        `db:"equipment_id" json:"equipment_id"`
	RequestDate  time.Time     `db:"request_date" json:"request_date"`
	StartDate    Date          `db:"start_date" json:"start_date"`
	EndDate      Date          `db:"end_date" json:"end_date"`
	Status       RequestStatus `db:"status" json:"status"`
	ApprovedBy   *string       `db:"approved_by" json:"approved_by,omitempty"`
	ApprovalDate *time.Time    `db:"approval_date" json:"approval_date,omitempty"`
	ReturnDate   *time.Time    `db:"return_date" json:"return_date,omitempty"`
}

// BorrowingRequestDetail joins requester and equipment display fields onto a
// request for list and detail responses.
type BorrowingRequestDetail struct {
	BorrowingRequest
	UserName      string `db:"user_name" json:"user_name"`
	UserEmail     string `db:"user_email" json:"user_email"`
	EquipmentName string `db:"equipment_name" json:"equipment_name"`
}

// RequestFilter narrows request listings.
type RequestFilter struct {
	UserID string
	Status *RequestStatus
}

// CreateRequestInput is the payload for submitting a borrowing request.
type CreateRequestInput struct {
	EquipmentID string `json:"equipment_id" validate:"required"`
	StartDate   Date   `json:"start_date" validate:"required"`
	EndDate     Date   `json:"end_date" validate:"required"`
}
