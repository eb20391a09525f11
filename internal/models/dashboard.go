package models

// DashboardStats aggregates counts for the admin dashboard.
type DashboardStats struct {
	TotalEquipment      int            `json:"total_equipment"`
	TotalUsers          int            `json:"total_users"`
	PendingRequests     int            `json:"pending_requests"`
	ActiveBorrowings    int            `json:"active_borrowings"`
	EquipmentByCategory map[string]int `json:"equipment_by_category"`
	RequestsByStatus    map[string]int `json:"requests_by_status"`
}
