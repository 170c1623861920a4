package dto

// AdminDashboard - агрегаты для панели администратора
type AdminDashboard struct {
	Users        UserTotals        `json:"users"`
	Designs      DesignTotals      `json:"designs"`
	Bookings     BookingTotals     `json:"bookings"`
	Reviews      ReviewTotals      `json:"reviews"`
	TopDesigners []*UserResponse   `json:"top_designers"`
	TopDesigns   []*DesignResponse `json:"top_designs"`
}

type UserTotals struct {
	Total             int64 `json:"total"`
	Customers         int64 `json:"customers"`
	Designers         int64 `json:"designers"`
	ApprovedDesigners int64 `json:"approved_designers"`
	PendingDesigners  int64 `json:"pending_designers"`
}

type DesignTotals struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type BookingTotals struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

type ReviewTotals struct {
	Total    int64 `json:"total"`
	Flagged  int64 `json:"flagged"`
	Rejected int64 `json:"rejected"`
}
