package models

type UserRole string
type DesignStatus string
type BookingStatus string
type ReactionType string
type NotificationType string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleDesigner UserRole = "designer"
	UserRoleAdmin    UserRole = "admin"

	DesignStatusPending  DesignStatus = "pending"
	DesignStatusApproved DesignStatus = "approved"
	DesignStatusRejected DesignStatus = "rejected"

	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"

	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"

	NotificationBookingCreated   NotificationType = "booking_created"
	NotificationBookingConfirmed NotificationType = "booking_confirmed"
	NotificationBookingCompleted NotificationType = "booking_completed"
	NotificationBookingCancelled NotificationType = "booking_cancelled"
	NotificationBookingReminder  NotificationType = "booking_reminder"
	NotificationReviewReceived   NotificationType = "review_received"
	NotificationDesignerApproved NotificationType = "designer_approved"
	NotificationDesignApproved   NotificationType = "design_approved"
	NotificationDesignRejected   NotificationType = "design_rejected"
)

// ActiveBookingStatuses - статусы, которые занимают время дизайнера
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleCustomer, UserRoleDesigner, UserRoleAdmin:
		return true
	}
	return false
}

func (s DesignStatus) IsValid() bool {
	switch s {
	case DesignStatusPending, DesignStatusApproved, DesignStatusRejected:
		return true
	}
	return false
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// IsTerminal - из completed и cancelled переходов нет
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

func (r ReactionType) IsValid() bool {
	return r == ReactionLike || r == ReactionDislike
}

// Opposite возвращает противоположную реакцию
func (r ReactionType) Opposite() ReactionType {
	if r == ReactionLike {
		return ReactionDislike
	}
	return ReactionLike
}
