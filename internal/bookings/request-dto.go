package bookings

import (
	"time"

	"github.com/google/uuid"
)

// ReservationRequest represents a reservation attempt for a room and slot
type ReservationRequest struct {
	RoomID          uuid.UUID `json:"room_id" binding:"required"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	EndTime         time.Time `json:"end_time" binding:"required"`
	SpecialRequests string    `json:"special_requests" binding:"max=500"`
}

// PaymentRequest carries the card token for charging a pending booking
type PaymentRequest struct {
	CardToken string `json:"card_token" binding:"required"`
}

// CancelRequest carries the optional cancellation reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// BookingListQuery captures booking list filters and pagination
type BookingListQuery struct {
	Status string    `form:"status"`
	RoomID uuid.UUID `form:"room_id"`
	Page   int       `form:"page"`
	Limit  int       `form:"limit"`
}
