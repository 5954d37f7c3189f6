package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Booking lifecycle events published to Kafka.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"
	EventBookingCompleted = "booking.completed"
)

// BookingNotification is the wire payload for a booking lifecycle event.
type BookingNotification struct {
	ID             uuid.UUID `json:"id"`
	Event          string    `json:"event"`
	BookingID      uuid.UUID `json:"booking_id"`
	BookingRef     string    `json:"booking_ref"`
	RoomID         uuid.UUID `json:"room_id"`
	UserID         uuid.UUID `json:"user_id"`
	RecipientEmail string    `json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	TotalAmount    float64   `json:"total_amount"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// PartitionKey routes all events for one booking to the same partition so
// consumers observe lifecycle events in order.
func (n *BookingNotification) PartitionKey() string {
	return n.BookingID.String()
}

func (n *BookingNotification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}

// Subject returns the email subject line for the event.
func (n *BookingNotification) Subject() string {
	switch n.Event {
	case EventBookingCreated:
		return "Your booking " + n.BookingRef + " is on hold"
	case EventBookingConfirmed:
		return "Booking " + n.BookingRef + " confirmed"
	case EventBookingCancelled:
		return "Booking " + n.BookingRef + " cancelled"
	case EventBookingExpired:
		return "Booking " + n.BookingRef + " expired"
	case EventBookingCompleted:
		return "Thanks for booking with SpaceHub"
	default:
		return "Update on booking " + n.BookingRef
	}
}
