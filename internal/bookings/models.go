package bookings

import (
	"time"

	"spacehub/internal/availability"

	"github.com/google/uuid"
)

// Booking defines the main booking structure. Bookings are never physically
// deleted; cancellation is a status so the audit history survives.
type Booking struct {
	ID                 uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	RoomID             uuid.UUID     `gorm:"type:uuid;index;not null" json:"room_id"`
	UserID             uuid.UUID     `gorm:"type:uuid;index;not null" json:"user_id"`
	StartTime          time.Time     `gorm:"index;not null" json:"start_time"`
	EndTime            time.Time     `gorm:"not null" json:"end_time"`
	TotalAmount        float64       `gorm:"not null" json:"total_amount"`
	Status             Status        `gorm:"type:varchar(20);check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'COMPLETED');default:'PENDING'" json:"status"`
	PaymentStatus      PaymentStatus `gorm:"type:varchar(20);check:payment_status IN ('UNPAID', 'AUTHORIZED', 'CAPTURED', 'REFUNDED');default:'UNPAID'" json:"payment_status"`
	BookingRef         string        `gorm:"unique;not null" json:"booking_ref"`
	ChargeID           string        `json:"charge_id,omitempty"`
	SpecialRequests    string        `json:"special_requests,omitempty"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	HoldExpiresAt      time.Time     `gorm:"index;not null" json:"hold_expires_at"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`

	// Relationships
	Transitions []Transition `json:"transitions,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE;"`
}

// Transition is one audit record of a lifecycle move.
type Transition struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"booking_id"`
	FromStatus Status          `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   Status          `gorm:"type:varchar(20);not null" json:"to_status"`
	Cause      TransitionEvent `gorm:"type:varchar(30);not null" json:"cause"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

// TableName sets the table name for Transition
func (Transition) TableName() string {
	return "booking_transitions"
}

// Interval returns the booking's half-open time range.
func (b *Booking) Interval() availability.Interval {
	return availability.Interval{Start: b.StartTime, End: b.EndTime}
}

// Helper methods for booking state
func (b *Booking) IsPending() bool {
	return b.Status == StatusPending
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// HoldExpired reports whether a pending hold has outlived its window.
func (b *Booking) HoldExpired(now time.Time) bool {
	return b.Status == StatusPending && now.After(b.HoldExpiresAt)
}

// PeriodEnded reports whether the booked interval is fully in the past.
func (b *Booking) PeriodEnded(now time.Time) bool {
	return !now.Before(b.EndTime)
}
