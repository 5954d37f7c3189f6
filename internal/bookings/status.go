package bookings

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "UNPAID"
	PaymentAuthorized PaymentStatus = "AUTHORIZED"
	PaymentCaptured   PaymentStatus = "CAPTURED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// TransitionEvent names the cause of a lifecycle move. Every transition is
// keyed by (current status, event) in the table below; anything else is
// rejected without touching state.
type TransitionEvent string

const (
	EventPaymentCaptured TransitionEvent = "PAYMENT_CAPTURED"
	EventPaymentFailed   TransitionEvent = "PAYMENT_FAILED"
	EventHoldExpired     TransitionEvent = "HOLD_EXPIRED"
	EventUserCancelled   TransitionEvent = "USER_CANCELLED"
	EventRefundCompleted TransitionEvent = "REFUND_COMPLETED"
	EventPeriodEnded     TransitionEvent = "PERIOD_ENDED"
)

// ErrInvalidStateTransition is returned for any lifecycle move outside the
// transition table.
var ErrInvalidStateTransition = errors.New("invalid booking state transition")

var transitions = map[Status]map[TransitionEvent]Status{
	StatusPending: {
		EventPaymentCaptured: StatusConfirmed,
		EventPaymentFailed:   StatusCancelled,
		EventHoldExpired:     StatusCancelled,
		EventUserCancelled:   StatusCancelled,
	},
	StatusConfirmed: {
		EventUserCancelled:   StatusCancelled,
		EventRefundCompleted: StatusCancelled,
		EventPeriodEnded:     StatusCompleted,
	},
}

// NextStatus resolves the transition table for (s, event). It returns
// ErrInvalidStateTransition when the move is not defined.
func NextStatus(s Status, event TransitionEvent) (Status, error) {
	if next, ok := transitions[s][event]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidStateTransition, event, s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions exist for this status.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsActive reports whether a booking in this status holds its slot in the
// availability index.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (p PaymentStatus) String() string {
	return string(p)
}
