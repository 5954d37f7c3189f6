package bookings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatus_DefinedTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  Status
		event TransitionEvent
		want  Status
	}{
		{"payment confirms pending", StatusPending, EventPaymentCaptured, StatusConfirmed},
		{"failed payment cancels pending", StatusPending, EventPaymentFailed, StatusCancelled},
		{"hold expiry cancels pending", StatusPending, EventHoldExpired, StatusCancelled},
		{"user cancels pending", StatusPending, EventUserCancelled, StatusCancelled},
		{"user cancels confirmed", StatusConfirmed, EventUserCancelled, StatusCancelled},
		{"refund cancels confirmed", StatusConfirmed, EventRefundCompleted, StatusCancelled},
		{"period end completes confirmed", StatusConfirmed, EventPeriodEnded, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.from, tt.event)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextStatus_RejectsUndefinedTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  Status
		event TransitionEvent
	}{
		{"cannot capture payment on confirmed", StatusConfirmed, EventPaymentCaptured},
		{"cannot expire a confirmed booking", StatusConfirmed, EventHoldExpired},
		{"cannot fail payment on confirmed", StatusConfirmed, EventPaymentFailed},
		{"cannot complete a pending booking", StatusPending, EventPeriodEnded},
		{"cancelled is terminal", StatusCancelled, EventPaymentCaptured},
		{"cancelled cannot be cancelled again", StatusCancelled, EventUserCancelled},
		{"completed is terminal", StatusCompleted, EventUserCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NextStatus(tt.from, tt.event)
			assert.ErrorIs(t, err, ErrInvalidStateTransition)
		})
	}
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusCompleted.IsActive())

	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())

	assert.True(t, StatusPending.IsValid())
	assert.False(t, Status("UNKNOWN").IsValid())
}
