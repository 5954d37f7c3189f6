package payments

import (
	"context"
	"errors"
)

var (
	// ErrChargeFailed is returned when the provider rejects the charge.
	ErrChargeFailed = errors.New("charge failed")

	// ErrRefundFailed is returned when the provider cannot refund a charge.
	ErrRefundFailed = errors.New("refund failed")

	// ErrNotChargeEvent marks webhook events that carry no charge payload.
	ErrNotChargeEvent = errors.New("not a charge event")
)

// ChargeResult is the provider-agnostic outcome of a charge attempt.
type ChargeResult struct {
	ChargeID string
	Amount   int64 // smallest currency unit
	Currency string
	Captured bool
	Failure  string
}

// Provider is the external payment collaborator. Bookings only see this
// interface; the concrete client lives behind it so tests can swap in a fake.
type Provider interface {
	// Charge creates and captures a charge against a card token.
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)

	// Refund returns a captured charge to the payer.
	Refund(ctx context.Context, chargeID string, amount int64) error
}

// WebhookCharge is the verified charge carried by a provider webhook event.
type WebhookCharge struct {
	ChargeID      string
	BookingID     string
	Successful    bool
	FailureReason string
}

// EventVerifier re-fetches a webhook event from the provider so handlers never
// trust the posted payload.
type EventVerifier interface {
	// VerifyChargeEvent resolves an event ID into its charge. Returns
	// ErrNotChargeEvent for event kinds the booking flow does not care about.
	VerifyChargeEvent(ctx context.Context, eventID string) (*WebhookCharge, error)
}

// ChargeRequest carries everything the provider needs for one charge.
type ChargeRequest struct {
	Amount    int64  // smallest currency unit, e.g. cents
	Currency  string
	CardToken string
	BookingID string // propagated as provider metadata for reconciliation
}
