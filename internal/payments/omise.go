package payments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// omiseProvider implements Provider on top of the Omise API.
type omiseProvider struct {
	client *omise.Client
}

// NewOmiseProvider creates a payment provider backed by Omise.
func NewOmiseProvider(publicKey, secretKey string) (Provider, error) {
	client, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create omise client: %w", err)
	}
	client.SetDebug(false)

	return &omiseProvider{client: client}, nil
}

func (p *omiseProvider) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Amount <= 0 || req.CardToken == "" || req.Currency == "" {
		return nil, fmt.Errorf("%w: invalid charge parameters", ErrChargeFailed)
	}

	charge := &omise.Charge{}
	op := &operations.CreateCharge{
		Amount:   req.Amount,
		Currency: req.Currency,
		Card:     req.CardToken,
		Metadata: map[string]interface{}{"booking_id": req.BookingID},
	}

	if err := p.client.Do(charge, op); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChargeFailed, err)
	}

	result := &ChargeResult{
		ChargeID: charge.ID,
		Amount:   charge.Amount,
		Currency: charge.Currency,
		Captured: string(charge.Status) == "successful",
	}

	if string(charge.Status) == "failed" {
		if charge.FailureMessage != nil {
			result.Failure = *charge.FailureMessage
		}
		return result, fmt.Errorf("%w: %s", ErrChargeFailed, result.Failure)
	}

	return result, nil
}

// VerifyChargeEvent confirms a webhook notification by retrieving the event
// from Omise rather than trusting the posted body.
func (p *omiseProvider) VerifyChargeEvent(ctx context.Context, eventID string) (*WebhookCharge, error) {
	event := &omise.Event{}
	if err := p.client.Do(event, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, fmt.Errorf("failed to retrieve event %s: %w", eventID, err)
	}

	if event.Key != "charge.complete" {
		return nil, ErrNotChargeEvent
	}

	// event.Data arrives untyped, round-trip through JSON to get a Charge.
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}
	var charge omise.Charge
	if err := json.Unmarshal(raw, &charge); err != nil {
		return nil, fmt.Errorf("failed to unmarshal charge: %w", err)
	}

	result := &WebhookCharge{
		ChargeID:   charge.ID,
		Successful: string(charge.Status) == "successful",
	}
	if bookingID, ok := charge.Metadata["booking_id"].(string); ok {
		result.BookingID = bookingID
	}
	if charge.FailureCode != nil {
		result.FailureReason = *charge.FailureCode
	}

	return result, nil
}

func (p *omiseProvider) Refund(ctx context.Context, chargeID string, amount int64) error {
	refund := &omise.Refund{}
	op := &operations.CreateRefund{
		ChargeID: chargeID,
		Amount:   amount,
	}

	if err := p.client.Do(refund, op); err != nil {
		return fmt.Errorf("%w: %v", ErrRefundFailed, err)
	}

	return nil
}
