package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacehub/pkg/logger"
)

// fakeVerifier resolves every event ID to a canned charge or error.
type fakeVerifier struct {
	charge *WebhookCharge
	err    error
}

func (v *fakeVerifier) VerifyChargeEvent(ctx context.Context, eventID string) (*WebhookCharge, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.charge, nil
}

// fakeHooks records which lifecycle calls the webhook made.
type fakeHooks struct {
	confirmed []uuid.UUID
	cancelled []uuid.UUID
	reasons   []string
}

func (h *fakeHooks) ConfirmPayment(ctx context.Context, bookingID uuid.UUID) error {
	h.confirmed = append(h.confirmed, bookingID)
	return nil
}

func (h *fakeHooks) CancelForFailedPayment(ctx context.Context, bookingID uuid.UUID, reason string) error {
	h.cancelled = append(h.cancelled, bookingID)
	h.reasons = append(h.reasons, reason)
	return nil
}

func postWebhook(t *testing.T, controller *WebhookController, body string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	_, engine := gin.CreateTestContext(recorder)
	SetupWebhookRoutes(engine.Group("/"), controller)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(recorder, req)
	return recorder
}

func TestWebhook_SuccessfulChargeConfirmsBooking(t *testing.T) {
	bookingID := uuid.New()
	hooks := &fakeHooks{}
	verifier := &fakeVerifier{charge: &WebhookCharge{
		ChargeID:   "chrg_test",
		BookingID:  bookingID.String(),
		Successful: true,
	}}
	controller := NewWebhookController(verifier, hooks, logger.GetDefault())

	recorder := postWebhook(t, controller, `{"id":"evnt_123","key":"charge.complete"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, hooks.confirmed, 1)
	assert.Equal(t, bookingID, hooks.confirmed[0])
	assert.Empty(t, hooks.cancelled)
}

func TestWebhook_FailedChargeCancelsBooking(t *testing.T) {
	bookingID := uuid.New()
	hooks := &fakeHooks{}
	verifier := &fakeVerifier{charge: &WebhookCharge{
		ChargeID:      "chrg_test",
		BookingID:     bookingID.String(),
		Successful:    false,
		FailureReason: "insufficient funds",
	}}
	controller := NewWebhookController(verifier, hooks, logger.GetDefault())

	recorder := postWebhook(t, controller, `{"id":"evnt_123","key":"charge.complete"}`)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, hooks.cancelled, 1)
	assert.Equal(t, bookingID, hooks.cancelled[0])
	assert.Equal(t, "insufficient funds", hooks.reasons[0])
	assert.Empty(t, hooks.confirmed)
}

func TestWebhook_IgnoresNonChargeEvents(t *testing.T) {
	hooks := &fakeHooks{}
	verifier := &fakeVerifier{err: fmt.Errorf("event kind: %w", ErrNotChargeEvent)}
	controller := NewWebhookController(verifier, hooks, logger.GetDefault())

	recorder := postWebhook(t, controller, `{"id":"evnt_123","key":"customer.update"}`)

	// Acknowledged so the provider stops retrying, but nothing happens.
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, hooks.confirmed)
	assert.Empty(t, hooks.cancelled)
}

func TestWebhook_VerificationFailureIsUnauthorized(t *testing.T) {
	hooks := &fakeHooks{}
	verifier := &fakeVerifier{err: fmt.Errorf("provider unavailable")}
	controller := NewWebhookController(verifier, hooks, logger.GetDefault())

	recorder := postWebhook(t, controller, `{"id":"evnt_123","key":"charge.complete"}`)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Empty(t, hooks.confirmed)
	assert.Empty(t, hooks.cancelled)
}

func TestWebhook_UnparseableBookingIDIsAcknowledged(t *testing.T) {
	hooks := &fakeHooks{}
	verifier := &fakeVerifier{charge: &WebhookCharge{
		ChargeID:   "chrg_test",
		BookingID:  "not-a-uuid",
		Successful: true,
	}}
	controller := NewWebhookController(verifier, hooks, logger.GetDefault())

	recorder := postWebhook(t, controller, `{"id":"evnt_123","key":"charge.complete"}`)

	// Retrying will never make the metadata parseable.
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, hooks.confirmed)
	assert.Empty(t, hooks.cancelled)
}

func TestWebhook_RejectsMalformedBody(t *testing.T) {
	hooks := &fakeHooks{}
	controller := NewWebhookController(&fakeVerifier{}, hooks, logger.GetDefault())

	recorder := postWebhook(t, controller, `{"id":`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
