package payments

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spacehub/internal/shared/utils/response"
	"spacehub/pkg/logger"
)

// LifecycleHooks is the slice of the booking engine the webhook drives.
// Implemented by an adapter over the booking service to avoid an import cycle.
type LifecycleHooks interface {
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID) error
	CancelForFailedPayment(ctx context.Context, bookingID uuid.UUID, reason string) error
}

// WebhookController receives provider callbacks and advances bookings.
type WebhookController struct {
	verifier EventVerifier
	hooks    LifecycleHooks
	log      *logger.Logger
}

func NewWebhookController(verifier EventVerifier, hooks LifecycleHooks, log *logger.Logger) *WebhookController {
	return &WebhookController{
		verifier: verifier,
		hooks:    hooks,
		log:      log,
	}
}

type incomingEvent struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Handle processes one provider webhook. The posted body is only used for the
// event ID; the event itself is re-fetched from the provider before acting.
// Always answers 200 for processable bodies so the provider stops retrying.
func (wc *WebhookController) Handle(c *gin.Context) {
	var inc incomingEvent
	if err := c.ShouldBindJSON(&inc); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid webhook payload", nil, nil)
		return
	}

	charge, err := wc.verifier.VerifyChargeEvent(c.Request.Context(), inc.ID)
	if err != nil {
		if errors.Is(err, ErrNotChargeEvent) {
			c.Status(http.StatusOK)
			return
		}
		wc.log.Warn("webhook event verification failed", "event_id", inc.ID, "error", err)
		response.RespondJSON(c, "error", http.StatusUnauthorized, "Could not verify event", nil, nil)
		return
	}

	bookingID, err := uuid.Parse(charge.BookingID)
	if err != nil {
		wc.log.Warn("webhook charge has no usable booking id", "charge_id", charge.ChargeID)
		c.Status(http.StatusOK)
		return
	}

	if charge.Successful {
		if err := wc.hooks.ConfirmPayment(c.Request.Context(), bookingID); err != nil {
			wc.log.Error("webhook confirm failed", "booking_id", bookingID, "error", err)
		}
	} else {
		reason := charge.FailureReason
		if reason == "" {
			reason = "payment failed"
		}
		if err := wc.hooks.CancelForFailedPayment(c.Request.Context(), bookingID, reason); err != nil {
			wc.log.Error("webhook cancel failed", "booking_id", bookingID, "error", err)
		}
	}

	c.Status(http.StatusOK)
}

// SetupWebhookRoutes registers the provider callback endpoint. Unauthenticated
// on purpose; verification happens against the provider API.
func SetupWebhookRoutes(rg *gin.RouterGroup, controller *WebhookController) {
	rg.POST("/payments/webhook", controller.Handle)
}
