package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"spacehub/internal/bookings"
	"spacehub/internal/users"
	"spacehub/pkg/logger"
)

// UserDirectory resolves the recipient for a booking event. Satisfied by the
// auth repository.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id string) (*users.User, error)
}

// BookingEventPublisher bridges the booking engine to the Kafka producer. It
// implements the booking service's Notifier.
type BookingEventPublisher struct {
	producer Producer
	userDir  UserDirectory
	log      *logger.Logger
}

func NewBookingEventPublisher(producer Producer, userDir UserDirectory, log *logger.Logger) *BookingEventPublisher {
	return &BookingEventPublisher{
		producer: producer,
		userDir:  userDir,
		log:      log,
	}
}

// NotifyBookingEvent publishes the event, best effort. Delivery failures are
// logged and swallowed so the booking transition itself never fails.
func (p *BookingEventPublisher) NotifyBookingEvent(ctx context.Context, event string, booking *bookings.Booking) {
	notification := &BookingNotification{
		ID:          uuid.New(),
		Event:       event,
		BookingID:   booking.ID,
		BookingRef:  booking.BookingRef,
		RoomID:      booking.RoomID,
		UserID:      booking.UserID,
		StartTime:   booking.StartTime,
		EndTime:     booking.EndTime,
		TotalAmount: booking.TotalAmount,
		Status:      string(booking.Status),
		OccurredAt:  time.Now().UTC(),
	}

	if user, err := p.userDir.GetUserByID(ctx, booking.UserID.String()); err != nil {
		p.log.Warn("could not resolve booking recipient",
			"booking_ref", booking.BookingRef, "user_id", booking.UserID, "error", err)
	} else {
		notification.RecipientEmail = user.Email
		notification.RecipientName = user.FullName()
	}

	if err := p.producer.PublishBookingEvent(ctx, notification); err != nil {
		p.log.Error("failed to publish booking event",
			"event", event, "booking_ref", booking.BookingRef, "error", err)
	}
}
