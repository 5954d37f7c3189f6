package reviews

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"spacehub/internal/bookings"
	"spacehub/internal/spaces"
)

var (
	// ErrBookingNotReviewable is returned when the booking never ran to
	// completion, so there is no stay to rate.
	ErrBookingNotReviewable = errors.New("booking cannot be reviewed")

	// ErrAlreadyReviewed is returned for a second review of the same booking.
	ErrAlreadyReviewed = errors.New("booking already reviewed")

	// ErrBookingMismatch is returned when the booking does not belong to the
	// reviewer or was not for a room of the reviewed space.
	ErrBookingMismatch = errors.New("booking does not match space")
)

// BookingDirectory is the slice of the booking engine reviews need: resolving
// a booking with its ownership check. Satisfied by bookings.Service.
type BookingDirectory interface {
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (*bookings.Booking, error)
}

// RoomDirectory resolves a booking's room back to its listing. Satisfied by
// spaces.Service.
type RoomDirectory interface {
	GetRoom(ctx context.Context, roomID uuid.UUID) (*spaces.Room, error)
	GetSpace(ctx context.Context, spaceID uuid.UUID) (*spaces.Space, error)
}

// Service interface defines the contract for review business logic
type Service interface {
	AddReview(ctx context.Context, userID, spaceID uuid.UUID, req CreateReviewRequest) (*Review, error)
	ListReviews(ctx context.Context, spaceID uuid.UUID, query ReviewListQuery) ([]Review, int64, error)
}

type service struct {
	repo        Repository
	bookingsDir BookingDirectory
	rooms       RoomDirectory
}

// NewService creates a new review service instance
func NewService(repo Repository, bookingsDir BookingDirectory, rooms RoomDirectory) Service {
	return &service{
		repo:        repo,
		bookingsDir: bookingsDir,
		rooms:       rooms,
	}
}

// AddReview records a rating for a completed stay. Only the guest who held the
// booking may review, only once, and only after the booking reached COMPLETED.
func (s *service) AddReview(ctx context.Context, userID, spaceID uuid.UUID, req CreateReviewRequest) (*Review, error) {
	booking, err := s.bookingsDir.GetBooking(ctx, req.BookingID, userID, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBookingMismatch, req.BookingID)
	}

	if booking.Status != bookings.StatusCompleted {
		return nil, fmt.Errorf("%w: booking is %s", ErrBookingNotReviewable, booking.Status)
	}

	room, err := s.rooms.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	if room.SpaceID != spaceID {
		return nil, fmt.Errorf("%w: booking was for a different space", ErrBookingMismatch)
	}

	exists, err := s.repo.ExistsForBooking(ctx, req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	review := &Review{
		UserID:    userID,
		SpaceID:   spaceID,
		BookingID: req.BookingID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

func (s *service) ListReviews(ctx context.Context, spaceID uuid.UUID, query ReviewListQuery) ([]Review, int64, error) {
	if _, err := s.rooms.GetSpace(ctx, spaceID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListBySpace(ctx, spaceID, query)
}
