package reviews

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacehub/internal/bookings"
	"spacehub/internal/spaces"
)

// fakeReviewRepo keeps reviews in memory, keyed by booking.
type fakeReviewRepo struct {
	byBooking map[uuid.UUID]*Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{byBooking: make(map[uuid.UUID]*Review)}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *Review) error {
	review.ID = uuid.New()
	stored := *review
	r.byBooking[review.BookingID] = &stored
	return nil
}

func (r *fakeReviewRepo) ListBySpace(ctx context.Context, spaceID uuid.UUID, query ReviewListQuery) ([]Review, int64, error) {
	var out []Review
	for _, review := range r.byBooking {
		if review.SpaceID == spaceID {
			out = append(out, *review)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeReviewRepo) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	_, ok := r.byBooking[bookingID]
	return ok, nil
}

type fakeBookingDir struct {
	bookings map[uuid.UUID]*bookings.Booking
}

func (d *fakeBookingDir) GetBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (*bookings.Booking, error) {
	booking, ok := d.bookings[bookingID]
	if !ok || (booking.UserID != userID && !isAdmin) {
		return nil, bookings.ErrBookingNotFound
	}
	return booking, nil
}

type fakeRoomDir struct {
	room  *spaces.Room
	space *spaces.Space
}

func (d *fakeRoomDir) GetRoom(ctx context.Context, roomID uuid.UUID) (*spaces.Room, error) {
	if d.room == nil || d.room.ID != roomID {
		return nil, spaces.ErrRoomNotFound
	}
	return d.room, nil
}

func (d *fakeRoomDir) GetSpace(ctx context.Context, spaceID uuid.UUID) (*spaces.Space, error) {
	if d.space == nil || d.space.ID != spaceID {
		return nil, spaces.ErrSpaceNotFound
	}
	return d.space, nil
}

type reviewEnv struct {
	svc     Service
	repo    *fakeReviewRepo
	userID  uuid.UUID
	spaceID uuid.UUID
	booking *bookings.Booking
}

func newReviewEnv(t *testing.T, status bookings.Status) *reviewEnv {
	t.Helper()

	userID := uuid.New()
	spaceID := uuid.New()
	roomID := uuid.New()

	booking := &bookings.Booking{
		ID:     uuid.New(),
		RoomID: roomID,
		UserID: userID,
		Status: status,
	}

	repo := newFakeReviewRepo()
	svc := NewService(repo,
		&fakeBookingDir{bookings: map[uuid.UUID]*bookings.Booking{booking.ID: booking}},
		&fakeRoomDir{
			room:  &spaces.Room{ID: roomID, SpaceID: spaceID},
			space: &spaces.Space{ID: spaceID},
		})

	return &reviewEnv{
		svc:     svc,
		repo:    repo,
		userID:  userID,
		spaceID: spaceID,
		booking: booking,
	}
}

func TestAddReview_CompletedBookingGetsReview(t *testing.T) {
	env := newReviewEnv(t, bookings.StatusCompleted)

	review, err := env.svc.AddReview(context.Background(), env.userID, env.spaceID, CreateReviewRequest{
		BookingID: env.booking.ID,
		Rating:    5,
		Comment:   "great light, quiet floor",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, env.spaceID, review.SpaceID)
	assert.Equal(t, env.userID, review.UserID)
}

func TestAddReview_RejectsUnfinishedBooking(t *testing.T) {
	for _, status := range []bookings.Status{bookings.StatusPending, bookings.StatusConfirmed, bookings.StatusCancelled} {
		env := newReviewEnv(t, status)

		_, err := env.svc.AddReview(context.Background(), env.userID, env.spaceID, CreateReviewRequest{
			BookingID: env.booking.ID,
			Rating:    4,
		})
		assert.ErrorIs(t, err, ErrBookingNotReviewable, "status %s", status)
	}
}

func TestAddReview_OncePerBooking(t *testing.T) {
	env := newReviewEnv(t, bookings.StatusCompleted)
	ctx := context.Background()

	req := CreateReviewRequest{BookingID: env.booking.ID, Rating: 4}
	_, err := env.svc.AddReview(ctx, env.userID, env.spaceID, req)
	require.NoError(t, err)

	_, err = env.svc.AddReview(ctx, env.userID, env.spaceID, req)
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestAddReview_RejectsForeignBooking(t *testing.T) {
	env := newReviewEnv(t, bookings.StatusCompleted)

	_, err := env.svc.AddReview(context.Background(), uuid.New(), env.spaceID, CreateReviewRequest{
		BookingID: env.booking.ID,
		Rating:    4,
	})
	assert.ErrorIs(t, err, ErrBookingMismatch)
}

func TestAddReview_RejectsDifferentSpace(t *testing.T) {
	env := newReviewEnv(t, bookings.StatusCompleted)

	_, err := env.svc.AddReview(context.Background(), env.userID, uuid.New(), CreateReviewRequest{
		BookingID: env.booking.ID,
		Rating:    4,
	})
	assert.ErrorIs(t, err, ErrBookingMismatch)
}

func TestListReviews_UnknownSpace(t *testing.T) {
	env := newReviewEnv(t, bookings.StatusCompleted)

	_, _, err := env.svc.ListReviews(context.Background(), uuid.New(), ReviewListQuery{})
	assert.ErrorIs(t, err, spaces.ErrSpaceNotFound)
}
