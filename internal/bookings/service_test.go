package bookings

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacehub/internal/availability"
	"spacehub/internal/payments"
	"spacehub/internal/spaces"
)

// fakeRepo is an in-memory Repository good enough for coordinator tests.
type fakeRepo struct {
	mu          sync.Mutex
	bookings    map[uuid.UUID]*Booking
	transitions []Transition
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: make(map[uuid.UUID]*Booking)}
}

func (r *fakeRepo) CreateWithNoOverlap(ctx context.Context, booking *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.bookings {
		if existing.RoomID != booking.RoomID || !existing.Status.IsActive() {
			continue
		}
		if existing.StartTime.Before(booking.EndTime) && booking.StartTime.Before(existing.EndTime) {
			return ErrDBConflict
		}
	}

	booking.ID = uuid.New()
	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *fakeRepo) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	copied := *booking
	return &copied, nil
}

func (r *fakeRepo) ApplyTransition(ctx context.Context, booking *Booking, record Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[booking.ID]
	if !ok {
		return ErrBookingNotFound
	}
	stored.Status = booking.Status
	stored.PaymentStatus = booking.PaymentStatus
	stored.CancelledAt = booking.CancelledAt
	stored.CancellationReason = booking.CancellationReason

	record.BookingID = booking.ID
	r.transitions = append(r.transitions, record)
	return nil
}

func (r *fakeRepo) UpdatePayment(ctx context.Context, id uuid.UUID, status PaymentStatus, chargeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	stored.PaymentStatus = status
	stored.ChargeID = chargeID
	return nil
}

func (r *fakeRepo) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) FindExpiredHolds(ctx context.Context, asOf time.Time, limit int) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, b := range r.bookings {
		if b.HoldExpired(asOf) && len(out) < limit {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) FindElapsedConfirmed(ctx context.Context, asOf time.Time, limit int) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, b := range r.bookings {
		if b.Status == StatusConfirmed && b.PeriodEnded(asOf) && len(out) < limit {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetActiveBookings(ctx context.Context) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Booking
	for _, b := range r.bookings {
		if b.Status.IsActive() {
			out = append(out, *b)
		}
	}
	return out, nil
}

// fakeProvider captures charges and refunds without leaving the process.
type fakeProvider struct {
	mu        sync.Mutex
	chargeErr error
	refundErr error
	refunds   []string
}

func (p *fakeProvider) Charge(ctx context.Context, req payments.ChargeRequest) (*payments.ChargeResult, error) {
	if p.chargeErr != nil {
		return nil, p.chargeErr
	}
	return &payments.ChargeResult{
		ChargeID: "chrg_" + req.BookingID[:8],
		Amount:   req.Amount,
		Currency: req.Currency,
		Captured: true,
	}, nil
}

func (p *fakeProvider) Refund(ctx context.Context, chargeID string, amount int64) error {
	if p.refundErr != nil {
		return p.refundErr
	}
	p.mu.Lock()
	p.refunds = append(p.refunds, chargeID)
	p.mu.Unlock()
	return nil
}

// fakeRooms serves one bookable room at a fixed hourly rate.
type fakeRooms struct {
	room *spaces.Room
}

func (f *fakeRooms) GetRoom(ctx context.Context, roomID uuid.UUID) (*spaces.Room, error) {
	if f.room == nil || f.room.ID != roomID {
		return nil, spaces.ErrRoomNotFound
	}
	return f.room, nil
}

type testEnv struct {
	svc      *service
	repo     *fakeRepo
	provider *fakeProvider
	index    *availability.Store
	roomID   uuid.UUID
	userID   uuid.UUID
	now      time.Time
}

// baseDay is a fixed reference date so business-hour rules are deterministic.
var baseDay = time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	roomID := uuid.New()
	env := &testEnv{
		repo:     newFakeRepo(),
		provider: &fakeProvider{},
		index:    availability.NewStore(),
		roomID:   roomID,
		userID:   uuid.New(),
		now:      baseDay.Add(8 * time.Hour), // 08:00, before opening
	}

	rooms := &fakeRooms{room: &spaces.Room{
		ID:         roomID,
		Name:       "Dockside",
		Capacity:   8,
		HourlyRate: 40,
		Space:      &spaces.Space{IsActive: true, IsApproved: true},
	}}

	rules := Rules{
		MinDuration: time.Hour,
		MaxDuration: 24 * time.Hour,
		OpenHour:    9,
		CloseHour:   21,
		HoldTTL:     15 * time.Minute,
	}

	svc := NewService(env.repo, env.index, rooms, env.provider, nil, rules).(*service)
	svc.now = func() time.Time { return env.now }
	env.svc = svc
	return env
}

func (e *testEnv) request(startHour, endHour int) ReservationRequest {
	return ReservationRequest{
		RoomID:    e.roomID,
		StartTime: baseDay.Add(time.Duration(startHour) * time.Hour),
		EndTime:   baseDay.Add(time.Duration(endHour) * time.Hour),
	}
}

func TestReserve_CreatesPendingHold(t *testing.T) {
	env := newTestEnv(t)

	booking, err := env.svc.Reserve(context.Background(), env.userID, env.request(10, 12))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, booking.Status)
	assert.Equal(t, PaymentUnpaid, booking.PaymentStatus)
	assert.Equal(t, 80.0, booking.TotalAmount) // 2h at 40/h
	assert.Equal(t, env.now.Add(15*time.Minute), booking.HoldExpiresAt)
	assert.Regexp(t, `^WSB-\d{8}-[A-Z]{6}$`, booking.BookingRef)

	require.Len(t, env.index.IntervalsFor(env.roomID), 1)
}

func TestReserve_RejectsOverlap(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Reserve(context.Background(), env.userID, env.request(10, 12))
	require.NoError(t, err)

	_, err = env.svc.Reserve(context.Background(), uuid.New(), env.request(11, 13))
	assert.ErrorIs(t, err, availability.ErrConflict)

	// Index still holds exactly the first interval.
	assert.Len(t, env.index.IntervalsFor(env.roomID), 1)
}

func TestReserve_BackToBackIsNotAConflict(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Reserve(context.Background(), env.userID, env.request(10, 11))
	require.NoError(t, err)

	_, err = env.svc.Reserve(context.Background(), uuid.New(), env.request(11, 12))
	require.NoError(t, err)

	assert.Len(t, env.index.IntervalsFor(env.roomID), 2)
}

func TestReserve_ValidatesRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  ReservationRequest
	}{
		{"in the past", ReservationRequest{
			RoomID:    env.roomID,
			StartTime: baseDay.Add(-2 * time.Hour),
			EndTime:   baseDay.Add(-1 * time.Hour),
		}},
		{"too short", ReservationRequest{
			RoomID:    env.roomID,
			StartTime: baseDay.Add(10 * time.Hour),
			EndTime:   baseDay.Add(10*time.Hour + 30*time.Minute),
		}},
		{"before opening", env.request(8, 10)},
		{"past closing", env.request(20, 22)},
		{"runs past closing within the same hour", ReservationRequest{
			RoomID:    env.roomID,
			StartTime: baseDay.Add(20 * time.Hour),
			EndTime:   baseDay.Add(21*time.Hour + 30*time.Minute),
		}},
		{"crosses midnight", env.request(23, 24)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Reserve(ctx, env.userID, tt.req)
			assert.ErrorIs(t, err, availability.ErrInvalidInterval)
		})
	}

	assert.Empty(t, env.index.IntervalsFor(env.roomID))
}

func TestReserve_ConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.svc.Reserve(context.Background(), uuid.New(), env.request(14, 16))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, availability.ErrConflict)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Len(t, env.index.IntervalsFor(env.roomID), 1)
}

func TestProcessPayment_ConfirmsBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)

	confirmed, err := env.svc.ProcessPayment(ctx, booking.ID, env.userID, "tok_visa")
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, confirmed.Status)
	assert.Equal(t, PaymentCaptured, confirmed.PaymentStatus)

	stored, err := env.repo.GetBookingByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.NotEmpty(t, stored.ChargeID)
}

func TestProcessPayment_RejectsForeignBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)

	_, err = env.svc.ProcessPayment(ctx, booking.ID, uuid.New(), "tok_visa")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestProcessPayment_RejectsExpiredHold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)

	env.now = env.now.Add(20 * time.Minute) // past the 15m hold TTL

	_, err = env.svc.ProcessPayment(ctx, booking.ID, env.userID, "tok_visa")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestConfirmPayment_RejectsCancelledBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)

	_, err = env.svc.Cancel(ctx, booking.ID, env.userID, "changed plans", false)
	require.NoError(t, err)

	// A late webhook must not resurrect the booking.
	_, err = env.svc.ConfirmPayment(ctx, booking.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestCancel_PendingReleasesSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(ctx, booking.ID, env.userID, "changed plans", false)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, "changed plans", cancelled.CancellationReason)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Empty(t, env.provider.refunds)
	assert.Empty(t, env.index.IntervalsFor(env.roomID))

	// The slot is immediately reservable again.
	_, err = env.svc.Reserve(ctx, uuid.New(), env.request(10, 12))
	assert.NoError(t, err)
}

func TestCancel_ConfirmedRefundsCapturedPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)
	_, err = env.svc.ProcessPayment(ctx, booking.ID, env.userID, "tok_visa")
	require.NoError(t, err)

	cancelled, err := env.svc.Cancel(ctx, booking.ID, env.userID, "event moved", false)
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, PaymentRefunded, cancelled.PaymentStatus)
	assert.Len(t, env.provider.refunds, 1)
}

func TestCancel_RefundFailureLeavesBookingUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)
	_, err = env.svc.ProcessPayment(ctx, booking.ID, env.userID, "tok_visa")
	require.NoError(t, err)

	env.provider.refundErr = fmt.Errorf("provider unavailable")

	_, err = env.svc.Cancel(ctx, booking.ID, env.userID, "event moved", false)
	require.Error(t, err)

	stored, err := env.repo.GetBookingByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
	assert.Len(t, env.index.IntervalsFor(env.roomID), 1)
}

func TestCancelForFailedPayment_RecordsProviderCause(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)

	cancelled, err := env.svc.CancelForFailedPayment(ctx, booking.ID, "insufficient funds")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.Equal(t, "insufficient funds", cancelled.CancellationReason)
	assert.Empty(t, env.provider.refunds) // nothing was captured
	assert.Empty(t, env.index.IntervalsFor(env.roomID))

	// The audit trail names the provider as the cause, not the user.
	require.Len(t, env.repo.transitions, 1)
	assert.Equal(t, EventPaymentFailed, env.repo.transitions[0].Cause)
}

func TestCancelForFailedPayment_RejectsConfirmedBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)
	_, err = env.svc.ProcessPayment(ctx, booking.ID, env.userID, "tok_visa")
	require.NoError(t, err)

	// A stale failure webhook must not cancel a booking that got captured.
	_, err = env.svc.CancelForFailedPayment(ctx, booking.ID, "insufficient funds")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}

func TestSweepExpiredHolds_FreesSlot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)

	env.now = env.now.Add(20 * time.Minute)

	processed, err := env.svc.SweepExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := env.repo.GetBookingByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, stored.Status)
	assert.Empty(t, env.index.IntervalsFor(env.roomID))

	// Another user can now take the freed slot.
	_, err = env.svc.Reserve(ctx, uuid.New(), env.request(10, 12))
	assert.NoError(t, err)
}

func TestSweepExpiredHolds_SkipsConfirmed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)
	_, err = env.svc.ProcessPayment(ctx, booking.ID, env.userID, "tok_visa")
	require.NoError(t, err)

	env.now = env.now.Add(time.Hour)

	processed, err := env.svc.SweepExpiredHolds(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed)

	stored, err := env.repo.GetBookingByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, stored.Status)
}

func TestSweepElapsed_CompletesConfirmed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)
	_, err = env.svc.ProcessPayment(ctx, booking.ID, env.userID, "tok_visa")
	require.NoError(t, err)

	env.now = baseDay.Add(13 * time.Hour) // past the booking's end

	processed, err := env.svc.SweepElapsed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored, err := env.repo.GetBookingByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Empty(t, env.index.IntervalsFor(env.roomID))
}

func TestGetBooking_Ownership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	booking, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)

	_, err = env.svc.GetBooking(ctx, booking.ID, uuid.New(), false)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	got, err := env.svc.GetBooking(ctx, booking.ID, uuid.New(), true)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
}

func TestRestoreAvailability_RebuildsIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Reserve(ctx, env.userID, env.request(10, 12))
	require.NoError(t, err)
	_, err = env.svc.Reserve(ctx, env.userID, env.request(14, 16))
	require.NoError(t, err)

	// Simulate a restart: fresh index, same repository.
	restarted := NewService(env.repo, availability.NewStore(), &fakeRooms{}, env.provider, nil, Rules{}).(*service)
	restarted.now = func() time.Time { return env.now }

	require.NoError(t, restarted.RestoreAvailability(ctx))
	assert.Len(t, restarted.index.IntervalsFor(env.roomID), 2)
}
