package bookings

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sync"
	"time"

	"spacehub/internal/availability"
	"spacehub/internal/payments"
	"spacehub/internal/spaces"

	"github.com/google/uuid"
)

// RoomService is the slice of the spaces service the coordinator needs
// (narrow interface to keep wiring and tests simple).
type RoomService interface {
	GetRoom(ctx context.Context, roomID uuid.UUID) (*spaces.Room, error)
}

// Notifier receives lifecycle events after successful transitions. Calls are
// fire-and-forget; a slow or failing notifier never blocks a transition.
type Notifier interface {
	NotifyBookingEvent(ctx context.Context, event string, booking *Booking)
}

// Rules bounds what a reservation request may ask for.
type Rules struct {
	MinDuration time.Duration // e.g. 1h
	MaxDuration time.Duration // e.g. 24h
	OpenHour    int           // first bookable hour of day
	CloseHour   int           // bookings must end by this hour
	HoldTTL     time.Duration // how long a pending hold keeps its slot
}

// Service interface defines the contract for the reservation coordinator
type Service interface {
	Reserve(ctx context.Context, userID uuid.UUID, req ReservationRequest) (*Booking, error)
	GetBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (*Booking, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)
	GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	Cancel(ctx context.Context, bookingID, userID uuid.UUID, reason string, force bool) (*Booking, error)
	CancelForFailedPayment(ctx context.Context, bookingID uuid.UUID, reason string) (*Booking, error)

	// Payment operations
	ProcessPayment(ctx context.Context, bookingID, userID uuid.UUID, cardToken string) (*Booking, error)
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (*Booking, error)

	// Background sweeps and startup recovery
	SweepExpiredHolds(ctx context.Context) (int, error)
	SweepElapsed(ctx context.Context) (int, error)
	RestoreAvailability(ctx context.Context) error
}

// service implements the Service interface. It exclusively owns write access
// to the availability index; every check-then-mutate sequence runs under the
// lock of the room it touches, so conflicting operations serialize per room
// while unrelated rooms proceed in parallel.
type service struct {
	repo        Repository
	index       *availability.Store
	roomService RoomService
	provider    payments.Provider
	notifier    Notifier
	rules       Rules

	lockMu    sync.Mutex
	roomLocks map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

// NewService creates a new reservation coordinator instance
func NewService(repo Repository, index *availability.Store, roomService RoomService, provider payments.Provider, notifier Notifier, rules Rules) Service {
	return &service{
		repo:        repo,
		index:       index,
		roomService: roomService,
		provider:    provider,
		notifier:    notifier,
		rules:       rules,
		roomLocks:   make(map[uuid.UUID]*sync.Mutex),
		now:         time.Now,
	}
}

// roomLock returns the mutex guarding a single room, creating it on first use.
func (s *service) roomLock(roomID uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	if mu, ok := s.roomLocks[roomID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	s.roomLocks[roomID] = mu
	return mu
}

// Reserve performs the atomic check-and-reserve: under the room's lock it
// consults the conflict checker and, only if the slot is free, inserts the
// interval and creates a PENDING booking. The hold auto-expires if payment is
// not captured within the configured TTL.
func (s *service) Reserve(ctx context.Context, userID uuid.UUID, req ReservationRequest) (*Booking, error) {
	interval, err := availability.NewInterval(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	if err := s.validateRules(interval); err != nil {
		return nil, err
	}

	room, err := s.roomService.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if room.Space != nil && !room.Space.IsBookable() {
		return nil, fmt.Errorf("%w: listing is not accepting bookings", spaces.ErrSpaceNotFound)
	}

	amount := room.HourlyRate * interval.Duration().Hours()
	amount = math.Round(amount*100) / 100

	ref, err := generateBookingRef()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking reference: %w", err)
	}

	now := s.now().UTC()
	booking := &Booking{
		RoomID:          req.RoomID,
		UserID:          userID,
		StartTime:       interval.Start,
		EndTime:         interval.End,
		TotalAmount:     amount,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		BookingRef:      ref,
		SpecialRequests: req.SpecialRequests,
		HoldExpiresAt:   now.Add(s.rules.HoldTTL),
	}

	// Critical section: conflict check and insert must be indivisible per room.
	mu := s.roomLock(req.RoomID)
	mu.Lock()
	defer mu.Unlock()

	if err := s.index.Insert(req.RoomID, interval); err != nil {
		return nil, err
	}

	if err := s.repo.CreateWithNoOverlap(ctx, booking); err != nil {
		// The slot must not stay held by a booking that was never persisted.
		s.index.Remove(req.RoomID, interval)
		if errors.Is(err, ErrDBConflict) {
			return nil, fmt.Errorf("%w: %s", availability.ErrConflict, interval)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.notify(ctx, "booking.created", booking)
	return booking, nil
}

func (s *service) validateRules(iv availability.Interval) error {
	now := s.now().UTC()
	if iv.Start.Before(now) {
		return fmt.Errorf("%w: cannot book in the past", availability.ErrInvalidInterval)
	}

	d := iv.Duration()
	if d < s.rules.MinDuration {
		return fmt.Errorf("%w: minimum booking duration is %s", availability.ErrInvalidInterval, s.rules.MinDuration)
	}
	if d > s.rules.MaxDuration {
		return fmt.Errorf("%w: maximum booking duration is %s", availability.ErrInvalidInterval, s.rules.MaxDuration)
	}

	// Compare against the opening and closing instants of the start day, not
	// bare hour numbers: a 23:00-00:00 booking has End.Hour()==0 and would
	// sail past a numeric check. Crossing midnight puts End past closeAt, so
	// overnight spans are rejected by the same comparison.
	open := time.Date(iv.Start.Year(), iv.Start.Month(), iv.Start.Day(),
		s.rules.OpenHour, 0, 0, 0, iv.Start.Location())
	closeAt := time.Date(iv.Start.Year(), iv.Start.Month(), iv.Start.Day(),
		s.rules.CloseHour, 0, 0, 0, iv.Start.Location())
	if iv.Start.Before(open) || iv.End.After(closeAt) {
		return fmt.Errorf("%w: bookings are only available between %02d:00 and %02d:00",
			availability.ErrInvalidInterval, s.rules.OpenHour, s.rules.CloseHour)
	}
	return nil
}

func (s *service) GetBooking(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID && !isAdmin {
		return nil, fmt.Errorf("%w: booking does not belong to user", ErrBookingNotFound)
	}
	return booking, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetUserBookings(ctx, userID, query)
}

func (s *service) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	return s.repo.GetAllBookings(ctx, query)
}

// ProcessPayment charges the booking's total against the provider and, on
// capture success, drives the PENDING -> CONFIRMED transition.
func (s *service) ProcessPayment(ctx context.Context, bookingID, userID uuid.UUID, cardToken string) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, fmt.Errorf("%w: booking does not belong to user", ErrBookingNotFound)
	}
	if booking.Status != StatusPending {
		return nil, fmt.Errorf("%w: only pending bookings can be paid", ErrInvalidStateTransition)
	}
	if booking.HoldExpired(s.now().UTC()) {
		return nil, fmt.Errorf("%w: hold has expired", ErrInvalidStateTransition)
	}

	result, err := s.provider.Charge(ctx, payments.ChargeRequest{
		Amount:    int64(math.Round(booking.TotalAmount * 100)),
		Currency:  "USD",
		CardToken: cardToken,
		BookingID: booking.ID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("payment processing failed: %w", err)
	}

	status := PaymentAuthorized
	if result.Captured {
		status = PaymentCaptured
	}
	if err := s.repo.UpdatePayment(ctx, booking.ID, status, result.ChargeID); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if !result.Captured {
		// Charge is in flight; the provider webhook completes the confirmation.
		booking.PaymentStatus = status
		booking.ChargeID = result.ChargeID
		return booking, nil
	}

	return s.ConfirmPayment(ctx, bookingID)
}

// ConfirmPayment transitions PENDING -> CONFIRMED after a successful capture.
// Called from ProcessPayment and from the provider webhook. Confirming an
// already-expired (cancelled) hold fails rather than silently succeeding.
func (s *service) ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	mu := s.roomLock(booking.RoomID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock: the expiry sweep may have cancelled the hold.
	booking, err = s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	next, err := NextStatus(booking.Status, EventPaymentCaptured)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	booking.Status = next
	if booking.PaymentStatus == PaymentUnpaid || booking.PaymentStatus == PaymentAuthorized {
		booking.PaymentStatus = PaymentCaptured
	}

	record := Transition{FromStatus: prev, ToStatus: next, Cause: EventPaymentCaptured}
	if err := s.repo.ApplyTransition(ctx, booking, record); err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	s.notify(ctx, "booking.confirmed", booking)
	return booking, nil
}

// Cancel transitions a booking to CANCELLED and releases its interval,
// atomically with respect to reservations and sweeps on the same room.
// A captured payment is refunded first.
func (s *service) Cancel(ctx context.Context, bookingID, userID uuid.UUID, reason string, force bool) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !force && booking.UserID != userID {
		return nil, fmt.Errorf("%w: booking does not belong to user", ErrBookingNotFound)
	}

	mu := s.roomLock(booking.RoomID)
	mu.Lock()
	defer mu.Unlock()

	booking, err = s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	event := EventUserCancelled
	if booking.Status == StatusConfirmed && booking.PaymentStatus == PaymentCaptured {
		if err := s.provider.Refund(ctx, booking.ChargeID, int64(math.Round(booking.TotalAmount*100))); err != nil {
			return nil, fmt.Errorf("refund failed, booking left unchanged: %w", err)
		}
		booking.PaymentStatus = PaymentRefunded
		event = EventRefundCompleted
	}

	next, err := NextStatus(booking.Status, event)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	now := s.now().UTC()
	booking.Status = next
	booking.CancelledAt = &now
	booking.CancellationReason = reason

	record := Transition{FromStatus: prev, ToStatus: next, Cause: event}
	if err := s.repo.ApplyTransition(ctx, booking, record); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.index.Remove(booking.RoomID, booking.Interval())

	s.notify(ctx, "booking.cancelled", booking)
	return booking, nil
}

// CancelForFailedPayment cancels a PENDING hold whose charge was declined by
// the provider. Nothing was captured, so there is no refund leg, and the audit
// record carries PAYMENT_FAILED rather than a user-initiated cause.
func (s *service) CancelForFailedPayment(ctx context.Context, bookingID uuid.UUID, reason string) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	mu := s.roomLock(booking.RoomID)
	mu.Lock()
	defer mu.Unlock()

	booking, err = s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	next, err := NextStatus(booking.Status, EventPaymentFailed)
	if err != nil {
		return nil, err
	}

	prev := booking.Status
	now := s.now().UTC()
	booking.Status = next
	booking.CancelledAt = &now
	booking.CancellationReason = reason

	record := Transition{FromStatus: prev, ToStatus: next, Cause: EventPaymentFailed}
	if err := s.repo.ApplyTransition(ctx, booking, record); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.index.Remove(booking.RoomID, booking.Interval())

	s.notify(ctx, "booking.cancelled", booking)
	return booking, nil
}

// SweepExpiredHolds cancels PENDING bookings whose hold window has lapsed and
// frees their slots. Each booking is processed in isolation so one failure
// never blocks the rest of the batch.
func (s *service) SweepExpiredHolds(ctx context.Context) (int, error) {
	expired, err := s.repo.FindExpiredHolds(ctx, s.now().UTC(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to query expired holds: %w", err)
	}

	processed := 0
	var firstErr error
	for i := range expired {
		if err := s.expireHold(ctx, &expired[i]); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		processed++
	}
	return processed, firstErr
}

func (s *service) expireHold(ctx context.Context, stale *Booking) error {
	mu := s.roomLock(stale.RoomID)
	mu.Lock()
	defer mu.Unlock()

	// Re-read under the lock: payment may have been captured since the query.
	booking, err := s.repo.GetBookingByID(ctx, stale.ID)
	if err != nil {
		return err
	}
	if !booking.HoldExpired(s.now().UTC()) {
		return nil
	}

	next, err := NextStatus(booking.Status, EventHoldExpired)
	if err != nil {
		return err
	}

	prev := booking.Status
	now := s.now().UTC()
	booking.Status = next
	booking.CancelledAt = &now
	booking.CancellationReason = "hold expired before payment"

	record := Transition{FromStatus: prev, ToStatus: next, Cause: EventHoldExpired}
	if err := s.repo.ApplyTransition(ctx, booking, record); err != nil {
		return err
	}

	s.index.Remove(booking.RoomID, booking.Interval())

	s.notify(ctx, "booking.expired", booking)
	return nil
}

// SweepElapsed completes CONFIRMED bookings whose end time has passed.
func (s *service) SweepElapsed(ctx context.Context) (int, error) {
	elapsed, err := s.repo.FindElapsedConfirmed(ctx, s.now().UTC(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to query elapsed bookings: %w", err)
	}

	processed := 0
	var firstErr error
	for i := range elapsed {
		if err := s.completeBooking(ctx, &elapsed[i]); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		processed++
	}
	return processed, firstErr
}

func (s *service) completeBooking(ctx context.Context, stale *Booking) error {
	mu := s.roomLock(stale.RoomID)
	mu.Lock()
	defer mu.Unlock()

	booking, err := s.repo.GetBookingByID(ctx, stale.ID)
	if err != nil {
		return err
	}
	if !booking.PeriodEnded(s.now().UTC()) {
		return nil
	}

	next, err := NextStatus(booking.Status, EventPeriodEnded)
	if err != nil {
		return err
	}

	prev := booking.Status
	booking.Status = next

	record := Transition{FromStatus: prev, ToStatus: next, Cause: EventPeriodEnded}
	if err := s.repo.ApplyTransition(ctx, booking, record); err != nil {
		return err
	}

	// The interval is fully in the past; drop it so the index stays small.
	s.index.Remove(booking.RoomID, booking.Interval())

	s.notify(ctx, "booking.completed", booking)
	return nil
}

// RestoreAvailability rebuilds the in-memory index from active bookings at
// startup. A conflict here means the durable state itself holds overlapping
// bookings, which is unrecoverable.
func (s *service) RestoreAvailability(ctx context.Context) error {
	active, err := s.repo.GetActiveBookings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active bookings: %w", err)
	}

	for i := range active {
		b := &active[i]
		if err := s.index.Insert(b.RoomID, b.Interval()); err != nil {
			return fmt.Errorf("availability index corrupt: booking %s: %w", b.ID, err)
		}
	}
	return nil
}

func (s *service) notify(ctx context.Context, event string, booking *Booking) {
	if s.notifier == nil {
		return
	}
	snapshot := *booking
	go s.notifier.NotifyBookingEvent(context.WithoutCancel(ctx), event, &snapshot)
}

const sweepBatchSize = 100

// generateBookingRef generates a unique human-readable booking reference
func generateBookingRef() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("WSB-%s-%s", timestamp, string(randomPart)), nil
}
