package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBookingNotFound = errors.New("booking not found")

type Repository interface {
	// Core booking operations
	CreateWithNoOverlap(ctx context.Context, booking *Booking) error
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ApplyTransition(ctx context.Context, booking *Booking, record Transition) error
	UpdatePayment(ctx context.Context, id uuid.UUID, status PaymentStatus, chargeID string) error

	// User booking operations
	GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error)

	// Admin operations
	GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)

	// Sweep and recovery queries
	FindExpiredHolds(ctx context.Context, asOf time.Time, limit int) ([]Booking, error)
	FindElapsedConfirmed(ctx context.Context, asOf time.Time, limit int) ([]Booking, error)
	GetActiveBookings(ctx context.Context) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateWithNoOverlap persists a new booking inside a transaction that locks
// any overlapping candidate rows first. The in-memory index already rejects
// conflicts under the per-room lock; this is the durable backstop so two
// processes sharing the database cannot double-book either.
func (r *repository) CreateWithNoOverlap(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Booking
		err := tx.Model(&Booking{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("room_id = ? AND status IN ?", booking.RoomID, []string{string(StatusPending), string(StatusConfirmed)}).
			Where("start_time < ? AND end_time > ?", booking.EndTime, booking.StartTime).
			Take(&existing).Error

		if err == nil {
			return ErrDBConflict
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(booking).Error; err != nil {
			return err
		}

		record := Transition{
			BookingID:  booking.ID,
			FromStatus: StatusPending,
			ToStatus:   StatusPending,
			Cause:      "CREATED",
		}
		return tx.Create(&record).Error
	})
}

// ErrDBConflict signals that the overlap probe found a competing row.
var ErrDBConflict = errors.New("overlapping booking exists")

func (r *repository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// ApplyTransition writes the booking's new state and its audit record in one
// transaction, so status and history can never diverge.
func (r *repository) ApplyTransition(ctx context.Context, booking *Booking, record Transition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         booking.Status,
			"payment_status": booking.PaymentStatus,
			"updated_at":     time.Now().UTC(),
		}
		if booking.CancelledAt != nil {
			updates["cancelled_at"] = *booking.CancelledAt
		}
		if booking.CancellationReason != "" {
			updates["cancellation_reason"] = booking.CancellationReason
		}

		result := tx.Model(&Booking{}).Where("id = ?", booking.ID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBookingNotFound
		}

		record.BookingID = booking.ID
		return tx.Create(&record).Error
	})
}

func (r *repository) UpdatePayment(ctx context.Context, id uuid.UUID, status PaymentStatus, chargeID string) error {
	updates := map[string]interface{}{
		"payment_status": status,
		"updated_at":     time.Now().UTC(),
	}
	if chargeID != "" {
		updates["charge_id"] = chargeID
	}

	result := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) GetUserBookings(ctx context.Context, userID uuid.UUID, query BookingListQuery) ([]Booking, int64, error) {
	base := r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)
	return r.paginate(base, query)
}

func (r *repository) GetAllBookings(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	base := r.db.WithContext(ctx).Model(&Booking{})
	return r.paginate(base, query)
}

func (r *repository) paginate(base *gorm.DB, query BookingListQuery) ([]Booking, int64, error) {
	var out []Booking
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	if query.Status != "" && Status(query.Status).IsValid() {
		base = base.Where("status = ?", query.Status)
	}
	if query.RoomID != uuid.Nil {
		base = base.Where("room_id = ?", query.RoomID)
	}

	if err := base.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := base.
		Order("start_time DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}

	return out, totalCount, nil
}

func (r *repository) FindExpiredHolds(ctx context.Context, asOf time.Time, limit int) ([]Booking, error) {
	var out []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND hold_expires_at < ?", StatusPending, asOf).
		Order("hold_expires_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repository) FindElapsedConfirmed(ctx context.Context, asOf time.Time, limit int) ([]Booking, error) {
	var out []Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_time <= ?", StatusConfirmed, asOf).
		Order("end_time ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetActiveBookings returns every slot-holding booking, used to rebuild the
// in-memory availability index on startup.
func (r *repository) GetActiveBookings(ctx context.Context) ([]Booking, error) {
	var out []Booking
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(StatusPending), string(StatusConfirmed)}).
		Order("room_id, start_time ASC").
		Find(&out).Error
	return out, err
}
