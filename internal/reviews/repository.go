package reviews

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"spacehub/internal/spaces"
)

type Repository interface {
	// Create stores the review and refreshes the space's rating aggregate in
	// the same transaction, so the listing never shows a stale average.
	Create(ctx context.Context, review *Review) error
	ListBySpace(ctx context.Context, spaceID uuid.UUID, query ReviewListQuery) ([]Review, int64, error)
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, review *Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return err
		}

		var avg float64
		var count int64
		row := tx.Model(&Review{}).
			Select("COALESCE(AVG(rating), 0), COUNT(*)").
			Where("space_id = ?", review.SpaceID).
			Row()
		if err := row.Scan(&avg, &count); err != nil {
			return err
		}

		return tx.Model(&spaces.Space{}).
			Where("id = ?", review.SpaceID).
			Updates(map[string]interface{}{
				"rating_avg":   avg,
				"rating_count": count,
			}).Error
	})
}

func (r *repository) ListBySpace(ctx context.Context, spaceID uuid.UUID, query ReviewListQuery) ([]Review, int64, error) {
	var out []Review
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Review{}).
		Where("space_id = ?", spaceID)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}

	return out, totalCount, nil
}

func (r *repository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Review{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
