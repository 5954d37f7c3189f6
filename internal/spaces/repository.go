package spaces

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSpaceNotFound = errors.New("space not found")
var ErrRoomNotFound = errors.New("room not found")

type Repository interface {
	// Space operations
	CreateSpace(ctx context.Context, space *Space) error
	GetSpaceByID(ctx context.Context, id uuid.UUID) (*Space, error)
	ListSpaces(ctx context.Context, query SpaceListQuery) ([]Space, int64, error)
	UpdateSpace(ctx context.Context, space *Space) error

	// Room operations
	CreateRoom(ctx context.Context, room *Room) error
	GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error)
	GetRoomsBySpaceID(ctx context.Context, spaceID uuid.UUID) ([]Room, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSpace(ctx context.Context, space *Space) error {
	return r.db.WithContext(ctx).Create(space).Error
}

func (r *repository) GetSpaceByID(ctx context.Context, id uuid.UUID) (*Space, error) {
	var space Space
	err := r.db.WithContext(ctx).
		Preload("Rooms").
		Where("id = ?", id).
		First(&space).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpaceNotFound
		}
		return nil, err
	}
	return &space, nil
}

func (r *repository) ListSpaces(ctx context.Context, query SpaceListQuery) ([]Space, int64, error) {
	var out []Space
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Space{}).
		Where("is_active = ? AND is_approved = ?", true, true)

	if query.Category != "" {
		baseQuery = baseQuery.Where("category = ?", query.Category)
	}
	if query.City != "" {
		baseQuery = baseQuery.Where("city = ?", query.City)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Rooms").
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}

	return out, totalCount, nil
}

func (r *repository) UpdateSpace(ctx context.Context, space *Space) error {
	result := r.db.WithContext(ctx).Save(space)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSpaceNotFound
	}
	return nil
}

func (r *repository) CreateRoom(ctx context.Context, room *Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *repository) GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	var room Room
	err := r.db.WithContext(ctx).
		Preload("Space").
		Where("id = ?", id).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (r *repository) GetRoomsBySpaceID(ctx context.Context, spaceID uuid.UUID) ([]Room, error) {
	var rooms []Room
	err := r.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("name ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}
