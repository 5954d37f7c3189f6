package spaces

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spacehub/internal/availability"
	"spacehub/internal/shared/constants"
	"spacehub/pkg/cache"
	"spacehub/pkg/logger"

	"github.com/google/uuid"
)

// ErrNotSpaceOwner is returned when a user mutates a listing they do not own.
var ErrNotSpaceOwner = errors.New("space does not belong to user")

// AvailabilityIndex is the read-side view of the booking engine's availability
// store, used to compute free slots without touching booking internals.
type AvailabilityIndex interface {
	IntervalsFor(roomID uuid.UUID) []availability.Interval
}

// Service interface defines the contract for space listing business logic
type Service interface {
	CreateSpace(ctx context.Context, ownerID uuid.UUID, req CreateSpaceRequest) (*Space, error)
	GetSpace(ctx context.Context, spaceID uuid.UUID) (*Space, error)
	ListSpaces(ctx context.Context, query SpaceListQuery) ([]Space, int64, error)
	ApproveSpace(ctx context.Context, spaceID uuid.UUID) (*Space, error)

	CreateRoom(ctx context.Context, ownerID uuid.UUID, spaceID uuid.UUID, req CreateRoomRequest) (*Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*Room, error)
	GetRoomAvailability(ctx context.Context, roomID uuid.UUID, date time.Time) ([]AvailabilitySlot, error)
}

// SlotConfig bounds the bookable day for slot computation
type SlotConfig struct {
	OpenHour     int           // first bookable hour, e.g. 9
	CloseHour    int           // bookings must end by this hour, e.g. 21
	SlotDuration time.Duration // granularity of the availability grid
}

type service struct {
	repo  Repository
	index AvailabilityIndex
	cache cache.Service
	slots SlotConfig
	log   *logger.Logger
}

// NewService creates a new space service instance
func NewService(repo Repository, index AvailabilityIndex, cacheService cache.Service, slots SlotConfig) Service {
	return &service{
		repo:  repo,
		index: index,
		cache: cacheService,
		slots: slots,
		log:   logger.GetDefault(),
	}
}

func (s *service) CreateSpace(ctx context.Context, ownerID uuid.UUID, req CreateSpaceRequest) (*Space, error) {
	if !IsValidCategory(req.Category) {
		return nil, fmt.Errorf("invalid space category: %s", req.Category)
	}

	space := &Space{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Address:     req.Address,
		City:        req.City,
		IsActive:    true,
		IsApproved:  false, // requires admin approval before listing
	}

	if err := s.repo.CreateSpace(ctx, space); err != nil {
		return nil, fmt.Errorf("failed to create space: %w", err)
	}

	s.invalidateListingCache(ctx)
	return space, nil
}

func (s *service) GetSpace(ctx context.Context, spaceID uuid.UUID) (*Space, error) {
	return s.repo.GetSpaceByID(ctx, spaceID)
}

func (s *service) ListSpaces(ctx context.Context, query SpaceListQuery) ([]Space, int64, error) {
	// Cache-aside on the default listing page only; filtered queries go to the DB.
	if s.cache != nil && query.IsDefault() {
		var cached CachedSpaceList
		key := constants.SpaceListCacheKey
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Spaces, cached.Total, nil
		}

		spacesList, total, err := s.repo.ListSpaces(ctx, query)
		if err != nil {
			return nil, 0, err
		}

		if err := s.cache.Set(ctx, key, CachedSpaceList{Spaces: spacesList, Total: total}, constants.SpaceListCacheTTL); err != nil {
			s.log.Warn("failed to cache space listing", "error", err)
		}
		return spacesList, total, nil
	}

	return s.repo.ListSpaces(ctx, query)
}

func (s *service) ApproveSpace(ctx context.Context, spaceID uuid.UUID) (*Space, error) {
	space, err := s.repo.GetSpaceByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	space.IsApproved = true
	if err := s.repo.UpdateSpace(ctx, space); err != nil {
		return nil, fmt.Errorf("failed to approve space: %w", err)
	}

	s.invalidateListingCache(ctx)
	return space, nil
}

func (s *service) CreateRoom(ctx context.Context, ownerID uuid.UUID, spaceID uuid.UUID, req CreateRoomRequest) (*Room, error) {
	space, err := s.repo.GetSpaceByID(ctx, spaceID)
	if err != nil {
		return nil, err
	}

	if space.OwnerID != ownerID {
		return nil, ErrNotSpaceOwner
	}

	room := &Room{
		SpaceID:    spaceID,
		Name:       req.Name,
		Capacity:   req.Capacity,
		HourlyRate: req.HourlyRate,
		Equipment:  req.Equipment,
	}

	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return room, nil
}

func (s *service) GetRoom(ctx context.Context, roomID uuid.UUID) (*Room, error) {
	return s.repo.GetRoomByID(ctx, roomID)
}

// GetRoomAvailability walks the business-hours grid for a date and marks each
// slot free or taken against the availability index.
func (s *service) GetRoomAvailability(ctx context.Context, roomID uuid.UUID, date time.Time) ([]AvailabilitySlot, error) {
	if _, err := s.repo.GetRoomByID(ctx, roomID); err != nil {
		return nil, err
	}

	held := s.index.IntervalsFor(roomID)

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), s.slots.OpenHour, 0, 0, 0, time.UTC)
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), s.slots.CloseHour, 0, 0, 0, time.UTC)

	var out []AvailabilitySlot
	for cursor := dayStart; cursor.Add(s.slots.SlotDuration).Before(dayEnd) || cursor.Add(s.slots.SlotDuration).Equal(dayEnd); cursor = cursor.Add(s.slots.SlotDuration) {
		slot := availability.Interval{Start: cursor, End: cursor.Add(s.slots.SlotDuration)}

		free := true
		for _, iv := range held {
			if iv.Overlaps(slot) {
				free = false
				break
			}
		}

		out = append(out, AvailabilitySlot{
			Start:     slot.Start,
			End:       slot.End,
			Available: free,
		})
	}

	return out, nil
}

func (s *service) invalidateListingCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, constants.SpaceListCacheKey); err != nil && err != cache.ErrCacheMiss {
		s.log.Warn("failed to invalidate space listing cache", "error", err)
	}
}
