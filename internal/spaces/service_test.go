package spaces

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacehub/internal/availability"
)

// fakeSpaceRepo is an in-memory Repository for service tests.
type fakeSpaceRepo struct {
	spaces map[uuid.UUID]*Space
	rooms  map[uuid.UUID]*Room
}

func newFakeSpaceRepo() *fakeSpaceRepo {
	return &fakeSpaceRepo{
		spaces: make(map[uuid.UUID]*Space),
		rooms:  make(map[uuid.UUID]*Room),
	}
}

func (r *fakeSpaceRepo) CreateSpace(ctx context.Context, space *Space) error {
	space.ID = uuid.New()
	r.spaces[space.ID] = space
	return nil
}

func (r *fakeSpaceRepo) GetSpaceByID(ctx context.Context, id uuid.UUID) (*Space, error) {
	space, ok := r.spaces[id]
	if !ok {
		return nil, ErrSpaceNotFound
	}
	return space, nil
}

func (r *fakeSpaceRepo) ListSpaces(ctx context.Context, query SpaceListQuery) ([]Space, int64, error) {
	var out []Space
	for _, s := range r.spaces {
		if s.IsBookable() {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSpaceRepo) UpdateSpace(ctx context.Context, space *Space) error {
	if _, ok := r.spaces[space.ID]; !ok {
		return ErrSpaceNotFound
	}
	r.spaces[space.ID] = space
	return nil
}

func (r *fakeSpaceRepo) CreateRoom(ctx context.Context, room *Room) error {
	room.ID = uuid.New()
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeSpaceRepo) GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (r *fakeSpaceRepo) GetRoomsBySpaceID(ctx context.Context, spaceID uuid.UUID) ([]Room, error) {
	var out []Room
	for _, room := range r.rooms {
		if room.SpaceID == spaceID {
			out = append(out, *room)
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (Service, *fakeSpaceRepo, *availability.Store) {
	t.Helper()
	repo := newFakeSpaceRepo()
	index := availability.NewStore()
	svc := NewService(repo, index, nil, SlotConfig{
		OpenHour:     9,
		CloseHour:    21,
		SlotDuration: time.Hour,
	})
	return svc, repo, index
}

func TestCreateSpace_StartsUnapproved(t *testing.T) {
	svc, _, _ := newTestService(t)

	space, err := svc.CreateSpace(context.Background(), uuid.New(), CreateSpaceRequest{
		Title:    "Harborview Workspace",
		Category: CategoryMeetingRoom,
		Address:  "12 Quay Street",
		City:     "Rotterdam",
	})
	require.NoError(t, err)

	assert.True(t, space.IsActive)
	assert.False(t, space.IsApproved)
	assert.False(t, space.IsBookable())
}

func TestCreateSpace_RejectsUnknownCategory(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateSpace(context.Background(), uuid.New(), CreateSpaceRequest{
		Title:    "Garage",
		Category: "PARKING",
		Address:  "1 Side Street",
		City:     "Utrecht",
	})
	assert.Error(t, err)
}

func TestApproveSpace_MakesListingBookable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	space, err := svc.CreateSpace(ctx, uuid.New(), CreateSpaceRequest{
		Title:    "The Foundry",
		Category: CategoryEventSpace,
		Address:  "88 Iron Lane",
		City:     "Utrecht",
	})
	require.NoError(t, err)

	approved, err := svc.ApproveSpace(ctx, space.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsBookable())
}

func TestCreateRoom_RequiresOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	ownerID := uuid.New()

	space, err := svc.CreateSpace(ctx, ownerID, CreateSpaceRequest{
		Title:    "Canal Offices",
		Category: CategoryPrivateOffice,
		Address:  "3 Brouwersgracht",
		City:     "Amsterdam",
	})
	require.NoError(t, err)

	_, err = svc.CreateRoom(ctx, uuid.New(), space.ID, CreateRoomRequest{
		Name:       "Office 1",
		Capacity:   6,
		HourlyRate: 55,
	})
	assert.ErrorIs(t, err, ErrNotSpaceOwner)

	room, err := svc.CreateRoom(ctx, ownerID, space.ID, CreateRoomRequest{
		Name:       "Office 1",
		Capacity:   6,
		HourlyRate: 55,
	})
	require.NoError(t, err)
	assert.Equal(t, space.ID, room.SpaceID)
}

func TestGetRoomAvailability_MarksHeldSlots(t *testing.T) {
	svc, repo, index := newTestService(t)
	ctx := context.Background()

	room := &Room{SpaceID: uuid.New(), Name: "Dockside", Capacity: 8, HourlyRate: 35}
	require.NoError(t, repo.CreateRoom(ctx, room))

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	held, err := availability.NewInterval(day.Add(10*time.Hour), day.Add(12*time.Hour))
	require.NoError(t, err)
	require.NoError(t, index.Insert(room.ID, held))

	slots, err := svc.GetRoomAvailability(ctx, room.ID, day)
	require.NoError(t, err)

	// 09:00-21:00 in one-hour steps.
	require.Len(t, slots, 12)

	for _, slot := range slots {
		switch slot.Start.Hour() {
		case 10, 11:
			assert.False(t, slot.Available, "slot at %s should be held", slot.Start)
		default:
			assert.True(t, slot.Available, "slot at %s should be free", slot.Start)
		}
	}
}

func TestGetRoomAvailability_UnknownRoom(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetRoomAvailability(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
