package availability

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustInterval(t *testing.T, startHour, endHour int) Interval {
	t.Helper()
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	iv, err := NewInterval(day.Add(time.Duration(startHour)*time.Hour), day.Add(time.Duration(endHour)*time.Hour))
	require.NoError(t, err)
	return iv
}

func TestNewInterval_RejectsDegenerate(t *testing.T) {
	now := time.Now()

	_, err := NewInterval(now, now)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewInterval(now.Add(time.Hour), now)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", mustInterval(t, 10, 11), mustInterval(t, 10, 11), true},
		{"partial overlap", mustInterval(t, 10, 11), mustInterval(t, 10, 12).shift(30 * time.Minute), true},
		{"contained", mustInterval(t, 9, 13), mustInterval(t, 10, 11), true},
		{"back to back", mustInterval(t, 10, 11), mustInterval(t, 11, 12), false},
		{"disjoint", mustInterval(t, 9, 10), mustInterval(t, 12, 13), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

// shift moves both endpoints, handy for building misaligned intervals in tests.
func (i Interval) shift(d time.Duration) Interval {
	return Interval{Start: i.Start.Add(d), End: i.End.Add(d)}
}

func TestStore_InsertAndConflict(t *testing.T) {
	store := NewStore()
	roomID := uuid.New()

	require.NoError(t, store.Insert(roomID, mustInterval(t, 10, 11)))

	// Exact overlap and partial overlap both conflict.
	err := store.Insert(roomID, mustInterval(t, 10, 11))
	assert.ErrorIs(t, err, ErrConflict)

	half := mustInterval(t, 10, 11).shift(30 * time.Minute) // [10:30, 11:30)
	err = store.Insert(roomID, half)
	assert.ErrorIs(t, err, ErrConflict)

	// Adjacent interval does not conflict at the shared boundary.
	require.NoError(t, store.Insert(roomID, mustInterval(t, 11, 12)))

	got := store.IntervalsFor(roomID)
	require.Len(t, got, 2)
	assert.True(t, got[0].Start.Before(got[1].Start), "intervals must stay ordered")
}

func TestStore_InsertKeepsOrder(t *testing.T) {
	store := NewStore()
	roomID := uuid.New()

	// Insert out of order and verify the index stays sorted.
	require.NoError(t, store.Insert(roomID, mustInterval(t, 14, 15)))
	require.NoError(t, store.Insert(roomID, mustInterval(t, 9, 10)))
	require.NoError(t, store.Insert(roomID, mustInterval(t, 11, 12)))

	got := store.IntervalsFor(roomID)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].End.Before(got[i].Start) || got[i-1].End.Equal(got[i].Start))
	}
}

func TestStore_IsolatedPerRoom(t *testing.T) {
	store := NewStore()
	roomA := uuid.New()
	roomB := uuid.New()

	iv := mustInterval(t, 10, 11)
	require.NoError(t, store.Insert(roomA, iv))

	// Same slot on another room is unrelated.
	assert.False(t, store.HasConflict(roomB, iv))
	require.NoError(t, store.Insert(roomB, iv))
}

func TestStore_RemoveIsIdempotent(t *testing.T) {
	store := NewStore()
	roomID := uuid.New()
	iv := mustInterval(t, 10, 11)

	require.NoError(t, store.Insert(roomID, iv))
	store.Remove(roomID, iv)
	assert.Empty(t, store.IntervalsFor(roomID))

	// Second removal is a no-op.
	store.Remove(roomID, iv)

	// The slot is reservable again.
	require.NoError(t, store.Insert(roomID, iv))
}

func TestStore_IntervalsForReturnsCopy(t *testing.T) {
	store := NewStore()
	roomID := uuid.New()
	require.NoError(t, store.Insert(roomID, mustInterval(t, 10, 11)))

	got := store.IntervalsFor(roomID)
	got[0].Start = got[0].Start.Add(-time.Hour)

	fresh := store.IntervalsFor(roomID)
	assert.True(t, fresh[0].Equal(mustInterval(t, 10, 11)))
}

func TestStore_ConcurrentReadsAndWrites(t *testing.T) {
	store := NewStore()
	roomID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		iv := mustInterval(t, 0, 1).shift(time.Duration(i) * time.Hour)
		go func() {
			defer wg.Done()
			_ = store.Insert(roomID, iv)
		}()
		go func() {
			defer wg.Done()
			_ = store.HasConflict(roomID, iv)
		}()
	}
	wg.Wait()

	got := store.IntervalsFor(roomID)
	assert.Len(t, got, 50)
}
