package availability

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrConflict is returned when an interval overlaps an existing entry.
	ErrConflict = errors.New("interval conflicts with an existing booking")

	// ErrInvalidInterval is returned when start is not strictly before end.
	ErrInvalidInterval = errors.New("invalid interval")
)

// Store is the in-memory availability index: per room, an ordered collection
// of non-overlapping intervals held by active (non-cancelled) bookings.
//
// The store itself is safe for concurrent use, but check-then-insert sequences
// must be serialized by the caller (the reservation coordinator holds a
// per-room lock around them).
type Store struct {
	mu    sync.RWMutex
	index map[uuid.UUID][]Interval // sorted by Start, non-overlapping
}

// NewStore creates an empty availability store.
func NewStore() *Store {
	return &Store{
		index: make(map[uuid.UUID][]Interval),
	}
}

// IntervalsFor returns a copy of the active intervals for a room, ordered by
// start time. The copy keeps callers from aliasing internal state.
func (s *Store) IntervalsFor(roomID uuid.UUID) []Interval {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.index[roomID]
	out := make([]Interval, len(entries))
	copy(out, entries)
	return out
}

// HasConflict reports whether the candidate interval overlaps any entry for
// the room. Read-only, safe to call concurrently.
func (s *Store) HasConflict(roomID uuid.UUID, iv Interval) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, conflict := s.findSlot(roomID, iv)
	return conflict
}

// Insert adds the interval to the room's index. It fails with ErrConflict if
// the interval overlaps an existing entry and ErrInvalidInterval if the
// interval is degenerate.
func (s *Store) Insert(roomID uuid.UUID, iv Interval) error {
	if !iv.Start.Before(iv.End) {
		return fmt.Errorf("%w: %s", ErrInvalidInterval, iv)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, conflict := s.findSlot(roomID, iv)
	if conflict {
		return fmt.Errorf("%w: %s", ErrConflict, iv)
	}

	entries := s.index[roomID]
	entries = append(entries, Interval{})
	copy(entries[pos+1:], entries[pos:])
	entries[pos] = iv
	s.index[roomID] = entries

	s.verifyOrdered(roomID)
	return nil
}

// Remove deletes the exact interval from the room's index. Removing an
// interval that is not present is a no-op, so releases are idempotent.
func (s *Store) Remove(roomID uuid.UUID, iv Interval) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.index[roomID]
	for i, entry := range entries {
		if entry.Equal(iv) {
			s.index[roomID] = append(entries[:i], entries[i+1:]...)
			if len(s.index[roomID]) == 0 {
				delete(s.index, roomID)
			}
			return
		}
	}
}

// findSlot binary-searches the sorted entries for a room and returns the
// insertion position for iv plus whether iv overlaps a neighbouring entry.
// Callers must hold at least the read lock.
func (s *Store) findSlot(roomID uuid.UUID, iv Interval) (int, bool) {
	entries := s.index[roomID]

	// First entry starting at or after iv.Start.
	pos := sort.Search(len(entries), func(i int) bool {
		return !entries[i].Start.Before(iv.Start)
	})

	// Only the predecessor and the successor can overlap a candidate in a
	// sorted non-overlapping sequence.
	if pos > 0 && entries[pos-1].Overlaps(iv) {
		return pos, true
	}
	if pos < len(entries) && entries[pos].Overlaps(iv) {
		return pos, true
	}
	return pos, false
}

// verifyOrdered asserts the per-room no-overlap invariant after a mutation.
// A violation means internal state is corrupt; that is a halt-and-alert fault,
// not something to degrade through. Callers must hold the write lock.
func (s *Store) verifyOrdered(roomID uuid.UUID) {
	entries := s.index[roomID]
	for i := 1; i < len(entries); i++ {
		if entries[i].Start.Before(entries[i-1].End) {
			panic(fmt.Sprintf("availability index corrupt for room %s: %s overlaps %s",
				roomID, entries[i-1], entries[i]))
		}
	}
}
