// Package memory holds an in-process implementation of the booking store.
// It mirrors the postgres repository's semantics, including per-provider
// serialization and the overlap backstop, and backs tests that need a
// working store rather than a function-field fake.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/store"
)

type Store struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]domain.Booking

	lockMu        sync.Mutex
	providerLocks map[uuid.UUID]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		bookings:      make(map[uuid.UUID]domain.Booking),
		providerLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Store) providerLock(providerID uuid.UUID) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	l, ok := s.providerLocks[providerID]
	if !ok {
		l = &sync.Mutex{}
		s.providerLocks[providerID] = l
	}
	return l
}

// InProviderTransaction serializes fn against other transactions for the
// same provider. A failed fn undoes only the rows it wrote, so rollback
// cannot clobber bookings committed concurrently for other providers.
func (s *Store) InProviderTransaction(ctx context.Context, providerID uuid.UUID, fn func(ctx context.Context, tx store.SchedulingTx) error) error {
	l := s.providerLock(providerID)
	l.Lock()
	defer l.Unlock()

	tx := &memTx{store: s, undo: make(map[uuid.UUID]*domain.Booking)}
	if err := fn(ctx, tx); err != nil {
		s.mu.Lock()
		tx.rollbackLocked()
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[bookingID]
	if !ok {
		return domain.Booking{}, store.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBookings(ctx context.Context, q store.BookingQuery) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Booking
	for _, b := range s.bookings {
		if matches(b, q) {
			out = append(out, b)
		}
	}
	sortByStart(out)
	return out, nil
}

func (s *Store) CountByStatus(ctx context.Context, q store.BookingQuery) (map[domain.BookingStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[domain.BookingStatus]int)
	for _, b := range s.bookings {
		if matches(b, q) {
			out[b.Status]++
		}
	}
	return out, nil
}

func matches(b domain.Booking, q store.BookingQuery) bool {
	if q.ProviderID != uuid.Nil && b.ProviderID != q.ProviderID {
		return false
	}
	if len(q.Statuses) > 0 {
		found := false
		for _, status := range q.Statuses {
			if b.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if q.WindowEnd != nil && !b.StartTime.Before(*q.WindowEnd) {
		return false
	}
	if q.WindowStart != nil && !b.EndTime.After(*q.WindowStart) {
		return false
	}
	return true
}

func sortByStart(bookings []domain.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].StartTime.Before(bookings[j].StartTime)
	})
}

type memTx struct {
	store *Store
	// undo records the pre-write state of every row this transaction
	// touched; a nil entry means the row did not exist.
	undo map[uuid.UUID]*domain.Booking
}

func (t *memTx) recordLocked(id uuid.UUID) {
	if _, seen := t.undo[id]; seen {
		return
	}
	if prev, ok := t.store.bookings[id]; ok {
		t.undo[id] = &prev
		return
	}
	t.undo[id] = nil
}

func (t *memTx) rollbackLocked() {
	for id, prev := range t.undo {
		if prev == nil {
			delete(t.store.bookings, id)
			continue
		}
		t.store.bookings[id] = *prev
	}
}

func (t *memTx) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if b.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return domain.Booking{}, err
		}
		b.ID = id
	} else if existing, ok := t.store.bookings[b.ID]; ok {
		if existing.ProviderID != b.ProviderID ||
			existing.ServiceID != b.ServiceID ||
			existing.CustomerUserID != b.CustomerUserID ||
			existing.GuestEmail != b.GuestEmail ||
			!existing.StartTime.Equal(b.StartTime) ||
			!existing.EndTime.Equal(b.EndTime) {
			return domain.Booking{}, store.ErrIdempotencyConflict
		}
		return existing, nil
	}

	if b.Status.Occupies() && !t.rangeFreeLocked(b.ProviderID, b.Range(), b.ID) {
		return domain.Booking{}, store.ErrConflict
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	t.recordLocked(b.ID)
	t.store.bookings[b.ID] = b
	return b, nil
}

func (t *memTx) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	return t.store.GetBooking(ctx, bookingID)
}

func (t *memTx) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, ok := t.store.bookings[b.ID]; !ok {
		return domain.Booking{}, store.ErrNotFound
	}
	if b.Status.Occupies() && !t.rangeFreeLocked(b.ProviderID, b.Range(), b.ID) {
		return domain.Booking{}, store.ErrConflict
	}

	b.UpdatedAt = time.Now().UTC()
	t.recordLocked(b.ID)
	t.store.bookings[b.ID] = b
	return b, nil
}

func (t *memTx) ListOccupyingBookings(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	return t.store.ListBookings(ctx, store.BookingQuery{
		ProviderID:  providerID,
		Statuses:    domain.OccupyingStatuses,
		WindowStart: &windowStart,
		WindowEnd:   &windowEnd,
	})
}

func (t *memTx) rangeFreeLocked(providerID uuid.UUID, r domain.TimeRange, excludeID uuid.UUID) bool {
	var others []domain.Booking
	for _, other := range t.store.bookings {
		if other.ProviderID == providerID {
			others = append(others, other)
		}
	}
	return domain.IsRangeFree(others, r, excludeID)
}
