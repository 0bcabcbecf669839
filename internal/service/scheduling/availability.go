package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/store"
)

type AvailabilityResult struct {
	Available bool
	Slots     []domain.Slot
	Message   string
}

// QueryAvailability answers "what slots are free for this provider on this
// date". The result is advisory: it may be stale by the time a create
// request lands, and the authoritative conflict check runs again inside
// CreateBooking. serviceID is accepted for future duration-aware slot
// generation and does not affect slot width today.
func (s *Service) QueryAvailability(ctx context.Context, providerID uuid.UUID, date time.Time, serviceID uuid.UUID) (AvailabilityResult, error) {
	if providerID == uuid.Nil {
		return AvailabilityResult{}, validationError("provider_id is required")
	}

	if _, err := s.directory.GetProvider(ctx, providerID); err != nil {
		return AvailabilityResult{}, err
	}

	windows, err := s.directory.ListAvailabilityWindows(ctx, providerID)
	if err != nil {
		return AvailabilityResult{}, err
	}

	candidates := domain.GenerateSlots(windows, date, s.slotStep)
	if len(candidates) == 0 {
		return AvailabilityResult{
			Available: false,
			Slots:     []domain.Slot{},
			Message:   "provider has no availability configured for this weekday",
		}, nil
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location()).UTC()
	dayEnd := dayStart.Add(24 * time.Hour)
	bookings, err := s.bookings.ListBookings(ctx, store.BookingQuery{
		ProviderID:  providerID,
		Statuses:    domain.OccupyingStatuses,
		WindowStart: &dayStart,
		WindowEnd:   &dayEnd,
	})
	if err != nil {
		return AvailabilityResult{}, err
	}

	slots := domain.MarkOccupied(candidates, bookings)
	available := false
	for _, slot := range slots {
		if slot.Available {
			available = true
			break
		}
	}

	message := ""
	if !available {
		message = "all slots for this date are booked"
	}

	return AvailabilityResult{
		Available: available,
		Slots:     slots,
		Message:   message,
	}, nil
}

type BookingStats struct {
	Total  int
	Counts map[domain.BookingStatus]int
}

// GetStats aggregates booking counts per status for one provider,
// optionally narrowed to a date range.
func (s *Service) GetStats(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd *time.Time) (BookingStats, error) {
	if providerID == uuid.Nil {
		return BookingStats{}, validationError("provider_id is required")
	}
	if windowStart != nil && windowEnd != nil && !windowStart.Before(*windowEnd) {
		return BookingStats{}, validationError("window_end must be after window_start")
	}

	if _, err := s.directory.GetProvider(ctx, providerID); err != nil {
		return BookingStats{}, err
	}

	counts, err := s.bookings.CountByStatus(ctx, store.BookingQuery{
		ProviderID:  providerID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	})
	if err != nil {
		return BookingStats{}, err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return BookingStats{Total: total, Counts: counts}, nil
}
