// Package http exposes the scheduling facade over a gin JSON API.
package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/service/scheduling"
)

type schedulingService interface {
	CreateBooking(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	ChangeStatus(ctx context.Context, in scheduling.ChangeStatusInput) (domain.Booking, error)
	Reschedule(ctx context.Context, in scheduling.RescheduleInput) (domain.Booking, error)
	GetStats(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd *time.Time) (scheduling.BookingStats, error)
}

type availabilityQuerier interface {
	QueryAvailability(ctx context.Context, providerID uuid.UUID, date time.Time, serviceID uuid.UUID) (scheduling.AvailabilityResult, error)
}

// availabilityInvalidator is how write handlers drop stale cached
// availability. A nil invalidator disables the hook.
type availabilityInvalidator interface {
	Invalidate(ctx context.Context, providerID uuid.UUID, dates ...time.Time)
}

type BookingServer struct {
	svc          schedulingService
	availability availabilityQuerier
	invalidator  availabilityInvalidator
	log          *slog.Logger
}

func NewBookingServer(svc schedulingService, availability availabilityQuerier, invalidator availabilityInvalidator, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		svc:          svc,
		availability: availability,
		invalidator:  invalidator,
		log:          log.With(slog.String("component", "http.bookings")),
	}
}

// invalidateAvailability drops cached availability for every UTC date a
// booking touches. Bookings are capped at 24h so start and end dates
// cover the whole range.
func (s *BookingServer) invalidateAvailability(ctx context.Context, b domain.Booking) {
	if s.invalidator == nil {
		return
	}
	dates := []time.Time{b.StartTime}
	if !b.EndTime.UTC().Truncate(24 * time.Hour).Equal(b.StartTime.UTC().Truncate(24 * time.Hour)) {
		dates = append(dates, b.EndTime)
	}
	s.invalidator.Invalidate(ctx, b.ProviderID, dates...)
}
