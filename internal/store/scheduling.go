package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reservio/backend/internal/domain"
)

// BookingQuery narrows booking reads. Each field is optional; the zero
// value matches everything for a provider. Persistence adapters translate
// it into storage predicates.
type BookingQuery struct {
	ProviderID  uuid.UUID
	Statuses    []domain.BookingStatus
	WindowStart *time.Time
	WindowEnd   *time.Time
}

// SchedulingTx is the unit of work a provider-serialized transaction
// exposes. The read-decide-write sequence for create and reschedule runs
// entirely against one of these.
type SchedulingTx interface {
	InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
	GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
	ListOccupyingBookings(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time) ([]domain.Booking, error)
}

type BookingRepository interface {
	// InProviderTransaction serializes fn against all other transactions
	// for the same provider, so a read-decide-write sequence behaves as a
	// single atomic unit.
	InProviderTransaction(ctx context.Context, providerID uuid.UUID, fn func(ctx context.Context, tx SchedulingTx) error) error

	GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error)
	ListBookings(ctx context.Context, q BookingQuery) ([]domain.Booking, error)
	CountByStatus(ctx context.Context, q BookingQuery) (map[domain.BookingStatus]int, error)
}

// ProviderDirectory reads records owned by the provider-management
// collaborator: provider profiles, service offerings and weekly
// availability windows. The scheduling core never writes them.
type ProviderDirectory interface {
	GetProvider(ctx context.Context, providerID uuid.UUID) (domain.Provider, error)
	GetService(ctx context.Context, serviceID uuid.UUID) (domain.Service, error)
	ListAvailabilityWindows(ctx context.Context, providerID uuid.UUID) ([]domain.AvailabilityWindow, error)
}
