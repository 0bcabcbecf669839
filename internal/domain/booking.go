package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCompleted   BookingStatus = "completed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusRejected    BookingStatus = "rejected"
	BookingStatusRescheduled BookingStatus = "rescheduled"
	BookingStatusNoShow      BookingStatus = "no_show"
)

// OccupyingStatuses are the statuses that hold a booking's time range
// against new conflicts. A no-show keeps its range occupied: the slot was
// reserved even though the customer did not appear.
var OccupyingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCompleted,
	BookingStatusRescheduled,
	BookingStatusNoShow,
}

func (s BookingStatus) Occupies() bool {
	for _, o := range OccupyingStatuses {
		if s == o {
			return true
		}
	}
	return false
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted,
		BookingStatusCancelled, BookingStatusRejected, BookingStatusRescheduled,
		BookingStatusNoShow:
		return true
	}
	return false
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID         uuid.UUID `bun:"id,pk,type:uuid"`
	ProviderID uuid.UUID `bun:"provider_id,notnull,type:uuid"`
	ServiceID  uuid.UUID `bun:"service_id,notnull,type:uuid"`

	CustomerUserID string `bun:"customer_user_id"`
	GuestName      string `bun:"guest_name"`
	GuestPhone     string `bun:"guest_phone"`
	GuestEmail     string `bun:"guest_email"`

	StartTime time.Time `bun:"start_time,notnull"`
	EndTime   time.Time `bun:"end_time,notnull"`

	Status   BookingStatus `bun:"status,notnull"`
	Price    float64       `bun:"price,notnull"`
	Currency string        `bun:"currency,notnull"`

	CustomerNotes      string `bun:"customer_notes"`
	ProviderNotes      string `bun:"provider_notes"`
	CancellationReason string `bun:"cancellation_reason"`

	ConfirmedAt *time.Time `bun:"confirmed_at"`
	CompletedAt *time.Time `bun:"completed_at"`
	CancelledAt *time.Time `bun:"cancelled_at"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}

func (b *Booking) Range() TimeRange {
	return TimeRange{Start: b.StartTime.UTC(), End: b.EndTime.UTC()}
}

func (b *Booking) Customer() Customer {
	if b.CustomerUserID != "" {
		return Customer{userID: b.CustomerUserID}
	}
	return Customer{guest: &GuestContact{
		Name:  b.GuestName,
		Phone: b.GuestPhone,
		Email: b.GuestEmail,
	}}
}
