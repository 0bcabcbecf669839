package scheduling

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// Service is the scheduling facade: the only entry point external
// collaborators use to create bookings, move them through their lifecycle
// and query availability.
type Service struct {
	bookings  store.BookingRepository
	directory store.ProviderDirectory
	clock     domain.Clock
	slotStep  time.Duration
}

func NewService(bookings store.BookingRepository, directory store.ProviderDirectory, clock domain.Clock, slotStep time.Duration) *Service {
	if clock == nil {
		clock = domain.SystemClock()
	}
	if slotStep <= 0 {
		slotStep = domain.DefaultSlotStep
	}
	return &Service{
		bookings:  bookings,
		directory: directory,
		clock:     clock,
		slotStep:  slotStep,
	}
}

type CreateBookingInput struct {
	ProviderID uuid.UUID
	ServiceID  uuid.UUID

	CustomerUserID string
	GuestName      string
	GuestPhone     string
	GuestEmail     string

	StartTime time.Time
	EndTime   time.Time

	Price    float64
	Currency string

	CustomerNotes  string
	IdempotencyKey string
}

func (in CreateBookingInput) customer() (domain.Customer, error) {
	hasUser := in.CustomerUserID != ""
	hasGuest := in.GuestName != "" || in.GuestPhone != "" || in.GuestEmail != ""

	switch {
	case hasUser && hasGuest:
		return domain.Customer{}, validationError("provide either an authenticated customer or guest contact, not both")
	case hasUser:
		return domain.NewAuthenticatedCustomer(in.CustomerUserID)
	case hasGuest:
		c, err := domain.NewGuestCustomer(in.GuestName, in.GuestPhone, in.GuestEmail)
		if err != nil {
			return domain.Customer{}, validationError(err.Error())
		}
		return c, nil
	default:
		return domain.Customer{}, validationError("customer identity is required")
	}
}

func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if in.ProviderID == uuid.Nil {
		return domain.Booking{}, validationError("provider_id is required")
	}
	if in.ServiceID == uuid.Nil {
		return domain.Booking{}, validationError("service_id is required")
	}

	if _, err := in.customer(); err != nil {
		return domain.Booking{}, err
	}

	r, err := domain.NewTimeRange(in.StartTime, in.EndTime)
	if err != nil {
		return domain.Booking{}, validationError("end_time must be after start_time")
	}
	if r.Duration() > 24*time.Hour {
		return domain.Booking{}, validationError("duration too long")
	}

	if in.Price < 0 {
		return domain.Booking{}, validationError("price must not be negative")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		return domain.Booking{}, validationError("currency is required")
	}

	provider, err := s.directory.GetProvider(ctx, in.ProviderID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !provider.Bookable() {
		return domain.Booking{}, validationError("provider is not accepting bookings")
	}

	svc, err := s.directory.GetService(ctx, in.ServiceID)
	if err != nil {
		return domain.Booking{}, err
	}
	if svc.ProviderID != in.ProviderID {
		return domain.Booking{}, validationError("service does not belong to this provider")
	}
	if !svc.Available {
		return domain.Booking{}, validationError("service is unavailable")
	}

	booking := domain.Booking{
		ProviderID:     in.ProviderID,
		ServiceID:      in.ServiceID,
		CustomerUserID: in.CustomerUserID,
		GuestName:      in.GuestName,
		GuestPhone:     in.GuestPhone,
		GuestEmail:     in.GuestEmail,
		StartTime:      r.Start,
		EndTime:        r.End,
		Status:         domain.BookingStatusPending,
		Price:          in.Price,
		Currency:       currency,
		CustomerNotes:  in.CustomerNotes,
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Booking{}, validationError("idempotency_key too long")
		}
		booking.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("reservio:create_booking:"+in.ProviderID.String()+":"+key))
	}

	var out domain.Booking
	err = s.bookings.InProviderTransaction(ctx, in.ProviderID, func(ctx context.Context, tx store.SchedulingTx) error {
		existing, err := tx.ListOccupyingBookings(ctx, in.ProviderID, r.Start, r.End)
		if err != nil {
			return err
		}
		if !domain.IsRangeFree(existing, r, booking.ID) {
			return store.ErrConflict
		}
		b, err := tx.InsertBooking(ctx, booking)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (s *Service) GetBooking(ctx context.Context, bookingID uuid.UUID) (domain.Booking, error) {
	if bookingID == uuid.Nil {
		return domain.Booking{}, validationError("booking_id is required")
	}
	return s.bookings.GetBooking(ctx, bookingID)
}
