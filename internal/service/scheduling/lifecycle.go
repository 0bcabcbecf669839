package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"reservio/backend/internal/domain"
	"reservio/backend/internal/store"
)

type ChangeStatusInput struct {
	BookingID uuid.UUID
	NewStatus domain.BookingStatus
	Notes     string
	Reason    string
}

// ChangeStatus applies one lifecycle transition inside the provider
// transaction, so the status read and write cannot interleave with a
// concurrent reschedule of the same booking.
func (s *Service) ChangeStatus(ctx context.Context, in ChangeStatusInput) (domain.Booking, error) {
	if in.BookingID == uuid.Nil {
		return domain.Booking{}, validationError("booking_id is required")
	}
	if !in.NewStatus.Valid() {
		return domain.Booking{}, validationError("unknown status")
	}

	current, err := s.bookings.GetBooking(ctx, in.BookingID)
	if err != nil {
		return domain.Booking{}, err
	}

	var out domain.Booking
	err = s.bookings.InProviderTransaction(ctx, current.ProviderID, func(ctx context.Context, tx store.SchedulingTx) error {
		b, err := tx.GetBooking(ctx, in.BookingID)
		if err != nil {
			return err
		}

		switch in.NewStatus {
		case domain.BookingStatusConfirmed:
			err = b.Confirm(s.clock)
		case domain.BookingStatusCompleted:
			err = b.Complete(s.clock)
		case domain.BookingStatusCancelled:
			err = b.Cancel(s.clock, in.Reason)
		case domain.BookingStatusRejected:
			err = b.Reject(s.clock)
		case domain.BookingStatusNoShow:
			err = b.MarkNoShow(s.clock)
		default:
			return validationError("status cannot be set directly")
		}
		if err != nil {
			return err
		}

		if in.Notes != "" {
			b.ProviderNotes = in.Notes
		}

		updated, err := tx.UpdateBooking(ctx, b)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

type RescheduleInput struct {
	BookingID uuid.UUID
	StartTime time.Time
	EndTime   time.Time
	Reason    string
}

// Reschedule overwrites the booking's range in place. The conflict check
// excludes the booking itself, so moving within (or back onto) its own
// slot succeeds.
func (s *Service) Reschedule(ctx context.Context, in RescheduleInput) (domain.Booking, error) {
	if in.BookingID == uuid.Nil {
		return domain.Booking{}, validationError("booking_id is required")
	}

	r, err := domain.NewTimeRange(in.StartTime, in.EndTime)
	if err != nil {
		return domain.Booking{}, validationError("end_time must be after start_time")
	}

	current, err := s.bookings.GetBooking(ctx, in.BookingID)
	if err != nil {
		return domain.Booking{}, err
	}

	var out domain.Booking
	err = s.bookings.InProviderTransaction(ctx, current.ProviderID, func(ctx context.Context, tx store.SchedulingTx) error {
		b, err := tx.GetBooking(ctx, in.BookingID)
		if err != nil {
			return err
		}

		existing, err := tx.ListOccupyingBookings(ctx, b.ProviderID, r.Start, r.End)
		if err != nil {
			return err
		}
		if !domain.IsRangeFree(existing, r, b.ID) {
			return store.ErrConflict
		}

		if err := b.ApplyReschedule(r, in.Reason); err != nil {
			return err
		}

		updated, err := tx.UpdateBooking(ctx, b)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}
