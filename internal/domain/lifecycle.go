package domain

import "fmt"

// InvalidTransitionError reports a lifecycle operation that is illegal for
// the booking's current status.
type InvalidTransitionError struct {
	From   BookingStatus
	To     BookingStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}

func invalidTransition(from, to BookingStatus) error {
	return &InvalidTransitionError{From: from, To: to}
}

// reschedulable statuses behave like a fresh pending reservation: a
// rescheduled booking keeps moving through the same gates as a pending one.
func (s BookingStatus) pendingLike() bool {
	return s == BookingStatusPending || s == BookingStatusRescheduled
}

// Confirm moves a pending (or rescheduled) booking to confirmed. The
// confirmation timestamp is stamped at most once, so a retried transition
// never moves it.
func (b *Booking) Confirm(clock Clock) error {
	if !b.Status.pendingLike() {
		return invalidTransition(b.Status, BookingStatusConfirmed)
	}
	b.Status = BookingStatusConfirmed
	if b.ConfirmedAt == nil {
		now := clock.Now().UTC()
		b.ConfirmedAt = &now
	}
	return nil
}

func (b *Booking) Complete(clock Clock) error {
	if b.Status != BookingStatusConfirmed {
		return invalidTransition(b.Status, BookingStatusCompleted)
	}
	b.Status = BookingStatusCompleted
	if b.CompletedAt == nil {
		now := clock.Now().UTC()
		b.CompletedAt = &now
	}
	return nil
}

// Cancel is deliberately not idempotent: repeat attempts surface as user
// errors rather than silent success.
func (b *Booking) Cancel(clock Clock, reason string) error {
	switch b.Status {
	case BookingStatusCompleted:
		return &InvalidTransitionError{
			From:   b.Status,
			To:     BookingStatusCancelled,
			Reason: "booking is already completed",
		}
	case BookingStatusCancelled:
		return &InvalidTransitionError{
			From:   b.Status,
			To:     BookingStatusCancelled,
			Reason: "booking is already cancelled",
		}
	}
	if !b.Status.pendingLike() && b.Status != BookingStatusConfirmed {
		return invalidTransition(b.Status, BookingStatusCancelled)
	}
	b.Status = BookingStatusCancelled
	b.CancellationReason = reason
	if b.CancelledAt == nil {
		now := clock.Now().UTC()
		b.CancelledAt = &now
	}
	return nil
}

func (b *Booking) Reject(clock Clock) error {
	if !b.Status.pendingLike() {
		return invalidTransition(b.Status, BookingStatusRejected)
	}
	b.Status = BookingStatusRejected
	return nil
}

func (b *Booking) MarkNoShow(clock Clock) error {
	if b.Status != BookingStatusConfirmed {
		return invalidTransition(b.Status, BookingStatusNoShow)
	}
	b.Status = BookingStatusNoShow
	return nil
}

// ApplyReschedule overwrites the booking's range in place and marks it
// rescheduled. The caller is responsible for the conflict check on the new
// range, with this booking's own id excluded.
func (b *Booking) ApplyReschedule(newRange TimeRange, reason string) error {
	if !b.Status.pendingLike() && b.Status != BookingStatusConfirmed {
		return invalidTransition(b.Status, BookingStatusRescheduled)
	}
	b.StartTime = newRange.Start
	b.EndTime = newRange.End
	b.Status = BookingStatusRescheduled
	if reason != "" {
		b.ProviderNotes = reason
	}
	return nil
}
