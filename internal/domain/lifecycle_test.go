package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func pendingBooking() *Booking {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &Booking{
		ID:         uuid.MustParse("00000000-0000-0000-0000-000000000020"),
		ProviderID: uuid.MustParse("00000000-0000-0000-0000-000000000002"),
		ServiceID:  uuid.MustParse("00000000-0000-0000-0000-000000000003"),
		Status:     BookingStatusPending,
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
	}
}

func TestConfirm_StampsTimestampOnce(t *testing.T) {
	b := pendingBooking()
	first := fixedClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}

	if err := b.Confirm(first); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if b.Status != BookingStatusConfirmed {
		t.Fatalf("status = %s, want %s", b.Status, BookingStatusConfirmed)
	}
	if b.ConfirmedAt == nil || !b.ConfirmedAt.Equal(first.now) {
		t.Fatalf("confirmed_at = %v, want %v", b.ConfirmedAt, first.now)
	}

	// A rescheduled booking re-enters the confirm gate, but the stamp is
	// already set and must not move.
	if err := b.ApplyReschedule(mustRange(t, b.StartTime.Add(time.Hour), b.EndTime.Add(time.Hour)), ""); err != nil {
		t.Fatalf("ApplyReschedule error: %v", err)
	}
	later := fixedClock{now: first.now.Add(48 * time.Hour)}
	if err := b.Confirm(later); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if !b.ConfirmedAt.Equal(first.now) {
		t.Fatalf("confirmed_at moved to %v, want %v", b.ConfirmedAt, first.now)
	}
}

func TestConfirm_RejectsNonPendingStatuses(t *testing.T) {
	for _, status := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled, BookingStatusRejected, BookingStatusNoShow} {
		b := pendingBooking()
		b.Status = status
		err := b.Confirm(fixedClock{now: time.Now()})
		var tErr *InvalidTransitionError
		if !errors.As(err, &tErr) {
			t.Fatalf("status %s: error type = %T, want *InvalidTransitionError", status, err)
		}
	}
}

func TestComplete_OnlyFromConfirmed(t *testing.T) {
	clock := fixedClock{now: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}

	b := pendingBooking()
	if err := b.Complete(clock); err == nil {
		t.Fatalf("expected error completing a pending booking")
	}

	if err := b.Confirm(clock); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if err := b.Complete(clock); err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if b.CompletedAt == nil || !b.CompletedAt.Equal(clock.now) {
		t.Fatalf("completed_at = %v, want %v", b.CompletedAt, clock.now)
	}
}

func TestCancel_GuardsAndStampsOnce(t *testing.T) {
	clock := fixedClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}

	t.Run("pending booking cancels and stamps", func(t *testing.T) {
		b := pendingBooking()
		if err := b.Cancel(clock, "customer request"); err != nil {
			t.Fatalf("Cancel error: %v", err)
		}
		if b.Status != BookingStatusCancelled {
			t.Fatalf("status = %s, want %s", b.Status, BookingStatusCancelled)
		}
		if b.CancellationReason != "customer request" {
			t.Fatalf("reason = %q, want %q", b.CancellationReason, "customer request")
		}
		if b.CancelledAt == nil || !b.CancelledAt.Equal(clock.now) {
			t.Fatalf("cancelled_at = %v, want %v", b.CancelledAt, clock.now)
		}
	})

	t.Run("cancelling a completed booking fails", func(t *testing.T) {
		b := pendingBooking()
		b.Status = BookingStatusCompleted
		err := b.Cancel(clock, "")
		var tErr *InvalidTransitionError
		if !errors.As(err, &tErr) {
			t.Fatalf("error type = %T, want *InvalidTransitionError", err)
		}
		if tErr.Error() != "booking is already completed" {
			t.Fatalf("error = %q, want %q", tErr.Error(), "booking is already completed")
		}
	})

	t.Run("cancel is not idempotent", func(t *testing.T) {
		b := pendingBooking()
		if err := b.Cancel(clock, "first"); err != nil {
			t.Fatalf("Cancel error: %v", err)
		}
		stamped := *b.CancelledAt

		err := b.Cancel(fixedClock{now: clock.now.Add(time.Hour)}, "second")
		var tErr *InvalidTransitionError
		if !errors.As(err, &tErr) {
			t.Fatalf("error type = %T, want *InvalidTransitionError", err)
		}
		if tErr.Error() != "booking is already cancelled" {
			t.Fatalf("error = %q, want %q", tErr.Error(), "booking is already cancelled")
		}
		if !b.CancelledAt.Equal(stamped) {
			t.Fatalf("cancelled_at moved to %v, want %v", b.CancelledAt, stamped)
		}
		if b.CancellationReason != "first" {
			t.Fatalf("reason = %q, want %q", b.CancellationReason, "first")
		}
	})
}

func TestReject_OnlyFromPending(t *testing.T) {
	b := pendingBooking()
	if err := b.Reject(fixedClock{}); err != nil {
		t.Fatalf("Reject error: %v", err)
	}
	if b.Status != BookingStatusRejected {
		t.Fatalf("status = %s, want %s", b.Status, BookingStatusRejected)
	}

	confirmed := pendingBooking()
	confirmed.Status = BookingStatusConfirmed
	if err := confirmed.Reject(fixedClock{}); err == nil {
		t.Fatalf("expected error rejecting a confirmed booking")
	}
}

func TestMarkNoShow_OnlyFromConfirmed(t *testing.T) {
	b := pendingBooking()
	if err := b.MarkNoShow(fixedClock{}); err == nil {
		t.Fatalf("expected error marking a pending booking as no-show")
	}

	b.Status = BookingStatusConfirmed
	if err := b.MarkNoShow(fixedClock{}); err != nil {
		t.Fatalf("MarkNoShow error: %v", err)
	}
	if !b.Status.Occupies() {
		t.Fatalf("no-show must remain an occupying status")
	}
}

func TestApplyReschedule_TerminalStatesRejected(t *testing.T) {
	newStart := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	r := mustRange(t, newStart, newStart.Add(30*time.Minute))

	for _, status := range []BookingStatus{BookingStatusCompleted, BookingStatusCancelled, BookingStatusRejected, BookingStatusNoShow} {
		b := pendingBooking()
		b.Status = status
		if err := b.ApplyReschedule(r, ""); err == nil {
			t.Fatalf("status %s: expected error", status)
		}
	}

	b := pendingBooking()
	if err := b.ApplyReschedule(r, "provider request"); err != nil {
		t.Fatalf("ApplyReschedule error: %v", err)
	}
	if b.Status != BookingStatusRescheduled {
		t.Fatalf("status = %s, want %s", b.Status, BookingStatusRescheduled)
	}
	if !b.StartTime.Equal(r.Start) || !b.EndTime.Equal(r.End) {
		t.Fatalf("range not overwritten: %v-%v", b.StartTime, b.EndTime)
	}
}
