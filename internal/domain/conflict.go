package domain

import "github.com/google/uuid"

// IsRangeFree reports whether r collides with any occupying booking.
// excludeID skips one booking, so a reschedule does not conflict with
// itself; pass uuid.Nil to exclude nothing. Pure decision over data the
// caller already fetched.
func IsRangeFree(bookings []Booking, r TimeRange, excludeID uuid.UUID) bool {
	for i := range bookings {
		b := &bookings[i]
		if excludeID != uuid.Nil && b.ID == excludeID {
			continue
		}
		if !b.Status.Occupies() {
			continue
		}
		if b.Range().Overlaps(r) {
			return false
		}
	}
	return true
}

// MarkOccupied turns candidate ranges into slots with their availability
// flag set. A slot partially covered by an occupying booking is marked
// unavailable; partial-slot bookings are never offered.
func MarkOccupied(candidates []TimeRange, bookings []Booking) []Slot {
	out := make([]Slot, 0, len(candidates))
	for _, r := range candidates {
		out = append(out, Slot{
			Range:     r,
			Available: IsRangeFree(bookings, r, uuid.Nil),
		})
	}
	return out
}
