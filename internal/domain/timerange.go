package domain

import (
	"errors"
	"time"
)

// TimeRange is a half-open interval [Start, End). Times are stored in UTC.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

func NewTimeRange(start, end time.Time) (TimeRange, error) {
	s := start.UTC()
	e := end.UTC()
	if !s.Before(e) {
		return TimeRange{}, errors.New("end must be after start")
	}
	return TimeRange{Start: s, End: e}, nil
}

// Overlaps reports whether two half-open ranges intersect. A range that
// starts exactly when another ends does not overlap, so back-to-back
// bookings are legal.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
