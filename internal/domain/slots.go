package domain

import "time"

const DefaultSlotStep = 30 * time.Minute

// Slot is one candidate bookable window for a single date. Slots are
// produced fresh on every availability query and never persisted.
type Slot struct {
	Range     TimeRange
	Available bool
}

// GenerateSlots expands a provider's weekly windows into candidate slots
// for one calendar date. Only enabled windows whose weekday matches the
// date contribute. Each window is walked from open to close in step
// increments; a trailing remainder shorter than step yields no slot.
// Multiple windows on the same weekday are expanded independently, which
// supports split shifts.
func GenerateSlots(windows []AvailabilityWindow, date time.Time, step time.Duration) []TimeRange {
	if step <= 0 {
		step = DefaultSlotStep
	}

	weekday := int(date.Weekday())
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	var out []TimeRange
	for _, w := range windows {
		if !w.Enabled || w.Weekday != weekday {
			continue
		}
		open := midnight.Add(time.Duration(w.OpenMinute) * time.Minute)
		close := midnight.Add(time.Duration(w.CloseMinute) * time.Minute)
		for t := open; !t.Add(step).After(close); t = t.Add(step) {
			out = append(out, TimeRange{Start: t.UTC(), End: t.Add(step).UTC()})
		}
	}
	return out
}
