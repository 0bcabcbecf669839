package domain

import "time"

// Clock abstracts "now" so lifecycle timestamps are testable with a fixed
// time source.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func SystemClock() Clock {
	return systemClock{}
}
