package clock

import "time"

// Clock abstracts the current time so lock-in boundaries, penalty tiers and
// dedup windows are deterministically testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// System returns a Clock backed by the system time in UTC.
func System() Clock {
	return systemClock{}
}
