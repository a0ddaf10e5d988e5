package circulation

import "time"

// ToTimestamp normalizes t to the precision all stores persist: UTC, microseconds.
func ToTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// Clock returns the current time. It is injected everywhere "now" matters, so tests can pin it.
type Clock func() time.Time

// SystemClock is the Clock backed by time.Now.
func SystemClock() time.Time {
	return ToTimestamp(time.Now())
}
