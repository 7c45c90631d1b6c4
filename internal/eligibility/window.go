package eligibility

import "time"

// Window returns the length of the [start, end] interval. An unset end is
// replaced by now and closed is false so callers can tell the two cases apart.
func Window(start, end, now time.Time) (span time.Duration, closed bool) {
	if end.IsZero() {
		return now.Sub(start), false
	}
	return end.Sub(start), true
}

// before reports whether a is strictly earlier than b.
func before(a, b time.Time) bool {
	return a.Before(b)
}

// atLeast reports whether d is greater than or equal to min.
func atLeast(d, min time.Duration) bool {
	return d >= min
}
