package eligibility

import "time"

const (
	// Day is a calendar day as used by the course analytics rules.
	Day = 24 * time.Hour
	// Week is seven days.
	Week = 7 * Day
	// Year is a 365 day year.
	Year = 365 * Day
)

// Limits holds the tunable spans used by the course and sample checks.
type Limits struct {
	// MaxSpan is the longest course or enrolment window accepted. Equal is allowed.
	MaxSpan time.Duration
	// SettleMargin is how long a finished course must have been closed before its
	// completion data is used for training.
	SettleMargin time.Duration
}

// DefaultLimits returns one year plus an eight week grace period and a one week settle margin.
func DefaultLimits() Limits {
	return Limits{
		MaxSpan:      Year + 8*Week,
		SettleMargin: Week,
	}
}

// withDefaults fills unset values from DefaultLimits.
func (l Limits) withDefaults() Limits {
	def := DefaultLimits()
	if l.MaxSpan <= 0 {
		l.MaxSpan = def.MaxSpan
	}
	if l.SettleMargin < 0 {
		l.SettleMargin = def.SettleMargin
	}
	return l
}
