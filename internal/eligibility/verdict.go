package eligibility

import (
	"errors"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

var (
	// ErrInvalidMode is returned when a check is invoked with an unknown validation mode.
	ErrInvalidMode = errors.New("eligibility: invalid validation mode")
	// ErrMissingSampleData is returned when a sample was never bulk-loaded into the target.
	ErrMissingSampleData = errors.New("eligibility: missing sample data")
)

// Verdict is the outcome of the course gate. The zero value is valid.
type Verdict struct {
	Reason models.ReasonCode `json:"reason,omitempty"`
}

// Valid is the verdict for a course that passed every rule.
var Valid = Verdict{}

// Invalid builds a rejection verdict.
func Invalid(reason models.ReasonCode) Verdict {
	return Verdict{Reason: reason}
}

// OK reports whether the verdict accepts the course.
func (v Verdict) OK() bool {
	return v.Reason == ""
}

// String returns "valid" or the reason code.
func (v Verdict) String() string {
	if v.OK() {
		return "valid"
	}
	return string(v.Reason)
}
