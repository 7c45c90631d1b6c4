package eligibility

import (
	"time"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

// CheckSample reports whether an enrolment can be used as a sample of its course.
func CheckSample(sample models.EnrolmentSample, course models.CourseSnapshot, now time.Time, limits Limits) bool {
	limits = limits.withDefaults()

	// Enrolment ended before the course began.
	if !sample.TimeEnd.IsZero() && before(sample.TimeEnd, course.StartDate) {
		return false
	}

	if EnrolmentSpan(sample, course, now) > limits.MaxSpan {
		return false
	}

	// Enrolment started after the course finished.
	if !course.EndDate.IsZero() && enrolmentStart(sample, course).After(course.EndDate) {
		return false
	}
	return true
}

// EnrolmentSpan is the length of the enrolment window. An open enrolment ends
// with the course, or at now when the course has no end date either.
func EnrolmentSpan(sample models.EnrolmentSample, course models.CourseSnapshot, now time.Time) time.Duration {
	end := sample.TimeEnd
	if end.IsZero() {
		end = course.EndDate
	}
	span, _ := Window(enrolmentStart(sample, course), end, now)
	return span
}

// enrolmentStart falls back to the creation time, then the course start, when
// no start was recorded.
func enrolmentStart(sample models.EnrolmentSample, course models.CourseSnapshot) time.Time {
	switch {
	case !sample.TimeStart.IsZero():
		return sample.TimeStart
	case !sample.TimeCreated.IsZero():
		return sample.TimeCreated
	default:
		return course.StartDate
	}
}
