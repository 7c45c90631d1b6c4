package eligibility

import (
	"time"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

// CheckCourse decides whether a course can be analysed in the given mode.
// Rules run in priority order and the first failing rule is reported.
func CheckCourse(course models.CourseSnapshot, mode models.ValidationMode, now time.Time, limits Limits) (Verdict, error) {
	if !mode.Valid() {
		return Verdict{}, ErrInvalidMode
	}
	limits = limits.withDefaults()

	if !course.CompletionEnabled {
		return Invalid(models.ReasonCompletionNotEnabled), nil
	}
	if !started(course, now) {
		return Invalid(models.ReasonNotYetStarted), nil
	}
	if course.StudentCount <= 0 {
		return Invalid(models.ReasonNoStudents), nil
	}
	if !course.HasSections {
		return Invalid(models.ReasonNoSections), nil
	}
	if course.EndDate.IsZero() {
		return Invalid(models.ReasonNoEndTime), nil
	}
	if before(course.EndDate, course.StartDate) {
		return Invalid(models.ReasonEndBeforeStart), nil
	}
	if span, _ := Window(course.StartDate, course.EndDate, now); span > limits.MaxSpan {
		return Invalid(models.ReasonCourseTooLong), nil
	}
	if mode == models.ModeTraining && finished(course, now) && !settled(course, now, limits) {
		return Invalid(models.ReasonAlreadyFinished), nil
	}
	if course.EndDate.After(now) {
		return Invalid(models.ReasonNotYetFinished), nil
	}
	return Valid, nil
}

// started is false for an unset start date.
func started(course models.CourseSnapshot, now time.Time) bool {
	return !course.StartDate.IsZero() && !course.StartDate.After(now)
}

func finished(course models.CourseSnapshot, now time.Time) bool {
	return !course.EndDate.IsZero() && before(course.EndDate, now)
}

func settled(course models.CourseSnapshot, now time.Time, limits Limits) bool {
	return atLeast(now.Sub(course.EndDate), limits.SettleMargin)
}
