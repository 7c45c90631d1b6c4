package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

var fixedNow = time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// runnableCourse ended well in the past and passes every rule in both modes.
func runnableCourse() models.CourseSnapshot {
	return models.CourseSnapshot{
		ID:                "course-1",
		CompletionEnabled: true,
		StartDate:         date(2024, time.October, 24),
		EndDate:           date(2025, time.October, 13),
		Format:            "topics",
		HasSections:       true,
		StudentCount:      1,
	}
}

func TestCheckCourseRules(t *testing.T) {
	year := fixedNow.Year()
	month := fixedNow.Month()

	cases := []struct {
		name   string
		mutate func(c *models.CourseSnapshot)
		mode   models.ValidationMode
		want   Verdict
	}{
		{
			name: "course not yet started",
			mutate: func(c *models.CourseSnapshot) {
				c.StartDate = date(year+1, time.October, 24)
				c.EndDate = time.Time{}
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonNotYetStarted),
		},
		{
			name: "course with unset start",
			mutate: func(c *models.CourseSnapshot) {
				c.StartDate = time.Time{}
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonNotYetStarted),
		},
		{
			name: "course without students",
			mutate: func(c *models.CourseSnapshot) {
				c.StartDate = date(year-2, time.October, 24)
				c.EndDate = date(year-1, time.October, 24)
				c.StudentCount = 0
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonNoStudents),
		},
		{
			name: "course format without sections",
			mutate: func(c *models.CourseSnapshot) {
				c.Format = "social"
				c.HasSections = false
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonNoSections),
		},
		{
			name: "course without end date",
			mutate: func(c *models.CourseSnapshot) {
				c.EndDate = time.Time{}
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonNoEndTime),
		},
		{
			name: "course ends before it starts",
			mutate: func(c *models.CourseSnapshot) {
				c.StartDate = date(year, month, 1)
				c.EndDate = date(year-2, time.October, 23)
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonEndBeforeStart),
		},
		{
			name: "course too long",
			mutate: func(c *models.CourseSnapshot) {
				c.StartDate = date(year-2, time.October, 24)
				c.EndDate = date(year, time.October, 13)
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonCourseTooLong),
		},
		{
			name: "course ended yesterday is not settled for training",
			mutate: func(c *models.CourseSnapshot) {
				c.StartDate = date(year, time.June, 1)
				c.EndDate = fixedNow.Add(-Day)
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonAlreadyFinished),
		},
		{
			name: "course ended yesterday is fine for prediction",
			mutate: func(c *models.CourseSnapshot) {
				c.StartDate = date(year, time.June, 1)
				c.EndDate = fixedNow.Add(-Day)
			},
			mode: models.ModePrediction,
			want: Valid,
		},
		{
			name: "course still running",
			mutate: func(c *models.CourseSnapshot) {
				c.StartDate = date(year, month-1, 24)
				c.EndDate = date(year, month+2, 23)
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonNotYetFinished),
		},
		{
			name: "completion disabled",
			mutate: func(c *models.CourseSnapshot) {
				c.CompletionEnabled = false
				c.StartDate = date(year, month-2, 24)
				c.EndDate = date(year, month-1, 23)
			},
			mode: models.ModeTraining,
			want: Invalid(models.ReasonCompletionNotEnabled),
		},
		{
			name: "finished course old enough for training",
			mode: models.ModeTraining,
			want: Valid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			course := runnableCourse()
			if tc.mutate != nil {
				tc.mutate(&course)
			}
			got, err := CheckCourse(course, tc.mode, fixedNow, DefaultLimits())
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCheckCourseCompletionDisabledWins(t *testing.T) {
	broken := []models.CourseSnapshot{
		{},
		{StartDate: fixedNow.Add(Year)},
		{StartDate: date(2020, time.January, 1), EndDate: date(2019, time.January, 1), StudentCount: 3, HasSections: true},
		runnableCourse(),
	}
	for _, course := range broken {
		course.CompletionEnabled = false
		for _, mode := range []models.ValidationMode{models.ModeTraining, models.ModePrediction} {
			got, err := CheckCourse(course, mode, fixedNow, DefaultLimits())
			require.NoError(t, err)
			assert.Equal(t, Invalid(models.ReasonCompletionNotEnabled), got)
		}
	}
}

func TestCheckCourseFutureStartIgnoresEnd(t *testing.T) {
	for _, end := range []time.Time{{}, fixedNow.Add(-Year), fixedNow.Add(2 * Year)} {
		course := runnableCourse()
		course.StartDate = fixedNow.Add(time.Second)
		course.EndDate = end
		got, err := CheckCourse(course, models.ModeTraining, fixedNow, DefaultLimits())
		require.NoError(t, err)
		assert.Equal(t, Invalid(models.ReasonNotYetStarted), got)
	}
}

func TestCheckCourseStudentsBeforeSections(t *testing.T) {
	course := runnableCourse()
	course.StudentCount = 0
	course.HasSections = false

	got, err := CheckCourse(course, models.ModeTraining, fixedNow, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, Invalid(models.ReasonNoStudents), got)
}

func TestCheckCourseNoStudentsBeforeUnsetEnd(t *testing.T) {
	course := models.CourseSnapshot{
		CompletionEnabled: true,
		StartDate:         fixedNow.AddDate(-1, 0, 0),
		Format:            "topics",
		HasSections:       true,
	}

	got, err := CheckCourse(course, models.ModeTraining, fixedNow, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, Invalid(models.ReasonNoStudents), got)
}

func TestCheckCourseMaxSpanBoundary(t *testing.T) {
	limits := DefaultLimits()
	course := runnableCourse()
	course.EndDate = fixedNow.Add(-2 * Week)
	course.StartDate = course.EndDate.Add(-limits.MaxSpan)

	got, err := CheckCourse(course, models.ModeTraining, fixedNow, limits)
	require.NoError(t, err)
	assert.True(t, got.OK(), "exact max span must be accepted, got %s", got)

	course.StartDate = course.StartDate.Add(-time.Second)
	got, err = CheckCourse(course, models.ModeTraining, fixedNow, limits)
	require.NoError(t, err)
	assert.Equal(t, Invalid(models.ReasonCourseTooLong), got)
}

func TestCheckCourseSettleMarginBoundary(t *testing.T) {
	limits := Limits{MaxSpan: Year + 8*Week, SettleMargin: 30 * Day}
	course := runnableCourse()
	course.StartDate = fixedNow.Add(-200 * Day)

	course.EndDate = fixedNow.Add(-limits.SettleMargin)
	got, err := CheckCourse(course, models.ModeTraining, fixedNow, limits)
	require.NoError(t, err)
	assert.True(t, got.OK(), "course closed exactly one margin ago is settled, got %s", got)

	course.EndDate = course.EndDate.Add(time.Second)
	got, err = CheckCourse(course, models.ModeTraining, fixedNow, limits)
	require.NoError(t, err)
	assert.Equal(t, Invalid(models.ReasonAlreadyFinished), got)

	got, err = CheckCourse(course, models.ModePrediction, fixedNow, limits)
	require.NoError(t, err)
	assert.True(t, got.OK())
}

func TestCheckCourseEndingNowIsFinished(t *testing.T) {
	course := runnableCourse()
	course.StartDate = fixedNow.Add(-100 * Day)
	course.EndDate = fixedNow

	got, err := CheckCourse(course, models.ModeTraining, fixedNow, DefaultLimits())
	require.NoError(t, err)
	assert.True(t, got.OK())
}

func TestCheckCourseScenarioB(t *testing.T) {
	course := runnableCourse()
	course.StartDate = fixedNow.AddDate(-2, 0, 0)
	course.EndDate = fixedNow.Add(-(Year + Day))

	got, err := CheckCourse(course, models.ModeTraining, fixedNow, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, Valid, got)

	running := runnableCourse()
	running.StartDate = fixedNow.Add(-30 * Day)
	running.EndDate = fixedNow.Add(30 * Day)
	got, err = CheckCourse(running, models.ModePrediction, fixedNow, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, Invalid(models.ReasonNotYetFinished), got)
}

func TestCheckCourseInvalidMode(t *testing.T) {
	_, err := CheckCourse(runnableCourse(), models.ValidationMode("scoring"), fixedNow, DefaultLimits())
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestCheckCourseIsIdempotent(t *testing.T) {
	course := runnableCourse()
	course.EndDate = fixedNow.Add(-Day)
	first, err := CheckCourse(course, models.ModeTraining, fixedNow, DefaultLimits())
	require.NoError(t, err)
	second, err := CheckCourse(course, models.ModeTraining, fixedNow, DefaultLimits())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
