package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

func TestCheckSample(t *testing.T) {
	course := models.CourseSnapshot{StartDate: fixedNow, EndDate: fixedNow.Add(8 * Week)}

	cases := []struct {
		name   string
		sample models.EnrolmentSample
		want   bool
	}{
		{
			name:   "enrolment ended before course",
			sample: models.EnrolmentSample{TimeStart: fixedNow, TimeEnd: fixedNow.Add(-Day)},
			want:   false,
		},
		{
			name:   "enrolment too long",
			sample: models.EnrolmentSample{TimeStart: fixedNow.Add(-(Year + 8*Week)), TimeEnd: fixedNow.Add(8 * Week)},
			want:   false,
		},
		{
			name:   "enrolment started after course",
			sample: models.EnrolmentSample{TimeStart: fixedNow.Add(9 * Week), TimeEnd: fixedNow.Add(10 * Week)},
			want:   false,
		},
		{
			name:   "open enrolment inside course",
			sample: models.EnrolmentSample{TimeStart: fixedNow.Add(-Day)},
			want:   true,
		},
		{
			name:   "enrolment ending exactly at course start",
			sample: models.EnrolmentSample{TimeStart: fixedNow.Add(-Week), TimeEnd: fixedNow},
			want:   true,
		},
		{
			name:   "enrolment starting exactly at course end",
			sample: models.EnrolmentSample{TimeStart: fixedNow.Add(8 * Week)},
			want:   true,
		},
		{
			name:   "creation time used when start is unset",
			sample: models.EnrolmentSample{TimeCreated: fixedNow.Add(9 * Week)},
			want:   false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CheckSample(tc.sample, course, fixedNow, DefaultLimits()))
		})
	}
}

func TestCheckSampleScenarioC(t *testing.T) {
	course := models.CourseSnapshot{StartDate: fixedNow.Add(-4 * Week), EndDate: fixedNow.Add(4 * Week)}

	endedEarly := models.EnrolmentSample{TimeStart: course.StartDate.Add(-Week), TimeEnd: course.StartDate.Add(-Day)}
	assert.False(t, CheckSample(endedEarly, course, fixedNow, DefaultLimits()))

	open := models.EnrolmentSample{TimeStart: course.EndDate.Add(-time.Hour)}
	assert.True(t, CheckSample(open, course, fixedNow, DefaultLimits()))
}

func TestCheckSampleMaxSpanBoundary(t *testing.T) {
	limits := DefaultLimits()
	course := models.CourseSnapshot{StartDate: fixedNow.Add(-Week), EndDate: fixedNow.Add(Week)}

	exact := models.EnrolmentSample{TimeStart: course.EndDate.Add(-limits.MaxSpan)}
	assert.True(t, CheckSample(exact, course, fixedNow, limits))

	exact.TimeStart = exact.TimeStart.Add(-time.Second)
	assert.False(t, CheckSample(exact, course, fixedNow, limits))
}

func TestCheckSampleOpenCourseUsesNow(t *testing.T) {
	limits := DefaultLimits()
	course := models.CourseSnapshot{StartDate: fixedNow.Add(-Week)}

	sample := models.EnrolmentSample{TimeStart: fixedNow.Add(-limits.MaxSpan)}
	assert.True(t, CheckSample(sample, course, fixedNow, limits))
	assert.False(t, CheckSample(sample, course, fixedNow.Add(time.Second), limits))
}

func TestCheckSampleMonotonicInEnd(t *testing.T) {
	course := models.CourseSnapshot{StartDate: fixedNow.Add(-8 * Week), EndDate: fixedNow.Add(8 * Week)}
	start := course.StartDate.Add(-Week)

	valid := false
	for offset := -10 * Week; offset <= 20*Week; offset += Day {
		sample := models.EnrolmentSample{TimeStart: start, TimeEnd: course.StartDate.Add(offset)}
		got := CheckSample(sample, course, fixedNow, DefaultLimits())
		if valid && sample.TimeEnd.Sub(start) <= DefaultLimits().MaxSpan {
			assert.True(t, got, "sample ending at %s became invalid", sample.TimeEnd)
		}
		valid = valid || got
	}
	assert.True(t, valid)
}
