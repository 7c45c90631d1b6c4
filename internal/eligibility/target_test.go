package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

type stubEnumerator struct {
	samples map[string]models.EnrolmentSample
	err     error
	calls   int
}

func (s *stubEnumerator) Enumerate(_ context.Context, _ string) (map[string]models.EnrolmentSample, error) {
	s.calls++
	return s.samples, s.err
}

func fixedClock() func() time.Time {
	return func() time.Time { return fixedNow }
}

func TestTargetEvaluateAnalysableUsesClock(t *testing.T) {
	target := NewTarget(DefaultLimits(), fixedClock())

	course := runnableCourse()
	course.StartDate = fixedNow.Add(-Week)
	course.EndDate = fixedNow.Add(time.Second)

	got, err := target.EvaluateAnalysable(course, models.ModeTraining)
	require.NoError(t, err)
	assert.Equal(t, Invalid(models.ReasonNotYetFinished), got)
}

func TestTargetEvaluateSample(t *testing.T) {
	target := NewTarget(DefaultLimits(), fixedClock())
	course := models.CourseSnapshot{StartDate: fixedNow, EndDate: fixedNow.Add(8 * Week)}

	target.AddSampleData(map[string]models.EnrolmentSample{
		"ue-1": {ID: "ue-1", TimeStart: fixedNow, TimeEnd: fixedNow.Add(-Day)},
		"ue-2": {ID: "ue-2", TimeStart: fixedNow},
	})

	ok, err := target.EvaluateSample("ue-1", course)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = target.EvaluateSample("ue-2", course)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTargetEvaluateSampleMissingData(t *testing.T) {
	target := NewTarget(DefaultLimits(), fixedClock())

	_, err := target.EvaluateSample("ue-404", runnableCourse())
	assert.ErrorIs(t, err, ErrMissingSampleData)

	target.AddSampleData(map[string]models.EnrolmentSample{"ue-1": {TimeStart: fixedNow}})
	_, err = target.EvaluateSample("ue-404", runnableCourse())
	assert.ErrorIs(t, err, ErrMissingSampleData)
}

func TestTargetLoadReplacesSamples(t *testing.T) {
	target := NewTarget(DefaultLimits(), fixedClock())
	target.AddSampleData(map[string]models.EnrolmentSample{"stale": {TimeStart: fixedNow}})

	enumerator := &stubEnumerator{samples: map[string]models.EnrolmentSample{
		"ue-2": {TimeStart: fixedNow},
		"ue-1": {TimeStart: fixedNow},
	}}
	ids, err := target.Load(context.Background(), enumerator, "course-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ue-1", "ue-2"}, ids)
	assert.Equal(t, 1, enumerator.calls)

	_, err = target.EvaluateSample("stale", runnableCourse())
	assert.ErrorIs(t, err, ErrMissingSampleData)
}

func TestTargetLoadPropagatesEnumeratorError(t *testing.T) {
	target := NewTarget(DefaultLimits(), fixedClock())
	_, err := target.Load(context.Background(), &stubEnumerator{err: assert.AnError}, "course-1")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewTargetFillsLimits(t *testing.T) {
	target := NewTarget(Limits{}, nil)
	assert.Equal(t, DefaultLimits().MaxSpan, target.Limits().MaxSpan)
	assert.Equal(t, time.Duration(0), target.Limits().SettleMargin)
}

func TestTargetNowUsesClock(t *testing.T) {
	target := NewTarget(DefaultLimits(), fixedClock())
	assert.Equal(t, fixedNow, target.Now())
}
