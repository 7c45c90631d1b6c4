package eligibility

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

// SampleEnumerator produces the enrolment samples that belong to a course, keyed by sample id.
type SampleEnumerator interface {
	Enumerate(ctx context.Context, courseID string) (map[string]models.EnrolmentSample, error)
}

// Target is the course completion target. It composes the course gate and the
// sample gate and holds the sample data loaded for one evaluation batch.
//
// AddSampleData must complete before any EvaluateSample call. After loading the
// map is only read, so concurrent EvaluateSample calls need no locking.
type Target struct {
	limits  Limits
	clock   func() time.Time
	samples map[string]models.EnrolmentSample
}

// NewTarget builds a target. A nil clock uses time.Now.
func NewTarget(limits Limits, clock func() time.Time) *Target {
	if clock == nil {
		clock = time.Now
	}
	return &Target{limits: limits.withDefaults(), clock: clock}
}

// Limits returns the limits in effect.
func (t *Target) Limits() Limits {
	return t.limits
}

// Now returns the evaluation time.
func (t *Target) Now() time.Time {
	return t.clock()
}

// AddSampleData bulk-loads sample data. Later loads overwrite ids already present.
func (t *Target) AddSampleData(data map[string]models.EnrolmentSample) {
	if t.samples == nil {
		t.samples = make(map[string]models.EnrolmentSample, len(data))
	}
	for id, sample := range data {
		t.samples[id] = sample
	}
}

// EvaluateAnalysable runs the course gate against the current time.
func (t *Target) EvaluateAnalysable(course models.CourseSnapshot, mode models.ValidationMode) (Verdict, error) {
	return CheckCourse(course, mode, t.clock(), t.limits)
}

// EvaluateSample runs the sample gate for a previously loaded sample.
func (t *Target) EvaluateSample(sampleID string, course models.CourseSnapshot) (bool, error) {
	sample, ok := t.samples[sampleID]
	if !ok {
		return false, fmt.Errorf("%w: sample %q", ErrMissingSampleData, sampleID)
	}
	return CheckSample(sample, course, t.clock(), t.limits), nil
}

// Load replaces the sample data with what the enumerator returns for the course.
func (t *Target) Load(ctx context.Context, enumerator SampleEnumerator, courseID string) ([]string, error) {
	data, err := enumerator.Enumerate(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("enumerate samples for course %s: %w", courseID, err)
	}
	t.samples = nil
	t.AddSampleData(data)
	return SortedIDs(data), nil
}

// SortedIDs returns the sample ids of data in ascending order.
func SortedIDs(data map[string]models.EnrolmentSample) []string {
	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
