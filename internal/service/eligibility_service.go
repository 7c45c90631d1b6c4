package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/course-eligibility-api/internal/dto"
	"github.com/noah-isme/course-eligibility-api/internal/eligibility"
	"github.com/noah-isme/course-eligibility-api/internal/models"
	appErrors "github.com/noah-isme/course-eligibility-api/pkg/errors"
)

type courseSnapshotReader interface {
	FindSnapshot(ctx context.Context, id string) (*models.CourseSnapshot, error)
}

type sectionFormats interface {
	UsesSections(format string) bool
}

// EligibilityServiceConfig tunes the gate and its caching.
type EligibilityServiceConfig struct {
	Limits         eligibility.Limits
	CacheTTL       time.Duration
	MaxConcurrency int
}

// EligibilityServiceParams groups constructor dependencies.
type EligibilityServiceParams struct {
	Courses   courseSnapshotReader
	Samples   eligibility.SampleEnumerator
	Formats   sectionFormats
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    EligibilityServiceConfig
}

// EligibilityService evaluates stored and inline courses against the completion gate.
type EligibilityService struct {
	courses   courseSnapshotReader
	samples   eligibility.SampleEnumerator
	formats   sectionFormats
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cfg       EligibilityServiceConfig
}

// NewEligibilityService constructs an EligibilityService with sane defaults.
func NewEligibilityService(params EligibilityServiceParams) *EligibilityService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &EligibilityService{
		courses:   params.Courses,
		samples:   params.Samples,
		formats:   params.Formats,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// Limits returns the gate limits in effect.
func (s *EligibilityService) Limits() eligibility.Limits {
	return eligibility.NewTarget(s.cfg.Limits, nil).Limits()
}

// Analysable runs the course gate for a stored course and indicates cache utilisation.
func (s *EligibilityService) Analysable(ctx context.Context, courseID string, mode models.ValidationMode) (*dto.AnalysableResponse, bool, error) {
	if err := validateCourseRequest(courseID, mode); err != nil {
		return nil, false, err
	}
	key := courseCacheKey(courseID, mode, "analysable")
	var cached dto.AnalysableResponse
	if hit := s.tryCache(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	target := s.newTarget()
	resp, _, err := s.analyse(target, *course, mode)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, key, resp)
	return resp, false, nil
}

// Samples runs the course gate and, for analysable courses, the sample gate over
// every active student enrolment.
func (s *EligibilityService) Samples(ctx context.Context, courseID string, mode models.ValidationMode) (*dto.EligibilityReport, bool, error) {
	if err := validateCourseRequest(courseID, mode); err != nil {
		return nil, false, err
	}
	key := courseCacheKey(courseID, mode, "report")
	var cached dto.EligibilityReport
	if hit := s.tryCache(ctx, key, &cached); hit {
		return &cached, true, nil
	}

	report, err := s.buildReport(ctx, courseID, mode)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, key, report)
	return report, false, nil
}

// Evaluate runs both gates over an inline snapshot. Nothing is read from or written to storage.
func (s *EligibilityService) Evaluate(ctx context.Context, req dto.EvaluateRequest) (*dto.EligibilityReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluate payload")
	}
	mode, err := models.ParseValidationMode(req.Mode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidMode.Code, appErrors.ErrInvalidMode.Status, appErrors.ErrInvalidMode.Message)
	}

	at := s.now()
	if req.Now != nil {
		at = *req.Now
	}

	course := s.courseFromInput(req.Course)
	data := make(map[string]models.EnrolmentSample, len(req.Samples))
	for _, in := range req.Samples {
		if _, dup := data[in.ID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate sample id %s", in.ID))
		}
		data[in.ID] = sampleFromInput(course.ID, in)
	}

	target := eligibility.NewTarget(s.cfg.Limits, fixedClock(at))
	target.AddSampleData(data)
	return s.evaluateTarget(ctx, target, course, mode, eligibility.SortedIDs(data), data)
}

// EvaluateMany builds reports for several stored courses concurrently. Results
// keep the order of courseIDs. The first failure cancels the remaining work.
func (s *EligibilityService) EvaluateMany(ctx context.Context, courseIDs []string, mode models.ValidationMode) ([]dto.EligibilityReport, error) {
	reports := make([]dto.EligibilityReport, len(courseIDs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.MaxConcurrency)
	for i, id := range courseIDs {
		i, id := i, id
		group.Go(func() error {
			report, _, err := s.Samples(groupCtx, id, mode)
			if err != nil {
				return fmt.Errorf("course %s: %w", id, err)
			}
			reports[i] = *report
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Invalidate drops every cached verdict and report for a course.
func (s *EligibilityService) Invalidate(ctx context.Context, courseID string) error {
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Invalidate(ctx, courseCachePattern(courseID)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "failed to invalidate cache")
	}
	s.logger.Info("eligibility cache invalidated", zap.String("course_id", courseID))
	return nil
}

func (s *EligibilityService) buildReport(ctx context.Context, courseID string, mode models.ValidationMode) (*dto.EligibilityReport, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	target := s.newTarget()

	verdict, err := target.EvaluateAnalysable(*course, mode)
	if err != nil {
		return nil, mapEligibilityError(err)
	}
	if !verdict.OK() {
		return s.evaluateTarget(ctx, target, *course, mode, nil, nil)
	}

	if s.samples == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "enrolment source not configured")
	}
	data, err := s.samples.Enumerate(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolments")
	}
	target.AddSampleData(data)
	return s.evaluateTarget(ctx, target, *course, mode, eligibility.SortedIDs(data), data)
}

// evaluateTarget assembles a report from a target whose samples are already loaded.
func (s *EligibilityService) evaluateTarget(ctx context.Context, target *eligibility.Target, course models.CourseSnapshot, mode models.ValidationMode, ids []string, data map[string]models.EnrolmentSample) (*dto.EligibilityReport, error) {
	resp, verdict, err := s.analyse(target, course, mode)
	if err != nil {
		return nil, err
	}
	report := &dto.EligibilityReport{AnalysableResponse: *resp, Samples: []dto.SampleResult{}}
	if !verdict.OK() {
		return report, nil
	}

	spans := make([]float64, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		valid, err := target.EvaluateSample(id, course)
		if err != nil {
			return nil, mapEligibilityError(err)
		}
		sample := data[id]
		report.Samples = append(report.Samples, dto.SampleResult{
			SampleID:  id,
			UserID:    sample.UserID,
			TimeStart: optionalTime(sample.TimeStart),
			TimeEnd:   optionalTime(sample.TimeEnd),
			Valid:     valid,
		})
		if valid {
			span := eligibility.EnrolmentSpan(sample, course, resp.EvaluatedAt)
			spans = append(spans, span.Hours()/24)
		}
	}
	report.Summary = summarise(len(ids), spans)
	s.metrics.RecordSamples(report.Summary.Valid, report.Summary.Invalid)
	return report, nil
}

func (s *EligibilityService) analyse(target *eligibility.Target, course models.CourseSnapshot, mode models.ValidationMode) (*dto.AnalysableResponse, eligibility.Verdict, error) {
	verdict, err := target.EvaluateAnalysable(course, mode)
	if err != nil {
		return nil, verdict, mapEligibilityError(err)
	}
	s.metrics.RecordVerdict(mode, verdict.String())
	if !verdict.OK() {
		s.logger.Debug("course rejected", zap.String("course_id", course.ID), zap.String("mode", string(mode)), zap.String("reason", string(verdict.Reason)))
	}
	return &dto.AnalysableResponse{
		CourseID:    course.ID,
		Mode:        mode,
		Analysable:  verdict.OK(),
		Reason:      verdict.Reason,
		EvaluatedAt: target.Now().UTC(),
	}, verdict, nil
}

// newTarget pins the clock so every rule in one evaluation sees the same instant.
func (s *EligibilityService) newTarget() *eligibility.Target {
	return eligibility.NewTarget(s.cfg.Limits, fixedClock(s.now()))
}

func fixedClock(at time.Time) func() time.Time {
	at = at.UTC()
	return func() time.Time { return at }
}

func (s *EligibilityService) loadCourse(ctx context.Context, courseID string) (*models.CourseSnapshot, error) {
	if s.courses == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "course source not configured")
	}
	start := time.Now()
	course, err := s.courses.FindSnapshot(ctx, courseID)
	s.metrics.ObserveDBQuery("course_snapshot", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (s *EligibilityService) courseFromInput(in dto.CourseInput) models.CourseSnapshot {
	course := models.CourseSnapshot{
		ID:                in.ID,
		CompletionEnabled: in.CompletionEnabled,
		StartDate:         derefTime(in.StartDate),
		EndDate:           derefTime(in.EndDate),
		Format:            in.Format,
		StudentCount:      in.StudentCount,
	}
	switch {
	case in.HasSections != nil:
		course.HasSections = *in.HasSections
	case s.formats != nil:
		course.HasSections = s.formats.UsesSections(in.Format)
	}
	return course
}

func (s *EligibilityService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		return false
	}
	return hit
}

func (s *EligibilityService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("eligibility cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func validateCourseRequest(courseID string, mode models.ValidationMode) error {
	if courseID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "course id is required")
	}
	if !mode.Valid() {
		return appErrors.ErrInvalidMode
	}
	return nil
}

func mapEligibilityError(err error) error {
	switch {
	case errors.Is(err, eligibility.ErrInvalidMode):
		return appErrors.Wrap(err, appErrors.ErrInvalidMode.Code, appErrors.ErrInvalidMode.Status, appErrors.ErrInvalidMode.Message)
	case errors.Is(err, eligibility.ErrMissingSampleData):
		return appErrors.Wrap(err, appErrors.ErrMissingSampleData.Code, appErrors.ErrMissingSampleData.Status, appErrors.ErrMissingSampleData.Message)
	default:
		return appErrors.FromError(err)
	}
}

// summarise aggregates sample outcomes. spans holds enrolment days of valid samples.
func summarise(total int, spans []float64) *dto.SampleSummary {
	summary := &dto.SampleSummary{Total: total, Valid: len(spans), Invalid: total - len(spans)}
	if total > 0 {
		summary.ValidRatio = float64(summary.Valid) / float64(total)
	}
	if len(spans) == 0 {
		return summary
	}
	data := stats.Float64Data(spans)
	if mean, err := data.Mean(); err == nil {
		summary.MeanEnrolmentDays = roundDays(mean)
	}
	if median, err := data.Median(); err == nil {
		summary.MedianEnrolmentDays = roundDays(median)
	}
	if max, err := data.Max(); err == nil {
		summary.MaxEnrolmentDays = roundDays(max)
	}
	return summary
}

func roundDays(v float64) float64 {
	rounded, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return rounded
}

func sampleFromInput(courseID string, in dto.SampleInput) models.EnrolmentSample {
	return models.EnrolmentSample{
		ID:          in.ID,
		CourseID:    courseID,
		UserID:      in.UserID,
		TimeStart:   derefTime(in.TimeStart),
		TimeEnd:     derefTime(in.TimeEnd),
		TimeCreated: derefTime(in.TimeCreated),
	}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
