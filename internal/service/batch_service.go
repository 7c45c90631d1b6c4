package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-eligibility-api/internal/dto"
	"github.com/noah-isme/course-eligibility-api/internal/models"
	appErrors "github.com/noah-isme/course-eligibility-api/pkg/errors"
	"github.com/noah-isme/course-eligibility-api/pkg/jobs"
)

const batchJobType = "eligibility_batch"

type batchEvaluator interface {
	EvaluateMany(ctx context.Context, courseIDs []string, mode models.ValidationMode) ([]dto.EligibilityReport, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// BatchService queues multi-course evaluations and tracks their progress in memory.
type BatchService struct {
	evaluator batchEvaluator
	queue     jobDispatcher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.RWMutex
	batches map[string]*models.EligibilityBatch
	results map[string][]dto.BatchCourseResult
}

// NewBatchService constructs a BatchService. A queue must be attached with UseQueue before Submit.
func NewBatchService(evaluator batchEvaluator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BatchService{
		evaluator: evaluator,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
		batches:   make(map[string]*models.EligibilityBatch),
		results:   make(map[string][]dto.BatchCourseResult),
	}
}

// UseQueue attaches the dispatcher that runs batch jobs.
func (s *BatchService) UseQueue(queue jobDispatcher) {
	s.queue = queue
}

// Submit validates the request, records a queued batch and enqueues it.
func (s *BatchService) Submit(ctx context.Context, req dto.BatchRequest, actorID string) (*models.EligibilityBatch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	mode, err := models.ParseValidationMode(req.Mode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidMode.Code, appErrors.ErrInvalidMode.Status, appErrors.ErrInvalidMode.Message)
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "batch queue not configured")
	}

	batch := &models.EligibilityBatch{
		ID:        uuid.NewString(),
		Mode:      mode,
		CourseIDs: dedupe(req.CourseIDs),
		Status:    models.BatchStatusQueued,
		CreatedBy: actorID,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.batches[batch.ID] = batch
	snapshot := *batch
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: batch.ID, Type: batchJobType}); err != nil {
		s.finish(batch.ID, nil, "failed to enqueue batch")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue batch")
	}
	s.logger.Info("eligibility batch queued", zap.String("batch_id", batch.ID), zap.Int("courses", len(batch.CourseIDs)), zap.String("mode", string(mode)))
	return &snapshot, nil
}

// Get returns a copy of the batch state with results once finished.
func (s *BatchService) Get(_ context.Context, id string) (*dto.BatchStatusResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, ok := s.batches[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
	}
	resp := &dto.BatchStatusResponse{EligibilityBatch: *batch}
	resp.CourseIDs = append([]string(nil), batch.CourseIDs...)
	if results := s.results[id]; len(results) > 0 {
		resp.Results = append([]dto.BatchCourseResult(nil), results...)
	}
	return resp, nil
}

// Handle processes a queue job. A returned error makes the queue retry the batch.
func (s *BatchService) Handle(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	batch, ok := s.batches[job.ID]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("unknown eligibility batch", zap.String("batch_id", job.ID))
		return nil
	}
	batch.Status = models.BatchStatusProcessing
	ids := append([]string(nil), batch.CourseIDs...)
	mode := batch.Mode
	s.mu.Unlock()

	start := time.Now()
	reports, err := s.evaluator.EvaluateMany(ctx, ids, mode)
	if err != nil {
		s.mu.Lock()
		batch.Status = models.BatchStatusQueued
		msg := err.Error()
		batch.ErrorMessage = &msg
		s.mu.Unlock()
		return err
	}

	results := make([]dto.BatchCourseResult, 0, len(reports))
	for _, report := range reports {
		result := dto.BatchCourseResult{
			CourseID:   report.CourseID,
			Analysable: report.Analysable,
			Reason:     report.Reason,
		}
		if report.Summary != nil {
			result.TotalSamples = report.Summary.Total
			result.ValidSamples = report.Summary.Valid
		}
		results = append(results, result)
	}
	s.finish(job.ID, results, "")
	s.metrics.ObserveBatch(time.Since(start))
	return nil
}

// MarkFailed is the queue failure hook for batches that exhausted their retries.
func (s *BatchService) MarkFailed(job jobs.Job, err error) {
	s.finish(job.ID, nil, fmt.Sprintf("batch failed after %d attempts: %v", job.Attempt, err))
}

func (s *BatchService) finish(id string, results []dto.BatchCourseResult, failure string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[id]
	if !ok {
		return
	}
	now := s.now().UTC()
	batch.FinishedAt = &now
	if failure != "" {
		batch.Status = models.BatchStatusFailed
		batch.ErrorMessage = &failure
		return
	}
	batch.Status = models.BatchStatusFinished
	batch.ErrorMessage = nil
	batch.Processed = len(results)
	batch.Analysable = 0
	for _, result := range results {
		if result.Analysable {
			batch.Analysable++
		}
	}
	s.results[id] = results
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
