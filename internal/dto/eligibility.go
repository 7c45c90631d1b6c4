package dto

import (
	"time"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

// AnalysableResponse is the course gate outcome for one course and mode.
type AnalysableResponse struct {
	CourseID    string                `json:"course_id"`
	Mode        models.ValidationMode `json:"mode"`
	Analysable  bool                  `json:"analysable"`
	Reason      models.ReasonCode     `json:"reason,omitempty"`
	Message     string                `json:"message,omitempty"`
	EvaluatedAt time.Time             `json:"evaluated_at"`
}

// SampleResult is the sample gate outcome for one enrolment.
type SampleResult struct {
	SampleID  string     `json:"sample_id"`
	UserID    string     `json:"user_id,omitempty"`
	TimeStart *time.Time `json:"time_start,omitempty"`
	TimeEnd   *time.Time `json:"time_end,omitempty"`
	Valid     bool       `json:"valid"`
}

// SampleSummary aggregates the sample results of a report. Enrolment days are
// computed over valid samples only.
type SampleSummary struct {
	Total               int     `json:"total"`
	Valid               int     `json:"valid"`
	Invalid             int     `json:"invalid"`
	ValidRatio          float64 `json:"valid_ratio"`
	MeanEnrolmentDays   float64 `json:"mean_enrolment_days"`
	MedianEnrolmentDays float64 `json:"median_enrolment_days"`
	MaxEnrolmentDays    float64 `json:"max_enrolment_days"`
}

// EligibilityReport combines the course verdict with per-sample results.
// Samples are only evaluated when the course is analysable.
type EligibilityReport struct {
	AnalysableResponse
	Samples []SampleResult `json:"samples"`
	Summary *SampleSummary `json:"summary,omitempty"`
}

// CourseInput is an inline course snapshot.
type CourseInput struct {
	ID                string     `json:"id" validate:"required"`
	CompletionEnabled bool       `json:"completion_enabled"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Format            string     `json:"format" validate:"required"`
	HasSections       *bool      `json:"has_sections"`
	StudentCount      int        `json:"student_count" validate:"gte=0"`
}

// SampleInput is an inline enrolment sample.
type SampleInput struct {
	ID          string     `json:"id" validate:"required"`
	UserID      string     `json:"user_id"`
	TimeStart   *time.Time `json:"time_start"`
	TimeEnd     *time.Time `json:"time_end"`
	TimeCreated *time.Time `json:"time_created"`
}

// EvaluateRequest evaluates a snapshot that is not stored in the database.
// When Now is omitted the server clock is used.
type EvaluateRequest struct {
	Mode    string        `json:"mode" validate:"omitempty,oneof=training prediction"`
	Now     *time.Time    `json:"now"`
	Course  CourseInput   `json:"course" validate:"required"`
	Samples []SampleInput `json:"samples" validate:"omitempty,max=5000,dive"`
}

// BatchRequest queues evaluation of several stored courses.
type BatchRequest struct {
	Mode      string   `json:"mode" validate:"omitempty,oneof=training prediction"`
	CourseIDs []string `json:"course_ids" validate:"required,min=1,max=500,dive,required"`
}

// ExportFile is a rendered eligibility export.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// BatchCourseResult is the condensed outcome for one course of a batch.
type BatchCourseResult struct {
	CourseID     string            `json:"course_id"`
	Analysable   bool              `json:"analysable"`
	Reason       models.ReasonCode `json:"reason,omitempty"`
	Message      string            `json:"message,omitempty"`
	TotalSamples int               `json:"total_samples"`
	ValidSamples int               `json:"valid_samples"`
}

// BatchStatusResponse exposes batch progress and, once finished, its results.
type BatchStatusResponse struct {
	models.EligibilityBatch
	Results []BatchCourseResult `json:"results,omitempty"`
}
