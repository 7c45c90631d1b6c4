package models

import (
	"fmt"
	"strings"
	"time"
)

// ValidationMode selects which rule set applies to an analysable.
type ValidationMode string

const (
	ModeTraining   ValidationMode = "training"
	ModePrediction ValidationMode = "prediction"
)

// ParseValidationMode normalises a raw mode value. An empty value defaults to training.
func ParseValidationMode(raw string) (ValidationMode, error) {
	switch ValidationMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeTraining:
		return ModeTraining, nil
	case ModePrediction:
		return ModePrediction, nil
	default:
		return "", fmt.Errorf("unknown validation mode %q", raw)
	}
}

// Valid reports whether the mode is one of the known values.
func (m ValidationMode) Valid() bool {
	return m == ModeTraining || m == ModePrediction
}

// ReasonCode identifies why a course was rejected.
type ReasonCode string

const (
	ReasonCompletionNotEnabled ReasonCode = "completion_not_enabled"
	ReasonNotYetStarted        ReasonCode = "not_yet_started"
	ReasonNoStudents           ReasonCode = "no_students"
	ReasonNoSections           ReasonCode = "no_sections"
	ReasonNoEndTime            ReasonCode = "no_end_time"
	ReasonEndBeforeStart       ReasonCode = "end_before_start"
	ReasonCourseTooLong        ReasonCode = "course_too_long"
	ReasonAlreadyFinished      ReasonCode = "already_finished"
	ReasonNotYetFinished       ReasonCode = "not_yet_finished"
)

// ReasonCodes lists every rejection reason in rule priority order.
var ReasonCodes = []ReasonCode{
	ReasonCompletionNotEnabled,
	ReasonNotYetStarted,
	ReasonNoStudents,
	ReasonNoSections,
	ReasonNoEndTime,
	ReasonEndBeforeStart,
	ReasonCourseTooLong,
	ReasonAlreadyFinished,
	ReasonNotYetFinished,
}

// CourseSnapshot is the read-only view of a course taken at validation time.
// A zero StartDate or EndDate means the date is unset.
type CourseSnapshot struct {
	ID                string    `db:"id" json:"id"`
	CompletionEnabled bool      `db:"enable_completion" json:"completion_enabled"`
	StartDate         time.Time `db:"start_date" json:"start_date"`
	EndDate           time.Time `db:"end_date" json:"end_date"`
	Format            string    `db:"format" json:"format"`
	HasSections       bool      `db:"-" json:"has_sections"`
	StudentCount      int       `db:"student_count" json:"student_count"`
}

// EnrolmentSample is one user enrolment evaluated against its owning course.
// A zero TimeEnd means the enrolment is open-ended.
type EnrolmentSample struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	TimeStart   time.Time `db:"time_start" json:"time_start"`
	TimeEnd     time.Time `db:"time_end" json:"time_end"`
	TimeCreated time.Time `db:"time_created" json:"time_created"`
}

// BatchStatus captures background evaluation lifecycle states.
type BatchStatus string

const (
	BatchStatusQueued     BatchStatus = "QUEUED"
	BatchStatusProcessing BatchStatus = "PROCESSING"
	BatchStatusFinished   BatchStatus = "FINISHED"
	BatchStatusFailed     BatchStatus = "FAILED"
)

// EligibilityBatch tracks an asynchronous multi-course evaluation.
type EligibilityBatch struct {
	ID           string         `json:"id"`
	Mode         ValidationMode `json:"mode"`
	CourseIDs    []string       `json:"course_ids"`
	Status       BatchStatus    `json:"status"`
	Processed    int            `json:"processed"`
	Analysable   int            `json:"analysable"`
	CreatedBy    string         `json:"created_by,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
	ErrorMessage *string        `json:"error_message,omitempty"`
}
