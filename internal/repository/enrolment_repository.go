package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

const (
	studentRole     = "student"
	enrolmentActive = "ACTIVE"
)

// EnrolmentRepository enumerates the student enrolments of a course.
type EnrolmentRepository struct {
	db *sqlx.DB
}

// NewEnrolmentRepository constructs the repository.
func NewEnrolmentRepository(db *sqlx.DB) *EnrolmentRepository {
	return &EnrolmentRepository{db: db}
}

type enrolmentRow struct {
	ID          string       `db:"id"`
	CourseID    string       `db:"course_id"`
	UserID      string       `db:"user_id"`
	TimeStart   sql.NullTime `db:"time_start"`
	TimeEnd     sql.NullTime `db:"time_end"`
	TimeCreated sql.NullTime `db:"time_created"`
}

// Enumerate returns the active student enrolments of a course keyed by enrolment id.
func (r *EnrolmentRepository) Enumerate(ctx context.Context, courseID string) (map[string]models.EnrolmentSample, error) {
	const query = `SELECT id, course_id, user_id, time_start, time_end, time_created
        FROM user_enrolments WHERE course_id = $1 AND role = $2 AND status = $3`
	var rows []enrolmentRow
	if err := r.db.SelectContext(ctx, &rows, query, courseID, studentRole, enrolmentActive); err != nil {
		return nil, fmt.Errorf("enumerate course enrolments: %w", err)
	}
	samples := make(map[string]models.EnrolmentSample, len(rows))
	for _, row := range rows {
		samples[row.ID] = models.EnrolmentSample{
			ID:          row.ID,
			CourseID:    row.CourseID,
			UserID:      row.UserID,
			TimeStart:   nullTime(row.TimeStart),
			TimeEnd:     nullTime(row.TimeEnd),
			TimeCreated: nullTime(row.TimeCreated),
		}
	}
	return samples, nil
}

func nullTime(t sql.NullTime) (out time.Time) {
	if t.Valid {
		out = t.Time.UTC()
	}
	return out
}
