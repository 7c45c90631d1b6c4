package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-eligibility-api/internal/models"
)

// CourseRepository loads course snapshots for the eligibility gate.
type CourseRepository struct {
	db      *sqlx.DB
	formats *FormatCatalog
}

// NewCourseRepository constructs the repository. A nil catalog uses DefaultSectionFormats.
func NewCourseRepository(db *sqlx.DB, formats *FormatCatalog) *CourseRepository {
	if formats == nil {
		formats = NewFormatCatalog(nil)
	}
	return &CourseRepository{db: db, formats: formats}
}

type courseRow struct {
	ID                string       `db:"id"`
	CompletionEnabled bool         `db:"enable_completion"`
	StartDate         sql.NullTime `db:"start_date"`
	EndDate           sql.NullTime `db:"end_date"`
	Format            string       `db:"format"`
	StudentCount      int          `db:"student_count"`
}

// FindSnapshot returns the course with its active student count. It returns
// sql.ErrNoRows when the course does not exist.
func (r *CourseRepository) FindSnapshot(ctx context.Context, id string) (*models.CourseSnapshot, error) {
	const query = `SELECT c.id, c.enable_completion, c.start_date, c.end_date, c.format,
        (SELECT COUNT(*) FROM user_enrolments ue
            WHERE ue.course_id = c.id AND ue.role = $2 AND ue.status = $3) AS student_count
        FROM courses c WHERE c.id = $1`
	var row courseRow
	if err := r.db.GetContext(ctx, &row, query, id, studentRole, enrolmentActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course snapshot: %w", err)
	}
	snapshot := &models.CourseSnapshot{
		ID:                row.ID,
		CompletionEnabled: row.CompletionEnabled,
		Format:            row.Format,
		HasSections:       r.formats.UsesSections(row.Format),
		StudentCount:      row.StudentCount,
	}
	if row.StartDate.Valid {
		snapshot.StartDate = row.StartDate.Time.UTC()
	}
	if row.EndDate.Valid {
		snapshot.EndDate = row.EndDate.Time.UTC()
	}
	return snapshot, nil
}
