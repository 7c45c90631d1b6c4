package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/noah-isme/course-eligibility-api/internal/dto"
	"github.com/noah-isme/course-eligibility-api/internal/i18n"
	"github.com/noah-isme/course-eligibility-api/internal/models"
	appErrors "github.com/noah-isme/course-eligibility-api/pkg/errors"
)

type stubReports struct {
	report *dto.EligibilityReport
	err    error
}

func (s *stubReports) Samples(context.Context, string, models.ValidationMode) (*dto.EligibilityReport, bool, error) {
	return s.report, false, s.err
}

func newTestExportService(t *testing.T, reports reportProvider) *ExportService {
	t.Helper()
	localizer, err := i18n.NewLocalizer("en")
	require.NoError(t, err)
	svc := NewExportService(reports, localizer, zap.NewNop())
	svc.now = func() time.Time { return evalNow }
	return svc
}

func TestExportServiceCSV(t *testing.T) {
	start := day(2025, time.January, 1)
	reports := &stubReports{report: &dto.EligibilityReport{
		AnalysableResponse: dto.AnalysableResponse{CourseID: "c1", Mode: models.ModeTraining, Analysable: true},
		Samples: []dto.SampleResult{
			{SampleID: "ue-1", UserID: "u-1", TimeStart: &start, Valid: true},
			{SampleID: "ue-2", UserID: "u-2", Valid: false},
		},
	}}
	svc := newTestExportService(t, reports)

	file, err := svc.Export(context.Background(), "c1", models.ModeTraining, "CSV", language.English)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "eligibility_c1_training_20261014_120000.csv", file.Filename)

	records, err := csv.NewReader(bytes.NewReader(file.Payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeaders, records[0])
	assert.Equal(t, []string{"ue-1", "u-1", "2025-01-01T00:00:00Z", "", "true"}, records[1])
	assert.Equal(t, "false", records[2][4])
}

func TestExportServiceTitleUsesLocalizedReason(t *testing.T) {
	svc := newTestExportService(t, nil)
	report := &dto.EligibilityReport{AnalysableResponse: dto.AnalysableResponse{CourseID: "c9", Mode: models.ModePrediction, Reason: models.ReasonNotYetStarted}}

	dataset := svc.buildDataset(report, language.Indonesian)
	assert.Equal(t, "Course c9 (prediction): Kursus belum dimulai", dataset.Title)
	assert.Empty(t, dataset.Rows)
}

func TestExportServiceErrors(t *testing.T) {
	svc := newTestExportService(t, &stubReports{err: appErrors.ErrNotFound})
	ctx := context.Background()

	_, err := svc.Export(ctx, "c1", models.ModeTraining, "docx", language.English)
	requireAppError(t, err, appErrors.ErrUnsupportedFormat.Code)

	_, err = svc.Export(ctx, "c1", models.ModeTraining, "pdf", language.English)
	requireAppError(t, err, appErrors.ErrNotFound.Code)
}

func TestExportServiceRendersBinaryFormats(t *testing.T) {
	reports := &stubReports{report: &dto.EligibilityReport{
		AnalysableResponse: dto.AnalysableResponse{CourseID: "c1", Mode: models.ModeTraining, Analysable: true},
		Samples:            []dto.SampleResult{{SampleID: "ue-1", Valid: true}},
	}}
	svc := newTestExportService(t, reports)

	for _, format := range []string{"pdf", "xlsx"} {
		file, err := svc.Export(context.Background(), "c1", models.ModeTraining, format, language.English)
		require.NoError(t, err, format)
		assert.NotEmpty(t, file.Payload)
		assert.Contains(t, file.Filename, "."+format)
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "na", sanitizeFilename(""))
	assert.Equal(t, "math_101-a", sanitizeFilename("math 101/a"))
}
