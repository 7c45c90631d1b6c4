package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/noah-isme/course-eligibility-api/internal/dto"
	"github.com/noah-isme/course-eligibility-api/internal/models"
	appErrors "github.com/noah-isme/course-eligibility-api/pkg/errors"
	"github.com/noah-isme/course-eligibility-api/pkg/export"
)

var exportHeaders = []string{"sample_id", "user_id", "time_start", "time_end", "valid"}

type reportProvider interface {
	Samples(ctx context.Context, courseID string, mode models.ValidationMode) (*dto.EligibilityReport, bool, error)
}

type reasonMessages interface {
	Message(tag language.Tag, reason models.ReasonCode) string
}

// ExportService renders eligibility reports as downloadable files.
type ExportService struct {
	reports  reportProvider
	messages reasonMessages
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(reports reportProvider, messages reasonMessages, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{reports: reports, messages: messages, logger: logger, now: time.Now}
}

// Export renders the report of a stored course in format (csv, pdf or xlsx).
func (s *ExportService) Export(ctx context.Context, courseID string, mode models.ValidationMode, format string, tag language.Tag) (*dto.ExportFile, error) {
	exporter, err := export.ForFormat(strings.ToLower(format))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, appErrors.ErrUnsupportedFormat.Message)
	}
	report, _, err := s.reports.Samples(ctx, courseID, mode)
	if err != nil {
		return nil, err
	}

	payload, err := exporter.Render(s.buildDataset(report, tag))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Debug("eligibility export rendered",
		zap.String("course_id", courseID),
		zap.String("format", exporter.Extension()),
		zap.Int("rows", len(report.Samples)),
	)
	return &dto.ExportFile{
		Filename:    s.buildFilename(courseID, mode, exporter.Extension()),
		ContentType: exporter.ContentType(),
		Payload:     payload,
	}, nil
}

func (s *ExportService) buildDataset(report *dto.EligibilityReport, tag language.Tag) export.Dataset {
	verdict := "analysable"
	if !report.Analysable {
		verdict = string(report.Reason)
		if s.messages != nil {
			if msg := s.messages.Message(tag, report.Reason); msg != "" {
				verdict = msg
			}
		}
	}

	rows := make([]map[string]string, 0, len(report.Samples))
	for _, sample := range report.Samples {
		rows = append(rows, map[string]string{
			"sample_id":  sample.SampleID,
			"user_id":    sample.UserID,
			"time_start": formatOptionalTime(sample.TimeStart),
			"time_end":   formatOptionalTime(sample.TimeEnd),
			"valid":      strconv.FormatBool(sample.Valid),
		})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Course %s (%s): %s", report.CourseID, report.Mode, verdict),
		Headers: exportHeaders,
		Rows:    rows,
	}
}

func (s *ExportService) buildFilename(courseID string, mode models.ValidationMode, ext string) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("eligibility_%s_%s_%s.%s", sanitizeFilename(courseID), mode, timestamp, ext)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
