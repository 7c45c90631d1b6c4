package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/noah-isme/course-eligibility-api/internal/dto"
	"github.com/noah-isme/course-eligibility-api/internal/middleware"
	"github.com/noah-isme/course-eligibility-api/internal/models"
	appErrors "github.com/noah-isme/course-eligibility-api/pkg/errors"
	"github.com/noah-isme/course-eligibility-api/pkg/response"
)

type eligibilityService interface {
	Analysable(ctx context.Context, courseID string, mode models.ValidationMode) (*dto.AnalysableResponse, bool, error)
	Samples(ctx context.Context, courseID string, mode models.ValidationMode) (*dto.EligibilityReport, bool, error)
	Evaluate(ctx context.Context, req dto.EvaluateRequest) (*dto.EligibilityReport, error)
	Invalidate(ctx context.Context, courseID string) error
}

type eligibilityExporter interface {
	Export(ctx context.Context, courseID string, mode models.ValidationMode, format string, tag language.Tag) (*dto.ExportFile, error)
}

type messageLocalizer interface {
	Resolve(lang, acceptLanguage string) language.Tag
	Message(tag language.Tag, reason models.ReasonCode) string
}

// EligibilityHandler wires the eligibility gate to HTTP endpoints.
type EligibilityHandler struct {
	service   eligibilityService
	exporter  eligibilityExporter
	localizer messageLocalizer
}

// NewEligibilityHandler constructs the handler.
func NewEligibilityHandler(service eligibilityService, exporter eligibilityExporter, localizer messageLocalizer) *EligibilityHandler {
	return &EligibilityHandler{service: service, exporter: exporter, localizer: localizer}
}

// Analysable godoc
// @Summary Check whether a course can be analysed
// @Tags Eligibility
// @Produce json
// @Param id path string true "Course ID"
// @Param mode query string false "training (default) or prediction"
// @Param lang query string false "Message language (en, id)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/analysable [get]
func (h *EligibilityHandler) Analysable(c *gin.Context) {
	mode, ok := h.mode(c)
	if !ok {
		return
	}
	start := time.Now()
	resp, cacheHit, err := h.service.Analysable(c.Request.Context(), c.Param("id"), mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := *resp
	out.Message = h.localize(c, out.Reason)
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, out, middleware.ExtractMeta(c, start))
}

// Samples godoc
// @Summary Course verdict with per-enrolment sample validity
// @Tags Eligibility
// @Produce json
// @Param id path string true "Course ID"
// @Param mode query string false "training (default) or prediction"
// @Param lang query string false "Message language (en, id)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id}/samples [get]
func (h *EligibilityHandler) Samples(c *gin.Context) {
	mode, ok := h.mode(c)
	if !ok {
		return
	}
	start := time.Now()
	report, cacheHit, err := h.service.Samples(c.Request.Context(), c.Param("id"), mode)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := *report
	out.Message = h.localize(c, out.Reason)
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, out, middleware.ExtractMeta(c, start))
}

// Evaluate godoc
// @Summary Evaluate an inline course snapshot
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param payload body dto.EvaluateRequest true "Course snapshot and enrolment samples"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /eligibility/evaluate [post]
func (h *EligibilityHandler) Evaluate(c *gin.Context) {
	var req dto.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	start := time.Now()
	report, err := h.service.Evaluate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := *report
	out.Message = h.localize(c, out.Reason)
	response.JSON(c, http.StatusOK, out, middleware.ExtractMeta(c, start))
}

// Export godoc
// @Summary Download the eligibility report of a course
// @Tags Eligibility
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Course ID"
// @Param mode query string false "training (default) or prediction"
// @Param format query string false "csv (default), pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /courses/{id}/eligibility/export [get]
func (h *EligibilityHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "export not configured"))
		return
	}
	mode, ok := h.mode(c)
	if !ok {
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), c.Param("id"), mode, c.DefaultQuery("format", "csv"), h.language(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}

// InvalidateCache godoc
// @Summary Drop cached verdicts and reports of a course
// @Tags Eligibility
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id}/eligibility/cache [delete]
func (h *EligibilityHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.Invalidate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *EligibilityHandler) mode(c *gin.Context) (models.ValidationMode, bool) {
	mode, err := models.ParseValidationMode(c.Query("mode"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidMode.Code, appErrors.ErrInvalidMode.Status, appErrors.ErrInvalidMode.Message))
		return "", false
	}
	return mode, true
}

func (h *EligibilityHandler) language(c *gin.Context) language.Tag {
	if h.localizer == nil {
		return language.English
	}
	tag := h.localizer.Resolve(strings.TrimSpace(c.Query("lang")), c.GetHeader("Accept-Language"))
	middleware.SetMeta(c, middleware.MetaLocale, tag.String())
	return tag
}

func (h *EligibilityHandler) localize(c *gin.Context, reason models.ReasonCode) string {
	if reason == "" {
		return ""
	}
	tag := h.language(c)
	if h.localizer == nil {
		return string(reason)
	}
	return h.localizer.Message(tag, reason)
}
