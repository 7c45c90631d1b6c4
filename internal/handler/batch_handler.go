package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-eligibility-api/internal/dto"
	"github.com/noah-isme/course-eligibility-api/internal/middleware"
	"github.com/noah-isme/course-eligibility-api/internal/models"
	appErrors "github.com/noah-isme/course-eligibility-api/pkg/errors"
	"github.com/noah-isme/course-eligibility-api/pkg/response"
)

type batchService interface {
	Submit(ctx context.Context, req dto.BatchRequest, actorID string) (*models.EligibilityBatch, error)
	Get(ctx context.Context, id string) (*dto.BatchStatusResponse, error)
}

// BatchHandler exposes asynchronous multi-course evaluation.
type BatchHandler struct {
	service   batchService
	localizer messageLocalizer
}

// NewBatchHandler constructs a batch handler.
func NewBatchHandler(service batchService, localizer messageLocalizer) *BatchHandler {
	return &BatchHandler{service: service, localizer: localizer}
}

// Submit godoc
// @Summary Queue evaluation of several courses
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param payload body dto.BatchRequest true "Courses to evaluate"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /eligibility/batches [post]
func (h *BatchHandler) Submit(c *gin.Context) {
	var req dto.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	actorID := ""
	if claims := middleware.ClaimsFromContext(c); claims != nil {
		actorID = claims.UserID
	}
	batch, err := h.service.Submit(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, batch)
}

// Status godoc
// @Summary Batch progress and results
// @Tags Eligibility
// @Produce json
// @Param id path string true "Batch ID"
// @Param lang query string false "Message language (en, id)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /eligibility/batches/{id} [get]
func (h *BatchHandler) Status(c *gin.Context) {
	status, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.localizer != nil && len(status.Results) > 0 {
		tag := h.localizer.Resolve(c.Query("lang"), c.GetHeader("Accept-Language"))
		for i := range status.Results {
			status.Results[i].Message = h.localizer.Message(tag, status.Results[i].Reason)
		}
	}
	response.JSON(c, http.StatusOK, status)
}
