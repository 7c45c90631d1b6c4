package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-eligibility-api/internal/middleware"
	"github.com/noah-isme/course-eligibility-api/internal/models"
)

// Routes bundles the handlers mounted under the API prefix.
type Routes struct {
	Eligibility *EligibilityHandler
	Batches     *BatchHandler
	Metrics     *MetricsHandler
	Tokens      middleware.TokenValidator
	Logger      *zap.Logger
}

// Register mounts every authenticated eligibility route on group.
func (r Routes) Register(group *gin.RouterGroup) {
	readers := []models.UserRole{models.RoleAdmin, models.RoleAnalyst, models.RoleService}

	secured := group.Group("")
	secured.Use(middleware.JWT(r.Tokens))

	courses := secured.Group("/courses/:id")
	courses.Use(middleware.RequireRoles(readers...))
	courses.GET("/analysable", r.Eligibility.Analysable)
	courses.GET("/samples", r.Eligibility.Samples)
	courses.GET("/eligibility/export", r.Eligibility.Export)

	admin := secured.Group("/courses/:id")
	admin.Use(middleware.RequireRoles(models.RoleAdmin), middleware.Audit(r.Logger, "eligibility.cache.invalidate"))
	admin.DELETE("/eligibility/cache", r.Eligibility.InvalidateCache)

	eligibility := secured.Group("/eligibility")
	eligibility.Use(middleware.RequireRoles(readers...))
	eligibility.POST("/evaluate", r.Eligibility.Evaluate)
	eligibility.GET("/batches/:id", r.Batches.Status)
	eligibility.POST("/batches", middleware.RequireRoles(models.RoleAdmin, models.RoleAnalyst), middleware.Audit(r.Logger, "eligibility.batch.submit"), r.Batches.Submit)

	if r.Metrics != nil {
		secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), r.Metrics.Summary)
	}
}
