package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("/:type", middleware.RequirePermission("reports.read"), h.GetReport)
		reports.DELETE("/:type", middleware.RequirePermission("reports.manage"), h.InvalidateType)
		reports.DELETE("", middleware.RequirePermission("reports.manage"), h.InvalidateAll)
		reports.POST("/warm-up", middleware.RequirePermission("reports.manage"), h.WarmUp)
		reports.POST("/optimize", middleware.RequirePermission("reports.manage"), h.Optimize)
	}
}

// GetReport handles GET /reports/:type
// @Summary      Get report
// @Description  Returns the cached report when fresh, otherwise regenerates it. Unknown query parameters become generator params.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        type   path      string  true   "Report type (dashboard, kpis, costs_by_vehicle, maintenance_schedule, failure_analysis, financial_summary, intervention_analysis)"
// @Param        force  query     bool    false  "Skip the cache and regenerate"
// @Success      200    {object}  response.Response{data=service.ReportResult}
// @Failure      400    {object}  response.Response
// @Router       /reports/{type} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	force := c.Query("force") == "true"

	// Every other query parameter is passed through to the generator and
	// participates in the cache key.
	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if key == "force" || len(values) == 0 {
			continue
		}
		params[key] = values[0]
	}

	result, err := h.reportService.GetOrGenerate(c.Request.Context(), tenantID, c.Param("type"), params, userFromContext(c), force)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// InvalidateType handles DELETE /reports/:type
// @Summary      Invalidate cached reports of a type
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string  true  "Report type"
// @Success      200   {object}  response.Response
// @Failure      500   {object}  response.Response
// @Router       /reports/{type} [delete]
func (h *ReportHandler) InvalidateType(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	if err := h.reportService.InvalidateType(c.Request.Context(), tenantID, c.Param("type")); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Report cache invalidated"))
}

// InvalidateAll handles DELETE /reports
// @Summary      Invalidate all cached reports for the tenant
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /reports [delete]
func (h *ReportHandler) InvalidateAll(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	if err := h.reportService.InvalidateTenant(c.Request.Context(), tenantID); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Report cache invalidated"))
}

// WarmUp handles POST /reports/warm-up
// @Summary      Warm up the report cache
// @Description  Pre-generates the common report types; per-type failures are reported without aborting the batch
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /reports/warm-up [post]
func (h *ReportHandler) WarmUp(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	failures := h.reportService.WarmUp(c.Request.Context(), tenantID, userFromContext(c))

	failed := make(map[string]string, len(failures))
	for reportType, err := range failures {
		failed[reportType] = err.Error()
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"failed": failed,
	}))
}

// Optimize handles POST /reports/optimize
// @Summary      Optimize the report cache
// @Description  Sweeps expired rows and duplicate cache entries
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /reports/optimize [post]
func (h *ReportHandler) Optimize(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	removed, err := h.reportService.OptimizeCache(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"removed": removed}))
}
