package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	alertService service.AlertService
}

func NewAlertHandler(alertService service.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AlertHandler) RegisterRoutes(router *gin.RouterGroup) {
	alerts := router.Group("/alerts", middleware.RequirePermission("alerts.read"))
	{
		alerts.GET("", h.ListAlerts)
		alerts.GET("/unread-count", h.CountUnread)
		alerts.POST("/:id/read", h.MarkRead)
		alerts.DELETE("/:id", h.Dismiss)
	}
}

// ListAlerts handles GET /alerts
// @Summary      List alerts
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        type         query     string  false  "Filter by alert type"
// @Param        severity     query     string  false  "Filter by severity"
// @Param        unread_only  query     bool    false  "Only unread alerts"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /alerts [get]
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := service.AlertFilter{
		Type:       c.Query("type"),
		Severity:   c.Query("severity"),
		UnreadOnly: c.Query("unread_only") == "true",
		Page:       page,
		Limit:      limit,
	}

	alerts, total, err := h.alertService.ListAlerts(c.Request.Context(), tenantID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch alerts"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"total":  total,
		"page":   page,
		"limit":  limit,
	}))
}

// CountUnread handles GET /alerts/unread-count
// @Summary      Count unread alerts
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /alerts/unread-count [get]
func (h *AlertHandler) CountUnread(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	count, err := h.alertService.CountUnread(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to count alerts"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{"unread": count}))
}

// MarkRead handles POST /alerts/:id/read
// @Summary      Mark alert read
// @Description  Marks the alert read. Idempotent: re-reading an already-read alert succeeds.
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Alert ID"
// @Success      200  {object}  response.Response{data=service.AlertResponse}
// @Failure      400  {object}  response.Response
// @Router       /alerts/{id}/read [post]
func (h *AlertHandler) MarkRead(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	alert, err := h.alertService.MarkRead(c.Request.Context(), tenantID, c.Param("id"), userFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, alert))
}

// Dismiss handles DELETE /alerts/:id
// @Summary      Dismiss alert
// @Tags         alerts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Alert ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /alerts/{id} [delete]
func (h *AlertHandler) Dismiss(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	if err := h.alertService.Dismiss(c.Request.Context(), tenantID, c.Param("id"), userFromContext(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Alert dismissed"))
}
