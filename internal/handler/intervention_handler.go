package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InterventionHandler struct {
	interventionService service.InterventionService
}

func NewInterventionHandler(interventionService service.InterventionService) *InterventionHandler {
	return &InterventionHandler{interventionService: interventionService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *InterventionHandler) RegisterRoutes(router *gin.RouterGroup) {
	interventions := router.Group("/interventions")
	{
		interventions.GET("", middleware.RequirePermission("interventions.read"), h.ListInterventions)
		interventions.GET("/:id", middleware.RequirePermission("interventions.read"), h.GetIntervention)
		interventions.POST("", middleware.RequirePermission("interventions.write"), h.ReportIntervention)
		interventions.POST("/:id/transition", middleware.RequirePermission("interventions.write"), h.Transition)
	}
}

// ReportIntervention handles POST /interventions
// @Summary      Report intervention
// @Description  Reports a failure or maintenance need on a vehicle, opening the workflow in status reported
// @Tags         interventions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ReportInterventionRequest  true  "Report Intervention Payload"
// @Success      201      {object}  response.Response{data=service.InterventionResponse}
// @Failure      400      {object}  response.Response
// @Router       /interventions [post]
func (h *InterventionHandler) ReportIntervention(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.ReportInterventionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	intervention, err := h.interventionService.ReportIntervention(c.Request.Context(), tenantID, userFromContext(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, intervention))
}

// Transition handles POST /interventions/:id/transition
// @Summary      Transition intervention
// @Description  Moves the intervention to the requested workflow status when the transition is allowed
// @Tags         interventions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Intervention ID"
// @Param        payload  body      service.TransitionRequest  true  "Transition Payload"
// @Success      200      {object}  response.Response{data=service.InterventionResponse}
// @Failure      400      {object}  response.Response
// @Router       /interventions/{id}/transition [post]
func (h *InterventionHandler) Transition(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	intervention, err := h.interventionService.TransitionIntervention(c.Request.Context(), tenantID, userFromContext(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, intervention))
}

// GetIntervention handles GET /interventions/:id
// @Summary      Get intervention by ID
// @Tags         interventions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Intervention ID"
// @Success      200  {object}  response.Response{data=service.InterventionResponse}
// @Failure      404  {object}  response.Response
// @Router       /interventions/{id} [get]
func (h *InterventionHandler) GetIntervention(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	intervention, err := h.interventionService.GetIntervention(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, intervention))
}

// ListInterventions handles GET /interventions
// @Summary      List interventions
// @Tags         interventions
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "Filter by workflow status"
// @Param        priority    query     string  false  "Filter by priority"
// @Param        vehicle_id  query     string  false  "Filter by vehicle"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      400  {object}  response.Response
// @Router       /interventions [get]
func (h *InterventionHandler) ListInterventions(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := service.InterventionFilter{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		VehicleID: c.Query("vehicle_id"),
		Page:      page,
		Limit:     limit,
	}

	interventions, total, err := h.interventionService.ListInterventions(c.Request.Context(), tenantID, filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"interventions": interventions,
		"total":         total,
		"page":          page,
		"limit":         limit,
	}))
}
