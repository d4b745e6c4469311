package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicleService service.VehicleService
}

func NewVehicleHandler(vehicleService service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	vehicles := router.Group("/vehicles")
	{
		vehicles.GET("", middleware.RequirePermission("vehicles.read"), h.ListVehicles)
		vehicles.GET("/:id", middleware.RequirePermission("vehicles.read"), h.GetVehicle)
		vehicles.POST("", middleware.RequirePermission("vehicles.write"), h.CreateVehicle)
		vehicles.PUT("/:id", middleware.RequirePermission("vehicles.write"), h.UpdateVehicle)
		vehicles.DELETE("/:id", middleware.RequirePermission("vehicles.write"), h.DeactivateVehicle)
		vehicles.POST("/:id/sync-odometer", middleware.RequirePermission("vehicles.write"), h.SyncOdometer)
	}
}

// ListVehicles handles GET /vehicles
// @Summary      List vehicles
// @Description  Retrieves a paginated list of vehicles in the caller's tenant
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        page         query     int   false  "Page number (default 1)"
// @Param        limit        query     int   false  "Number of items per page (default 20)"
// @Param        active_only  query     bool  false  "Only active vehicles"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	activeOnly := c.Query("active_only") == "true"

	vehicles, total, err := h.vehicleService.ListVehicles(c.Request.Context(), tenantID, activeOnly, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch vehicles"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"vehicles": vehicles,
		"total":    total,
		"page":     page,
		"limit":    limit,
	}))
}

// GetVehicle handles GET /vehicles/:id
// @Summary      Get vehicle by ID
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response{data=service.VehicleResponse}
// @Failure      404  {object}  response.Response
// @Router       /vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// CreateVehicle handles POST /vehicles
// @Summary      Create vehicle
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateVehicleRequest  true  "Create Vehicle Payload"
// @Success      201      {object}  response.Response{data=service.VehicleResponse}
// @Failure      400      {object}  response.Response
// @Router       /vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), tenantID, userFromContext(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vehicle))
}

// UpdateVehicle handles PUT /vehicles/:id
// @Summary      Update vehicle
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Vehicle ID"
// @Param        payload  body      service.UpdateVehicleRequest  true  "Update Vehicle Payload"
// @Success      200      {object}  response.Response{data=service.VehicleResponse}
// @Failure      400      {object}  response.Response
// @Router       /vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), tenantID, userFromContext(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// DeactivateVehicle handles DELETE /vehicles/:id
// @Summary      Deactivate vehicle
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /vehicles/{id} [delete]
func (h *VehicleHandler) DeactivateVehicle(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	if err := h.vehicleService.DeactivateVehicle(c.Request.Context(), tenantID, c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Vehicle deactivated"))
}

// SyncOdometer handles POST /vehicles/:id/sync-odometer
// @Summary      Sync odometer from tracking API
// @Description  Pulls the current mileage from the external tracking integration. The reading only ever moves forward.
// @Tags         vehicles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response{data=service.VehicleResponse}
// @Failure      400  {object}  response.Response
// @Router       /vehicles/{id}/sync-odometer [post]
func (h *VehicleHandler) SyncOdometer(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.SyncOdometer(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}
