package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TenantHandler struct {
	tenantService service.TenantService
}

func NewTenantHandler(tenantService service.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *TenantHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public onboarding route
	router.POST("/register", h.Register)

	tenants := router.Group("/tenant", middleware.RequireRole("admin"))
	{
		tenants.GET("", h.GetCurrent)
		tenants.PUT("", h.UpdateCurrent)
	}
}

// Register handles POST /register to onboard a new tenant
// @Summary      Register tenant
// @Description  Creates a new tenant together with its first admin user
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterTenantRequest  true  "Register Tenant Payload"
// @Success      201      {object}  response.Response{data=service.TenantResponse}
// @Failure      400      {object}  response.Response
// @Router       /register [post]
func (h *TenantHandler) Register(c *gin.Context) {
	var req service.RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tenant, err := h.tenantService.RegisterTenant(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tenant))
}

// GetCurrent handles GET /tenant returning the caller's tenant
// @Summary      Get current tenant
// @Tags         tenants
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.TenantResponse}
// @Failure      404  {object}  response.Response
// @Router       /tenant [get]
func (h *TenantHandler) GetCurrent(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}

// UpdateCurrent handles PUT /tenant updating the caller's tenant settings
// @Summary      Update current tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateTenantRequest  true  "Update Tenant Payload"
// @Success      200      {object}  response.Response{data=service.TenantResponse}
// @Failure      400      {object}  response.Response
// @Router       /tenant [put]
func (h *TenantHandler) UpdateCurrent(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tenant, err := h.tenantService.UpdateTenant(c.Request.Context(), tenantID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tenant))
}
