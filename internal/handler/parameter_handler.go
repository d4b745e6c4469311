package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ParameterHandler struct {
	paramService service.ParameterService
	codeService  service.CodeService
}

func NewParameterHandler(paramService service.ParameterService, codeService service.CodeService) *ParameterHandler {
	return &ParameterHandler{paramService: paramService, codeService: codeService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ParameterHandler) RegisterRoutes(router *gin.RouterGroup) {
	params := router.Group("/parameters", middleware.RequireRole("admin", "manager"))
	{
		params.GET("", h.ListParameters)
		params.PUT("", h.SetParameter)
		params.DELETE("/:key", h.DeleteParameter)
	}

	formats := router.Group("/code-formats", middleware.RequireRole("admin", "manager"))
	{
		formats.GET("", h.ListCodeFormats)
		formats.PUT("", h.UpdateCodeFormat)
	}
}

// ListParameters handles GET /parameters
// @Summary      List effective parameters
// @Description  Returns the effective parameter set for the tenant: global defaults shadowed by tenant overrides
// @Tags         parameters
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ParameterResponse}
// @Failure      500  {object}  response.Response
// @Router       /parameters [get]
func (h *ParameterHandler) ListParameters(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	params, err := h.paramService.List(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch parameters"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, params))
}

// SetParameter handles PUT /parameters
// @Summary      Set tenant parameter override
// @Tags         parameters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SetParameterRequest  true  "Set Parameter Payload"
// @Success      200      {object}  response.Response{data=service.ParameterResponse}
// @Failure      400      {object}  response.Response
// @Router       /parameters [put]
func (h *ParameterHandler) SetParameter(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.SetParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	param, err := h.paramService.Set(c.Request.Context(), tenantID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, param))
}

// DeleteParameter handles DELETE /parameters/:key
// @Summary      Delete tenant parameter override
// @Description  Removes the tenant override so the global default applies again
// @Tags         parameters
// @Produce      json
// @Security     BearerAuth
// @Param        key  path      string  true  "Parameter key"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /parameters/{key} [delete]
func (h *ParameterHandler) DeleteParameter(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	if err := h.paramService.Delete(c.Request.Context(), tenantID, c.Param("key")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Parameter override removed"))
}

// ListCodeFormats handles GET /code-formats
// @Summary      List code formats
// @Tags         parameters
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.CodeFormatResponse}
// @Failure      500  {object}  response.Response
// @Router       /code-formats [get]
func (h *ParameterHandler) ListCodeFormats(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	formats, err := h.codeService.ListFormats(c.Request.Context(), tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch code formats"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, formats))
}

// UpdateCodeFormat handles PUT /code-formats
// @Summary      Update code format
// @Description  Updates the reference code pattern for an entity type. The pattern must contain {SEQUENCE}.
// @Tags         parameters
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.UpdateCodeFormatRequest  true  "Update Code Format Payload"
// @Success      200      {object}  response.Response{data=service.CodeFormatResponse}
// @Failure      400      {object}  response.Response
// @Router       /code-formats [put]
func (h *ParameterHandler) UpdateCodeFormat(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.UpdateCodeFormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	format, err := h.codeService.UpdateFormat(c.Request.Context(), tenantID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, format))
}
