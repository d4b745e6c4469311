package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthorizationHandler struct {
	authService service.AuthorizationService
}

func NewAuthorizationHandler(authService service.AuthorizationService) *AuthorizationHandler {
	return &AuthorizationHandler{authService: authService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *AuthorizationHandler) RegisterRoutes(router *gin.RouterGroup) {
	auths := router.Group("/work-authorizations")
	{
		auths.GET("", middleware.RequirePermission("quotes.read"), h.ListByIntervention)
		auths.GET("/:id", middleware.RequirePermission("quotes.read"), h.GetAuthorization)
		auths.POST("", middleware.RequirePermission("documents.validate"), h.Generate)
		auths.POST("/:id/validate", middleware.RequirePermission("documents.validate"), h.Validate)
	}
}

// Generate handles POST /work-authorizations
// @Summary      Generate work authorization
// @Description  Generates the single work authorization an approved quote may have, copying its lines
// @Tags         work-authorizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.GenerateAuthorizationRequest  true  "Generate Payload"
// @Success      201      {object}  response.Response{data=service.AuthorizationResponse}
// @Failure      400      {object}  response.Response
// @Router       /work-authorizations [post]
func (h *AuthorizationHandler) Generate(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.GenerateAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	auth, err := h.authService.GenerateFromQuote(c.Request.Context(), tenantID, userFromContext(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, auth))
}

// Validate handles POST /work-authorizations/:id/validate
// @Summary      Validate work authorization
// @Description  Marks the authorization validated and creates its invoice in the same transaction
// @Tags         work-authorizations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Work Authorization ID"
// @Success      200  {object}  response.Response{data=service.ValidationResult}
// @Failure      400  {object}  response.Response
// @Router       /work-authorizations/{id}/validate [post]
func (h *AuthorizationHandler) Validate(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	result, err := h.authService.ValidateAuthorization(c.Request.Context(), tenantID, userFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetAuthorization handles GET /work-authorizations/:id
// @Summary      Get work authorization by ID
// @Tags         work-authorizations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Work Authorization ID"
// @Success      200  {object}  response.Response{data=service.AuthorizationResponse}
// @Failure      404  {object}  response.Response
// @Router       /work-authorizations/{id} [get]
func (h *AuthorizationHandler) GetAuthorization(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	auth, err := h.authService.GetAuthorization(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, auth))
}

// ListByIntervention handles GET /work-authorizations?intervention_id=...
// @Summary      List work authorizations for an intervention
// @Tags         work-authorizations
// @Produce      json
// @Security     BearerAuth
// @Param        intervention_id  query     string  true  "Intervention ID"
// @Success      200  {object}  response.Response{data=[]service.AuthorizationResponse}
// @Failure      400  {object}  response.Response
// @Router       /work-authorizations [get]
func (h *AuthorizationHandler) ListByIntervention(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	interventionID := c.Query("intervention_id")
	if interventionID == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "intervention_id query parameter is required"))
		return
	}

	auths, err := h.authService.ListByIntervention(c.Request.Context(), tenantID, interventionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, auths))
}
