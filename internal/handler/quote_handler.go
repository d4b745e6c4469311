package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	quoteService service.QuoteService
}

func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	quotes := router.Group("/quotes")
	{
		quotes.GET("", middleware.RequirePermission("quotes.read"), h.ListByIntervention)
		quotes.GET("/:id", middleware.RequirePermission("quotes.read"), h.GetQuote)
		quotes.POST("", middleware.RequirePermission("quotes.write"), h.CreateQuote)
		quotes.POST("/:id/approve", middleware.RequirePermission("quotes.approve"), h.ApproveQuote)
	}
}

// CreateQuote handles POST /quotes
// @Summary      Create quote
// @Description  Creates a supplier quote with its lines for an open intervention. Line prices feed the price history.
// @Tags         quotes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateQuoteRequest  true  "Create Quote Payload"
// @Success      201      {object}  response.Response{data=service.QuoteResponse}
// @Failure      400      {object}  response.Response
// @Router       /quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.quoteService.CreateQuote(c.Request.Context(), tenantID, userFromContext(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// ApproveQuote handles POST /quotes/:id/approve
// @Summary      Approve quote
// @Description  Approves a quote unless already approved or its total exceeds the budget cap. Advances the intervention.
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      400  {object}  response.Response
// @Router       /quotes/{id}/approve [post]
func (h *QuoteHandler) ApproveQuote(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.ApproveQuote(c.Request.Context(), tenantID, userFromContext(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// GetQuote handles GET /quotes/:id
// @Summary      Get quote by ID
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.QuoteResponse}
// @Failure      404  {object}  response.Response
// @Router       /quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), tenantID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// ListByIntervention handles GET /quotes?intervention_id=...
// @Summary      List quotes for an intervention
// @Tags         quotes
// @Produce      json
// @Security     BearerAuth
// @Param        intervention_id  query     string  true  "Intervention ID"
// @Success      200  {object}  response.Response{data=[]service.QuoteResponse}
// @Failure      400  {object}  response.Response
// @Router       /quotes [get]
func (h *QuoteHandler) ListByIntervention(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	interventionID := c.Query("intervention_id")
	if interventionID == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "intervention_id query parameter is required"))
		return
	}

	quotes, err := h.quoteService.ListByIntervention(c.Request.Context(), tenantID, interventionID)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quotes))
}
