package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PriceHandler struct {
	priceService service.PriceService
}

func NewPriceHandler(priceService service.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *PriceHandler) RegisterRoutes(router *gin.RouterGroup) {
	prices := router.Group("/prices")
	{
		prices.GET("", middleware.RequirePermission("prices.read"), h.ListPrices)
		prices.GET("/suggestion", middleware.RequirePermission("prices.read"), h.GetSuggestion)
		prices.POST("", middleware.RequirePermission("prices.write"), h.RecordPrice)
	}
}

// RecordPrice handles POST /prices
// @Summary      Record price observation
// @Description  Stores a price observation with its anomaly classification computed against the rolling comparison window
// @Tags         prices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.RecordPriceRequest  true  "Record Price Payload"
// @Success      201      {object}  response.Response{data=service.PriceRecordResponse}
// @Failure      400      {object}  response.Response
// @Router       /prices [post]
func (h *PriceHandler) RecordPrice(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req service.RecordPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	record, err := h.priceService.RecordPrice(c.Request.Context(), tenantID, userFromContext(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, record))
}

// ListPrices handles GET /prices
// @Summary      List price history
// @Tags         prices
// @Produce      json
// @Security     BearerAuth
// @Param        anomalies_only  query     bool  false  "Only anomalous observations"
// @Param        page            query     int   false  "Page number (default 1)"
// @Param        limit           query     int   false  "Number of items per page (default 20)"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /prices [get]
func (h *PriceHandler) ListPrices(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	anomaliesOnly := c.Query("anomalies_only") == "true"

	records, total, err := h.priceService.ListPrices(c.Request.Context(), tenantID, anomaliesOnly, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch price history"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"prices": records,
		"total":  total,
		"page":   page,
		"limit":  limit,
	}))
}

// GetSuggestion handles GET /prices/suggestion
// @Summary      Get price suggestion
// @Description  Summarizes the recent price history for an item and proposes an acceptable band around the average
// @Tags         prices
// @Produce      json
// @Security     BearerAuth
// @Param        supply_id      query     string  false  "Supply ID"
// @Param        description    query     string  false  "Free-text item description"
// @Param        vehicle_model  query     string  false  "Vehicle model context"
// @Success      200  {object}  response.Response{data=service.PriceSuggestion}
// @Failure      400  {object}  response.Response
// @Router       /prices/suggestion [get]
func (h *PriceHandler) GetSuggestion(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	supplyID := c.Query("supply_id")
	description := c.Query("description")
	if supplyID == "" && description == "" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "supply_id or description is required"))
		return
	}

	suggestion, err := h.priceService.GetSuggestion(c.Request.Context(), tenantID, supplyID, description, c.Query("vehicle_model"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, suggestion))
}
