package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadtrip/internal/api"
	"roadtrip/internal/domain"
	"roadtrip/internal/service"
)

// BudgetHandler handles HTTP requests for stop prices and trip budgets.
type BudgetHandler struct {
	pricing *service.PricingService
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(pricing *service.PricingService) *BudgetHandler {
	return &BudgetHandler{pricing: pricing}
}

// DefaultPrices handles GET /v1/budget/default-prices
func (h *BudgetHandler) DefaultPrices(c *gin.Context) {
	prices := h.pricing.DefaultPrices()

	response := make(map[string]float64, len(prices))
	for t, p := range prices {
		response[string(t)] = p
	}

	respondJSON(c, http.StatusOK, gin.H{"default_prices": response})
}

// StopPrice handles POST /v1/budget/stop-price
func (h *BudgetHandler) StopPrice(c *gin.Context) {
	var req api.StopPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	stopType := domain.ParseStopType(req.Type)
	price, err := h.pricing.StopPrice(c.Request.Context(), stopType, toPosition(req.Location), req.DistanceKm)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, api.StopPriceResponse{
		Type:  string(stopType),
		Price: price,
	})
}

// Calculate handles POST /v1/budget/calculate
func (h *BudgetHandler) Calculate(c *gin.Context) {
	var req api.BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	items := make([]service.BudgetItem, 0, len(req.Stops))
	for _, s := range req.Stops {
		items = append(items, service.BudgetItem{
			Type:       domain.ParseStopType(s.Type),
			Position:   toPosition(s.Location),
			Cost:       s.Cost,
			DistanceKm: s.DistanceKm,
		})
	}

	budget, err := h.pricing.CalculateBudget(c.Request.Context(), items)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, api.BudgetResponse{
		PerStop: budget.PerStop,
		Total:   budget.Total,
	})
}

func toPosition(loc *[2]float64) *domain.Coordinates {
	if loc == nil {
		return nil
	}
	return &domain.Coordinates{Lat: loc[0], Lng: loc[1]}
}
