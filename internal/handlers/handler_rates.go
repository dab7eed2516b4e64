package handlers

import (
	"log/slog"
	"net/http"

	"github.com/finflow/exchanger/internal/core/ports/gateways"
	"github.com/finflow/exchanger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// rateHandler exposes the current exchange rates.
type rateHandler struct {
	oracle gateways.RateOracle
}

// registerRateRoutes registers the exchange rate routes.
func registerRateRoutes(rg *gin.RouterGroup, oracle gateways.RateOracle) {
	h := &rateHandler{oracle: oracle}
	rg.GET("/rates", h.listRates)
}

// listRates returns the cached rates, quoted as home currency per one unit of
// each tracked currency. Currencies without a cached rate are omitted.
func (h *rateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	rates, err := h.oracle.GetRates(c.Request.Context())
	if err != nil {
		logger.Error("Failed to read exchange rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rates"})
		return
	}

	c.JSON(http.StatusOK, rates)
}
