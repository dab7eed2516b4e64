package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/finflow/exchanger/internal/apperrors"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
	"github.com/finflow/exchanger/internal/dto"
	"github.com/finflow/exchanger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transferHandler handles HTTP requests for funds movements and history.
type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

// registerTransferRoutes registers routes related to transfers.
func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := &transferHandler{transferService: transferService}

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.createTransfer)
		transfers.POST("/quote", h.quoteTransfer)
	}
	rg.GET("/transactions", h.listTransactions)
}

// createTransfer executes a funds movement on behalf of the authenticated user.
func (h *transferHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for transfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(
		slog.String("sender_account", req.SenderNumber),
		slog.String("receiver_account", req.ReceiverNumber),
	)
	logger.Info("Received transfer request")

	if err := h.transferService.Transfer(c.Request.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Transfer validation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			logger.Warn("Transfer forbidden", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("Transfer target not found", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": "Receiver account not found"})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			logger.Warn("Transfer rejected for insufficient funds")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient funds"})
		default:
			logger.Error("Failed to execute transfer", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to execute transfer"})
		}
		return
	}

	logger.Info("Transfer executed successfully")
	c.JSON(http.StatusCreated, gin.H{"status": "completed"})
}

// quoteTransfer prices a prospective transfer without moving funds.
func (h *transferHandler) quoteTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for quote", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quote, err := h.transferService.Quote(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Quote validation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrForbidden):
			logger.Warn("Quote forbidden", slog.String("error", err.Error()))
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		case errors.Is(err, apperrors.ErrInsufficientFunds):
			logger.Warn("Quote rejected for insufficient funds")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Insufficient funds"})
		case errors.Is(err, apperrors.ErrRateUnavailable):
			logger.Error("Quote failed, no exchange rate", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Exchange rate unavailable"})
		default:
			logger.Error("Failed to compute quote", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute quote"})
		}
		return
	}

	c.JSON(http.StatusOK, quote)
}

// listTransactions returns the authenticated user's history, newest first.
func (h *transferHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	transactions, err := h.transferService.ListTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve transactions"})
		return
	}

	c.JSON(http.StatusOK, dto.ToTransactionResponses(transactions))
}
