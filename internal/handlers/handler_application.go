package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/finflow/exchanger/internal/apperrors"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
	"github.com/finflow/exchanger/internal/dto"
	"github.com/finflow/exchanger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// applicationHandler handles HTTP requests for deposit applications and the
// provider settlement webhook.
type applicationHandler struct {
	applicationService portssvc.ApplicationSvcFacade
}

// registerApplicationRoutes registers the authenticated application routes.
func registerApplicationRoutes(rg *gin.RouterGroup, applicationService portssvc.ApplicationSvcFacade) {
	h := &applicationHandler{applicationService: applicationService}

	applications := rg.Group("/applications")
	{
		applications.POST("", h.createApplication)
		applications.GET("", h.listApplications)
	}
}

// registerWebhookRoutes registers the public provider callback route.
func registerWebhookRoutes(r *gin.Engine, applicationService portssvc.ApplicationSvcFacade) {
	h := &applicationHandler{applicationService: applicationService}
	r.POST("/webhooks/yookassa", h.handleSettlementNotification)
}

// createApplication opens a deposit application and returns the provider's
// confirmation URL.
func (h *applicationHandler) createApplication(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for application", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger.Info("Received application request", slog.String("type", string(req.Type)))

	resp, err := h.applicationService.CreateApplication(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			logger.Warn("Application validation failed", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			logger.Warn("No account for application", slog.String("error", err.Error()))
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, apperrors.ErrUpstream):
			logger.Error("Payment provider rejected application", slog.String("error", err.Error()))
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable"})
		default:
			logger.Error("Failed to create application", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create application"})
		}
		return
	}

	logger.Info("Application created", slog.Int64("application_id", resp.ApplicationID))
	c.JSON(http.StatusCreated, resp)
}

// listApplications returns the authenticated user's applications.
func (h *applicationHandler) listApplications(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	applications, err := h.applicationService.ListApplications(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("Failed to list applications", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
		return
	}

	out := make([]dto.ApplicationResponse, len(applications))
	for i, app := range applications {
		out[i] = dto.ToApplicationResponse(app)
	}
	c.JSON(http.StatusOK, out)
}

// handleSettlementNotification processes one provider webhook delivery.
// Unknown or repeated payment ids answer 200 so the provider stops retrying;
// only an unparseable payload is the caller's fault.
func (h *applicationHandler) handleSettlementNotification(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logger.Warn("Failed to read webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if err := h.applicationService.HandleSettlementNotification(c.Request.Context(), payload); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidPayload):
			logger.Warn("Unparseable webhook payload", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		case errors.Is(err, apperrors.ErrSettlementRejected):
			// Payment did not succeed; acknowledged, the application stays pending.
			logger.Info("Settlement notification rejected", slog.String("reason", err.Error()))
			c.Status(http.StatusOK)
		default:
			// Transient failure: answer 5xx so the provider redelivers.
			logger.Error("Failed to process settlement notification", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process notification"})
		}
		return
	}

	c.Status(http.StatusOK)
}
