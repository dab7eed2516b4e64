package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/finflow/exchanger/internal/core/ports/gateways"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	portssvc "github.com/finflow/exchanger/internal/core/ports/services"
	"github.com/finflow/exchanger/internal/dto"
	"github.com/finflow/exchanger/internal/middleware"
	"github.com/shopspring/decimal"
)

// applicationService manages deposit applications: creation against the
// external payment provider and settlement on webhook confirmation.
//
// No ledger lock is ever held across a provider call: the store is touched
// only at application creation (insert) and at settlement commit, both
// short local transactions.
type applicationService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	appRepo     portsrepo.ApplicationRepository
	gateway     gateways.PaymentGateway
	returnURL   string
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(
	accountRepo portsrepo.AccountRepositoryFacade,
	appRepo portsrepo.ApplicationRepository,
	gateway gateways.PaymentGateway,
	returnURL string,
) portssvc.ApplicationSvcFacade {
	return &applicationService{
		accountRepo: accountRepo,
		appRepo:     appRepo,
		gateway:     gateway,
		returnURL:   returnURL,
	}
}

var _ portssvc.ApplicationSvcFacade = (*applicationService)(nil)

// CreateApplication implements portssvc.ApplicationSvcFacade. On provider
// failure the application stays pending with no payment id; retrying or
// abandoning it is an operator policy decision, not automated here.
func (s *applicationService) CreateApplication(ctx context.Context, requestingUserID string, req dto.CreateApplicationRequest) (*dto.CreateApplicationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: application amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.accountRepo.FindUserAccountByCurrency(ctx, requestingUserID, domain.HomeCurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no %s account for user", apperrors.ErrNotFound, domain.HomeCurrencyCode)
		}
		return nil, fmt.Errorf("failed to resolve home-currency account: %w", err)
	}

	app := domain.Application{
		AccountNumber: account.Number,
		CurrencyCode:  account.Currency.ShortName,
		Amount:        req.Amount,
		Type:          req.Type,
		Status:        domain.StatusPending,
	}
	stored, err := s.appRepo.CreateApplication(ctx, app)
	if err != nil {
		logger.Error("Failed to persist application", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	description := fmt.Sprintf("account %s %s", account.Number, req.Type)
	payment, err := s.gateway.CreatePayment(ctx, req.Amount, account.Currency.ShortName, s.returnURL, description)
	if err != nil {
		// The application stays pending: the payment may or may not exist on
		// the provider side, so no terminal state is guessed here.
		logger.Error("Provider payment creation failed",
			slog.Int64("application_id", stored.ApplicationID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: payment creation failed", apperrors.ErrUpstream)
	}

	if err := s.appRepo.SetPaymentID(ctx, stored.ApplicationID, payment.PaymentID); err != nil {
		// The payment exists upstream but the link was not recorded; log both
		// ids so an operator can reconcile.
		logger.Error("Failed to store provider payment id",
			slog.Int64("application_id", stored.ApplicationID),
			slog.String("payment_id", payment.PaymentID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to store payment id: %w", err)
	}

	logger.Info("Application created",
		slog.Int64("application_id", stored.ApplicationID),
		slog.String("payment_id", payment.PaymentID))

	return &dto.CreateApplicationResponse{
		ApplicationID:   stored.ApplicationID,
		ConfirmationURL: payment.ConfirmationURL,
	}, nil
}

// HandleSettlementNotification implements portssvc.ApplicationSvcFacade.
//
// The pending-only lookup in step 2 is the idempotency guard: the provider
// may deliver the same notification more than once, or after a manual
// settlement already happened. Re-processing a non-pending application would
// double-credit the account, so anything not found pending is a successful
// no-op rather than an error.
func (s *applicationService) HandleSettlementNotification(ctx context.Context, payload []byte) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	var notification dto.SettlementNotification
	if err := json.Unmarshal(payload, &notification); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidPayload, err)
	}
	paymentID := notification.Object.ID
	if paymentID == "" {
		return fmt.Errorf("%w: missing payment id", apperrors.ErrInvalidPayload)
	}
	logger = logger.With(slog.String("payment_id", paymentID))

	app, err := s.appRepo.FindPendingByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("No pending application for payment; ignoring notification")
			return nil
		}
		return fmt.Errorf("failed to look up application for payment %s: %w", paymentID, err)
	}
	logger = logger.With(slog.Int64("application_id", app.ApplicationID))

	if err := s.gateway.CapturePayment(ctx, paymentID, app.Amount, app.CurrencyCode); err != nil {
		logger.Error("Provider capture failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: capture failed for payment %s", apperrors.ErrUpstream, paymentID)
	}

	status, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		logger.Error("Provider status query failed", slog.String("error", err.Error()))
		return fmt.Errorf("%w: status query failed for payment %s", apperrors.ErrUpstream, paymentID)
	}
	if status != gateways.PaymentSucceeded {
		// The application stays pending for operator intervention; the
		// provider state is authoritative and may still change.
		logger.Warn("Provider reports non-success after capture", slog.String("status", string(status)))
		return fmt.Errorf("%w: payment %s status is %s", apperrors.ErrSettlementRejected, paymentID, status)
	}

	if err := s.appRepo.SettleApplication(ctx, app.ApplicationID, app.AccountNumber, app.Amount); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// A concurrent delivery settled the application between the pending
			// lookup and the commit; the status guard refused a second credit.
			logger.Info("Application no longer pending; ignoring notification")
			return nil
		}
		logger.Error("Failed to commit settlement", slog.String("error", err.Error()))
		return fmt.Errorf("failed to settle application %d: %w", app.ApplicationID, err)
	}

	logger.Info("Application settled",
		slog.String("account_number", app.AccountNumber),
		slog.String("amount", app.Amount.String()))
	return nil
}

// ListApplications implements portssvc.ApplicationSvcFacade.
func (s *applicationService) ListApplications(ctx context.Context, requestingUserID string, limit int) ([]domain.Application, error) {
	if limit <= 0 {
		limit = 20
	}
	apps, err := s.appRepo.ListApplicationsByUserID(ctx, requestingUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}
