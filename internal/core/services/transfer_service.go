package services

import (
	"context"
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

// transferService validates and executes funds movements between accounts.
//
// Validation and mutation are deliberately split: every rejection path below
// is a pure read with no side effects, and the only side-effecting path is
// the single atomic commit in SaveTransfer. A crash mid-operation therefore
// means "nothing happened" or "fully happened", never a half-applied transfer.
type transferService struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	transferRepo portsrepo.TransferRepository
	converter    portssvc.ConversionSvcFacade
	notifier     gateways.Notifier
}

// NewTransferService creates a new TransferService.
func NewTransferService(
	accountRepo portsrepo.AccountRepositoryFacade,
	transferRepo portsrepo.TransferRepository,
	converter portssvc.ConversionSvcFacade,
	notifier gateways.Notifier,
) portssvc.TransferSvcFacade {
	return &transferService{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		converter:    converter,
		notifier:     notifier,
	}
}

var _ portssvc.TransferSvcFacade = (*transferService)(nil)

// Transfer implements portssvc.TransferWriterSvc.
//
// Preconditions are checked in order, each failing fast with a distinct error:
//  1. sender account must belong to the requesting user (Forbidden),
//  2. receiver must belong to the user for "self" transfers (Forbidden) or
//     merely exist for "counterparty" transfers (NotFound),
//  3. sender balance must cover the amount to send (InsufficientFunds).
func (s *transferService) Transfer(ctx context.Context, requestingUserID string, req dto.TransferRequest) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.AmountToSend.LessThanOrEqual(decimal.Zero) || req.AmountToReceive.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: transfer amounts must be positive", apperrors.ErrValidation)
	}
	if req.SenderNumber == req.ReceiverNumber {
		return fmt.Errorf("%w: sender and receiver accounts must differ", apperrors.ErrValidation)
	}

	sender, err := s.accountRepo.FindAccountByNumber(ctx, req.SenderNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// An unknown sender account is treated as an ownership failure:
			// the requester certainly does not own it.
			return fmt.Errorf("%w: sender account does not belong to the requesting user", apperrors.ErrForbidden)
		}
		return fmt.Errorf("failed to resolve sender account: %w", err)
	}
	if !sender.OwnedBy(requestingUserID) {
		logger.Warn("Transfer rejected: sender account not owned by requester",
			slog.String("sender_account", req.SenderNumber))
		return fmt.Errorf("%w: sender account does not belong to the requesting user", apperrors.ErrForbidden)
	}

	receiver, err := s.accountRepo.FindAccountByNumber(ctx, req.ReceiverNumber)
	switch req.ReceiverKind {
	case domain.TransferSelf:
		if err != nil || !receiver.OwnedBy(requestingUserID) {
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("failed to resolve receiver account: %w", err)
			}
			logger.Warn("Transfer rejected: receiver account not owned by requester",
				slog.String("receiver_account", req.ReceiverNumber))
			return fmt.Errorf("%w: receiver account does not belong to the requesting user", apperrors.ErrForbidden)
		}
	case domain.TransferCounterparty:
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: receiver account not found", apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to resolve receiver account: %w", err)
		}
	default:
		return fmt.Errorf("%w: unknown receiver type %q", apperrors.ErrValidation, req.ReceiverKind)
	}

	if sender.Balance.LessThan(req.AmountToSend) {
		return fmt.Errorf("%w: account %s holds %s, needs %s",
			apperrors.ErrInsufficientFunds, sender.Number, sender.Balance, req.AmountToSend)
	}

	pair := domain.DoubleEntryPair(sender.Number, receiver.Number, sender.Currency.ShortName, req.AmountToSend, req.ReceiverKind)
	deltas := map[string]decimal.Decimal{
		sender.Number:   req.AmountToSend.Neg(),
		receiver.Number: req.AmountToReceive,
	}

	if err := s.transferRepo.SaveTransfer(ctx, pair, deltas); err != nil {
		logger.Error("Failed to commit transfer",
			slog.String("sender_account", sender.Number),
			slog.String("receiver_account", receiver.Number),
			slog.String("error", err.Error()))
		return err
	}

	logger.Info("Transfer committed",
		slog.String("sender_account", sender.Number),
		slog.String("receiver_account", receiver.Number),
		slog.String("amount_sent", req.AmountToSend.String()),
		slog.String("amount_received", req.AmountToReceive.String()))

	if req.ReceiverKind == domain.TransferCounterparty {
		// Fire-and-forget: notification failure must never roll back or delay
		// the transfer. WithoutCancel keeps the request-scoped logger while
		// detaching from the request lifetime.
		notice := gateways.TransferNotice{
			SenderNumber:   sender.Number,
			ReceiverNumber: receiver.Number,
			Amount:         req.AmountToReceive,
			CurrencyCode:   receiver.Currency.ShortName,
		}
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Transfer notifier panicked", slog.Any("panic", r))
				}
			}()
			s.notifier.Notify(context.WithoutCancel(ctx), notice)
		}()
	}

	return nil
}

// Quote implements portssvc.TransferReaderSvc. It prices a prospective
// transfer without any side effects.
func (s *transferService) Quote(ctx context.Context, requestingUserID string, req dto.QuoteRequest) (*dto.QuoteResponse, error) {
	account, err := s.accountRepo.FindAccountByNumber(ctx, req.DebitAccount)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: debit account does not belong to the requesting user", apperrors.ErrForbidden)
		}
		return nil, fmt.Errorf("failed to resolve debit account: %w", err)
	}
	if !account.OwnedBy(requestingUserID) {
		return nil, fmt.Errorf("%w: debit account does not belong to the requesting user", apperrors.ErrForbidden)
	}
	if account.Balance.LessThan(req.DebitAmount) {
		return nil, fmt.Errorf("%w: account %s holds %s, needs %s",
			apperrors.ErrInsufficientFunds, account.Number, account.Balance, req.DebitAmount)
	}

	creditAmount, err := s.converter.Convert(ctx, req.DebitCurrency, req.CreditCurrency, req.DebitAmount)
	if err != nil {
		return nil, err
	}
	return &dto.QuoteResponse{CreditAmount: creditAmount}, nil
}

// ListTransactions implements portssvc.TransferReaderSvc.
func (s *transferService) ListTransactions(ctx context.Context, requestingUserID string, limit int) ([]domain.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	txns, err := s.transferRepo.ListTransactionsByUserID(ctx, requestingUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}
