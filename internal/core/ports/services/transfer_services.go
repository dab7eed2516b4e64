package services

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/finflow/exchanger/internal/dto"
)

// TransferWriterSvc executes funds movements.
type TransferWriterSvc interface {
	// Transfer validates and executes a funds movement on behalf of the
	// requesting user. Every rejection path is a pure read; the only
	// side-effecting path is the single atomic commit at the end.
	Transfer(ctx context.Context, requestingUserID string, req dto.TransferRequest) error
}

// TransferReaderSvc reads transaction history and prices prospective moves.
type TransferReaderSvc interface {
	// ListTransactions returns the requesting user's history, newest first.
	ListTransactions(ctx context.Context, requestingUserID string, limit int) ([]domain.Transaction, error)

	// Quote computes the amount to credit for a prospective transfer and
	// verifies the debit account can cover the debit amount.
	Quote(ctx context.Context, requestingUserID string, req dto.QuoteRequest) (*dto.QuoteResponse, error)
}

// TransferSvcFacade combines all transfer-related service interfaces.
type TransferSvcFacade interface {
	TransferWriterSvc
	TransferReaderSvc
}
