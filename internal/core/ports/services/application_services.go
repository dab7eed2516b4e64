package services

import (
	"context"

	"github.com/finflow/exchanger/internal/core/domain"
	"github.com/finflow/exchanger/internal/dto"
)

// ApplicationSvcFacade manages deposit applications and their settlement.
type ApplicationSvcFacade interface {
	// CreateApplication opens a pending application, registers the payment
	// with the external provider and returns the confirmation URL.
	CreateApplication(ctx context.Context, requestingUserID string, req dto.CreateApplicationRequest) (*dto.CreateApplicationResponse, error)

	// HandleSettlementNotification processes one inbound webhook delivery.
	// Unknown or already-settled payment ids are a successful no-op.
	HandleSettlementNotification(ctx context.Context, payload []byte) error

	// ListApplications returns the requesting user's applications.
	ListApplications(ctx context.Context, requestingUserID string, limit int) ([]domain.Application, error)
}
