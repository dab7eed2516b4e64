package sms

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/finflow/exchanger/internal/core/ports/gateways"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	"github.com/finflow/exchanger/internal/middleware"
)

// Notifier sends SMS notifications about incoming counterparty transfers.
// It is strictly best-effort: every failure is logged and swallowed so the
// triggering transfer is never affected.
type Notifier struct {
	providerURL string
	userRepo    portsrepo.UserRepository
	client      *http.Client
}

// NewNotifier creates an SMS notifier. An empty provider URL disables
// delivery while keeping dispatch wiring intact.
func NewNotifier(providerURL string, userRepo portsrepo.UserRepository) *Notifier {
	return &Notifier{
		providerURL: providerURL,
		userRepo:    userRepo,
		client:      &http.Client{Timeout: 3 * time.Second},
	}
}

var _ gateways.Notifier = (*Notifier)(nil)

// Notify implements gateways.Notifier. Receivers with notifications disabled
// or without a phone number are skipped silently.
func (n *Notifier) Notify(ctx context.Context, notice gateways.TransferNotice) {
	logger := middleware.GetLoggerFromCtx(ctx).With(
		slog.String("receiver_account", notice.ReceiverNumber))

	if n.providerURL == "" {
		logger.Debug("SMS provider not configured; skipping notification")
		return
	}

	receiver, err := n.userRepo.FindUserByAccountNumber(ctx, notice.ReceiverNumber)
	if err != nil {
		logger.Warn("Failed to resolve transfer receiver for notification", slog.String("error", err.Error()))
		return
	}
	if !receiver.SMSNotification || receiver.Phone == "" {
		return
	}

	sender, err := n.userRepo.FindUserByAccountNumber(ctx, notice.SenderNumber)
	if err != nil {
		logger.Warn("Failed to resolve transfer sender for notification", slog.String("error", err.Error()))
		return
	}

	message := fmt.Sprintf("Incoming transfer of %s %s from %s %s",
		notice.Amount.StringFixed(2), notice.CurrencyCode, sender.FirstName, sender.LastName)

	target := fmt.Sprintf("%s&phones=%s&mes=%s",
		n.providerURL, url.QueryEscape(receiver.Phone), url.QueryEscape(message))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		logger.Warn("Failed to build SMS request", slog.String("error", err.Error()))
		return
	}

	resp, err := n.client.Do(req)
	if err != nil {
		logger.Warn("SMS delivery failed", slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("SMS provider returned non-success status", slog.Int("status", resp.StatusCode))
		return
	}

	logger.Info("Transfer notification sent")
}
