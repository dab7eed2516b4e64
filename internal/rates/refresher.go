package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// TrackedCurrencies are the non-home currencies the refresher keeps rates
// for. Each rate is quoted as units of home currency per one unit of the
// tracked currency.
var TrackedCurrencies = []string{"USD", "EUR", "CNY"}

// feedDocument is the central-bank daily feed shape; only the quoted value
// per currency is read.
type feedDocument struct {
	Valute map[string]struct {
		Value float64 `json:"Value"`
	} `json:"Valute"`
}

// Refresher periodically pulls the rate feed and overwrites the cache.
// A failed fetch is logged and skipped; the cache keeps its last values.
type Refresher struct {
	cache   *Cache
	feedURL string
	client  *http.Client
	logger  *slog.Logger
	cron    *cron.Cron
}

// NewRefresher creates a rate refresher for the given feed URL.
func NewRefresher(cache *Cache, feedURL string, logger *slog.Logger) *Refresher {
	return &Refresher{
		cache:   cache,
		feedURL: feedURL,
		client:  &http.Client{Timeout: 3 * time.Second},
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start schedules the refresh on the given cron spec (e.g. "@every 10m"),
// runs one refresh immediately so the cache is warm, and returns.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	if _, err := r.cron.AddFunc(spec, func() { r.RefreshOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule rate refresh: %w", err)
	}
	r.cron.Start()
	go r.RefreshOnce(ctx)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// RefreshOnce fetches the feed and updates every tracked currency. Partial
// failure updates the currencies it can and logs the rest.
func (r *Refresher) RefreshOnce(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.feedURL, nil)
	if err != nil {
		r.logger.Error("Failed to build rate feed request", slog.String("error", err.Error()))
		return
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Rate feed fetch failed", slog.String("error", err.Error()))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Rate feed returned non-OK status", slog.Int("status", resp.StatusCode))
		return
	}

	var doc feedDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		r.logger.Error("Failed to decode rate feed", slog.String("error", err.Error()))
		return
	}

	for _, code := range TrackedCurrencies {
		quote, ok := doc.Valute[code]
		if !ok {
			r.logger.Warn("Rate feed missing currency", slog.String("currency", code))
			continue
		}
		rate := decimal.NewFromFloat(quote.Value).Round(2)
		if err := r.cache.SetRate(ctx, code, rate); err != nil {
			r.logger.Error("Failed to cache rate",
				slog.String("currency", code),
				slog.String("error", err.Error()))
			continue
		}
		r.logger.Debug("Rate refreshed",
			slog.String("currency", code),
			slog.String("rate", rate.String()))
	}
}
