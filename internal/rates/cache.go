package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/ports/gateways"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

// Cache is a redis-backed rate oracle. Rates are stored per non-home
// currency code as decimal strings; the home currency is implicit and never
// keyed. The refresher overwrites values in place, so readers always see the
// last successfully fetched rate.
type Cache struct {
	client *redis.Client
}

// NewCache creates a rate cache on top of the given redis client.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

var _ gateways.RateOracle = (*Cache)(nil)

// GetRate implements gateways.RateOracle. A missing key is a hard error for
// the caller: conversion must not proceed on a guessed rate.
func (c *Cache) GetRate(ctx context.Context, currencyCode string) (decimal.Decimal, error) {
	val, err := c.client.Get(ctx, rateKey(currencyCode)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Zero, fmt.Errorf("%w: no rate for %s", apperrors.ErrRateUnavailable, currencyCode)
		}
		return decimal.Zero, fmt.Errorf("failed to read rate for %s: %w", currencyCode, err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed rate %q for %s", apperrors.ErrRateUnavailable, val, currencyCode)
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: non-positive rate for %s", apperrors.ErrRateUnavailable, currencyCode)
	}
	return rate, nil
}

// GetRates implements gateways.RateOracle. Currencies without a cached rate
// are simply absent from the result.
func (c *Cache) GetRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(TrackedCurrencies))
	for _, code := range TrackedCurrencies {
		rate, err := c.GetRate(ctx, code)
		if err != nil {
			if errors.Is(err, apperrors.ErrRateUnavailable) {
				continue
			}
			return nil, err
		}
		result[code] = rate
	}
	return result, nil
}

// SetRate stores a rate for a currency. Used by the refresher and by tests.
func (c *Cache) SetRate(ctx context.Context, currencyCode string, rate decimal.Decimal) error {
	if err := c.client.Set(ctx, rateKey(currencyCode), rate.String(), 0).Err(); err != nil {
		return fmt.Errorf("failed to store rate for %s: %w", currencyCode, err)
	}
	return nil
}

func rateKey(currencyCode string) string {
	return "rates:" + currencyCode
}
