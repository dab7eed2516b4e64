package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// HomeCurrencyCode is the currency all oracle rates are quoted against.
// Rates are stored per non-home currency; the home leg is implicit.
const HomeCurrencyCode = "RUR"
