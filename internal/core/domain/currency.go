package domain

// Currency is an immutable reference entity. Rows come from seed data and are
// never mutated by the engines.
type Currency struct {
	CurrencyID  int64  `json:"currencyID"`  // Primary Key
	NumericCode string `json:"numericCode"` // ISO 4217 numeric code, e.g. "840"
	ShortName   string `json:"shortName"`   // e.g. "USD"
	Symbol      string `json:"symbol"`      // e.g. "$"
	FullName    string `json:"fullName"`    // e.g. "US Dollar"
	AuditFields
}
