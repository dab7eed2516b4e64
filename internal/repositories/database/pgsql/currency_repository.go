package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/finflow/exchanger/internal/apperrors"
	"github.com/finflow/exchanger/internal/core/domain"
	portsrepo "github.com/finflow/exchanger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency reference data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) *PgxCurrencyRepository {
	return &PgxCurrencyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CurrencyRepository = (*PgxCurrencyRepository)(nil)

const currencyColumns = `
	currency_id, numeric_code, short_name, symbol, full_name, created_at, last_updated_at
`

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var cur domain.Currency
	err := row.Scan(
		&cur.CurrencyID,
		&cur.NumericCode,
		&cur.ShortName,
		&cur.Symbol,
		&cur.FullName,
		&cur.CreatedAt,
		&cur.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cur, nil
}

// FindCurrencyByShortName retrieves a currency by its short code, e.g. "USD".
func (r *PgxCurrencyRepository) FindCurrencyByShortName(ctx context.Context, shortName string) (*domain.Currency, error) {
	query := `SELECT` + currencyColumns + `FROM currencies WHERE short_name = $1;`

	cur, err := scanCurrency(r.Pool.QueryRow(ctx, query, shortName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: currency %s", apperrors.ErrNotFound, shortName)
		}
		return nil, fmt.Errorf("failed to find currency %s: %w", shortName, err)
	}
	return cur, nil
}

// ListCurrencies retrieves all supported currencies.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	query := `SELECT` + currencyColumns + `FROM currencies ORDER BY short_name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	currencies := []domain.Currency{}
	for rows.Next() {
		cur, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency row: %w", err)
		}
		currencies = append(currencies, *cur)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency rows: %w", err)
	}
	return currencies, nil
}
