package exchange

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
)

type postgresRepository struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func (r *postgresRepository) Create(ctx context.Context, rate *Rate) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO exchange_rates (rate_id, currency_code, rate_to_ves, source)
		VALUES ($1, $2, $3, $4)
		RETURNING recorded_at`,
		rate.ID, rate.CurrencyCode, rate.RateToVES, sql.NullString{String: rate.Source, Valid: rate.Source != ""},
	).Scan(&rate.RecordedAt)
}

func (r *postgresRepository) Latest(ctx context.Context, currency string) (*Rate, error) {
	rate, err := scanRate(r.db.QueryRowContext(ctx, `
		SELECT rate_id, currency_code, rate_to_ves, source, recorded_at
		FROM exchange_rates WHERE currency_code = $1
		ORDER BY recorded_at DESC LIMIT 1`, currency))
	if err != nil {
		return nil, apperr.FromDB(err, "exchange rate")
	}
	return rate, nil
}

func (r *postgresRepository) History(ctx context.Context, limit int) ([]*Rate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT rate_id, currency_code, rate_to_ves, source, recorded_at
		FROM exchange_rates ORDER BY recorded_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := []*Rate{}
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}

func scanRate(row interface{ Scan(...interface{}) error }) (*Rate, error) {
	rate := &Rate{}
	var source sql.NullString
	if err := row.Scan(&rate.ID, &rate.CurrencyCode, &rate.RateToVES, &source, &rate.RecordedAt); err != nil {
		return nil, err
	}
	rate.Source = source.String
	return rate, nil
}
