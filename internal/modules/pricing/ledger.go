package pricing

import (
	"context"
	"database/sql"
	"errors"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceScale and maxPrice mirror the NUMERIC(18, 8) price columns. A price
// the column would round could never match its own ledger entry.
const PriceScale = 8

var maxPrice = decimal.New(1, 10)

// CheckPrice reports whether p can be stored as a price without rounding.
// field names the offending input in the error.
func CheckPrice(field string, p decimal.Decimal) error {
	if !p.IsPositive() {
		return apperr.Invalid("%s must be greater than zero", field)
	}
	if !p.Equal(p.Round(PriceScale)) {
		return apperr.Invalid("%s must have at most %d decimal places", field, PriceScale)
	}
	if p.GreaterThanOrEqual(maxPrice) {
		return apperr.Invalid("%s must be less than %s", field, maxPrice)
	}
	return nil
}

// DBTX is satisfied by both *sql.DB and *sql.Tx, so ledger writes can join
// a caller's transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Record appends o to the ledger unconditionally.
func Record(ctx context.Context, db DBTX, o *Observation) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO price_logs (log_id, product_barcode, store_id, user_id, price, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING recorded_at`,
		o.ID, o.Barcode, o.StoreID, o.UserID, o.Price, o.Currency,
	).Scan(&o.RecordedAt)
}

// RecordIfAbsent appends o unless the ledger already holds an observation
// with the same product, user, store and price. It reports whether a row
// was written.
//
// db must be a transaction: the advisory lock taken here is held until it
// commits, which serializes concurrent writers of the same tuple.
func RecordIfAbsent(ctx context.Context, db DBTX, o *Observation) (bool, error) {
	if _, err := db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1::text || '|' || $2::text || '|' || $3::text || '|' || $4::text))`,
		o.Barcode, o.UserID.String(), o.StoreID.String(), o.Price.String(),
	); err != nil {
		return false, err
	}

	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	err := db.QueryRowContext(ctx, `
		INSERT INTO price_logs (log_id, product_barcode, store_id, user_id, price, currency)
		SELECT $1::uuid, $2::char(13), $3::uuid, $4::uuid, $5::numeric(18, 8), $6::varchar
		WHERE NOT EXISTS (
			SELECT 1 FROM price_logs
			WHERE product_barcode = $2::char(13)
			  AND user_id = $4::uuid
			  AND store_id = $3::uuid
			  AND price = $5::numeric(18, 8)
		)
		RETURNING recorded_at`,
		o.ID, o.Barcode, o.StoreID, o.UserID, o.Price, o.Currency,
	).Scan(&o.RecordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
