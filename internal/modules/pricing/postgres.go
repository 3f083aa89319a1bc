package pricing

import (
	"context"
	"database/sql"

	"github.com/paulmach/orb/encoding/wkb"
)

type postgresRepository struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func (r *postgresRepository) Record(ctx context.Context, o *Observation) error {
	return Record(ctx, r.db, o)
}

func (r *postgresRepository) ListByBarcode(ctx context.Context, barcode string) ([]*PriceSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pl.store_id, s.name, s.address, ST_AsBinary(s.location::geometry),
		       pl.price, pl.currency, pl.recorded_at
		FROM price_logs pl
		JOIN stores s ON s.store_id = pl.store_id
		WHERE pl.product_barcode = $1
		ORDER BY pl.recorded_at, pl.log_id`, barcode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*PriceSummary{}
	for rows.Next() {
		ps := &PriceSummary{}
		var address sql.NullString
		if err := rows.Scan(&ps.StoreID, &ps.StoreName, &address, wkb.Scanner(&ps.Location),
			&ps.Price, &ps.Currency, &ps.RecordedAt); err != nil {
			return nil, err
		}
		ps.Address = address.String
		summaries = append(summaries, ps)
	}
	return summaries, rows.Err()
}
