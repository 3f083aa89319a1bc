package catalog

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
)

type postgresRepository struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func (r *postgresRepository) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	p := &Product{}
	var brand, category, imageURL sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT barcode, name, brand, category, image_url, data_source, created_at
		FROM products WHERE barcode = $1`, barcode).Scan(
		&p.Barcode, &p.Name, &brand, &category, &imageURL, &p.DataSource, &p.CreatedAt,
	)
	if err != nil {
		return nil, apperr.FromDB(err, "product")
	}
	p.Brand, p.Category, p.ImageURL = brand.String, category.String, imageURL.String
	return p, nil
}

func (r *postgresRepository) Create(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (barcode, name, brand, category, image_url, data_source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		p.Barcode, p.Name, nullable(p.Brand), nullable(p.Category), nullable(p.ImageURL), p.DataSource,
	).Scan(&p.CreatedAt)
	return apperr.FromDB(err, "product")
}

func (r *postgresRepository) Upsert(ctx context.Context, p *Product) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (barcode, name, brand, category, image_url, data_source)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (barcode) DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			category = EXCLUDED.category,
			image_url = EXCLUDED.image_url,
			data_source = EXCLUDED.data_source
		RETURNING created_at`,
		p.Barcode, p.Name, nullable(p.Brand), nullable(p.Category), nullable(p.ImageURL), p.DataSource,
	).Scan(&p.CreatedAt)
	return apperr.FromDB(err, "product")
}

func (r *postgresRepository) Exists(ctx context.Context, barcode string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE barcode = $1)`, barcode).Scan(&ok)
	return ok, err
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
