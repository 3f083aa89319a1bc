package store

import (
	"context"
	"database/sql"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

type postgresRepository struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

const selectStore = `SELECT store_id, name, address, ST_AsBinary(location::geometry) FROM stores`

func (r *postgresRepository) Create(ctx context.Context, s *Store) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO stores (store_id, name, address, location)
		VALUES ($1, $2, $3, ST_GeomFromWKB($4, 4326)::geography)`,
		s.ID, s.Name, sql.NullString{String: s.Address, Valid: s.Address != ""}, wkb.Value(s.Location))
	return apperr.FromDB(err, "store")
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Store, error) {
	s, err := scanStore(r.db.QueryRowContext(ctx, selectStore+` WHERE store_id = $1`, id))
	if err != nil {
		return nil, apperr.FromDB(err, "store")
	}
	return s, nil
}

func (r *postgresRepository) Search(ctx context.Context, query string, limit, offset int) ([]*Store, error) {
	rows, err := r.db.QueryContext(ctx, selectStore+`
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR address ILIKE '%' || $1 || '%'
		ORDER BY name, store_id
		LIMIT $2 OFFSET $3`, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := []*Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *postgresRepository) Nearby(ctx context.Context, center orb.Point, radius float64) ([]*NearbyStore, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH q AS (SELECT ST_GeomFromWKB($1, 4326)::geography AS pt)
		SELECT s.store_id, s.name, s.address, ST_AsBinary(s.location::geometry),
		       ST_Distance(s.location, q.pt)
		FROM stores s, q
		WHERE ST_DWithin(s.location, q.pt, $2)
		ORDER BY 5, s.store_id`, wkb.Value(center), radius)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := []*NearbyStore{}
	for rows.Next() {
		n := &NearbyStore{}
		var address sql.NullString
		if err := rows.Scan(&n.ID, &n.Name, &address, wkb.Scanner(&n.Location), &n.DistanceMeters); err != nil {
			return nil, err
		}
		n.Address = address.String
		stores = append(stores, n)
	}
	return stores, rows.Err()
}

func (r *postgresRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM stores WHERE store_id = $1)`, id).Scan(&ok)
	return ok, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanStore(row scanner) (*Store, error) {
	s := &Store{}
	var address sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &address, wkb.Scanner(&s.Location)); err != nil {
		return nil, err
	}
	s.Address = address.String
	return s, nil
}
