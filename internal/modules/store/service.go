package store

import (
	"context"
	"strings"

	"github.com/georgemunganga/centimos-backend/internal/apperr"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 200

	DefaultRadius = 1000.0
	MinRadius     = 100.0
	MaxRadius     = 50000.0
)

// Service defines store business logic.
type Service interface {
	CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, id string) (*Store, error)
	SearchStores(ctx context.Context, query string, limit, offset int) ([]*Store, error)
	NearbyStores(ctx context.Context, lat, lon, radius float64) ([]*NearbyStore, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 100 {
		return nil, apperr.Invalid("name is required and must be at most 100 characters")
	}
	if err := checkCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	st := &Store{
		ID:       uuid.New(),
		Name:     name,
		Address:  strings.TrimSpace(req.Address),
		Location: orb.Point{req.Longitude, req.Latitude},
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) GetStore(ctx context.Context, id string) (*Store, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.NotFound("store")
	}
	return s.repo.GetByID(ctx, uid)
}

func (s *service) SearchStores(ctx context.Context, query string, limit, offset int) ([]*Store, error) {
	switch {
	case limit <= 0:
		limit = DefaultSearchLimit
	case limit > MaxSearchLimit:
		limit = MaxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.Search(ctx, strings.TrimSpace(query), limit, offset)
}

func (s *service) NearbyStores(ctx context.Context, lat, lon, radius float64) ([]*NearbyStore, error) {
	if err := checkCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if radius == 0 {
		radius = DefaultRadius
	}
	if radius < MinRadius || radius > MaxRadius {
		return nil, apperr.Invalid("radius_meters must be between %.0f and %.0f", MinRadius, MaxRadius)
	}
	return s.repo.Nearby(ctx, orb.Point{lon, lat}, radius)
}

func (s *service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func checkCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return apperr.Invalid("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return apperr.Invalid("longitude must be between -180 and 180")
	}
	return nil
}
