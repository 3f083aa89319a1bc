package store

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Store is a physical shop where prices are observed. Stores are never
// edited after creation.
type Store struct {
	ID       uuid.UUID
	Name     string
	Address  string
	Location orb.Point // lon, lat
}

type storeJSON struct {
	ID        uuid.UUID `json:"store_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Longitude float64   `json:"longitude"`
	Latitude  float64   `json:"latitude"`
}

func (s Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(storeJSON{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		Longitude: s.Location.Lon(),
		Latitude:  s.Location.Lat(),
	})
}

// NearbyStore is a store found by a radius search.
type NearbyStore struct {
	Store
	DistanceMeters float64 `json:"distance_meters"`
}

func (n NearbyStore) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		storeJSON
		DistanceMeters float64 `json:"distance_meters"`
	}{
		storeJSON: storeJSON{
			ID:        n.ID,
			Name:      n.Name,
			Address:   n.Address,
			Longitude: n.Location.Lon(),
			Latitude:  n.Location.Lat(),
		},
		DistanceMeters: n.DistanceMeters,
	})
}

// CreateStoreRequest holds the data for creating a store.
type CreateStoreRequest struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}
