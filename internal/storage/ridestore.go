package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/example/cabshare/internal/models"
)

// ErrNotFound is returned for lookups of unknown ride ids.
var ErrNotFound = errors.New("storage: ride not found")

// RideStore defines persistence operations for posted rides.
type RideStore interface {
	SaveRide(ctx context.Context, r *models.Ride) error
	// UpdateEnrichment backfills the AI fields on an existing ride.
	UpdateEnrichment(ctx context.Context, id string, embedding []float64, distanceKm *float64, durationMin *int) error
	GetRide(ctx context.Context, id string) (*models.Ride, error)
	// ListRides returns all rides in insertion order.
	ListRides(ctx context.Context) ([]models.Ride, error)
}

// MemoryStore keeps rides in memory, used for local runs and tests. It
// preserves insertion order so search results stay deterministic.
type MemoryStore struct {
	mu    sync.RWMutex
	rides map[string]*models.Ride
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rides: make(map[string]*models.Ride)}
}

func (m *MemoryStore) SaveRide(_ context.Context, r *models.Ride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rides[r.ID]; !exists {
		m.order = append(m.order, r.ID)
	}
	cp := *r
	m.rides[r.ID] = &cp
	return nil
}

func (m *MemoryStore) UpdateEnrichment(_ context.Context, id string, embedding []float64, distanceKm *float64, durationMin *int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return ErrNotFound
	}
	if len(embedding) > 0 {
		r.Embedding = embedding
	}
	if distanceKm != nil {
		r.DistanceKm = distanceKm
	}
	if durationMin != nil {
		r.DurationMin = durationMin
	}
	return nil
}

func (m *MemoryStore) GetRide(_ context.Context, id string) (*models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryStore) ListRides(_ context.Context) ([]models.Ride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Ride, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.rides[id])
	}
	return out, nil
}
