package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/example/cabshare/internal/models"
)

func TestMemoryStorePreservesInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		r := &models.Ride{ID: fmt.Sprintf("r%d", i), Pickup: "A", Drop: "B"}
		if err := s.SaveRide(ctx, r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	list, err := s.ListRides(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for i, r := range list {
		if r.ID != fmt.Sprintf("r%d", i) {
			t.Fatalf("order broken at %d: %s", i, r.ID)
		}
	}
}

func TestMemoryStoreUpdateEnrichment(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.SaveRide(ctx, &models.Ride{ID: "r1"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	km := 12.3
	mins := 25
	if err := s.UpdateEnrichment(ctx, "r1", []float64{1, 2}, &km, &mins); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetRide(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Embedding) != 2 || got.DistanceKm == nil || *got.DistanceKm != 12.3 || got.DurationMin == nil || *got.DurationMin != 25 {
		t.Fatalf("enrichment not applied: %+v", got)
	}

	// nil fields must not clobber existing values
	if err := s.UpdateEnrichment(ctx, "r1", nil, nil, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.GetRide(ctx, "r1")
	if len(got.Embedding) != 2 {
		t.Fatal("empty update clobbered the embedding")
	}

	if err := s.UpdateEnrichment(ctx, "missing", nil, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
