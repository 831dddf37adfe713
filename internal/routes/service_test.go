package routes

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/cabshare/internal/models"
)

type fakeResolver struct {
	mu     sync.Mutex
	places map[string]*models.ResolvedPlace
	calls  []string
}

func (f *fakeResolver) Resolve(ctx context.Context, raw string) *models.ResolvedPlace {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, raw)
	return f.places[raw]
}

type fakeDirections struct {
	leg        *Leg
	err        error
	lastOrigin string
	lastDest   string
}

func (f *fakeDirections) Route(ctx context.Context, origin, destination string) (*Leg, error) {
	f.lastOrigin = origin
	f.lastDest = destination
	return f.leg, f.err
}

func TestComputeDistanceResolvedPair(t *testing.T) {
	res := &fakeResolver{places: map[string]*models.ResolvedPlace{
		"Main Gate": {PlaceID: "pid-a", Formatted: "NIT Rourkela Main Gate"},
		"Station":   {PlaceID: "pid-b", Formatted: "Rourkela Railway Station"},
	}}
	dir := &fakeDirections{leg: &Leg{
		DistanceMeters:  12345,
		DurationSeconds: 1000,
		TrafficSeconds:  1234,
		StartAddress:    "leg start",
		EndAddress:      "leg end",
	}}
	s := NewService(res, dir, nil, nil)

	info := s.ComputeDistance(context.Background(), "Main Gate", "Station")
	if info == nil {
		t.Fatal("expected route info")
	}
	if dir.lastOrigin != "place_id:pid-a" || dir.lastDest != "place_id:pid-b" {
		t.Fatalf("expected place tokens, got %q -> %q", dir.lastOrigin, dir.lastDest)
	}
	if info.DistanceKm != 12.3 {
		t.Fatalf("distance = %v, want 12.3", info.DistanceKm)
	}
	// live traffic duration wins: 1234s -> 21 min
	if info.DurationMins != 21 {
		t.Fatalf("duration = %v, want 21", info.DurationMins)
	}
	if info.OriginLabel != "NIT Rourkela Main Gate" || info.DestLabel != "Rourkela Railway Station" {
		t.Fatalf("labels must prefer resolver output, got %q / %q", info.OriginLabel, info.DestLabel)
	}
}

func TestComputeDistancePartialResolutionFallsBackToRaw(t *testing.T) {
	res := &fakeResolver{places: map[string]*models.ResolvedPlace{
		"Main Gate": {PlaceID: "pid-a", Formatted: "NIT Rourkela Main Gate"},
	}}
	dir := &fakeDirections{leg: &Leg{DistanceMeters: 5000, DurationSeconds: 600, StartAddress: "a", EndAddress: "b"}}
	s := NewService(res, dir, nil, nil)

	info := s.ComputeDistance(context.Background(), "Main Gate", "somewhere obscure")
	if info == nil {
		t.Fatal("partial resolution must still produce a route")
	}
	if dir.lastDest != "somewhere obscure" {
		t.Fatalf("unresolved endpoint must pass through raw, got %q", dir.lastDest)
	}
	if info.DestLabel != "b" {
		t.Fatalf("unresolved endpoint keeps the leg label, got %q", info.DestLabel)
	}
	if info.DurationMins != 10 {
		t.Fatalf("nominal duration should be used without traffic data, got %d", info.DurationMins)
	}
}

func TestComputeDistanceNoRouteIsNil(t *testing.T) {
	s := NewService(&fakeResolver{}, &fakeDirections{leg: nil}, nil, nil)
	if info := s.ComputeDistance(context.Background(), "a", "b"); info != nil {
		t.Fatalf("expected nil on provider non-success, got %+v", info)
	}
}

func TestComputeDistanceTransportErrorIsNil(t *testing.T) {
	s := NewService(&fakeResolver{}, &fakeDirections{err: errors.New("timeout")}, nil, nil)
	if info := s.ComputeDistance(context.Background(), "a", "b"); info != nil {
		t.Fatalf("expected nil on transport error, got %+v", info)
	}
}

func TestComputeDistanceUsesCache(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.Set(context.Background(), "a", "b", models.RouteInfo{DistanceKm: 1.5, DurationMins: 4})
	dir := &fakeDirections{err: errors.New("should not be called")}
	s := NewService(&fakeResolver{}, dir, cache, nil)

	info := s.ComputeDistance(context.Background(), "a", "b")
	if info == nil || info.DistanceKm != 1.5 {
		t.Fatalf("expected cached info, got %+v", info)
	}
	if dir.lastOrigin != "" {
		t.Fatal("directions provider must not be called on cache hit")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(time.Millisecond)
	cache.Set(context.Background(), "a", "b", models.RouteInfo{DistanceKm: 1})
	time.Sleep(5 * time.Millisecond)
	if _, ok := cache.Get(context.Background(), "a", "b"); ok {
		t.Fatal("expected cache entry to expire")
	}
}
