package routes

import (
	"context"
	"log/slog"
	"math"
	"sync"

	"github.com/example/cabshare/internal/models"
)

// PlaceResolver resolves a raw place string; nil means unresolved.
type PlaceResolver interface {
	Resolve(ctx context.Context, raw string) *models.ResolvedPlace
}

// Directions returns the best driving leg between two endpoint params.
type Directions interface {
	Route(ctx context.Context, origin, destination string) (*Leg, error)
}

// Service computes a normalized driving distance/duration between two raw
// place strings.
type Service struct {
	Resolver   PlaceResolver
	Directions Directions
	Cache      RouteCache // optional
	Logger     *slog.Logger
}

func NewService(resolver PlaceResolver, directions Directions, cache RouteCache, logger *slog.Logger) *Service {
	return &Service{Resolver: resolver, Directions: directions, Cache: cache, Logger: logger}
}

// ComputeDistance resolves both endpoints concurrently, falls back to the
// raw string for any endpoint that stays unresolved, and asks the
// directions provider for a route. A nil result means no route; it is an
// expected outcome for unroutable inputs and provider non-success, never a
// panic or error.
func (s *Service) ComputeDistance(ctx context.Context, originRaw, destRaw string) *models.RouteInfo {
	if s.Directions == nil {
		return nil
	}
	if s.Cache != nil {
		if info, ok := s.Cache.Get(ctx, originRaw, destRaw); ok {
			return info
		}
	}

	var origin, dest *models.ResolvedPlace
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		origin = s.Resolver.Resolve(ctx, originRaw)
	}()
	go func() {
		defer wg.Done()
		dest = s.Resolver.Resolve(ctx, destRaw)
	}()
	wg.Wait()

	originParam := originRaw
	if origin != nil {
		originParam = "place_id:" + origin.PlaceID
	}
	destParam := destRaw
	if dest != nil {
		destParam = "place_id:" + dest.PlaceID
	}

	leg, err := s.Directions.Route(ctx, originParam, destParam)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn("directions lookup failed", "origin", originRaw, "dest", destRaw, "error", err)
		}
		return nil
	}
	if leg == nil {
		return nil
	}

	seconds := leg.DurationSeconds
	if leg.TrafficSeconds > 0 {
		seconds = leg.TrafficSeconds
	}
	info := &models.RouteInfo{
		DistanceKm:   math.Round(float64(leg.DistanceMeters)/100) / 10,
		DurationMins: int(math.Round(float64(seconds) / 60)),
		OriginLabel:  leg.StartAddress,
		DestLabel:    leg.EndAddress,
	}
	// resolver labels are more stable than the provider's leg endpoints
	if origin != nil {
		info.OriginLabel = origin.Formatted
	}
	if dest != nil {
		info.DestLabel = dest.Formatted
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, originRaw, destRaw, *info)
	}
	return info
}
