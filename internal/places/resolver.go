package places

import (
	"context"
	"log/slog"

	"github.com/example/cabshare/internal/models"
)

// Geocoder is the slice of the geocoding provider the resolver needs.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*models.ResolvedPlace, error)
}

// Resolver maps a raw place string to a routable place. The hostel-code
// short-circuit always runs before the provider; with no provider wired the
// resolver still handles campus codes and reports everything else
// unresolved.
type Resolver struct {
	Geo    Geocoder // optional
	Logger *slog.Logger
}

func NewResolver(geo Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{Geo: geo, Logger: logger}
}

// Resolve returns nil when the place cannot be resolved; callers fall back
// to the raw string. Partial resolution of an origin/destination pair is a
// normal outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, raw string) *models.ResolvedPlace {
	if IsHostelCode(raw) {
		return &models.ResolvedPlace{RawQuery: raw, PlaceID: CampusPlaceID, Formatted: CampusLabel}
	}
	if r.Geo == nil {
		return nil
	}
	place, err := r.Geo.Geocode(ctx, raw)
	if err != nil {
		if r.Logger != nil {
			r.Logger.Warn("geocode failed", "place", raw, "error", err)
		}
		return nil
	}
	return place
}
