// Package pricing estimates a fair total and per-seat fare for a ride from
// its route distance and duration. It is a pure formula; demand weighting is
// the only knob.
package pricing

import (
	"errors"
	"math"
)

const (
	baseFare   = 20.0
	fuelPerKm  = 8.0
	timePerMin = 0.8
	minFare    = 50.0
	roundStep  = 5.0
)

var (
	// ErrMissingRoute means distance or duration was absent from the input.
	ErrMissingRoute = errors.New("pricing: distance_km and duration_min required")
	// ErrInvalidSeats means the seat count was below 1.
	ErrInvalidSeats = errors.New("pricing: seats must be >= 1")
)

// Input uses pointers for the route fields and the demand index so "absent"
// and "zero" stay distinguishable at the boundary. An absent demand index
// defaults to 1; an explicit zero zeroes the raw fare and the minimum
// fare floor takes over.
type Input struct {
	DistanceKm  *float64 `json:"distance_km"`
	DurationMin *float64 `json:"duration_min"`
	Seats       int      `json:"seats"`
	DemandIndex *float64 `json:"demand_index"`
}

type Fare struct {
	Total   float64 `json:"total"`
	PerSeat float64 `json:"per_seat"`
}

// Estimate computes the total and per-seat fare. The total never drops
// below the minimum fare and both figures round half-up to the nearest
// five.
func Estimate(in Input) (Fare, error) {
	if in.DistanceKm == nil || in.DurationMin == nil {
		return Fare{}, ErrMissingRoute
	}
	if in.Seats < 1 {
		return Fare{}, ErrInvalidSeats
	}
	demand := 1.0
	if in.DemandIndex != nil {
		demand = *in.DemandIndex
	}

	raw := (baseFare + *in.DistanceKm*fuelPerKm + *in.DurationMin*timePerMin) * demand
	total := math.Max(minFare, roundToStep(raw))
	perSeat := roundToStep(total / float64(in.Seats))
	return Fare{Total: total, PerSeat: perSeat}, nil
}

// roundToStep rounds half-up to the nearest multiple of roundStep.
func roundToStep(n float64) float64 {
	return math.Floor(n/roundStep+0.5) * roundStep
}
