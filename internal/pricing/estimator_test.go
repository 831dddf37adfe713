package pricing

import (
	"errors"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestEstimateKnownFare(t *testing.T) {
	// raw = 20 + 10*8 + 30*0.8 = 124 -> total 125, per seat 65
	fare, err := Estimate(Input{DistanceKm: fp(10), DurationMin: fp(30), Seats: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare.Total != 125 {
		t.Fatalf("total = %v, want 125", fare.Total)
	}
	if fare.PerSeat != 65 {
		t.Fatalf("per seat = %v, want 65", fare.PerSeat)
	}
}

func TestEstimateMinimumFare(t *testing.T) {
	fare, err := Estimate(Input{DistanceKm: fp(0.5), DurationMin: fp(2), Seats: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare.Total != 50 {
		t.Fatalf("total = %v, want floor of 50", fare.Total)
	}
}

func TestEstimateDemandIndex(t *testing.T) {
	// raw = 124 * 1.5 = 186 -> 185
	fare, err := Estimate(Input{DistanceKm: fp(10), DurationMin: fp(30), Seats: 1, DemandIndex: fp(1.5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare.Total != 185 {
		t.Fatalf("total = %v, want 185", fare.Total)
	}
}

func TestEstimateExplicitZeroDemand(t *testing.T) {
	// an explicit zero is not "absent": it zeroes the raw fare and the
	// minimum fare floor takes over
	fare, err := Estimate(Input{DistanceKm: fp(10), DurationMin: fp(30), Seats: 1, DemandIndex: fp(0)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare.Total != 50 {
		t.Fatalf("total = %v, want minimum fare 50", fare.Total)
	}

	// absent demand defaults to 1
	fare, err = Estimate(Input{DistanceKm: fp(10), DurationMin: fp(30), Seats: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fare.Total != 125 {
		t.Fatalf("total = %v, want 125", fare.Total)
	}
}

func TestEstimateValidation(t *testing.T) {
	if _, err := Estimate(Input{DurationMin: fp(30), Seats: 2}); !errors.Is(err, ErrMissingRoute) {
		t.Fatalf("expected ErrMissingRoute, got %v", err)
	}
	if _, err := Estimate(Input{DistanceKm: fp(10), Seats: 2}); !errors.Is(err, ErrMissingRoute) {
		t.Fatalf("expected ErrMissingRoute, got %v", err)
	}
	if _, err := Estimate(Input{DistanceKm: fp(10), DurationMin: fp(30), Seats: 0}); !errors.Is(err, ErrInvalidSeats) {
		t.Fatalf("expected ErrInvalidSeats, got %v", err)
	}
}

func TestRoundHalfUp(t *testing.T) {
	if got := roundToStep(62.5); got != 65 {
		t.Fatalf("62.5 should round up to 65, got %v", got)
	}
	if got := roundToStep(62.4); got != 60 {
		t.Fatalf("62.4 should round down to 60, got %v", got)
	}
}
