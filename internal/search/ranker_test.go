package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/example/cabshare/internal/models"
)

type fixedEmbedder struct {
	vec   []float64
	calls int
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	return f.vec, nil
}

func ride(id, pickup, drop, datetime string, emb []float64) models.Ride {
	return models.Ride{
		ID: id, Name: "tester", Phone: "9999999999",
		Pickup: pickup, Drop: drop, Datetime: datetime, Seats: 2,
		RouteKey:  models.NormalizeRouteKey(pickup, drop),
		Embedding: emb,
	}
}

func TestRankPrefersFullMatch(t *testing.T) {
	q := models.Query{Pickup: "Main Gate", Drop: "Station", Date: "2026-09-01"}
	qVec := []float64{1, 0, 0}
	rides := []models.Ride{
		ride("weak", "Sector 2", "Airport", "2026-09-05T08:00", []float64{0, 1, 0}),
		ride("strong", "Main Gate", "Station", "2026-09-01T08:00", []float64{1, 0, 0}),
	}
	rk := NewRanker(&fixedEmbedder{vec: qVec}, nil)

	got := rk.Rank(context.Background(), q, rides)
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Ride.ID != "strong" {
		t.Fatalf("expected full match first, got %q", got[0].Ride.ID)
	}
	if got[0].Score <= got[1].Score {
		t.Fatalf("scores not ordered: %f <= %f", got[0].Score, got[1].Score)
	}
	top := got[0].Signals
	if !top.PickupMatch || !top.DropMatch || !top.SameDay || !top.ExactRoute {
		t.Fatalf("expected all signals set, got %+v", top)
	}
	// 1.0 sim + 0.25 + 0.25 + 0.10 + 0.15
	if top.EmbeddingSim < 0.999 {
		t.Fatalf("identical embedding should score ~1, got %f", top.EmbeddingSim)
	}
	if got[0].Score < 1.70 || got[0].Score > 1.76 {
		t.Fatalf("unexpected composite score %f", got[0].Score)
	}
}

func TestRankMissingEmbeddingContributesZero(t *testing.T) {
	q := models.Query{Pickup: "Main Gate"}
	rides := []models.Ride{ride("r1", "Main Gate", "Station", "2026-09-01T08:00", nil)}
	rk := NewRanker(&fixedEmbedder{vec: []float64{1, 2, 3}}, nil)

	got := rk.Rank(context.Background(), q, rides)
	if len(got) != 1 {
		t.Fatal("candidate without embedding must not be excluded")
	}
	if got[0].Signals.EmbeddingSim != 0 {
		t.Fatalf("expected 0 similarity, got %f", got[0].Signals.EmbeddingSim)
	}
	if got[0].Score != 0.25 {
		t.Fatalf("expected pickup weight only, got %f", got[0].Score)
	}
}

func TestRankRouteBonusRequiresBothSides(t *testing.T) {
	rides := []models.Ride{ride("r1", "Main Gate", "Station", "", nil)}
	rk := NewRanker(nil, nil)

	got := rk.Rank(context.Background(), models.Query{Pickup: "Main Gate"}, rides)
	if got[0].Signals.ExactRoute {
		t.Fatal("route bonus must not fire with an empty drop query")
	}

	got = rk.Rank(context.Background(), models.Query{Pickup: " main gate ", Drop: "STATION"}, rides)
	if !got[0].Signals.ExactRoute {
		t.Fatal("route key comparison must ignore case and edge whitespace")
	}
}

func TestRankTruncatesAfterSorting(t *testing.T) {
	var rides []models.Ride
	for i := 0; i < 50; i++ {
		r := ride(fmt.Sprintf("r%02d", i), "Pickup", "Drop", "", nil)
		if i == 49 {
			// only the last candidate matches the query pickup
			r.Pickup = "Main Gate"
		}
		rides = append(rides, r)
	}
	rk := NewRanker(nil, nil)

	got := rk.Rank(context.Background(), models.Query{Pickup: "Main Gate"}, rides)
	if len(got) != DefaultLimit {
		t.Fatalf("expected %d results, got %d", DefaultLimit, len(got))
	}
	if got[0].Ride.ID != "r49" {
		t.Fatal("truncation must happen after ranking, not before")
	}
}

func TestRankStableOnTies(t *testing.T) {
	rides := []models.Ride{
		ride("first", "A", "B", "", nil),
		ride("second", "C", "D", "", nil),
		ride("third", "E", "F", "", nil),
	}
	rk := NewRanker(nil, nil)
	for attempt := 0; attempt < 3; attempt++ {
		got := rk.Rank(context.Background(), models.Query{}, rides)
		for i, want := range []string{"first", "second", "third"} {
			if got[i].Ride.ID != want {
				t.Fatalf("tie order changed on attempt %d: %q at %d", attempt, got[i].Ride.ID, i)
			}
		}
	}
}

func TestFilterExactIsDeterministic(t *testing.T) {
	rides := []models.Ride{
		ride("r1", "Main Gate", "Station", "2026-09-01T08:00", nil),
		ride("r2", "SAC", "Airport", "2026-09-01T09:00", nil),
		ride("r3", "main gate east", "station road", "2026-09-02T10:00", nil),
	}
	q := models.Query{Pickup: "gate", Drop: "station"}

	first := FilterExact(q, rides)
	second := FilterExact(q, rides)
	if len(first) != 2 || first[0].ID != "r1" || first[1].ID != "r3" {
		t.Fatalf("unexpected filter result: %+v", first)
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatal("exact filtering must be order-preserving and repeatable")
		}
	}
}

func TestFilterExactKeywordSearchesAllFields(t *testing.T) {
	rides := []models.Ride{
		{ID: "by-notes", Pickup: "A", Drop: "B", Datetime: "2026-09-01T08:00", Notes: "leaving early morning", Name: "x"},
		{ID: "by-name", Pickup: "A", Drop: "B", Datetime: "2026-09-01T08:00", Name: "Morningstar"},
		{ID: "none", Pickup: "A", Drop: "B", Datetime: "2026-09-01T08:00", Name: "y"},
	}
	got := FilterExact(models.Query{Keywords: "morning"}, rides)
	if len(got) != 2 || got[0].ID != "by-notes" || got[1].ID != "by-name" {
		t.Fatalf("keyword filter wrong: %+v", got)
	}
}

func TestFilterExactDateSubstring(t *testing.T) {
	rides := []models.Ride{
		{ID: "today", Pickup: "A", Drop: "B", Datetime: "2026-09-01T08:00"},
		{ID: "other", Pickup: "A", Drop: "B", Datetime: "2026-10-01T08:00"},
	}
	got := FilterExact(models.Query{Date: "2026-09-01"}, rides)
	if len(got) != 1 || got[0].ID != "today" {
		t.Fatalf("date filter wrong: %+v", got)
	}
}
