// Package search ranks posted rides against a user query. Two modes exist:
// an exact substring filter and the default smart mode, which blends
// embedding similarity with string and temporal signals.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/example/cabshare/internal/models"
	"github.com/example/cabshare/internal/vectormath"
)

// Weights are the hand-tuned signal weights for smart ranking. They live in
// a struct so tuning never touches the scoring loop.
type Weights struct {
	Sim        float64
	Pickup     float64
	Drop       float64
	SameDay    float64
	RouteBonus float64
}

func DefaultWeights() Weights {
	return Weights{Sim: 1.0, Pickup: 0.25, Drop: 0.25, SameDay: 0.10, RouteBonus: 0.15}
}

// DefaultLimit bounds the smart-mode shortlist. Truncation happens after
// ranking, never before.
const DefaultLimit = 36

// Embedder produces the query embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type Ranker struct {
	Embedder Embedder // optional; without it similarity contributes 0
	Weights  Weights
	Limit    int
	Logger   *slog.Logger
}

func NewRanker(embedder Embedder, logger *slog.Logger) *Ranker {
	return &Ranker{Embedder: embedder, Weights: DefaultWeights(), Limit: DefaultLimit, Logger: logger}
}

// FilterExact is the non-AI search path: case-insensitive substring
// containment on every non-empty query field, ANDed together. The result
// keeps the candidates' insertion order; no scoring happens.
func FilterExact(q models.Query, rides []models.Ride) []models.Ride {
	pickup := strings.ToLower(strings.TrimSpace(q.Pickup))
	drop := strings.ToLower(strings.TrimSpace(q.Drop))
	kw := strings.ToLower(strings.TrimSpace(q.Keywords))
	date := strings.TrimSpace(q.Date)

	out := make([]models.Ride, 0, len(rides))
	for _, r := range rides {
		if pickup != "" && !strings.Contains(strings.ToLower(r.Pickup), pickup) {
			continue
		}
		if drop != "" && !strings.Contains(strings.ToLower(r.Drop), drop) {
			continue
		}
		if kw != "" {
			hit := strings.Contains(strings.ToLower(r.Pickup), kw) ||
				strings.Contains(strings.ToLower(r.Drop), kw) ||
				strings.Contains(strings.ToLower(r.Name), kw) ||
				strings.Contains(strings.ToLower(r.Notes), kw)
			if !hit {
				continue
			}
		}
		if date != "" && !strings.Contains(r.Datetime, date) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Rank scores every candidate against the query and returns a descending
// shortlist. Ties keep the candidates' original order (stable sort, no
// secondary key) and the list is truncated to the configured limit after
// sorting. Candidates without an embedding contribute 0 similarity instead
// of being excluded.
func (rk *Ranker) Rank(ctx context.Context, q models.Query, rides []models.Ride) []models.ScoredRide {
	queryText := models.RideText(q.Pickup, q.Drop, q.Date)
	kw := strings.ToLower(strings.TrimSpace(q.Keywords))
	if kw != "" {
		queryText += " Keywords: " + kw
	}

	var queryEmb []float64
	if rk.Embedder != nil {
		v, err := rk.Embedder.Embed(ctx, queryText)
		if err != nil {
			if rk.Logger != nil {
				rk.Logger.Warn("query embedding failed", "error", err)
			}
		} else {
			queryEmb = v
		}
	}

	pickup := strings.ToLower(strings.TrimSpace(q.Pickup))
	drop := strings.ToLower(strings.TrimSpace(q.Drop))
	date := strings.TrimSpace(q.Date)
	queryKey := models.NormalizeRouteKey(q.Pickup, q.Drop)
	w := rk.Weights

	scored := make([]models.ScoredRide, 0, len(rides))
	for _, r := range rides {
		var sig models.MatchSignals
		if len(r.Embedding) > 0 {
			sig.EmbeddingSim = vectormath.CosineSimilarity(queryEmb, r.Embedding)
		}
		sig.PickupMatch = pickup != "" && strings.Contains(strings.ToLower(r.Pickup), pickup)
		sig.DropMatch = drop != "" && strings.Contains(strings.ToLower(r.Drop), drop)
		sig.SameDay = date != "" && strings.Contains(r.Datetime, date)
		sig.ExactRoute = pickup != "" && drop != "" &&
			models.NormalizeRouteKey(r.Pickup, r.Drop) == queryKey

		score := w.Sim * sig.EmbeddingSim
		if sig.PickupMatch {
			score += w.Pickup
		}
		if sig.DropMatch {
			score += w.Drop
		}
		if sig.SameDay {
			score += w.SameDay
		}
		if sig.ExactRoute {
			score += w.RouteBonus
		}
		scored = append(scored, models.ScoredRide{Ride: r, Score: score, Signals: sig})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	limit := rk.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
