package models

import (
	"fmt"
	"strings"
	"time"
)

// Ride is a posted trip. A ride is immutable after posting except for the
// enrichment fields (Embedding, DistanceKm, DurationMin), which the backfill
// worker may fill in later when the providers were unavailable at post time.
type Ride struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Pickup   string `json:"pickup"`
	Drop     string `json:"drop"`
	Datetime string `json:"datetime"` // ISO 8601 local, e.g. 2026-09-01T12:00
	Seats    int    `json:"seats"`
	Notes    string `json:"notes,omitempty"`
	RouteKey string `json:"route_key"`

	Embedding   []float64 `json:"embedding,omitempty"`
	DistanceKm  *float64  `json:"distance_km,omitempty"`
	DurationMin *int      `json:"duration_min,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Query is one search or chat turn. Empty fields mean "no constraint".
type Query struct {
	Pickup   string    `json:"pickup"`
	Drop     string    `json:"drop"`
	Keywords string    `json:"keywords"`
	Date     string    `json:"date"` // YYYY-MM-DD
	AsOf     time.Time `json:"-"`
}

// MatchSignals records why a ride scored the way it did.
type MatchSignals struct {
	EmbeddingSim float64 `json:"embedding_sim"`
	PickupMatch  bool    `json:"pickup_match"`
	DropMatch    bool    `json:"drop_match"`
	SameDay      bool    `json:"same_day"`
	ExactRoute   bool    `json:"exact_route"`
}

// ScoredRide is a ranked candidate. Derived per search, never persisted.
type ScoredRide struct {
	Ride    Ride         `json:"ride"`
	Score   float64      `json:"score"`
	Signals MatchSignals `json:"signals"`
}

// ResolvedPlace is one successful geocoder (or short-circuit) resolution.
// An unresolved place is a nil *ResolvedPlace, never an empty struct.
type ResolvedPlace struct {
	RawQuery  string `json:"raw_query"`
	PlaceID   string `json:"place_id"` // opaque provider token, without the place_id: prefix
	Formatted string `json:"formatted"`
}

// RouteInfo is a normalized driving route between two endpoints.
type RouteInfo struct {
	DistanceKm   float64 `json:"distance_km"`
	DurationMins int     `json:"duration_mins"`
	OriginLabel  string  `json:"origin_label"`
	DestLabel    string  `json:"dest_label"`
}

// NormalizeRouteKey builds the case/whitespace-insensitive key used for
// exact-route equality. Two routes are the same route iff their keys match.
func NormalizeRouteKey(pickup, drop string) string {
	return strings.ToLower(strings.TrimSpace(pickup)) + "__" + strings.ToLower(strings.TrimSpace(drop))
}

// RideText synthesizes the one-line ride description fed to the embedding
// provider. Posting, search and backfill all use this template so stored and
// query embeddings stay comparable.
func RideText(pickup, drop, datetime string) string {
	t := ""
	if datetime != "" {
		t = " at " + localizeDatetime(datetime)
	}
	return fmt.Sprintf("Ride from %s to %s%s.", pickup, drop, t)
}

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDatetime parses the ride datetime formats accepted at the posting
// boundary.
func ParseDatetime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range datetimeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func localizeDatetime(s string) string {
	ts, err := ParseDatetime(s)
	if err != nil {
		return s
	}
	return ts.Format("1/2/2006, 3:04:05 PM")
}
