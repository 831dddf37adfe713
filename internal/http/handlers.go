package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/cabshare/internal/ai"
	"github.com/example/cabshare/internal/config"
	"github.com/example/cabshare/internal/ingest"
	"github.com/example/cabshare/internal/intent"
	"github.com/example/cabshare/internal/models"
	"github.com/example/cabshare/internal/notify"
	"github.com/example/cabshare/internal/observability"
	"github.com/example/cabshare/internal/payments"
	"github.com/example/cabshare/internal/places"
	"github.com/example/cabshare/internal/pricing"
	"github.com/example/cabshare/internal/routes"
	"github.com/example/cabshare/internal/search"
	"github.com/example/cabshare/internal/storage"
)

type Server struct {
	cfg       config.ServerConfig
	logger    *slog.Logger
	store     storage.RideStore
	ranker    *search.Ranker
	embedder  search.Embedder
	distance  *routes.Service
	producer  *ingest.RideProducer
	watchers  *notify.RouteWatchers
	notifiers []notify.Notifier
	payments  *payments.StripeClient
	mux       *mux.Router
}

// NewServer wires the engine from config. Every external collaborator is
// optional: a missing credential disables its feature and the rest of the
// API keeps working.
func NewServer(cfg config.ServerConfig, logger *slog.Logger) *Server {
	var store storage.RideStore
	if cfg.PGDSN != "" {
		ps, err := storage.NewPostgresStore(cfg.PGDSN)
		if err != nil {
			logger.Error("postgres unavailable, falling back to memory store", "error", err)
		} else {
			store = ps
		}
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}

	var geocoder places.Geocoder
	var directions routes.Directions
	if cfg.MapsAPIKey != "" {
		if gc, err := places.NewGeocodeClient(cfg.MapsAPIKey); err == nil {
			geocoder = gc
		}
		if dc, err := routes.NewDirectionsClient(cfg.MapsAPIKey); err == nil {
			directions = dc
		}
	} else {
		logger.Warn("MAPS_API_KEY not set; distance features disabled")
	}
	resolver := places.NewResolver(geocoder, logger)

	var cache routes.RouteCache
	if cfg.RedisAddr != "" {
		cache = routes.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, "route", cfg.RouteCacheTTL)
	} else {
		cache = routes.NewCache(cfg.RouteCacheTTL)
	}
	distance := routes.NewService(resolver, directions, cache, logger)

	var embedder search.Embedder
	if cfg.GeminiAPIKey != "" {
		if ec, err := ai.NewEmbeddingClient(cfg.GeminiAPIKey); err == nil {
			embedder = ec
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set; smart search degrades to string signals")
	}
	ranker := search.NewRanker(embedder, logger)
	ranker.Limit = cfg.SearchLimit

	var producer *ingest.RideProducer
	if len(cfg.KafkaBrokers) > 0 {
		producer = ingest.NewRideProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	watchers := notify.NewRouteWatchers(logger)
	notifiers := []notify.Notifier{watchers}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.WebhookURL))
	}

	var pay *payments.StripeClient
	if pc, err := payments.NewStripeClient(); err == nil {
		pay = pc
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		ranker:    ranker,
		embedder:  embedder,
		distance:  distance,
		producer:  producer,
		watchers:  watchers,
		notifiers: notifiers,
		payments:  pay,
		mux:       mux.NewRouter(),
	}
	s.registerMiddleware()
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/v1/rides", s.handlePostRide).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides", s.handleListRides).Methods("GET")
	s.mux.HandleFunc("/api/v1/rides/search", s.handleSearch).Methods("POST")
	s.mux.HandleFunc("/api/v1/rides/{ride_id}/hold", s.handleHoldSeats).Methods("POST")
	s.mux.HandleFunc("/api/v1/chat/distance", s.handleChatDistance).Methods("POST")
	s.mux.HandleFunc("/api/v1/price", s.handlePrice).Methods("POST")
	s.mux.HandleFunc("/ws/alerts/{route_key}", s.handleWSAlerts)
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
	s.mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

type postRideRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Pickup   string `json:"pickup"`
	Drop     string `json:"drop"`
	Datetime string `json:"datetime"`
	Seats    int    `json:"seats"`
	Notes    string `json:"notes"`
}

func validatePostRide(req postRideRequest) error {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" ||
		strings.TrimSpace(req.Pickup) == "" || strings.TrimSpace(req.Drop) == "" ||
		strings.TrimSpace(req.Datetime) == "" {
		return errors.New("name, phone, pickup, drop and datetime are required")
	}
	if req.Seats < 1 {
		return errors.New("seats must be >= 1")
	}
	if _, err := models.ParseDatetime(req.Datetime); err != nil {
		return fmt.Errorf("invalid datetime: %w", err)
	}
	return nil
}

func (s *Server) handlePostRide(w http.ResponseWriter, r *http.Request) {
	var req postRideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validatePostRide(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ride := models.Ride{
		ID:        newID(),
		Name:      strings.TrimSpace(req.Name),
		Phone:     strings.TrimSpace(req.Phone),
		Pickup:    strings.TrimSpace(req.Pickup),
		Drop:      strings.TrimSpace(req.Drop),
		Datetime:  req.Datetime,
		Seats:     req.Seats,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedAt: time.Now().UTC(),
	}
	ride.RouteKey = models.NormalizeRouteKey(ride.Pickup, ride.Drop)

	ctx := r.Context()

	// Enrichment here is best-effort; the backfill worker picks up whatever
	// the providers could not deliver at post time.
	if s.embedder != nil {
		vec, err := s.embedder.Embed(ctx, models.RideText(ride.Pickup, ride.Drop, ride.Datetime))
		if err != nil {
			s.logger.Warn("post-time embedding failed", "ride_id", ride.ID, "error", err)
		} else if len(vec) > 0 {
			ride.Embedding = vec
		}
	}
	if info := s.distance.ComputeDistance(ctx, ride.Pickup, ride.Drop); info != nil {
		km := info.DistanceKm
		mins := info.DurationMins
		ride.DistanceKm = &km
		ride.DurationMin = &mins
		observability.DistanceLookupsTotal.WithLabelValues("ok").Inc()
	} else {
		observability.DistanceLookupsTotal.WithLabelValues("none").Inc()
	}

	if err := s.store.SaveRide(ctx, &ride); err != nil {
		s.logger.Error("save ride failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not save ride")
		return
	}
	observability.RidesPostedTotal.Inc()

	if s.producer != nil {
		if err := s.producer.PublishRidePosted(ride); err != nil {
			s.logger.Warn("ride event publish failed", "ride_id", ride.ID, "error", err)
		}
	}
	for _, n := range s.notifiers {
		if err := n.NotifyRide(ride); err != nil {
			s.logger.Warn("ride alert failed", "ride_id", ride.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, ride)
}

func (s *Server) handleListRides(w http.ResponseWriter, r *http.Request) {
	rides, err := s.store.ListRides(r.Context())
	if err != nil {
		s.logger.Error("list rides failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not list rides")
		return
	}
	if r.URL.Query().Get("all") != "true" {
		// the listing day boundary is the UTC calendar day
		today := time.Now().UTC().Format("2006-01-02")
		filtered := rides[:0]
		for _, ride := range rides {
			if strings.Contains(ride.Datetime, today) {
				filtered = append(filtered, ride)
			}
		}
		rides = filtered
	}
	writeJSON(w, http.StatusOK, map[string]any{"rides": rides, "count": len(rides)})
}

type searchRequest struct {
	Pickup   string `json:"pickup"`
	Drop     string `json:"drop"`
	Keywords string `json:"keywords"`
	Date     string `json:"date"`
	Smart    *bool  `json:"smart"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	smart := true
	if req.Smart != nil {
		smart = *req.Smart
	}
	q := models.Query{
		Pickup:   req.Pickup,
		Drop:     req.Drop,
		Keywords: req.Keywords,
		Date:     req.Date,
		AsOf:     time.Now(),
	}

	rides, err := s.store.ListRides(r.Context())
	if err != nil {
		s.logger.Error("list rides failed", "error", err)
		writeError(w, http.StatusInternalServerError, "could not search rides")
		return
	}

	start := time.Now()
	if !smart {
		matches := search.FilterExact(q, rides)
		observability.SearchesTotal.WithLabelValues("exact").Inc()
		observability.SearchLatency.Observe(time.Since(start).Seconds())
		writeJSON(w, http.StatusOK, map[string]any{"rides": matches, "count": len(matches)})
		return
	}

	scored := s.ranker.Rank(r.Context(), q, rides)
	observability.SearchesTotal.WithLabelValues("smart").Inc()
	observability.SearchLatency.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, map[string]any{"results": scored, "count": len(scored)})
}

func (s *Server) handleChatDistance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text required")
		return
	}
	if s.distance.Directions == nil {
		writeError(w, http.StatusInternalServerError, "distance provider not configured")
		return
	}

	if !intent.HasDistanceIntent(req.Text) {
		writeJSON(w, http.StatusOK, map[string]any{
			"reply": `Ask me about distance or travel time between two places, e.g. "Main Gate to Rourkela Station".`,
		})
		return
	}

	pair, ok := intent.Extract(req.Text)
	if !ok {
		pair, ok = intent.ExtractQuoted(req.Text)
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"reply": `I couldn't spot two places in that. Please name both ends, e.g. "NIT Rourkela Main Gate to Rourkela Railway Station".`,
		})
		return
	}

	info := s.distance.ComputeDistance(r.Context(), pair.Origin, pair.Destination)
	if info == nil {
		observability.DistanceLookupsTotal.WithLabelValues("none").Inc()
		writeJSON(w, http.StatusOK, map[string]any{
			"reply": `I tried to calculate the distance but couldn't resolve one of the places. Please try again with clearer names (e.g., "NIT Rourkela Main Gate to Rourkela Railway Station").`,
		})
		return
	}
	observability.DistanceLookupsTotal.WithLabelValues("ok").Inc()

	reply := fmt.Sprintf(
		"From: %s\nTo: %s\nDistance: %.1f km\nTravel time: %d minutes\n\nTip: Use this to split cab costs fairly among passengers.",
		info.OriginLabel, info.DestLabel, info.DistanceKm, info.DurationMins,
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"reply":       reply,
		"origin":      pair.Origin,
		"destination": pair.Destination,
		"route":       info,
	})
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var in pricing.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	fare, err := pricing.Estimate(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fare)
}

type holdRequest struct {
	Seats       int      `json:"seats"`
	CustomerID  string   `json:"customer_id"`
	Currency    string   `json:"currency"`
	DemandIndex *float64 `json:"demand_index"`
}

func (s *Server) handleHoldSeats(w http.ResponseWriter, r *http.Request) {
	if s.payments == nil {
		writeError(w, http.StatusServiceUnavailable, "payments not configured")
		return
	}
	var req holdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rideID := mux.Vars(r)["ride_id"]
	ride, err := s.store.GetRide(r.Context(), rideID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "ride not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load ride")
		return
	}
	if ride.DistanceKm == nil || ride.DurationMin == nil {
		writeError(w, http.StatusConflict, "ride has no route info yet")
		return
	}

	durationMin := float64(*ride.DurationMin)
	fare, err := pricing.Estimate(pricing.Input{
		DistanceKm:  ride.DistanceKm,
		DurationMin: &durationMin,
		Seats:       req.Seats,
		DemandIndex: req.DemandIndex,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "inr"
	}
	intentID, err := s.payments.HoldSeatFare(r.Context(), fare, req.Seats, currency, req.CustomerID)
	if err != nil {
		s.logger.Error("seat hold failed", "ride_id", rideID, "error", err)
		writeError(w, http.StatusBadGateway, "payment hold failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment_intent_id": intentID, "fare": fare})
}

var upgrader = websocket.Upgrader{}

func (s *Server) handleWSAlerts(w http.ResponseWriter, r *http.Request) {
	routeKey := mux.Vars(r)["route_key"]
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, "upgrade failed")
		return
	}
	s.watchers.Add(routeKey, conn)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
