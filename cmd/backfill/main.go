package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"github.com/example/cabshare/internal/ai"
	"github.com/example/cabshare/internal/models"
	"github.com/example/cabshare/internal/places"
	"github.com/example/cabshare/internal/routes"
	"github.com/example/cabshare/internal/storage"
)

var (
	msgsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_messages_consumed_total",
		Help: "Total ride-posted events consumed",
	})
	msgsInvalid = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_messages_invalid_total",
		Help: "Total invalid events received",
	})
	ridesEnriched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_rides_enriched_total",
		Help: "Total rides updated with embedding or route info",
	})
	ridesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_rides_skipped_total",
		Help: "Total rides already fully enriched at post time",
	})
	enrichErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "backfill_enrich_errors_total",
		Help: "Total enrichment failures after retries",
	})
)

func init() {
	prometheus.MustRegister(msgsConsumed, msgsInvalid, ridesEnriched, ridesSkipped, enrichErrors)
}

func main() {
	var metricsAddr string
	flag.StringVar(&metricsAddr, "metrics-addr", ":2112", "address to serve prometheus metrics on")
	flag.Parse()

	brokersEnv := os.Getenv("KAFKA_BROKERS")
	if brokersEnv == "" {
		brokersEnv = os.Getenv("KAFKA_BROKER")
	}
	brokers := []string{}
	if brokersEnv != "" {
		for _, b := range strings.Split(brokersEnv, ",") {
			if s := strings.TrimSpace(b); s != "" {
				brokers = append(brokers, s)
			}
		}
	} else {
		brokers = []string{"localhost:9092"}
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "ride-posted"
	}
	group := os.Getenv("KAFKA_GROUP")
	if group == "" {
		group = "cabshare-backfill"
	}

	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		log.Fatal("PG_DSN is required for the backfill worker")
	}
	store, err := storage.NewPostgresStore(dsn)
	if err != nil {
		log.Fatalf("postgres open error: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var embedder embedClient
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		if ec, err := ai.NewEmbeddingClient(key); err == nil {
			embedder = ec
		}
	}

	var distance distanceClient
	if key := os.Getenv("MAPS_API_KEY"); key != "" {
		var geocoder places.Geocoder
		if gc, err := places.NewGeocodeClient(key); err == nil {
			geocoder = gc
		}
		var directions routes.Directions
		if dc, err := routes.NewDirectionsClient(key); err == nil {
			directions = dc
		}
		var cache routes.RouteCache
		if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
			cache = routes.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), "route", 10*time.Minute)
		} else {
			cache = routes.NewCache(10 * time.Minute)
		}
		distance = routes.NewService(places.NewResolver(geocoder, logger), directions, cache, logger)
	}
	if embedder == nil && distance == nil {
		log.Fatal("neither GEMINI_API_KEY nor MAPS_API_KEY is set; nothing to backfill")
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
		mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			if err := store.Ping(r.Context()); err != nil {
				http.Error(w, "postgres not ready", 503)
				return
			}
			w.WriteHeader(200)
			w.Write([]byte("ready"))
		})
		log.Printf("metrics/health listening on %s", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := kafka.NewReader(kafka.ReaderConfig{Brokers: brokers, Topic: topic, GroupID: group, MinBytes: 10e3, MaxBytes: 10e6})
	defer func() {
		_ = r.Close()
	}()

	log.Printf("backfill listening topic=%s brokers=%v group=%s", topic, brokers, group)

	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		m, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("shutting down backfill worker")
				return
			}
			log.Printf("kafka read error: %v; backing off %s", err, backoff)
			time.Sleep(backoff)
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = time.Second

		msgsConsumed.Inc()

		var ride models.Ride
		if err := json.Unmarshal(m.Value, &ride); err != nil || ride.ID == "" {
			msgsInvalid.Inc()
			log.Printf("invalid event: %v", err)
			continue
		}

		embedding, distanceKm, durationMin := enrich(ctx, ride, embedder, distance)
		if embedding == nil && distanceKm == nil {
			ridesSkipped.Inc()
			continue
		}

		if err := updateWithRetry(ctx, store, ride.ID, embedding, distanceKm, durationMin, 3, 200*time.Millisecond); err != nil {
			enrichErrors.Inc()
			log.Printf("enrichment update failed for ride=%s: %v", ride.ID, err)
			continue
		}
		ridesEnriched.Inc()
	}
}

// embedClient and distanceClient keep the providers swappable in tests.
type embedClient interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

type distanceClient interface {
	ComputeDistance(ctx context.Context, origin, dest string) *models.RouteInfo
}

// enrich fills whatever the ride is still missing. A nil return in both
// embedding and distance means there was nothing to do.
func enrich(ctx context.Context, ride models.Ride, embedder embedClient, distance distanceClient) ([]float64, *float64, *int) {
	var embedding []float64
	if len(ride.Embedding) == 0 && embedder != nil {
		text := models.RideText(ride.Pickup, ride.Drop, ride.Datetime)
		if vec, err := embedder.Embed(ctx, text); err != nil {
			log.Printf("embedding failed for ride=%s: %v", ride.ID, err)
		} else if len(vec) > 0 {
			embedding = vec
		}
	}

	var distanceKm *float64
	var durationMin *int
	if ride.DistanceKm == nil && distance != nil {
		if info := distance.ComputeDistance(ctx, ride.Pickup, ride.Drop); info != nil {
			km := info.DistanceKm
			mins := info.DurationMins
			distanceKm = &km
			durationMin = &mins
		}
	}
	return embedding, distanceKm, durationMin
}

// rideUpdater defines the small subset of store operations we need for
// tests and production.
type rideUpdater interface {
	UpdateEnrichment(ctx context.Context, id string, embedding []float64, distanceKm *float64, durationMin *int) error
}

func updateWithRetry(ctx context.Context, store rideUpdater, id string, embedding []float64, distanceKm *float64, durationMin *int, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = store.UpdateEnrichment(ctx, id, embedding, distanceKm, durationMin); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
