package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/example/cabshare/internal/models"
)

// PostgresStore persists rides in Postgres. Embeddings are stored as a
// float8[] column so the ranker can read them back without a separate
// vector store.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

// Ping backs the worker's readiness probe.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresStore) SaveRide(ctx context.Context, r *models.Ride) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO rides (id, name, phone, pickup, drop_off, datetime, seats, notes, route_key, embedding, distance_km, duration_min, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		r.ID, r.Name, r.Phone, r.Pickup, r.Drop, r.Datetime, r.Seats, r.Notes, r.RouteKey,
		pq.Array(r.Embedding), r.DistanceKm, r.DurationMin, r.CreatedAt)
	return err
}

func (p *PostgresStore) UpdateEnrichment(ctx context.Context, id string, embedding []float64, distanceKm *float64, durationMin *int) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE rides
		SET embedding = COALESCE($2, embedding),
		    distance_km = COALESCE($3, distance_km),
		    duration_min = COALESCE($4, duration_min)
		WHERE id = $1`,
		id, embeddingParam(embedding), distanceKm, durationMin)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// embeddingParam maps an empty vector to SQL NULL so COALESCE keeps any
// previously stored embedding.
func embeddingParam(embedding []float64) interface{} {
	if len(embedding) == 0 {
		return nil
	}
	return pq.Array(embedding)
}

func (p *PostgresStore) GetRide(ctx context.Context, id string) (*models.Ride, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, name, phone, pickup, drop_off, datetime, seats, notes, route_key, embedding, distance_km, duration_min, created_at
		FROM rides WHERE id = $1`, id)
	r, err := scanRide(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (p *PostgresStore) ListRides(ctx context.Context) ([]models.Ride, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, phone, pickup, drop_off, datetime, seats, notes, route_key, embedding, distance_km, duration_min, created_at
		FROM rides ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRide(row rowScanner) (*models.Ride, error) {
	var r models.Ride
	var emb pq.Float64Array
	var distanceKm sql.NullFloat64
	var durationMin sql.NullInt64
	err := row.Scan(&r.ID, &r.Name, &r.Phone, &r.Pickup, &r.Drop, &r.Datetime, &r.Seats, &r.Notes,
		&r.RouteKey, &emb, &distanceKm, &durationMin, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(emb) > 0 {
		r.Embedding = []float64(emb)
	}
	if distanceKm.Valid {
		v := distanceKm.Float64
		r.DistanceKm = &v
	}
	if durationMin.Valid {
		v := int(durationMin.Int64)
		r.DurationMin = &v
	}
	return &r, nil
}

func (p *PostgresStore) Close() error { return p.db.Close() }
