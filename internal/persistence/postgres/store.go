// Package postgres provides pgx-backed implementations of the activity
// catalog and the dish repository.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/effort/internal/dish"
	"example.com/effort/internal/effort"
	"example.com/effort/internal/observability"
)

// Store implements effort.Catalog and dish.Repository over a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Schema creates the tables the store expects. Callers run it at startup or
// from migration tooling.
const Schema = `
CREATE TABLE IF NOT EXISTS activities (
    activity_key  TEXT PRIMARY KEY,
    label         TEXT NOT NULL,
    met           DOUBLE PRECISION NOT NULL CHECK (met > 0 AND met <= 25),
    is_default    BOOLEAN NOT NULL DEFAULT FALSE,
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS dishes (
    dish_id       TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    calories      DOUBLE PRECISION NOT NULL CHECK (calories > 0),
    serving_text  TEXT NOT NULL DEFAULT '',
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS dishes_name_idx ON dishes (name, dish_id);
`

// EnsureSchema applies the schema.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

func scanActivity(row pgx.Row) (*effort.Activity, error) {
	var key, label string
	var metValue float64
	if err := row.Scan(&key, &label, &metValue); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	met, err := effort.NewMet(metValue)
	if err != nil {
		return nil, err
	}
	activity, err := effort.NewActivity(key, label, met)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (s *Store) queryActivities(ctx context.Context, query string, args ...any) ([]effort.Activity, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]effort.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *activity)
	}
	return out, rows.Err()
}

// GetByKey implements effort.Catalog.
func (s *Store) GetByKey(ctx context.Context, key string) (*effort.Activity, error) {
	const query = `SELECT activity_key, label, met FROM activities WHERE activity_key = $1`
	return scanActivity(s.pool.QueryRow(ctx, query, key))
}

// ListDefaults implements effort.Catalog.
func (s *Store) ListDefaults(ctx context.Context) ([]effort.Activity, error) {
	const query = `SELECT activity_key, label, met FROM activities WHERE is_default ORDER BY activity_key`
	return s.queryActivities(ctx, query)
}

// GetAll implements effort.Catalog.
func (s *Store) GetAll(ctx context.Context) ([]effort.Activity, error) {
	const query = `SELECT activity_key, label, met FROM activities ORDER BY activity_key`
	return s.queryActivities(ctx, query)
}

// GetByIntensity implements effort.Catalog. The MET bands mirror the domain
// classification: light < 3, moderate [3, 6), vigorous >= 6.
func (s *Store) GetByIntensity(ctx context.Context, intensity effort.Intensity) ([]effort.Activity, error) {
	const query = `SELECT activity_key, label, met FROM activities WHERE met >= $1 AND met < $2 ORDER BY activity_key`
	switch intensity {
	case effort.IntensityLight:
		return s.queryActivities(ctx, query, 0, 3)
	case effort.IntensityModerate:
		return s.queryActivities(ctx, query, 3, 6)
	case effort.IntensityVigorous:
		return s.queryActivities(ctx, query, 6, 26)
	default:
		return []effort.Activity{}, nil
	}
}

// GetByMETRange implements effort.Catalog.
func (s *Store) GetByMETRange(ctx context.Context, min, max float64) ([]effort.Activity, error) {
	const query = `SELECT activity_key, label, met FROM activities WHERE met >= $1 AND met <= $2 ORDER BY activity_key`
	return s.queryActivities(ctx, query, min, max)
}

// Search implements effort.Catalog with case-insensitive substring matching.
func (s *Store) Search(ctx context.Context, query string) ([]effort.Activity, error) {
	normalized := strings.TrimSpace(query)
	if normalized == "" {
		return s.GetAll(ctx)
	}
	const sql = `SELECT activity_key, label, met FROM activities
        WHERE activity_key ILIKE '%' || $1 || '%' OR label ILIKE '%' || $1 || '%'
        ORDER BY activity_key`
	return s.queryActivities(ctx, sql, normalized)
}

// UpsertActivity inserts or replaces a catalog entry.
func (s *Store) UpsertActivity(ctx context.Context, activity effort.Activity) error {
	const query = `INSERT INTO activities (activity_key, label, met, updated_at)
        VALUES ($1, $2, $3, now())
        ON CONFLICT (activity_key) DO UPDATE SET label = EXCLUDED.label, met = EXCLUDED.met, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, activity.Key, activity.Label, activity.Met.Value()); err != nil {
		return err
	}
	observability.RecordCatalogUpdate(time.Now().UTC())
	return nil
}

// DeleteActivity removes a catalog entry by key.
func (s *Store) DeleteActivity(ctx context.Context, key string) error {
	const query = `DELETE FROM activities WHERE activity_key = $1`
	if _, err := s.pool.Exec(ctx, query, key); err != nil {
		return err
	}
	observability.RecordCatalogUpdate(time.Now().UTC())
	return nil
}

// GetByID implements dish.Repository.
func (s *Store) GetByID(ctx context.Context, id string) (*dish.Dish, error) {
	const query = `SELECT dish_id, name, calories, serving_text FROM dishes WHERE dish_id = $1`
	row := s.pool.QueryRow(ctx, query, id)

	var d dish.Dish
	if err := row.Scan(&d.ID, &d.Name, &d.Calories, &d.ServingText); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// List implements dish.Repository with keyset pagination over (name, id).
func (s *Store) List(ctx context.Context, cursor *dish.Cursor, limit int) ([]dish.Dish, *dish.Cursor, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error
	if cursor == nil {
		const query = `SELECT dish_id, name, calories, serving_text FROM dishes
            ORDER BY name, dish_id LIMIT $1`
		rows, err = s.pool.Query(ctx, query, limit+1)
	} else {
		const query = `SELECT dish_id, name, calories, serving_text FROM dishes
            WHERE (name, dish_id) > ($1, $2)
            ORDER BY name, dish_id LIMIT $3`
		rows, err = s.pool.Query(ctx, query, cursor.Name, cursor.ID, limit+1)
	}
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	out := make([]dish.Dish, 0, limit)
	for rows.Next() {
		var d dish.Dish
		if err := rows.Scan(&d.ID, &d.Name, &d.Calories, &d.ServingText); err != nil {
			return nil, nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *dish.Cursor
	if len(out) > limit {
		out = out[:limit]
		last := out[len(out)-1]
		next = &dish.Cursor{Name: last.Name, ID: last.ID}
	}
	return out, next, nil
}

// Upsert implements dish.Repository.
func (s *Store) Upsert(ctx context.Context, d dish.Dish) error {
	const query = `INSERT INTO dishes (dish_id, name, calories, serving_text, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (dish_id) DO UPDATE SET name = EXCLUDED.name, calories = EXCLUDED.calories,
            serving_text = EXCLUDED.serving_text, updated_at = now()`
	_, err := s.pool.Exec(ctx, query, d.ID, d.Name, float64(d.Calories), d.ServingText)
	return err
}
