package met

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// defaultObservationsTable is queried when the config names no table.
const defaultObservationsTable = "observations"

// tableNamePattern restricts table names to plain (optionally
// schema-qualified) identifiers, since identifiers cannot be bound as query
// parameters.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

func validTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// PostgresSource reads observations from a PostgreSQL table with columns
// taken_at (timestamptz), pressure, temperature, and humidity; the latter
// two may be NULL. When the window is set, only rows inside it are
// returned. The connection string may come from the config file or the
// DATABASE_URL environment variable.
type PostgresSource struct {
	DatabaseURL string `json:"database_url,omitempty"`
	Table       string `json:"table,omitempty"`
}

func (s *PostgresSource) Describe() string {
	return fmt.Sprintf("PostgreSQL V1 (table %s)", s.Table)
}

func (s *PostgresSource) Read(ctx context.Context, win Window) ([]Observation, error) {
	pool, err := pgxpool.New(ctx, s.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	query := fmt.Sprintf(
		"SELECT taken_at, pressure, temperature, humidity FROM %s", s.Table)
	args := []any{}
	if !win.IsZero() {
		query += " WHERE taken_at >= $1 AND taken_at <= $2"
		args = append(args, win.First, win.Last)
	}
	query += " ORDER BY taken_at"

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", s.Table, err)
	}
	defer rows.Close()

	var obs []Observation
	for rows.Next() {
		var (
			takenAt     time.Time
			pressure    float64
			temperature *float64
			humidity    *float64
		)
		if err := rows.Scan(&takenAt, &pressure, &temperature, &humidity); err != nil {
			return nil, fmt.Errorf("scanning observation row: %w", err)
		}
		obs = append(obs, Observation{
			Time:        takenAt,
			Pressure:    pressure,
			Temperature: temperature,
			Humidity:    humidity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading observation rows: %w", err)
	}
	return obs, nil
}
