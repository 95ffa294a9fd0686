// Package postgres loads observation sets from a Postgres table.
package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"itsa/domain/timeseries"
	"itsa/ports"
)

// observationRepository implements the ObservationSource interface
type observationRepository struct {
	db    *sqlx.DB
	table string
}

// NewObservationRepository creates an observation source over an existing
// connection. The table must carry the fixed observation schema.
func NewObservationRepository(db *sqlx.DB, table string) ports.ObservationSource {
	return &observationRepository{db: db, table: table}
}

// Connect opens and pings a Postgres connection.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Load reads the full observation set in time order and validates it.
func (r *observationRepository) Load(ctx context.Context) (*timeseries.Dataset, error) {
	query := fmt.Sprintf(`SELECT
		year, month, time_index, outcome_count, intervention, population, std_population
	FROM %s
	ORDER BY time_index ASC`, r.table)

	var obs []timeseries.Observation
	if err := r.db.SelectContext(ctx, &obs, query); err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}

	ds, err := timeseries.New(obs)
	if err != nil {
		return nil, err
	}
	log.Printf("[PostgresSource] Loaded %d observations from %s", ds.Len(), r.table)
	return ds, nil
}
