// Package results persists finished run summaries to SQLite.
// Only aggregate statistics are stored; lattices are never written.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	sim "github.com/hubbard-sim/hubbard-sim/sim"
)

// RunRecord is one stored run.
type RunRecord struct {
	ID                 int64
	CreatedAt          time.Time
	Policy             string
	Size               int
	U                  float64
	T                  float64
	RequestedElectrons int
	FieldStrength      float64
	Seed               *int64
	Ensemble           string // ensemble label; empty for standalone runs
	Replica            int
	Steps              int64
	Accepted           int64
	AcceptanceRate     float64
	Flux               int64
	FluxPercentage     float64
	TotalElectrons     int
	TotalPaired        int
	PairingEvents      int
	UnpairingEvents    int
}

// NewRunRecord flattens a finished run into a RunRecord.
func NewRunRecord(policy sim.InitPolicy, cfg sim.SimulationConfig, m *sim.Metrics, c sim.PairingCounters) RunRecord {
	return RunRecord{
		Policy:             string(policy),
		Size:               cfg.Size,
		U:                  cfg.U,
		T:                  cfg.T,
		RequestedElectrons: c.RequestedElectrons,
		FieldStrength:      cfg.FieldStrength,
		Seed:               cfg.Seed,
		Steps:              m.Attempts,
		Accepted:           m.Accepted,
		AcceptanceRate:     m.AcceptanceRate(),
		Flux:               m.Flux,
		FluxPercentage:     m.FluxPercentage(),
		TotalElectrons:     c.TotalElectrons,
		TotalPaired:        c.TotalPaired,
		PairingEvents:      c.PairingEvents,
		UnpairingEvents:    c.UnpairingEvents,
	}
}

// Store is a SQLite-backed run log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and initializes the
// schema. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite works best with a single writer; also keeps :memory: on one connection.
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts r and returns its row ID. CreatedAt defaults to now.
func (s *Store) SaveRun(ctx context.Context, r RunRecord) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	var seed sql.NullInt64
	if r.Seed != nil {
		seed = sql.NullInt64{Int64: *r.Seed, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			created_at, policy, size, u, t, requested_electrons, field_strength, seed,
			ensemble, replica, steps, accepted, acceptance_rate, flux, flux_percentage,
			total_electrons, total_paired, pairing_events, unpairing_events
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.CreatedAt.Format(time.RFC3339Nano), r.Policy, r.Size, r.U, r.T, r.RequestedElectrons,
		r.FieldStrength, seed, r.Ensemble, r.Replica, r.Steps, r.Accepted, r.AcceptanceRate,
		r.Flux, r.FluxPercentage, r.TotalElectrons, r.TotalPaired, r.PairingEvents, r.UnpairingEvents,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}
	return id, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, created_at, policy, size, u, t, requested_electrons, field_strength, seed,
			ensemble, replica, steps, accepted, acceptance_rate, flux, flux_percentage,
			total_electrons, total_paired, pairing_events, unpairing_events
		FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r         RunRecord
			createdAt string
			seed      sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &createdAt, &r.Policy, &r.Size, &r.U, &r.T, &r.RequestedElectrons,
			&r.FieldStrength, &seed, &r.Ensemble, &r.Replica, &r.Steps, &r.Accepted, &r.AcceptanceRate,
			&r.Flux, &r.FluxPercentage, &r.TotalElectrons, &r.TotalPaired, &r.PairingEvents, &r.UnpairingEvents,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
		}
		if seed.Valid {
			v := seed.Int64
			r.Seed = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return out, nil
}
