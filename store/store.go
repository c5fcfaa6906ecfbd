// Package store archives finished runs and their per-tick metrics in SQLite.
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/feralcats/telemetry"
)

// Run is one archived simulation run.
type Run struct {
	ID               string    `db:"id"`
	Seed             int64     `db:"seed"`
	CreatedAt        time.Time `db:"created_at"`
	Ticks            int       `db:"ticks"`
	FinalCats        int       `db:"final_cats"`
	FinalPrey        int       `db:"final_prey"`
	PredationTotal   int       `db:"predation_total"`
	CoexistenceTicks int       `db:"coexistence_ticks"`
	Config           string    `db:"config_yaml"`
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		ticks INTEGER NOT NULL,
		final_cats INTEGER NOT NULL,
		final_prey INTEGER NOT NULL,
		predation_total INTEGER NOT NULL,
		coexistence_ticks INTEGER NOT NULL,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metrics (
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		cats INTEGER NOT NULL,
		prey INTEGER NOT NULL,
		predation_events INTEGER NOT NULL,
		predation_total INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun writes the run record and its metrics in one transaction.
// A run with an existing ID is replaced.
func (db *DB) SaveRun(run Run, snaps []telemetry.TickSnapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM metrics WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clear metrics: %w", err)
	}
	_, err = tx.NamedExec(`INSERT OR REPLACE INTO runs
		(id, seed, created_at, ticks, final_cats, final_prey, predation_total, coexistence_ticks, config_yaml)
		VALUES (:id, :seed, :created_at, :ticks, :final_cats, :final_prey, :predation_total, :coexistence_ticks, :config_yaml)`,
		run)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO metrics
		(run_id, tick, cats, prey, predation_events, predation_total)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range snaps {
		if _, err := stmt.Exec(run.ID, s.Tick, s.LiveCats, s.LivePrey, s.PredationThisTick, s.PredationTotal); err != nil {
			return fmt.Errorf("insert metrics tick %d: %w", s.Tick, err)
		}
	}

	return tx.Commit()
}

// Runs returns every archived run, newest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs, "SELECT * FROM runs ORDER BY created_at DESC, id")
	return runs, err
}

// GetRun returns the run with the given ID.
func (db *DB) GetRun(id string) (Run, error) {
	var run Run
	err := db.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", id)
	return run, err
}

// LoadMetrics returns the per-tick metrics of a run in tick order.
func (db *DB) LoadMetrics(runID string) ([]telemetry.TickSnapshot, error) {
	var snaps []telemetry.TickSnapshot
	err := db.conn.Select(&snaps,
		"SELECT tick, cats, prey, predation_events, predation_total FROM metrics WHERE run_id = ? ORDER BY tick",
		runID,
	)
	return snaps, err
}

// RunFromSummary builds a run record for a finished simulation.
func RunFromSummary(id string, seed int64, sum telemetry.Summary, configYAML string) Run {
	return Run{
		ID:               id,
		Seed:             seed,
		CreatedAt:        time.Now().UTC(),
		Ticks:            sum.Ticks,
		FinalCats:        sum.FinalCats,
		FinalPrey:        sum.FinalPrey,
		PredationTotal:   sum.PredationTotal,
		CoexistenceTicks: sum.CoexistenceTicks,
		Config:           configYAML,
	}
}
