package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/ovation22/TripleDerby-sub002/sim"
)

// SQLiteStore persists run records to a SQLite database.
type SQLiteStore struct {
	conn *sqlx.DB
}

// OpenSQLite opens or creates the results database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	store := &SQLiteStore{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS race_runs (
		run_id TEXT PRIMARY KEY,
		race_name TEXT NOT NULL,
		distance REAL NOT NULL,
		surface TEXT NOT NULL,
		condition TEXT NOT NULL,
		purse INTEGER NOT NULL,
		ticks INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_results (
		run_id TEXT NOT NULL REFERENCES race_runs(run_id),
		entrant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		place INTEGER NOT NULL,
		finished INTEGER NOT NULL,
		finish_tick REAL NOT NULL,
		distance REAL NOT NULL,
		stamina_left REAL NOT NULL,
		exhausted INTEGER NOT NULL,
		payout INTEGER NOT NULL,
		speed REAL NOT NULL,
		agility REAL NOT NULL,
		stamina REAL NOT NULL,
		durability REAL NOT NULL,
		happiness REAL NOT NULL,
		PRIMARY KEY (run_id, entrant_id)
	);

	CREATE TABLE IF NOT EXISTS run_commentary (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES race_runs(run_id),
		tick INTEGER NOT NULL,
		kind TEXT NOT NULL,
		text TEXT NOT NULL
	);`
	_, err := s.conn.Exec(schema)
	return err
}

// SaveResult writes the run record, per-entrant results, and commentary in
// one transaction.
func (s *SQLiteStore) SaveResult(ctx context.Context, result *sim.RaceResult) error {
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO race_runs (run_id, race_name, distance, surface, condition, purse, ticks)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Definition.Name, result.Definition.Distance,
		string(result.Definition.Surface), string(result.Condition),
		result.Definition.Purse, result.Ticks); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, r := range result.Order {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_results (run_id, entrant_id, name, place, finished, finish_tick,
			 distance, stamina_left, exhausted, payout, speed, agility, stamina, durability, happiness)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			result.RunID, r.EntrantID, r.Name, r.Place, r.Finished, r.FinishTick,
			r.Distance, r.StaminaLeft, r.Exhausted, r.Payout,
			r.Attributes.Speed, r.Attributes.Agility, r.Attributes.Stamina,
			r.Attributes.Durability, r.Happiness); err != nil {
			return fmt.Errorf("insert result for %s: %w", r.EntrantID, err)
		}
	}
	for _, ev := range result.Commentary {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_commentary (run_id, tick, kind, text) VALUES (?, ?, ?, ?)`,
			result.RunID, ev.Tick, string(ev.Kind), ev.Text); err != nil {
			return fmt.Errorf("insert commentary: %w", err)
		}
	}
	return tx.Commit()
}
