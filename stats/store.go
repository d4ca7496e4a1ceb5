// Package stats keeps a SQLite history of finished matches.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nstehr/tidewatch/tidewatch-core/model"
	"github.com/nstehr/tidewatch/tidewatch-core/sim"
)

// Store is safe for use from one process; writes are serialised through a
// single connection.
type Store struct {
	db *sql.DB
}

// Match is one stored result.
type Match struct {
	ID         string
	RecordedAt time.Time
	Doctrines  [2]string
	sim.Result
}

// Open creates the database file and schema when missing. ":memory:" keeps
// everything in process.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			recorded_at INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			symmetry TEXT NOT NULL,
			doctrine_a TEXT NOT NULL,
			doctrine_b TEXT NOT NULL,
			winner TEXT NOT NULL,
			reason TEXT NOT NULL,
			rounds INTEGER NOT NULL,
			zones_a INTEGER NOT NULL,
			zones_b INTEGER NOT NULL,
			robots_a INTEGER NOT NULL,
			robots_b INTEGER NOT NULL,
			faults INTEGER NOT NULL,
			suspends INTEGER NOT NULL,
			overruns INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS matches_recorded_at ON matches(recorded_at);`,
		`CREATE TABLE IF NOT EXISTS match_events (
			match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (match_id, kind)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Record stores a finished match. A result without a match id is given a
// fresh one; the stored id is returned.
func (s *Store) Record(ctx context.Context, res sim.Result, doctrines [2]string) (string, error) {
	id := res.Match
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("match id %q: %w", id, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO matches (
			id, recorded_at, seed, width, height, symmetry, doctrine_a, doctrine_b,
			winner, reason, rounds, zones_a, zones_b, robots_a, robots_b,
			faults, suspends, overruns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().UnixMilli(), res.Seed, res.Width, res.Height, res.Symmetry.String(),
		doctrines[0], doctrines[1], res.Winner.String(), res.Reason, res.Rounds,
		res.Zones[model.TeamA], res.Zones[model.TeamB], res.Robots[model.TeamA], res.Robots[model.TeamB],
		res.Faults, res.Suspends, res.Overruns,
	)
	if err != nil {
		return "", fmt.Errorf("insert match: %w", err)
	}
	for kind, n := range res.Events {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_events (match_id, kind, count) VALUES (?, ?, ?)`, id, kind, n); err != nil {
			return "", fmt.Errorf("insert event %s: %w", kind, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Recent returns up to limit matches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
			id, recorded_at, seed, width, height, symmetry, doctrine_a, doctrine_b,
			winner, reason, rounds, zones_a, zones_b, robots_a, robots_b,
			faults, suspends, overruns
		FROM matches ORDER BY recorded_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var (
			m        Match
			at       int64
			sym, win string
		)
		if err := rows.Scan(&m.ID, &at, &m.Seed, &m.Width, &m.Height, &sym, &m.Doctrines[0], &m.Doctrines[1],
			&win, &m.Reason, &m.Rounds, &m.Zones[model.TeamA], &m.Zones[model.TeamB],
			&m.Robots[model.TeamA], &m.Robots[model.TeamB], &m.Faults, &m.Suspends, &m.Overruns); err != nil {
			return nil, err
		}
		m.Match = m.ID
		m.RecordedAt = time.UnixMilli(at).UTC()
		m.Symmetry = parseSymmetry(sym)
		m.Winner = parseTeam(win)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Events, err = s.events(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) events(ctx context.Context, id string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, count FROM match_events WHERE match_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out map[string]int
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		if out == nil {
			out = make(map[string]int)
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// Standing is one doctrine's record over every stored match it played.
type Standing struct {
	Doctrine string
	Played   int
	Won      int
	Drawn    int
}

// Standings tallies results per doctrine, most wins first.
func (s *Store) Standings(ctx context.Context) ([]Standing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doctrine, COUNT(*), SUM(won), SUM(drawn) FROM (
			SELECT doctrine_a AS doctrine, winner = 'A' AS won, winner = 'NEUTRAL' AS drawn FROM matches
			UNION ALL
			SELECT doctrine_b, winner = 'B', winner = 'NEUTRAL' FROM matches
		) GROUP BY doctrine ORDER BY SUM(won) DESC, doctrine`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Standing
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.Doctrine, &st.Played, &st.Won, &st.Drawn); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func parseSymmetry(s string) model.Symmetry {
	for _, sym := range model.KnownSymmetries {
		if sym.String() == s {
			return sym
		}
	}
	return model.Unknown
}

func parseTeam(s string) model.Team {
	switch s {
	case model.TeamA.String():
		return model.TeamA
	case model.TeamB.String():
		return model.TeamB
	default:
		return model.Neutral
	}
}
