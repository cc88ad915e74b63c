// Package indexdb keeps a queryable read-model of a run in sqlite: one row
// per tick with digest, population and step time. It is fed asynchronously
// and never touches sim determinism; disabling it changes nothing about a
// run's states.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"evogrid.ai/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan world.TickLogEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
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

	s := &SQLiteIndex{
		db: db,
		// Buffered: a slow disk must not stall the sim loop.
		ch: make(chan world.TickLogEntry, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only workload; NORMAL is enough durability for a
	// secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			active INTEGER NOT NULL,
			food INTEGER NOT NULL,
			step_ms REAL NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_recorded_at ON ticks(recorded_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteTick enqueues one row; drops when the index is closed or the queue is
// full, since losing index rows is preferable to stalling a step.
func (s *SQLiteIndex) WriteTick(e world.TickLogEntry) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- e:
	default:
	}
}

func (s *SQLiteIndex) loop() {
	for e := range s.ch {
		_, err := s.db.Exec(
			`INSERT OR REPLACE INTO ticks (tick, digest, active, food, step_ms, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.Tick, e.Digest, e.Active, e.Food, e.StepMS,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			// Index writes are best-effort; keep draining.
			continue
		}
	}
}

// LatestTicks returns up to n most recent rows, newest first.
func (s *SQLiteIndex) LatestTicks(n int) ([]world.TickLogEntry, error) {
	rows, err := s.db.Query(
		`SELECT tick, digest, active, food, step_ms FROM ticks ORDER BY tick DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []world.TickLogEntry
	for rows.Next() {
		var e world.TickLogEntry
		if err := rows.Scan(&e.Tick, &e.Digest, &e.Active, &e.Food, &e.StepMS); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
