// Package history keeps a local log of completed searches in a sqlite
// database under the user's data directory. The store is optional: when
// it cannot be opened the server runs without it.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is swapped in tests.
var openDB = sql.Open

// Record is one completed search.
type Record struct {
	ID           string
	Language     string
	Topic        string
	Outcome      string // "ok", "error", "no_results", "rate_limited"
	Provider     string
	TotalSources int
	Findings     int
	DurationMS   int64
	CacheHit     bool
	CreatedAt    time.Time
}

// Stats summarizes the stored log.
type Stats struct {
	TotalSearches int            `json:"total_searches"`
	CacheHits     int            `json:"cache_hits"`
	ByOutcome     map[string]int `json:"by_outcome"`
}

// Config controls where the database lives.
type Config struct {
	// DataDir overrides the default location, used in tests.
	DataDir string
}

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS searches (
	id            TEXT PRIMARY KEY,
	language      TEXT NOT NULL,
	topic         TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	provider      TEXT NOT NULL DEFAULT '',
	total_sources INTEGER NOT NULL DEFAULT 0,
	findings      INTEGER NOT NULL DEFAULT 0,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	cache_hit     INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);
`

// Open creates or opens the search log. With an empty DataDir the
// database lives under the XDG data home.
func Open(cfg Config) (*Store, error) {
	dir := cfg.DataDir
	if dir == "" {
		dir = filepath.Join(xdg.DataHome, "scout")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Add appends one record. A missing ID or timestamp is filled in.
func (s *Store) Add(rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO searches
		 (id, language, topic, outcome, provider, total_sources, findings, duration_ms, cache_hit, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Language, rec.Topic, rec.Outcome, rec.Provider,
		rec.TotalSources, rec.Findings, rec.DurationMS, rec.CacheHit, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// Recent returns the newest records, most recent first.
func (s *Store) Recent(limit int) ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, language, topic, outcome, provider, total_sources, findings, duration_ms, cache_hit, created_at
		 FROM searches ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying search history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Language, &rec.Topic, &rec.Outcome, &rec.Provider,
			&rec.TotalSources, &rec.Findings, &rec.DurationMS, &rec.CacheHit, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summary aggregates the full log.
func (s *Store) Summary() (Stats, error) {
	stats := Stats{ByOutcome: map[string]int{}}

	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(cache_hit), 0) FROM searches`)
	if err := row.Scan(&stats.TotalSearches, &stats.CacheHits); err != nil {
		return Stats{}, fmt.Errorf("summarizing search history: %w", err)
	}

	rows, err := s.db.Query(`SELECT outcome, COUNT(*) FROM searches GROUP BY outcome`)
	if err != nil {
		return Stats{}, fmt.Errorf("summarizing outcomes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning outcome count: %w", err)
		}
		stats.ByOutcome[outcome] = n
	}
	return stats, rows.Err()
}
