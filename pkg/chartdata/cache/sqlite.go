package cache

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tradelens/chartdata/internal/types"
	"github.com/tradelens/chartdata/pkg/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS ohlc_cache (
    key        TEXT PRIMARY KEY,
    bars       TEXT    NOT NULL,
    written_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ohlc_cache_written ON ohlc_cache(written_ms);
`

// SQLite is the client-tier persistent cache. It survives across sessions of
// the calling client so the same chart never costs a second network round
// trip within the TTL. Caching here is best-effort: write failures are
// swallowed, never a hard dependency of the chart render.
type SQLite struct {
	db     *sql.DB
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewSQLite opens (or creates) the cache database at path. Stale entries are
// pruned on open. An empty prefix selects DefaultClientPrefix; a non-positive
// ttl selects DefaultTTL.
func NewSQLite(path, prefix string, ttl time.Duration) (*SQLite, error) {
	if prefix == "" {
		prefix = DefaultClientPrefix
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeCacheOpenFailed, err, "open client cache at %q", path)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeCacheOpenFailed, "apply client cache schema", err)
	}

	s := &SQLite{
		db:     db,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
	s.prune()

	return s, nil
}

// Get returns the cached bars for the window if present and younger than the
// TTL. Entries older than the TTL are treated as absent.
func (s *SQLite) Get(symbol, startDate, endDate string, interval types.Interval) ([]types.Bar, bool) {
	key := ClientKey(s.prefix, symbol, startDate, endDate, interval)

	var (
		raw       string
		writtenMs int64
	)

	err := s.db.QueryRow(`SELECT bars, written_ms FROM ohlc_cache WHERE key = ?`, key).Scan(&raw, &writtenMs)
	if err != nil {
		return nil, false
	}

	if s.now().UnixMilli()-writtenMs > s.ttl.Milliseconds() {
		return nil, false
	}

	var bars []types.Bar
	if err := json.Unmarshal([]byte(raw), &bars); err != nil {
		return nil, false
	}

	if len(bars) == 0 {
		return nil, false
	}

	return bars, true
}

// Set stores bars for the window, silently overwriting any stale entry.
// Failures are swallowed.
func (s *SQLite) Set(symbol, startDate, endDate string, interval types.Interval, bars []types.Bar) {
	if len(bars) == 0 {
		return
	}

	raw, err := json.Marshal(bars)
	if err != nil {
		return
	}

	key := ClientKey(s.prefix, symbol, startDate, endDate, interval)

	_, _ = s.db.Exec(
		`INSERT OR REPLACE INTO ohlc_cache (key, bars, written_ms) VALUES (?, ?, ?)`,
		key, string(raw), s.now().UnixMilli(),
	)
}

// Close releases the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// prune drops entries past the TTL so the file doesn't grow without bound.
func (s *SQLite) prune() {
	cutoff := s.now().Add(-s.ttl).UnixMilli()
	_, _ = s.db.Exec(`DELETE FROM ohlc_cache WHERE written_ms < ?`, cutoff)
}
