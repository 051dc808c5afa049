// Package store persists fetched catalogue documents in SQLite so repeated
// runs do not hit the network.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bridge/internal/logging"

	_ "modernc.org/sqlite"
)

// FetchStore is the persistent tier of the fetch cache. Entries are written
// once and never updated; they leave only through Evict or Clear.
//
// Storage location: cache.path in bridge.yaml.
type FetchStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewFetchStore opens or creates the store at path.
func NewFetchStore(path string) (*FetchStore, error) {
	logging.CacheDebug("Initializing FetchStore at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps SQLite from reporting SQLITE_BUSY under the loader's
	// parallel fetches.
	db.SetMaxOpenConns(1)

	store := &FetchStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *FetchStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS fetch_cache (
		key TEXT PRIMARY KEY,
		body BLOB NOT NULL,
		fetched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create fetch_cache table: %w", err)
	}
	return nil
}

// Get returns the body stored under key.
func (s *FetchStore) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body []byte
	err := s.db.QueryRow("SELECT body FROM fetch_cache WHERE key = ?", key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return body, true, nil
}

// Put stores body under key unless the key is already present.
func (s *FetchStore) Put(key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT OR IGNORE INTO fetch_cache (key, body, fetched_at) VALUES (?, ?, ?)",
		key, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Evict deletes every entry whose key starts with prefix and returns how
// many went.
func (s *FetchStore) Evict(prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM fetch_cache WHERE key LIKE ? ESCAPE '\'`, likePrefix(prefix))
	if err != nil {
		return 0, fmt.Errorf("failed to evict %s: %w", prefix, err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry.
func (s *FetchStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM fetch_cache"); err != nil {
		return fmt.Errorf("failed to clear fetch_cache: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *FetchStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM fetch_cache").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count fetch_cache: %w", err)
	}
	return n, nil
}

// Path returns the database file.
func (s *FetchStore) Path() string { return s.dbPath }

// Close closes the database.
func (s *FetchStore) Close() error {
	return s.db.Close()
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
