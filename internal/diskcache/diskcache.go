// Package diskcache persists nominal transform sets in a SQLite database,
// keyed by the event-source content hash and the stage-configuration hash.
// Entries hold un-rescaled effective-area values: a cached set is valid for
// as long as both hashes match, independent of any physics-parameter
// values. The computation core never touches this package; callers wire it
// in as the external cache collaborator.
package diskcache

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/deepcore-data/aeff.report/internal/monitoring"
	"github.com/deepcore-data/aeff.report/internal/transform"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Cache is a SQLite-backed store of nominal transform sets.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path and applies
// pending schema migrations.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	c := &Cache{db: db}
	if err := c.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// migrateUp runs all pending migrations up to the latest version. Returns
// nil if no migrations were needed.
func (c *Cache) migrateUp() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(c.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// Note: we don't close m here because it would close the underlying DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Put stores a transform set under (eventsHash, configHash), replacing any
// previous entry for that key.
func (c *Cache) Put(eventsHash, configHash string, set *transform.Set) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("failed to encode transform set: %w", err)
	}
	id := uuid.NewString()
	_, err = c.db.Exec(`
		INSERT INTO transform_sets (id, events_hash, config_hash, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (events_hash, config_hash)
		DO UPDATE SET id = excluded.id, payload = excluded.payload,
		              created_at = CURRENT_TIMESTAMP`,
		id, eventsHash, configHash, payload)
	if err != nil {
		return fmt.Errorf("failed to store transform set: %w", err)
	}
	monitoring.Debugf("cached transform set %s for events %.12s / config %.12s", id, eventsHash, configHash)
	return nil
}

// Get loads the transform set stored under (eventsHash, configHash). The
// second return is false when no entry exists.
func (c *Cache) Get(eventsHash, configHash string) (*transform.Set, bool, error) {
	var payload []byte
	err := c.db.QueryRow(`
		SELECT payload FROM transform_sets
		WHERE events_hash = ? AND config_hash = ?`,
		eventsHash, configHash).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query transform set: %w", err)
	}
	var set transform.Set
	if err := json.Unmarshal(payload, &set); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached transform set: %w", err)
	}
	return &set, true, nil
}
