// Package catalog provides SQLite-backed recording of structures discovered
// during a simulation: every distinct stable molecule and polymer, keyed by
// structural fingerprint, with first-seen tick and occurrence counts.
package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Discovery is one distinct structure observed in a world.
type Discovery struct {
	ID          string `db:"id" json:"id"`
	WorldID     string `db:"world_id" json:"world_id"`
	Kind        string `db:"kind" json:"kind"`
	Formula     string `db:"formula" json:"formula"`
	Fingerprint string `db:"fingerprint" json:"fingerprint"`
	Name        string `db:"name" json:"name,omitempty"`
	FirstTick   int64  `db:"first_tick" json:"first_tick"`
	LastTick    int64  `db:"last_tick" json:"last_tick"`
	Count       int64  `db:"count" json:"count"`
	FirstSeenAt int64  `db:"first_seen_at" json:"first_seen_at"`
}

// Catalog wraps a SQLite connection holding the discovery ledger.
type Catalog struct {
	conn *sqlx.DB
}

// Open opens or creates a catalog database at the given path.
func Open(path string) (*Catalog, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	c := &Catalog{conn: conn}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate catalog db: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.conn.Close()
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS discoveries (
		id TEXT PRIMARY KEY,
		world_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		formula TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		first_tick INTEGER NOT NULL,
		last_tick INTEGER NOT NULL,
		count INTEGER NOT NULL DEFAULT 1,
		first_seen_at INTEGER NOT NULL,
		UNIQUE(world_id, kind, fingerprint)
	);

	CREATE INDEX IF NOT EXISTS idx_discoveries_world ON discoveries(world_id);
	CREATE INDEX IF NOT EXISTS idx_discoveries_formula ON discoveries(formula);
	`
	_, err := c.conn.Exec(schema)
	return err
}

// Record registers one observation of a structure. The first observation of
// a (world, kind, fingerprint) triple inserts a new discovery; repeats bump
// the count and last-seen tick.
func (c *Catalog) Record(worldID, kind, formula, fingerprint, name string, tick int64) error {
	if fingerprint == "" {
		return fmt.Errorf("fingerprint is required")
	}
	_, err := c.conn.Exec(`INSERT INTO discoveries
		(id, world_id, kind, formula, fingerprint, name, first_tick, last_tick, count, first_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(world_id, kind, fingerprint)
		DO UPDATE SET count = count + 1, last_tick = excluded.last_tick`,
		uuid.NewString(), worldID, kind, formula, fingerprint, name, tick, tick,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record discovery: %w", err)
	}
	return nil
}

// Lookup retrieves one discovery by world, kind, and fingerprint.
func (c *Catalog) Lookup(worldID, kind, fingerprint string) (Discovery, error) {
	var d Discovery
	err := c.conn.Get(&d,
		"SELECT * FROM discoveries WHERE world_id = ? AND kind = ? AND fingerprint = ?",
		worldID, kind, fingerprint,
	)
	if err != nil {
		return Discovery{}, fmt.Errorf("lookup discovery: %w", err)
	}
	return d, nil
}

// ForWorld returns every discovery recorded for a world, newest first.
func (c *Catalog) ForWorld(worldID string) ([]Discovery, error) {
	var out []Discovery
	err := c.conn.Select(&out,
		"SELECT * FROM discoveries WHERE world_id = ? ORDER BY first_tick DESC",
		worldID,
	)
	if err != nil {
		return nil, fmt.Errorf("list discoveries: %w", err)
	}
	return out, nil
}

// All returns every discovery in the catalog, newest first.
func (c *Catalog) All() ([]Discovery, error) {
	var out []Discovery
	err := c.conn.Select(&out, "SELECT * FROM discoveries ORDER BY first_seen_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list discoveries: %w", err)
	}
	return out, nil
}

// CountForWorld returns the number of distinct structures a world has
// produced.
func (c *Catalog) CountForWorld(worldID string) (int64, error) {
	var n int64
	err := c.conn.Get(&n, "SELECT COUNT(*) FROM discoveries WHERE world_id = ?", worldID)
	if err != nil {
		return 0, fmt.Errorf("count discoveries: %w", err)
	}
	return n, nil
}
