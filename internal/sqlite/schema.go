// Package sqlite implements the SQLite record store backend for the
// grooming CRM. The database file is durable across attaches; schema
// changes are expressed as versioned, idempotent migrations applied once
// at Attach.
package sqlite

import "database/sql"

// Schema DDL. Foreign keys are deliberately absent: EventLink.dog_id and
// visit_photos.visit_id are soft references that resolve to "unknown" at
// read time instead of failing writes.
const (
	createClients = `CREATE TABLE IF NOT EXISTS clients (
    client_id TEXT PRIMARY KEY,
    owner_name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createClientsIndexes = `CREATE INDEX IF NOT EXISTS idx_clients_owner_name ON clients(owner_name);
CREATE INDEX IF NOT EXISTS idx_clients_created_at ON clients(created_at);`

	createDogs = `CREATE TABLE IF NOT EXISTS dogs (
    dog_id TEXT PRIMARY KEY,
    client_id TEXT NOT NULL DEFAULT '',
    dog_name TEXT NOT NULL,
    breed TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    tags TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createDogsIndexes = `CREATE INDEX IF NOT EXISTS idx_dogs_client_id ON dogs(client_id);
CREATE INDEX IF NOT EXISTS idx_dogs_dog_name ON dogs(dog_name);
CREATE INDEX IF NOT EXISTS idx_dogs_created_at ON dogs(created_at);`

	createVisits = `CREATE TABLE IF NOT EXISTS visits (
    visit_id TEXT PRIMARY KEY,
    dog_id TEXT NOT NULL,
    calendar_id TEXT NOT NULL,
    calendar_event_id TEXT NOT NULL,
    date_iso TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    price_cents INTEGER,
    duration_min INTEGER,
    status TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createVisitsIndexes = `CREATE INDEX IF NOT EXISTS idx_visits_dog_id ON visits(dog_id);
CREATE INDEX IF NOT EXISTS idx_visits_date_iso ON visits(date_iso);
CREATE INDEX IF NOT EXISTS idx_visits_created_at ON visits(created_at);`

	createEventLinks = `CREATE TABLE IF NOT EXISTS event_links (
    link_id TEXT PRIMARY KEY,
    calendar_id TEXT NOT NULL,
    calendar_event_id TEXT NOT NULL,
    dog_id TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);`

	createEventLinksIndexes = `CREATE UNIQUE INDEX IF NOT EXISTS idx_event_links_event ON event_links(calendar_id, calendar_event_id);
CREATE INDEX IF NOT EXISTS idx_event_links_dog_id ON event_links(dog_id);
CREATE INDEX IF NOT EXISTS idx_event_links_updated_at ON event_links(updated_at);`

	createKV = `CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

	createVisitPhotos = `CREATE TABLE IF NOT EXISTS visit_photos (
    photo_id TEXT PRIMARY KEY,
    visit_id TEXT NOT NULL,
    name TEXT NOT NULL,
    relative_path TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createVisitPhotosIndexes = `CREATE INDEX IF NOT EXISTS idx_visit_photos_visit_id ON visit_photos(visit_id);
CREATE INDEX IF NOT EXISTS idx_visit_photos_created_at ON visit_photos(created_at);`

	// The find-or-create path requires uniqueness of the event pair.
	createVisitsEventIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_visits_event ON visits(calendar_id, calendar_event_id);`

	createMigrations = `CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);`
)

// migration is one versioned schema step. Migrations run in version order
// inside their own transaction and are recorded in schema_migrations so
// each applies exactly once.
type migration struct {
	version int
	stmts   []string
}

// migrations is the full ordered history. Version 1 is the base schema;
// version 2 adds the visit photo table and widens the visit index with the
// unique (calendar_id, calendar_event_id) pair.
var migrations = []migration{
	{
		version: 1,
		stmts: []string{
			createClients, createClientsIndexes,
			createDogs, createDogsIndexes,
			createVisits, createVisitsIndexes,
			createEventLinks, createEventLinksIndexes,
			createKV,
		},
	},
	{
		version: 2,
		stmts: []string{
			createVisitPhotos, createVisitPhotosIndexes,
			createVisitsEventIndex,
		},
	},
}

// migrate applies every migration with a version greater than the recorded
// maximum. Safe to call on every Attach.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(createMigrations); err != nil {
		return err
	}

	var current sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&current); err != nil {
		return err
	}

	for _, m := range migrations {
		if current.Valid && int64(m.version) <= current.Int64 {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}
		if _, err := tx.Exec(
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			m.version, nowRFC3339()); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}
