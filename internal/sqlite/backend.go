package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/groomcrm/groomcrm/pkg/types"
)

// dbFileName is the SQLite database file created inside DataDir.
const dbFileName = "grooming.db"

// Backend implements types.Store using a durable SQLite database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]*table
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		tables: make(map[string]*table),
	}
}

// GetTable returns a Table accessor for the given table name.
// Returns ErrTableNotFound if the name is not recognized.
// Returns ErrStoreDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	t, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// Attach opens (or creates) the database under config.DataDir and applies
// pending schema migrations. Existing data is preserved.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFileName))
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return fmt.Errorf("migrate schema: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true

	b.tables[types.TableClients] = &table{name: types.TableClients, backend: b}
	b.tables[types.TableDogs] = &table{name: types.TableDogs, backend: b}
	b.tables[types.TableVisits] = &table{name: types.TableVisits, backend: b}
	b.tables[types.TableEventLinks] = &table{name: types.TableEventLinks, backend: b}
	b.tables[types.TableVisitPhotos] = &table{name: types.TableVisitPhotos, backend: b}

	return nil
}

// Detach closes the database. Idempotent. After Detach all table
// operations return ErrStoreDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil // idempotent
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.tables = make(map[string]*table)
	return nil
}

// GetOrCreateVisitForEvent finds the visit keyed by the event pair or
// creates one with status planned. Idempotent for a given pair.
func (b *Backend) GetOrCreateVisitForEvent(calendarID, eventID, dogID, dateISO string) (*types.Visit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	row := b.db.QueryRow(
		visitSelect+` WHERE calendar_id = ? AND calendar_event_id = ?`,
		calendarID, eventID)
	existing, err := scanVisit(row)
	if err == nil {
		return existing, nil
	}
	if err != types.ErrNotFound {
		return nil, err
	}

	now := time.Now()
	v := &types.Visit{
		VisitID:         generateUUID(),
		DogID:           dogID,
		CalendarID:      calendarID,
		CalendarEventID: eventID,
		DateISO:         dateISO,
		Status:          types.VisitStatusPlanned,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	if err := insertVisit(b.db, v); err != nil {
		return nil, fmt.Errorf("creating visit: %w", err)
	}
	return v, nil
}

// ReplaceAll clears all five entity tables and repopulates them from data
// inside one transaction. A failure anywhere rolls back to the pre-clear
// state; the kv table is never touched here.
func (b *Backend) ReplaceAll(data types.BackupData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return err
	}

	fail := func(err error) error {
		tx.Rollback()
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM clients`, `DELETE FROM dogs`, `DELETE FROM visits`,
		`DELETE FROM event_links`, `DELETE FROM visit_photos`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fail(err)
		}
	}

	for _, c := range data.Clients {
		if err := insertClient(tx, c); err != nil {
			return fail(fmt.Errorf("restore clients: %w", err))
		}
	}
	for _, d := range data.Dogs {
		if err := insertDog(tx, d); err != nil {
			return fail(fmt.Errorf("restore dogs: %w", err))
		}
	}
	for _, v := range data.Visits {
		if err := insertVisit(tx, v); err != nil {
			return fail(fmt.Errorf("restore visits: %w", err))
		}
	}
	for _, l := range data.EventLinks {
		if err := insertEventLink(tx, l); err != nil {
			return fail(fmt.Errorf("restore eventLinks: %w", err))
		}
	}
	for _, p := range data.VisitPhotos {
		if err := insertVisitPhoto(tx, p); err != nil {
			return fail(fmt.Errorf("restore visitPhotos: %w", err))
		}
	}

	return tx.Commit()
}

// execer is satisfied by both *sql.DB and *sql.Tx so inserts are shared
// between normal writes and the restore transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}

// nowRFC3339 formats the current time the way all timestamps are stored.
func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
