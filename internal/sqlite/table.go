package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/groomcrm/groomcrm/pkg/types"
)

// scanErr maps a row scan error to the store's error taxonomy.
func scanErr(entity string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrNotFound
	}
	return fmt.Errorf("scanning %s: %w", entity, err)
}

// table implements types.Table for a single entity type. Each table knows
// its entity name and the backend it belongs to.
type table struct {
	name    string
	backend *Backend
}

// Get retrieves an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *table) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	switch t.name {
	case types.TableClients:
		return t.getClient(id)
	case types.TableDogs:
		return t.getDog(id)
	case types.TableVisits:
		return t.getVisit(id)
	case types.TableEventLinks:
		return t.getEventLink(id)
	case types.TableVisitPhotos:
		return t.getVisitPhoto(id)
	default:
		return nil, types.ErrTableNotFound
	}
}

// Set creates or updates an entity. If id is empty, generates a UUID v7
// (event links derive their ID from the event pair instead).
// Returns the entity ID actually used.
func (t *table) Set(id string, data any) (string, error) {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	switch t.name {
	case types.TableClients:
		return t.setClient(id, data)
	case types.TableDogs:
		return t.setDog(id, data)
	case types.TableVisits:
		return t.setVisit(id, data)
	case types.TableEventLinks:
		return t.setEventLink(id, data)
	case types.TableVisitPhotos:
		return t.setVisitPhoto(id, data)
	default:
		return "", types.ErrTableNotFound
	}
}

// Delete removes an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *table) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	col, ok := idColumns[t.name]
	if !ok {
		return types.ErrTableNotFound
	}
	res, err := t.backend.db.Exec(
		fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, sqlTables[t.name], col), id)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", t.name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return nil
}

// Fetch returns entities matching the filter. Empty filter matches all.
// Filter keys are entity field names limited to indexed columns.
func (t *table) Fetch(filter map[string]any) ([]any, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	switch t.name {
	case types.TableClients:
		return t.fetchClients(filter)
	case types.TableDogs:
		return t.fetchDogs(filter)
	case types.TableVisits:
		return t.fetchVisits(filter)
	case types.TableEventLinks:
		return t.fetchEventLinks(filter)
	case types.TableVisitPhotos:
		return t.fetchVisitPhotos(filter)
	default:
		return nil, types.ErrTableNotFound
	}
}

// Patch merges a partial update into the stored entity and bumps its
// UpdatedAt. Unknown patch keys return ErrInvalidPatch.
func (t *table) Patch(id string, patch map[string]any) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	switch t.name {
	case types.TableClients:
		return t.patchClient(id, patch)
	case types.TableDogs:
		return t.patchDog(id, patch)
	case types.TableVisits:
		return t.patchVisit(id, patch)
	case types.TableEventLinks:
		return t.patchEventLink(id, patch)
	case types.TableVisitPhotos:
		return t.patchVisitPhoto(id, patch)
	default:
		return types.ErrTableNotFound
	}
}

// sqlTables maps entity table names to SQLite table names.
var sqlTables = map[string]string{
	types.TableClients:     "clients",
	types.TableDogs:        "dogs",
	types.TableVisits:      "visits",
	types.TableEventLinks:  "event_links",
	types.TableVisitPhotos: "visit_photos",
}

// idColumns maps entity table names to their primary key column.
var idColumns = map[string]string{
	types.TableClients:     "client_id",
	types.TableDogs:        "dog_id",
	types.TableVisits:      "visit_id",
	types.TableEventLinks:  "link_id",
	types.TableVisitPhotos: "photo_id",
}

// buildWhere turns a filter into a WHERE clause over the allowed columns.
// Returns ErrInvalidFilter for keys outside the allowed set; values other
// than strings are rejected the same way, all filterable columns being
// TEXT.
func buildWhere(filter map[string]any, allowed map[string]string) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	var conds []string
	var args []any
	for key, value := range filter {
		col, ok := allowed[key]
		if !ok {
			return "", nil, types.ErrInvalidFilter
		}
		s, ok := value.(string)
		if !ok {
			return "", nil, types.ErrInvalidFilter
		}
		conds = append(conds, col+" = ?")
		args = append(args, s)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
