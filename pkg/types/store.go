package types

import "errors"

// Standard table names.
const (
	TableClients     = "clients"
	TableDogs        = "dogs"
	TableVisits      = "visits"
	TableEventLinks  = "eventLinks"
	TableVisitPhotos = "visitPhotos"
	TableKV          = "kv"
)

// Store defines backend-agnostic access to the record store. Callers attach
// to a backend, access tables by name, and detach when done.
type Store interface {
	// GetTable returns the Table for the given name.
	// Returns ErrTableNotFound if the name is not a standard table.
	GetTable(name string) (Table, error)

	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist and applies any pending
	// schema migrations. Returns ErrAlreadyAttached if called while
	// already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls
	// succeed. After Detach, operations on tables return ErrStoreDetached.
	Detach() error

	// GetOrCreateVisitForEvent returns the Visit keyed by the
	// (calendarID, eventID) pair, creating it with status planned when no
	// such visit exists. Calling it twice with the same pair returns the
	// same visit and creates exactly one row.
	GetOrCreateVisitForEvent(calendarID, eventID, dogID, dateISO string) (*Visit, error)

	// ReplaceAll clears every entity table and repopulates it from data
	// inside a single read-write transaction. If repopulation fails
	// partway, all five entity tables are left exactly as they were.
	// The kv table is not touched. Used exclusively by restore.
	ReplaceAll(data BackupData) error
}

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity
// struct.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table. Filter keys are entity field
	// names; only indexed fields are supported.
	Fetch(filter map[string]any) ([]any, error)

	// Patch merges the given fields into the stored entity and bumps its
	// UpdatedAt. Unknown patch keys return ErrInvalidPatch. Returns
	// ErrNotFound if no entity exists with that ID.
	Patch(id string, patch map[string]any) error
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// Table operation errors.
var (
	ErrNotFound     = errors.New("entity not found")
	ErrInvalidID    = errors.New("invalid entity ID")
	ErrInvalidData  = errors.New("invalid entity data")
	ErrInvalidPatch = errors.New("invalid patch field")
)

// Entity validation errors.
var (
	ErrInvalidStatus = errors.New("invalid visit status")
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidPrice  = errors.New("price must be a non-negative integer of cents")
	ErrInvalidPath   = errors.New("invalid photo relative path")
	ErrInvalidFilter = errors.New("invalid filter value type")
)
