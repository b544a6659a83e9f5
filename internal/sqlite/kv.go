package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/groomcrm/groomcrm/pkg/types"
)

// Key-value settings store: a thin typed wrapper over the kv table.
// Values are stored JSON-encoded so any marshalable value round-trips.

// GetKV decodes the value stored under key into out. The boolean reports
// whether the key was present; a missing key is not an error.
func (b *Backend) GetKV(key string, out any) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false, types.ErrStoreDetached
	}

	var raw string
	err := b.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading kv %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("decoding kv %q: %w", key, err)
	}
	return true, nil
}

// SetKV stores value under key, replacing any existing value.
func (b *Backend) SetKV(key string, value any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding kv %q: %w", key, err)
	}
	_, err = b.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(raw))
	if err != nil {
		return fmt.Errorf("writing kv %q: %w", key, err)
	}
	return nil
}

// DeleteKV removes key from the settings store. Deleting a missing key
// succeeds.
func (b *Backend) DeleteKV(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	if _, err := b.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting kv %q: %w", key, err)
	}
	return nil
}
