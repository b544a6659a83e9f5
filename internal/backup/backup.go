// Package backup implements the export/import pipeline: it serializes the
// entire record store plus the allow-listed settings into one portable
// manifest, and restores a manifest with whole-store replacement
// semantics.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/groomcrm/groomcrm/pkg/groom"
	"github.com/groomcrm/groomcrm/pkg/types"
)

// Import validation errors. Each produces a distinct, user-actionable
// message; all of them abort before any mutation occurs.
var (
	ErrMalformedJSON         = errors.New("backup file is not valid JSON")
	ErrMissingSchemaVersion  = errors.New("backup file is missing schemaVersion")
	ErrSchemaVersionMismatch = errors.New("backup schema version does not match the current version")
	ErrInvalidStructure      = errors.New("backup file has an invalid data structure")
)

// Store is the slice of the record store the pipeline needs: the entity
// tables plus the typed settings wrapper.
type Store interface {
	types.Store
	GetKV(key string, out any) (bool, error)
	SetKV(key string, value any) error
	DeleteKV(key string) error
}

// Export reads every entity table plus the allow-listed settings keys and
// wraps them into a manifest stamped with the schema version and export
// time.
func Export(store Store, now time.Time) (*types.BackupManifest, error) {
	data := types.BackupData{KV: map[string]any{}}

	if err := exportTable(store, types.TableClients, func(e any) {
		data.Clients = append(data.Clients, e.(*types.Client))
	}); err != nil {
		return nil, err
	}
	if err := exportTable(store, types.TableDogs, func(e any) {
		data.Dogs = append(data.Dogs, e.(*types.Dog))
	}); err != nil {
		return nil, err
	}
	if err := exportTable(store, types.TableVisits, func(e any) {
		data.Visits = append(data.Visits, e.(*types.Visit))
	}); err != nil {
		return nil, err
	}
	if err := exportTable(store, types.TableEventLinks, func(e any) {
		data.EventLinks = append(data.EventLinks, e.(*types.EventLink))
	}); err != nil {
		return nil, err
	}
	if err := exportTable(store, types.TableVisitPhotos, func(e any) {
		data.VisitPhotos = append(data.VisitPhotos, e.(*types.VisitPhoto))
	}); err != nil {
		return nil, err
	}

	for _, key := range types.SafeKVKeys {
		var value any
		found, err := store.GetKV(key, &value)
		if err != nil {
			return nil, fmt.Errorf("exporting setting %q: %w", key, err)
		}
		if found {
			data.KV[key] = value
		}
	}

	return &types.BackupManifest{
		SchemaVersion: types.BackupSchemaVersion,
		ExportedAt:    now.UTC().Format(time.RFC3339),
		App: types.BackupAppInfo{
			Name:    groom.AppName,
			Version: groom.Version,
		},
		Data: data,
	}, nil
}

func exportTable(store Store, name string, collect func(any)) error {
	table, err := store.GetTable(name)
	if err != nil {
		return err
	}
	rows, err := table.Fetch(nil)
	if err != nil {
		return fmt.Errorf("exporting %s: %w", name, err)
	}
	for _, row := range rows {
		collect(row)
	}
	return nil
}

// Marshal renders a manifest as indented JSON for the export file.
func Marshal(m *types.BackupManifest) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// Filename builds the downloadable export filename for the given time.
func Filename(now time.Time) string {
	return fmt.Sprintf("%s_backup_%s.json", groom.AppName, now.Format("2006-01-02_15-04"))
}

// rawManifest mirrors the manifest shape with deferred decoding so the
// structure can be validated strictly before entity parsing.
type rawManifest struct {
	SchemaVersion *int            `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

type rawData struct {
	Clients     json.RawMessage `json:"clients"`
	Dogs        json.RawMessage `json:"dogs"`
	Visits      json.RawMessage `json:"visits"`
	EventLinks  json.RawMessage `json:"eventLinks"`
	VisitPhotos json.RawMessage `json:"visitPhotos"`
	KV          json.RawMessage `json:"kv"`
}

// Parse validates a backup file strictly, fail-closed: valid JSON, an
// exactly matching schema version, all five entity collections present as
// sequences, and the settings block present as a mapping. Any violation
// aborts before any mutation.
func Parse(raw []byte) (*types.BackupManifest, error) {
	var probe rawManifest
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	if probe.SchemaVersion == nil {
		return nil, ErrMissingSchemaVersion
	}
	if *probe.SchemaVersion != types.BackupSchemaVersion {
		return nil, fmt.Errorf("%w: backup version %d, current version %d",
			ErrSchemaVersionMismatch, *probe.SchemaVersion, types.BackupSchemaVersion)
	}
	if len(probe.Data) == 0 {
		return nil, fmt.Errorf("%w: missing data block", ErrInvalidStructure)
	}

	var data rawData
	if err := json.Unmarshal(probe.Data, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	for name, section := range map[string]json.RawMessage{
		"clients": data.Clients, "dogs": data.Dogs, "visits": data.Visits,
		"eventLinks": data.EventLinks, "visitPhotos": data.VisitPhotos,
	} {
		if !jsonStartsWith(section, '[') {
			return nil, fmt.Errorf("%w: %s must be an array", ErrInvalidStructure, name)
		}
	}
	if !jsonStartsWith(data.KV, '{') {
		return nil, fmt.Errorf("%w: kv must be an object", ErrInvalidStructure)
	}

	var manifest types.BackupManifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStructure, err)
	}
	return &manifest, nil
}

// jsonStartsWith reports whether the raw value is present and opens with
// the given delimiter.
func jsonStartsWith(raw json.RawMessage, delim byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == delim
}

// ApplyReplace restores a parsed manifest with whole-store replacement
// semantics: (1) delete the allow-listed settings keys outside any
// transaction, (2) replace all five entity tables in one transaction,
// (3) re-populate allow-listed settings from the manifest, filtering out
// any key not on the allow-list. A transaction failure leaves the entity
// tables exactly as they were; the settings pre-clear in step 1 is not
// covered by that rollback.
func ApplyReplace(store Store, manifest *types.BackupManifest) error {
	for _, key := range types.SafeKVKeys {
		if err := store.DeleteKV(key); err != nil {
			return fmt.Errorf("clearing setting %q: %w", key, err)
		}
	}

	if err := store.ReplaceAll(manifest.Data); err != nil {
		return err
	}

	for _, key := range types.SafeKVKeys {
		value, ok := manifest.Data.KV[key]
		if !ok {
			continue
		}
		if err := store.SetKV(key, value); err != nil {
			return fmt.Errorf("restoring setting %q: %w", key, err)
		}
	}
	return nil
}
