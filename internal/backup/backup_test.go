package backup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groomcrm/groomcrm/internal/sqlite"
	"github.com/groomcrm/groomcrm/pkg/types"
)

func setupStore(t *testing.T) *sqlite.Backend {
	t.Helper()
	b := sqlite.NewBackend()
	require.NoError(t, b.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { b.Detach() })
	return b
}

// seedStore populates a store with a small linked data set and returns the
// created visit ID.
func seedStore(t *testing.T, b *sqlite.Backend) string {
	t.Helper()

	clients, err := b.GetTable(types.TableClients)
	require.NoError(t, err)
	clientID, err := clients.Set("", &types.Client{OwnerName: "Dana", Phone: "555-0100"})
	require.NoError(t, err)

	dogs, err := b.GetTable(types.TableDogs)
	require.NoError(t, err)
	dogID, err := dogs.Set("", &types.Dog{DogName: "Rex", ClientID: clientID, Tags: []string{"nervous"}})
	require.NoError(t, err)

	visit, err := b.GetOrCreateVisitForEvent("cal", "ev-1", dogID, time.Now().Format(time.RFC3339))
	require.NoError(t, err)

	links, err := b.GetTable(types.TableEventLinks)
	require.NoError(t, err)
	_, err = links.Set("", &types.EventLink{CalendarID: "cal", CalendarEventID: "ev-1", DogID: dogID})
	require.NoError(t, err)

	photos, err := b.GetTable(types.TableVisitPhotos)
	require.NoError(t, err)
	_, err = photos.Set("", &types.VisitPhoto{
		VisitID:      visit.VisitID,
		Name:         "after_1_0.jpg",
		RelativePath: types.PhotoRelativePath(visit.VisitID, "after_1_0.jpg"),
	})
	require.NoError(t, err)

	require.NoError(t, b.SetKV(types.KVSelectedCalendarID, "cal"))
	return visit.VisitID
}

// Exporting, wiping, and restoring must reproduce every row with
// identical field values.
func TestExportRestoreRoundTrip(t *testing.T) {
	b := setupStore(t)
	seedStore(t, b)

	manifest, err := Export(b, time.Now())
	require.NoError(t, err)
	raw, err := Marshal(manifest)
	require.NoError(t, err)

	// Restore into a fresh, empty store.
	b2 := setupStore(t)
	parsed, err := Parse(raw)
	require.NoError(t, err)
	require.NoError(t, ApplyReplace(b2, parsed))

	reexported, err := Export(b2, time.Now())
	require.NoError(t, err)
	assert.Equal(t, manifest.Data, reexported.Data)
}

func TestExportIncludesOnlySafeKVKeys(t *testing.T) {
	b := setupStore(t)
	require.NoError(t, b.SetKV(types.KVSelectedCalendarID, "cal"))
	require.NoError(t, b.SetKV(types.KVGoogleOAuthScope, "secret-scope"))
	require.NoError(t, b.SetKV(types.KVStorageFolder, "/home/user/photos"))

	manifest, err := Export(b, time.Now())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{types.KVSelectedCalendarID: "cal"}, manifest.Data.KV)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "not JSON", raw: `{"schemaVersion": `, wantErr: ErrMalformedJSON},
		{name: "missing schema version", raw: `{"data": {}}`, wantErr: ErrMissingSchemaVersion},
		{name: "older schema version", raw: `{"schemaVersion": 0, "data": {}}`, wantErr: ErrSchemaVersionMismatch},
		{name: "newer schema version", raw: `{"schemaVersion": 2, "data": {}}`, wantErr: ErrSchemaVersionMismatch},
		{name: "missing data block", raw: `{"schemaVersion": 1}`, wantErr: ErrInvalidStructure},
		{
			name:    "collection is not an array",
			raw:     `{"schemaVersion": 1, "data": {"clients": {}, "dogs": [], "visits": [], "eventLinks": [], "visitPhotos": [], "kv": {}}}`,
			wantErr: ErrInvalidStructure,
		},
		{
			name:    "missing collection",
			raw:     `{"schemaVersion": 1, "data": {"clients": [], "dogs": [], "visits": [], "eventLinks": [], "kv": {}}}`,
			wantErr: ErrInvalidStructure,
		},
		{
			name:    "kv is not an object",
			raw:     `{"schemaVersion": 1, "data": {"clients": [], "dogs": [], "visits": [], "eventLinks": [], "visitPhotos": [], "kv": []}}`,
			wantErr: ErrInvalidStructure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseAcceptsValidManifest(t *testing.T) {
	raw := `{
		"schemaVersion": 1,
		"exportedAt": "2026-08-28T12:00:00Z",
		"app": {"name": "groom-crm", "version": "1.0.0"},
		"data": {"clients": [], "dogs": [], "visits": [], "eventLinks": [], "visitPhotos": [], "kv": {}}
	}`
	manifest, err := Parse([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, types.BackupSchemaVersion, manifest.SchemaVersion)
}

// A schema-version mismatch must be rejected before any table is touched:
// validation happens entirely in Parse, which never sees a store.
func TestSchemaMismatchLeavesStoreUntouched(t *testing.T) {
	b := setupStore(t)
	seedStore(t, b)

	_, err := Parse([]byte(`{"schemaVersion": 0, "data": {"clients": [], "dogs": [], "visits": [], "eventLinks": [], "visitPhotos": [], "kv": {}}}`))
	require.ErrorIs(t, err, ErrSchemaVersionMismatch)

	clients, err := b.GetTable(types.TableClients)
	require.NoError(t, err)
	all, err := clients.Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// A manifest smuggling a key outside the allow-list must never reach the
// live settings store.
func TestApplyReplaceFiltersDisallowedKeys(t *testing.T) {
	b := setupStore(t)

	raw := `{
		"schemaVersion": 1,
		"exportedAt": "2026-08-28T12:00:00Z",
		"app": {"name": "groom-crm", "version": "1.0.0"},
		"data": {
			"clients": [], "dogs": [], "visits": [], "eventLinks": [], "visitPhotos": [],
			"kv": {"selectedCalendarId": "cal", "googleOAuthScope": "injected-scope"}
		}
	}`
	manifest, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.NoError(t, ApplyReplace(b, manifest))

	var cal string
	found, err := b.GetKV(types.KVSelectedCalendarID, &cal)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "cal", cal)

	var scope string
	found, err = b.GetKV(types.KVGoogleOAuthScope, &scope)
	require.NoError(t, err)
	assert.False(t, found, "disallowed key must never be written")
}

// ApplyReplace clears allow-listed settings that the manifest does not
// carry, and replaces table contents wholesale.
func TestApplyReplaceIsWholeStoreReplacement(t *testing.T) {
	b := setupStore(t)
	seedStore(t, b)
	require.NoError(t, b.SetKV(types.KVGoogleClientID, "stale-client-id"))

	raw := `{
		"schemaVersion": 1,
		"exportedAt": "2026-08-28T12:00:00Z",
		"app": {"name": "groom-crm", "version": "1.0.0"},
		"data": {"clients": [], "dogs": [], "visits": [], "eventLinks": [], "visitPhotos": [], "kv": {}}
	}`
	manifest, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.NoError(t, ApplyReplace(b, manifest))

	for _, table := range []string{
		types.TableClients, types.TableDogs, types.TableVisits,
		types.TableEventLinks, types.TableVisitPhotos,
	} {
		tbl, err := b.GetTable(table)
		require.NoError(t, err)
		all, err := tbl.Fetch(nil)
		require.NoError(t, err)
		assert.Empty(t, all, table)
	}

	var clientID string
	found, err := b.GetKV(types.KVGoogleClientID, &clientID)
	require.NoError(t, err)
	assert.False(t, found, "allow-listed key absent from the manifest stays cleared")
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 5, 0, 0, time.UTC)
	assert.Equal(t, "groom-crm_backup_2026-08-28_09-05.json", Filename(now))
}
