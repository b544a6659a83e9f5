package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groomcrm/groomcrm/pkg/types"
)

// setupBackend creates an attached Backend over a temp directory.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestAttachDetachLifecycle(t *testing.T) {
	b := NewBackend()
	config := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}

	require.NoError(t, b.Attach(config))
	assert.ErrorIs(t, b.Attach(config), types.ErrAlreadyAttached)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "detach must be idempotent")

	_, err := b.GetTable(types.TableClients)
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestGetTableUnknown(t *testing.T) {
	b := setupBackend(t)
	_, err := b.GetTable("unicorns")
	assert.ErrorIs(t, err, types.ErrTableNotFound)
}

// Reattaching to the same data directory must preserve data: durability is
// the point of this store, so migrations run but never recreate tables.
func TestDataSurvivesReattach(t *testing.T) {
	dataDir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dataDir}

	b := NewBackend()
	require.NoError(t, b.Attach(config))
	table, err := b.GetTable(types.TableClients)
	require.NoError(t, err)
	id, err := table.Set("", &types.Client{OwnerName: "Dana"})
	require.NoError(t, err)
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(config))
	t.Cleanup(func() { b2.Detach() })

	table, err = b2.GetTable(types.TableClients)
	require.NoError(t, err)
	entity, err := table.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Dana", entity.(*types.Client).OwnerName)
}

func TestClientCRUD(t *testing.T) {
	b := setupBackend(t)
	table, err := b.GetTable(types.TableClients)
	require.NoError(t, err)

	_, err = table.Set("", &types.Client{})
	assert.ErrorIs(t, err, types.ErrInvalidName)

	id, err := table.Set("", &types.Client{OwnerName: "Dana", Phone: "555-0100"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, table.Patch(id, map[string]any{"notes": "prefers mornings"}))

	entity, err := table.Get(id)
	require.NoError(t, err)
	got := entity.(*types.Client)
	assert.Equal(t, "Dana", got.OwnerName)
	assert.Equal(t, "555-0100", got.Phone)
	assert.Equal(t, "prefers mornings", got.Notes)

	require.NoError(t, table.Delete(id))
	assert.ErrorIs(t, table.Delete(id), types.ErrNotFound)
	_, err = table.Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestDogTagsRoundTrip(t *testing.T) {
	b := setupBackend(t)
	table, err := b.GetTable(types.TableDogs)
	require.NoError(t, err)

	id, err := table.Set("", &types.Dog{DogName: "Rex", Tags: []string{"nervous", "double-coat"}})
	require.NoError(t, err)

	entity, err := table.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"nervous", "double-coat"}, entity.(*types.Dog).Tags)

	// nil tags persist as an empty list, never null.
	id2, err := table.Set("", &types.Dog{DogName: "Fido"})
	require.NoError(t, err)
	entity, err = table.Get(id2)
	require.NoError(t, err)
	assert.Equal(t, []string{}, entity.(*types.Dog).Tags)
}

func TestFetchDogsByClient(t *testing.T) {
	b := setupBackend(t)
	table, err := b.GetTable(types.TableDogs)
	require.NoError(t, err)

	_, err = table.Set("", &types.Dog{DogName: "Rex", ClientID: "client-a"})
	require.NoError(t, err)
	_, err = table.Set("", &types.Dog{DogName: "Bella", ClientID: "client-a"})
	require.NoError(t, err)
	_, err = table.Set("", &types.Dog{DogName: "Milo", ClientID: "client-b"})
	require.NoError(t, err)

	got, err := table.Fetch(map[string]any{"clientId": "client-a"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = table.Fetch(map[string]any{"breed": "poodle"})
	assert.ErrorIs(t, err, types.ErrInvalidFilter, "non-indexed field must be rejected")
}

// A failed bulk insert partway through ReplaceAll must leave every entity
// table exactly as it was before the restore began.
func TestReplaceAllRollsBackOnFailure(t *testing.T) {
	b := setupBackend(t)

	clients, err := b.GetTable(types.TableClients)
	require.NoError(t, err)
	clientID, err := clients.Set("", &types.Client{OwnerName: "Dana"})
	require.NoError(t, err)

	dogs, err := b.GetTable(types.TableDogs)
	require.NoError(t, err)
	dogID, err := dogs.Set("", &types.Dog{DogName: "Rex"})
	require.NoError(t, err)

	now := time.Now()
	bad := types.BackupData{
		Clients: []*types.Client{{ClientID: "c1", OwnerName: "Eve", CreatedAt: now, UpdatedAt: now}},
		Dogs:    []*types.Dog{{DogID: "d1", DogName: "Buddy", CreatedAt: now, UpdatedAt: now}},
		Visits: []*types.Visit{{
			VisitID: "v1", DogID: "d1", CalendarID: "cal", CalendarEventID: "ev",
			DateISO: now.Format(time.RFC3339), Status: types.VisitStatusPlanned,
			CreatedAt: now, UpdatedAt: now,
		}},
		// Duplicate link IDs violate the primary key: the fourth table's
		// bulk insert fails after three tables already loaded.
		EventLinks: []*types.EventLink{
			{LinkID: "cal:ev", CalendarID: "cal", CalendarEventID: "ev", DogID: "d1", CreatedAt: now, UpdatedAt: 1},
			{LinkID: "cal:ev", CalendarID: "cal", CalendarEventID: "ev", DogID: "d1", CreatedAt: now, UpdatedAt: 2},
		},
	}

	require.Error(t, b.ReplaceAll(bad))

	// Pre-restore contents intact, incoming rows absent.
	entity, err := clients.Get(clientID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", entity.(*types.Client).OwnerName)
	_, err = clients.Get("c1")
	assert.ErrorIs(t, err, types.ErrNotFound)

	entity, err = dogs.Get(dogID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", entity.(*types.Dog).DogName)

	visits, err := b.GetTable(types.TableVisits)
	require.NoError(t, err)
	all, err := visits.Fetch(nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReplaceAllSwapsContents(t *testing.T) {
	b := setupBackend(t)

	clients, err := b.GetTable(types.TableClients)
	require.NoError(t, err)
	_, err = clients.Set("", &types.Client{OwnerName: "Old Owner"})
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, b.ReplaceAll(types.BackupData{
		Clients: []*types.Client{{ClientID: "c-new", OwnerName: "New Owner", CreatedAt: now, UpdatedAt: now}},
	}))

	all, err := clients.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "New Owner", all[0].(*types.Client).OwnerName)
}
