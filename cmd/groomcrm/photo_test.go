package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/internal/sqlite"
	"github.com/groomcrm/groomcrm/pkg/types"
)

func seedPhotoRecord(t *testing.T, dataDir string) string {
	t.Helper()
	backend := sqlite.NewBackend()
	require.NoError(t, backend.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}))
	photos, err := backend.GetTable(types.TableVisitPhotos)
	require.NoError(t, err)
	id, err := photos.Set("", &types.VisitPhoto{
		VisitID:      "visit-1",
		Name:         "after_1_0.jpg",
		RelativePath: types.PhotoRelativePath("visit-1", "after_1_0.jpg"),
	})
	require.NoError(t, err)
	require.NoError(t, backend.Detach())
	return id
}

// The record is authoritative: deleting a photo removes its row even when
// the file store is unavailable, and the command still succeeds.
func TestPhotoDeleteSucceedsWithoutFolderGrant(t *testing.T) {
	flagDataDir = t.TempDir()
	flagYes = true
	logger = zap.NewNop()
	t.Cleanup(func() {
		flagDataDir = ""
		flagYes = false
		logger = nil
	})

	id := seedPhotoRecord(t, flagDataDir)

	// No storage folder is granted, so the file removal fails; the row
	// must be gone regardless.
	require.NoError(t, runPhotoDelete(photoDeleteCmd, []string{id}))

	backend := sqlite.NewBackend()
	require.NoError(t, backend.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: flagDataDir,
	}))
	t.Cleanup(func() { backend.Detach() })

	photos, err := backend.GetTable(types.TableVisitPhotos)
	require.NoError(t, err)
	_, err = photos.Get(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
