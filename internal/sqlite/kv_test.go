package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groomcrm/groomcrm/pkg/types"
)

func TestKVRoundTrip(t *testing.T) {
	b := setupBackend(t)

	require.NoError(t, b.SetKV(types.KVSelectedCalendarID, "primary"))

	var got string
	found, err := b.GetKV(types.KVSelectedCalendarID, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "primary", got)

	// Overwrite replaces in place.
	require.NoError(t, b.SetKV(types.KVSelectedCalendarID, "work"))
	found, err = b.GetKV(types.KVSelectedCalendarID, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "work", got)
}

func TestKVMissingKey(t *testing.T) {
	b := setupBackend(t)

	var got string
	found, err := b.GetKV("never-set", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKVDeleteIdempotent(t *testing.T) {
	b := setupBackend(t)

	require.NoError(t, b.SetKV("k", 42))
	require.NoError(t, b.DeleteKV("k"))
	require.NoError(t, b.DeleteKV("k"), "deleting a missing key succeeds")

	var got int
	found, err := b.GetKV("k", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKVStructuredValue(t *testing.T) {
	b := setupBackend(t)

	type prefs struct {
		Theme string `json:"theme"`
		Zoom  int    `json:"zoom"`
	}
	require.NoError(t, b.SetKV("uiPrefs", prefs{Theme: "dark", Zoom: 2}))

	var got prefs
	found, err := b.GetKV("uiPrefs", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, prefs{Theme: "dark", Zoom: 2}, got)
}
