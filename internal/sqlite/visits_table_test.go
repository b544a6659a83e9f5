package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groomcrm/groomcrm/pkg/types"
)

func TestGetOrCreateVisitForEventIdempotent(t *testing.T) {
	b := setupBackend(t)
	dateISO := time.Now().Format(time.RFC3339)

	first, err := b.GetOrCreateVisitForEvent("cal-1", "ev-1", "dog-1", dateISO)
	require.NoError(t, err)
	assert.Equal(t, types.VisitStatusPlanned, first.Status)

	second, err := b.GetOrCreateVisitForEvent("cal-1", "ev-1", "dog-1", dateISO)
	require.NoError(t, err)
	assert.Equal(t, first.VisitID, second.VisitID)

	visits, err := b.GetTable(types.TableVisits)
	require.NoError(t, err)
	all, err := visits.Fetch(nil)
	require.NoError(t, err)
	assert.Len(t, all, 1, "find-or-create must create exactly one row")
}

func TestGetOrCreateVisitDistinctEvents(t *testing.T) {
	b := setupBackend(t)
	dateISO := time.Now().Format(time.RFC3339)

	a, err := b.GetOrCreateVisitForEvent("cal-1", "ev-1", "dog-1", dateISO)
	require.NoError(t, err)
	// Same event ID on a different calendar is a different visit.
	c, err := b.GetOrCreateVisitForEvent("cal-2", "ev-1", "dog-1", dateISO)
	require.NoError(t, err)
	assert.NotEqual(t, a.VisitID, c.VisitID)
}

func TestPatchVisitMergesFields(t *testing.T) {
	b := setupBackend(t)
	v, err := b.GetOrCreateVisitForEvent("cal-1", "ev-1", "dog-1", time.Now().Format(time.RFC3339))
	require.NoError(t, err)

	visits, err := b.GetTable(types.TableVisits)
	require.NoError(t, err)

	require.NoError(t, visits.Patch(v.VisitID, map[string]any{"notes": "matted coat"}))
	require.NoError(t, visits.Patch(v.VisitID, map[string]any{
		"status":     types.VisitStatusDone,
		"priceCents": int64(4500),
	}))

	entity, err := visits.Get(v.VisitID)
	require.NoError(t, err)
	got := entity.(*types.Visit)
	assert.Equal(t, "matted coat", got.Notes, "earlier patch fields survive later patches")
	assert.Equal(t, types.VisitStatusDone, got.Status)
	require.NotNil(t, got.PriceCents)
	assert.Equal(t, int64(4500), *got.PriceCents)
	assert.Nil(t, got.DurationMin)
}

func TestPatchVisitValidation(t *testing.T) {
	b := setupBackend(t)
	v, err := b.GetOrCreateVisitForEvent("cal-1", "ev-1", "dog-1", time.Now().Format(time.RFC3339))
	require.NoError(t, err)

	visits, err := b.GetTable(types.TableVisits)
	require.NoError(t, err)

	assert.ErrorIs(t, visits.Patch(v.VisitID, map[string]any{"status": "cancelled"}), types.ErrInvalidStatus)
	assert.ErrorIs(t, visits.Patch(v.VisitID, map[string]any{"color": "brown"}), types.ErrInvalidPatch)
	assert.ErrorIs(t, visits.Patch(v.VisitID, map[string]any{"priceCents": int64(-1)}), types.ErrInvalidPrice)
	assert.ErrorIs(t, visits.Patch("missing", map[string]any{"notes": "x"}), types.ErrNotFound)

	// Clearing an optional field with nil.
	require.NoError(t, visits.Patch(v.VisitID, map[string]any{"priceCents": int64(100)}))
	require.NoError(t, visits.Patch(v.VisitID, map[string]any{"priceCents": nil}))
	entity, err := visits.Get(v.VisitID)
	require.NoError(t, err)
	assert.Nil(t, entity.(*types.Visit).PriceCents)
}

func TestEventLinkUpsert(t *testing.T) {
	b := setupBackend(t)
	links, err := b.GetTable(types.TableEventLinks)
	require.NoError(t, err)

	id, err := links.Set("", &types.EventLink{CalendarID: "cal", CalendarEventID: "ev", DogID: "dog-1"})
	require.NoError(t, err)
	assert.Equal(t, "cal:ev", id)

	// Second set for the same event replaces the dog, never adds a row.
	id2, err := links.Set("", &types.EventLink{CalendarID: "cal", CalendarEventID: "ev", DogID: "dog-2"})
	require.NoError(t, err)
	assert.Equal(t, id, id2)

	all, err := links.Fetch(nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "dog-2", all[0].(*types.EventLink).DogID)
}

func TestVisitPhotoPathValidation(t *testing.T) {
	b := setupBackend(t)
	photos, err := b.GetTable(types.TableVisitPhotos)
	require.NoError(t, err)

	_, err = photos.Set("", &types.VisitPhoto{
		VisitID:      "v1",
		Name:         "after_1_0.jpg",
		RelativePath: "elsewhere/after_1_0.jpg",
	})
	assert.ErrorIs(t, err, types.ErrInvalidPath)

	id, err := photos.Set("", &types.VisitPhoto{
		VisitID:      "v1",
		Name:         "after_1_0.jpg",
		RelativePath: types.PhotoRelativePath("v1", "after_1_0.jpg"),
	})
	require.NoError(t, err)

	entity, err := photos.Get(id)
	require.NoError(t, err)
	base, err := entity.(*types.VisitPhoto).Basename()
	require.NoError(t, err)
	assert.Equal(t, "after_1_0.jpg", base)
}
