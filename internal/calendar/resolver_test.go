package calendar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/internal/queue"
	"github.com/groomcrm/groomcrm/internal/sqlite"
	"github.com/groomcrm/groomcrm/pkg/token"
	"github.com/groomcrm/groomcrm/pkg/types"
)

type fakeRemote struct {
	events  []*types.CalendarEvent
	patched map[string]string
	listErr error
}

func (f *fakeRemote) ListEvents(string, time.Time, time.Time) ([]*types.CalendarEvent, error) {
	return f.events, f.listErr
}

func (f *fakeRemote) GetEvent(_, eventID string) (*types.CalendarEvent, error) {
	for _, e := range f.events {
		if e.ID == eventID {
			return e, nil
		}
	}
	return nil, fmt.Errorf("no such event %q", eventID)
}

func (f *fakeRemote) PatchEventDescription(_, eventID, description string) (*types.CalendarEvent, error) {
	if f.patched == nil {
		f.patched = make(map[string]string)
	}
	f.patched[eventID] = description
	return &types.CalendarEvent{ID: eventID, Description: description}, nil
}

func setupResolver(t *testing.T) (*Resolver, *sqlite.Backend, *fakeRemote) {
	t.Helper()
	backend := sqlite.NewBackend()
	require.NoError(t, backend.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { backend.Detach() })

	remote := &fakeRemote{}
	resolver := NewResolver(backend, remote, queue.NewKeyed(), zap.NewNop())
	return resolver, backend, remote
}

func addDog(t *testing.T, backend *sqlite.Backend, name string) string {
	t.Helper()
	dogs, err := backend.GetTable(types.TableDogs)
	require.NoError(t, err)
	id, err := dogs.Set("", &types.Dog{DogName: name})
	require.NoError(t, err)
	return id
}

func TestResolvePrefersStoredLink(t *testing.T) {
	resolver, backend, _ := setupResolver(t)
	linkedDog := addDog(t, backend, "Rex")
	tokenDog := addDog(t, backend, "Bella")

	event := &types.CalendarEvent{
		ID:          "ev-1",
		Description: token.Upsert("Grooming", tokenDog),
	}
	require.NoError(t, resolver.AssignDog("cal", event, linkedDog, false))

	res, err := resolver.ResolveDogForEvent("cal", event)
	require.NoError(t, err)
	assert.Equal(t, linkedDog, res.DogID)
	require.NotNil(t, res.Dog)
	assert.Equal(t, "Rex", res.Dog.DogName)
}

func TestResolvePromotesTokenToLink(t *testing.T) {
	resolver, backend, _ := setupResolver(t)
	dogID := addDog(t, backend, "Rex")

	event := &types.CalendarEvent{
		ID:          "ev-1",
		Description: token.Upsert("Grooming", dogID),
	}
	res, err := resolver.ResolveDogForEvent("cal", event)
	require.NoError(t, err)
	assert.Equal(t, dogID, res.DogID)

	// The detection must have left a stored link behind.
	links, err := backend.GetTable(types.TableEventLinks)
	require.NoError(t, err)
	raw, err := links.Get(types.EventLinkID("cal", "ev-1"))
	require.NoError(t, err)
	assert.Equal(t, dogID, raw.(*types.EventLink).DogID)
}

func TestResolveIgnoresTokenForUnknownDog(t *testing.T) {
	resolver, backend, _ := setupResolver(t)

	event := &types.CalendarEvent{
		ID:          "ev-1",
		Description: "Grooming\n\n#GROOMDOG:no-such-dog",
	}
	res, err := resolver.ResolveDogForEvent("cal", event)
	require.NoError(t, err)
	assert.False(t, res.Linked())

	links, err := backend.GetTable(types.TableEventLinks)
	require.NoError(t, err)
	_, err = links.Get(types.EventLinkID("cal", "ev-1"))
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestResolveReportsDanglingLink(t *testing.T) {
	resolver, backend, _ := setupResolver(t)
	dogID := addDog(t, backend, "Rex")

	event := &types.CalendarEvent{ID: "ev-1"}
	require.NoError(t, resolver.AssignDog("cal", event, dogID, false))

	dogs, err := backend.GetTable(types.TableDogs)
	require.NoError(t, err)
	require.NoError(t, dogs.Delete(dogID))

	res, err := resolver.ResolveDogForEvent("cal", event)
	require.NoError(t, err)
	assert.True(t, res.Linked())
	assert.True(t, res.Dangling())
}

func TestAssignDogPatchesRemoteDescription(t *testing.T) {
	resolver, backend, remote := setupResolver(t)
	dogID := addDog(t, backend, "Rex")

	event := &types.CalendarEvent{ID: "ev-1", Description: "Bath and trim"}
	require.NoError(t, resolver.AssignDog("cal", event, dogID, true))

	got, ok := token.Extract(remote.patched["ev-1"])
	require.True(t, ok)
	assert.Equal(t, dogID, got)
}

func TestUnlinkRemovesLinkAndToken(t *testing.T) {
	resolver, backend, remote := setupResolver(t)
	dogID := addDog(t, backend, "Rex")

	event := &types.CalendarEvent{ID: "ev-1", Description: "Bath"}
	require.NoError(t, resolver.AssignDog("cal", event, dogID, true))
	event.Description = remote.patched["ev-1"]

	require.NoError(t, resolver.Unlink("cal", event, true))

	links, err := backend.GetTable(types.TableEventLinks)
	require.NoError(t, err)
	_, err = links.Get(types.EventLinkID("cal", "ev-1"))
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, ok := token.Extract(remote.patched["ev-1"])
	assert.False(t, ok)
}

func TestUnlinkIsIdempotent(t *testing.T) {
	resolver, _, _ := setupResolver(t)
	event := &types.CalendarEvent{ID: "ev-1"}
	assert.NoError(t, resolver.Unlink("cal", event, false))
	assert.NoError(t, resolver.Unlink("cal", event, false))
}

func TestEventsForDayResolvesEachEvent(t *testing.T) {
	resolver, backend, remote := setupResolver(t)
	dogID := addDog(t, backend, "Rex")

	remote.events = []*types.CalendarEvent{
		{ID: "ev-1", Description: token.Upsert("", dogID)},
		{ID: "ev-2", Description: "no token here"},
	}

	resolutions, err := resolver.EventsForDay("cal", time.Now())
	require.NoError(t, err)
	require.Len(t, resolutions, 2)
	assert.Equal(t, dogID, resolutions[0].DogID)
	assert.False(t, resolutions[1].Linked())
}

func TestVisitForEventNormalizesAllDayStart(t *testing.T) {
	resolver, _, _ := setupResolver(t)

	event := &types.CalendarEvent{
		ID:    "ev-1",
		Start: types.EventDateTime{Date: "2026-08-28"},
	}
	visit, err := resolver.VisitForEvent("cal", event, "")
	require.NoError(t, err)

	start, err := time.Parse(time.RFC3339, visit.DateISO)
	require.NoError(t, err)
	assert.Equal(t, 9, start.Hour())
}

func TestUpdateVisitQueuedAppliesInOrder(t *testing.T) {
	resolver, backend, _ := setupResolver(t)

	visit, err := backend.GetOrCreateVisitForEvent("cal", "ev-1", "", time.Now().Format(time.RFC3339))
	require.NoError(t, err)

	first := resolver.UpdateVisitQueued(visit.VisitID, map[string]any{"status": types.VisitStatusDone})
	second := resolver.UpdateVisitQueued(visit.VisitID, map[string]any{"notes": "matted coat"})
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	visits, err := backend.GetTable(types.TableVisits)
	require.NoError(t, err)
	raw, err := visits.Get(visit.VisitID)
	require.NoError(t, err)
	got := raw.(*types.Visit)
	assert.Equal(t, types.VisitStatusDone, got.Status)
	assert.Equal(t, "matted coat", got.Notes)
}
