package calendar

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/groomcrm/groomcrm/internal/queue"
	"github.com/groomcrm/groomcrm/pkg/token"
	"github.com/groomcrm/groomcrm/pkg/types"
)

// Remote is the slice of the calendar API the resolver uses. *Client
// satisfies it; tests substitute a fake.
type Remote interface {
	ListEvents(calendarID string, timeMin, timeMax time.Time) ([]*types.CalendarEvent, error)
	GetEvent(calendarID, eventID string) (*types.CalendarEvent, error)
	PatchEventDescription(calendarID, eventID, description string) (*types.CalendarEvent, error)
}

// Resolution is the outcome of resolving an event to a dog. DogID set with
// Dog nil means the event points at a dog record that no longer exists.
type Resolution struct {
	Event *types.CalendarEvent
	DogID string
	Dog   *types.Dog
}

// Linked reports whether the event resolved to a dog id at all.
func (r *Resolution) Linked() bool { return r.DogID != "" }

// Dangling reports a link to a dog record that is gone.
func (r *Resolution) Dangling() bool { return r.DogID != "" && r.Dog == nil }

// Resolver ties calendar events to dog records. The link table is the
// source of truth; the description token is a portable fallback that gets
// promoted into a link when detected.
type Resolver struct {
	store  types.Store
	remote Remote
	writes *queue.Keyed
	logger *zap.Logger
}

func NewResolver(store types.Store, remote Remote, writes *queue.Keyed, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		remote: remote,
		writes: writes,
		logger: logger,
	}
}

// ResolveDogForEvent resolves the dog for one event. It checks the link
// table first, then falls back to the description token; a token that names
// an existing dog is promoted into a stored link so later lookups skip the
// description entirely.
func (r *Resolver) ResolveDogForEvent(calendarID string, event *types.CalendarEvent) (*Resolution, error) {
	res := &Resolution{Event: event}

	links, err := r.store.GetTable(types.TableEventLinks)
	if err != nil {
		return nil, err
	}

	raw, err := links.Get(types.EventLinkID(calendarID, event.ID))
	switch {
	case err == nil:
		res.DogID = raw.(*types.EventLink).DogID
	case errors.Is(err, types.ErrNotFound):
		// No stored link. Try the description token.
		dogID, ok := token.Extract(event.Description)
		if !ok {
			return res, nil
		}
		dog, err := r.lookupDog(dogID)
		if err != nil {
			return nil, err
		}
		if dog == nil {
			// A token naming an unknown dog is ignored, not promoted.
			return res, nil
		}
		if err := r.upsertLink(calendarID, event.ID, dogID); err != nil {
			// The resolution itself still stands.
			r.logger.Warn("failed to auto-link event",
				zap.String("event_id", event.ID), zap.Error(err))
		}
		res.DogID = dogID
		res.Dog = dog
		return res, nil
	default:
		return nil, err
	}

	res.Dog, err = r.lookupDog(res.DogID)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Resolver) lookupDog(dogID string) (*types.Dog, error) {
	dogs, err := r.store.GetTable(types.TableDogs)
	if err != nil {
		return nil, err
	}
	raw, err := dogs.Get(dogID)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw.(*types.Dog), nil
}

func (r *Resolver) upsertLink(calendarID, eventID, dogID string) error {
	links, err := r.store.GetTable(types.TableEventLinks)
	if err != nil {
		return err
	}
	_, err = links.Set("", &types.EventLink{
		CalendarID:      calendarID,
		CalendarEventID: eventID,
		DogID:           dogID,
	})
	return err
}

// AssignDog links the event to the dog. When patchRemote is set the event's
// description on the remote calendar is updated to carry the dog token, so
// the link survives a wiped local store.
func (r *Resolver) AssignDog(calendarID string, event *types.CalendarEvent, dogID string, patchRemote bool) error {
	if err := r.upsertLink(calendarID, event.ID, dogID); err != nil {
		return err
	}
	if !patchRemote {
		return nil
	}
	updated := token.Upsert(event.Description, dogID)
	if _, err := r.remote.PatchEventDescription(calendarID, event.ID, updated); err != nil {
		return err
	}
	r.logger.Info("assigned dog to event",
		zap.String("event_id", event.ID), zap.String("dog_id", dogID))
	return nil
}

// Unlink removes the stored link and, when patchRemote is set, strips the
// token from the remote description. A missing link is not an error.
func (r *Resolver) Unlink(calendarID string, event *types.CalendarEvent, patchRemote bool) error {
	links, err := r.store.GetTable(types.TableEventLinks)
	if err != nil {
		return err
	}
	if err := links.Delete(types.EventLinkID(calendarID, event.ID)); err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}
	if !patchRemote {
		return nil
	}
	stripped := token.Remove(event.Description)
	if stripped == event.Description {
		return nil
	}
	if _, err := r.remote.PatchEventDescription(calendarID, event.ID, stripped); err != nil {
		return err
	}
	return nil
}

// EventsForDay lists the day's events and resolves each one. A resolution
// failure downgrades that event to unresolved instead of failing the whole
// listing.
func (r *Resolver) EventsForDay(calendarID string, day time.Time) ([]*Resolution, error) {
	timeMin := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	timeMax := timeMin.Add(24*time.Hour - time.Second)

	events, err := r.remote.ListEvents(calendarID, timeMin, timeMax)
	if err != nil {
		return nil, err
	}

	resolutions := make([]*Resolution, 0, len(events))
	for _, event := range events {
		res, err := r.ResolveDogForEvent(calendarID, event)
		if err != nil {
			r.logger.Warn("failed to resolve event",
				zap.String("event_id", event.ID), zap.Error(err))
			res = &Resolution{Event: event}
		}
		resolutions = append(resolutions, res)
	}
	return resolutions, nil
}

// VisitForEvent finds or creates the visit for the event, normalizing the
// event start to an instant first.
func (r *Resolver) VisitForEvent(calendarID string, event *types.CalendarEvent, dogID string) (*types.Visit, error) {
	start, err := event.StartInstant()
	if err != nil {
		return nil, err
	}
	return r.store.GetOrCreateVisitForEvent(calendarID, event.ID, dogID, start)
}

// UpdateVisitQueued applies a visit patch through the per-visit write queue,
// so concurrent edits to one visit land in submission order.
func (r *Resolver) UpdateVisitQueued(visitID string, patch map[string]any) <-chan error {
	return r.writes.Enqueue(visitID, func() error {
		visits, err := r.store.GetTable(types.TableVisits)
		if err != nil {
			return err
		}
		return visits.Patch(visitID, patch)
	})
}
