package types

import (
	"fmt"
	"time"
)

// EventLink is a durable mapping from a remote calendar event to a local
// Dog. Its ID is derived deterministically from the event coordinates, so
// at most one link exists per event and writes are upserts. DogID is a soft
// reference: a link to a deleted dog resolves to "unknown dog linked"
// rather than failing.
type EventLink struct {
	LinkID          string    `json:"id"`
	CalendarID      string    `json:"calendarId"`
	CalendarEventID string    `json:"calendarEventId"`
	DogID           string    `json:"dogId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       int64     `json:"updatedAt"` // unix milliseconds
}

// EventLinkID derives the deterministic link ID for an event.
func EventLinkID(calendarID, eventID string) string {
	return fmt.Sprintf("%s:%s", calendarID, eventID)
}

// Validate checks required fields before persistence.
func (l *EventLink) Validate() error {
	if l.CalendarID == "" || l.CalendarEventID == "" || l.DogID == "" {
		return ErrInvalidData
	}
	return nil
}
