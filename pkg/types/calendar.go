package types

import "time"

// Calendar is one entry in the remote calendar list.
type Calendar struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary,omitempty"`
}

// EventDateTime is a remote event boundary: all-day events carry Date
// (YYYY-MM-DD), timed events carry DateTime (RFC3339).
type EventDateTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// CalendarEvent is a remote calendar event as consumed by the resolver.
type CalendarEvent struct {
	ID          string        `json:"id"`
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Start       EventDateTime `json:"start"`
	End         EventDateTime `json:"end"`
	HTMLLink    string        `json:"htmlLink"`
	Status      string        `json:"status"`
}

// StartInstant normalizes the event start to an ISO-8601 instant. All-day
// events are pinned to 09:00 local time on the event's date.
func (e *CalendarEvent) StartInstant() (string, error) {
	if e.Start.DateTime != "" {
		t, err := time.Parse(time.RFC3339, e.Start.DateTime)
		if err != nil {
			return "", err
		}
		return t.Format(time.RFC3339), nil
	}
	d, err := time.ParseInLocation("2006-01-02", e.Start.Date, time.Local)
	if err != nil {
		return "", err
	}
	return d.Add(9 * time.Hour).Format(time.RFC3339), nil
}
