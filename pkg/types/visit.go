package types

import "time"

// Visit statuses.
const (
	VisitStatusPlanned = "planned"
	VisitStatusDone    = "done"
	VisitStatusNoShow  = "no_show"
)

// validVisitStatuses is the set of recognized visit status values.
var validVisitStatuses = map[string]bool{
	VisitStatusPlanned: true,
	VisitStatusDone:    true,
	VisitStatusNoShow:  true,
}

// Visit represents one grooming appointment for a dog, optionally tied to a
// remote calendar event. The (CalendarID, CalendarEventID) pair is unique
// across visits. PriceCents and DurationMin are nil when unset; prices are
// integer cents, never a fractional unit.
type Visit struct {
	VisitID         string    `json:"id"`
	DogID           string    `json:"dogId"`
	CalendarID      string    `json:"calendarId"`
	CalendarEventID string    `json:"calendarEventId"`
	DateISO         string    `json:"dateISO"`
	Notes           string    `json:"notes,omitempty"`
	PriceCents      *int64    `json:"priceCents"`
	DurationMin     *int64    `json:"durationMin"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate checks status, price and date before persistence.
func (v *Visit) Validate() error {
	if !validVisitStatuses[v.Status] {
		return ErrInvalidStatus
	}
	if v.PriceCents != nil && *v.PriceCents < 0 {
		return ErrInvalidPrice
	}
	if _, err := time.Parse(time.RFC3339, v.DateISO); err != nil {
		return ErrInvalidData
	}
	return nil
}

// SetStatus sets the visit status to the given value.
// Returns ErrInvalidStatus if the status is not recognized. Idempotent.
func (v *Visit) SetStatus(status string) error {
	if !validVisitStatuses[status] {
		return ErrInvalidStatus
	}
	v.Status = status
	v.UpdatedAt = time.Now()
	return nil
}

// ValidVisitStatus reports whether s is one of the recognized statuses.
func ValidVisitStatus(s string) bool {
	return validVisitStatuses[s]
}
