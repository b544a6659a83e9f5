package sqlite

import (
	"fmt"
	"time"

	"github.com/groomcrm/groomcrm/pkg/types"
)

const eventLinkSelect = `SELECT link_id, calendar_id, calendar_event_id, dog_id, created_at, updated_at FROM event_links`

func (t *table) getEventLink(id string) (any, error) {
	row := t.backend.db.QueryRow(eventLinkSelect+` WHERE link_id = ?`, id)
	return scanEventLink(row)
}

func scanEventLink(row rowScanner) (*types.EventLink, error) {
	var l types.EventLink
	var createdAt string
	err := row.Scan(&l.LinkID, &l.CalendarID, &l.CalendarEventID, &l.DogID, &createdAt, &l.UpdatedAt)
	if err != nil {
		return nil, scanErr("event link", err)
	}
	if l.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing event link created_at: %w", err)
	}
	return &l, nil
}

func insertEventLink(db execer, l *types.EventLink) error {
	_, err := db.Exec(
		`INSERT INTO event_links (link_id, calendar_id, calendar_event_id, dog_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		l.LinkID, l.CalendarID, l.CalendarEventID, l.DogID,
		l.CreatedAt.UTC().Format(time.RFC3339), l.UpdatedAt)
	return err
}

// setEventLink upserts: the link ID is always derived from the event pair,
// so at most one link exists per event. A provided id must match the
// derived one.
func (t *table) setEventLink(id string, data any) (string, error) {
	l, ok := data.(*types.EventLink)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := l.Validate(); err != nil {
		return "", err
	}

	derived := types.EventLinkID(l.CalendarID, l.CalendarEventID)
	if id != "" && id != derived {
		return "", types.ErrInvalidID
	}
	l.LinkID = derived
	l.UpdatedAt = time.Now().UnixMilli()

	res, err := t.backend.db.Exec(
		`UPDATE event_links SET dog_id = ?, updated_at = ? WHERE link_id = ?`,
		l.DogID, l.UpdatedAt, derived)
	if err != nil {
		return "", fmt.Errorf("updating event link: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		l.CreatedAt = time.Now()
		if err := insertEventLink(t.backend.db, l); err != nil {
			return "", fmt.Errorf("inserting event link: %w", err)
		}
	}
	return derived, nil
}

var eventLinkFilterColumns = map[string]string{
	"calendarId":      "calendar_id",
	"calendarEventId": "calendar_event_id",
	"dogId":           "dog_id",
}

func (t *table) fetchEventLinks(filter map[string]any) ([]any, error) {
	where, args, err := buildWhere(filter, eventLinkFilterColumns)
	if err != nil {
		return nil, err
	}
	rows, err := t.backend.db.Query(eventLinkSelect+where+` ORDER BY updated_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching event links: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		l, err := scanEventLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (t *table) patchEventLink(id string, patch map[string]any) error {
	if _, err := t.getEventLink(id); err != nil {
		return err
	}
	for key, value := range patch {
		if key != "dogId" {
			return types.ErrInvalidPatch
		}
		dogID, ok := value.(string)
		if !ok || dogID == "" {
			return types.ErrInvalidPatch
		}
		_, err := t.backend.db.Exec(
			`UPDATE event_links SET dog_id = ?, updated_at = ? WHERE link_id = ?`,
			dogID, time.Now().UnixMilli(), id)
		if err != nil {
			return fmt.Errorf("patching event link: %w", err)
		}
	}
	return nil
}
