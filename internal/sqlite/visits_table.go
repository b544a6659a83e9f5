package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/groomcrm/groomcrm/pkg/types"
)

const visitSelect = `SELECT visit_id, dog_id, calendar_id, calendar_event_id, date_iso, notes, price_cents, duration_min, status, created_at, updated_at FROM visits`

func (t *table) getVisit(id string) (any, error) {
	row := t.backend.db.QueryRow(visitSelect+` WHERE visit_id = ?`, id)
	return scanVisit(row)
}

func scanVisit(row rowScanner) (*types.Visit, error) {
	var v types.Visit
	var price, duration sql.NullInt64
	var createdAt, updatedAt string
	err := row.Scan(&v.VisitID, &v.DogID, &v.CalendarID, &v.CalendarEventID,
		&v.DateISO, &v.Notes, &price, &duration, &v.Status, &createdAt, &updatedAt)
	if err != nil {
		return nil, scanErr("visit", err)
	}
	if price.Valid {
		v.PriceCents = &price.Int64
	}
	if duration.Valid {
		v.DurationMin = &duration.Int64
	}
	if v.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing visit created_at: %w", err)
	}
	if v.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing visit updated_at: %w", err)
	}
	return &v, nil
}

func nullableInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func insertVisit(db execer, v *types.Visit) error {
	_, err := db.Exec(
		`INSERT INTO visits (visit_id, dog_id, calendar_id, calendar_event_id, date_iso, notes, price_cents, duration_min, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.VisitID, v.DogID, v.CalendarID, v.CalendarEventID, v.DateISO, v.Notes,
		nullableInt(v.PriceCents), nullableInt(v.DurationMin), v.Status,
		v.CreatedAt.UTC().Format(time.RFC3339), v.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (t *table) setVisit(id string, data any) (string, error) {
	v, ok := data.(*types.Visit)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := v.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	if id == "" {
		id = generateUUID()
		v.VisitID = id
		v.CreatedAt = now
		v.UpdatedAt = now
		if err := insertVisit(t.backend.db, v); err != nil {
			return "", fmt.Errorf("inserting visit: %w", err)
		}
		return id, nil
	}

	v.VisitID = id
	v.UpdatedAt = now
	res, err := t.backend.db.Exec(
		`UPDATE visits SET dog_id = ?, calendar_id = ?, calendar_event_id = ?, date_iso = ?, notes = ?, price_cents = ?, duration_min = ?, status = ?, updated_at = ? WHERE visit_id = ?`,
		v.DogID, v.CalendarID, v.CalendarEventID, v.DateISO, v.Notes,
		nullableInt(v.PriceCents), nullableInt(v.DurationMin), v.Status,
		now.UTC().Format(time.RFC3339), id)
	if err != nil {
		return "", fmt.Errorf("updating visit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		v.CreatedAt = now
		if err := insertVisit(t.backend.db, v); err != nil {
			return "", fmt.Errorf("inserting visit: %w", err)
		}
	}
	return id, nil
}

var visitFilterColumns = map[string]string{
	"dogId":           "dog_id",
	"calendarId":      "calendar_id",
	"calendarEventId": "calendar_event_id",
	"dateISO":         "date_iso",
	"createdAt":       "created_at",
}

func (t *table) fetchVisits(filter map[string]any) ([]any, error) {
	where, args, err := buildWhere(filter, visitFilterColumns)
	if err != nil {
		return nil, err
	}
	rows, err := t.backend.db.Query(visitSelect+where+` ORDER BY date_iso`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching visits: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// patchVisit merges autosave fields. Patch values for priceCents and
// durationMin accept *int64 (nil clears) and int64.
func (t *table) patchVisit(id string, patch map[string]any) error {
	entity, err := t.getVisit(id)
	if err != nil {
		return err
	}
	v := entity.(*types.Visit)

	for key, value := range patch {
		switch key {
		case "status":
			s, ok := value.(string)
			if !ok {
				return types.ErrInvalidPatch
			}
			if err := v.SetStatus(s); err != nil {
				return err
			}
		case "notes":
			s, ok := value.(string)
			if !ok {
				return types.ErrInvalidPatch
			}
			v.Notes = s
		case "dogId":
			s, ok := value.(string)
			if !ok {
				return types.ErrInvalidPatch
			}
			v.DogID = s
		case "priceCents":
			p, err := patchInt(value)
			if err != nil {
				return err
			}
			v.PriceCents = p
		case "durationMin":
			p, err := patchInt(value)
			if err != nil {
				return err
			}
			v.DurationMin = p
		default:
			return types.ErrInvalidPatch
		}
	}
	if err := v.Validate(); err != nil {
		return err
	}

	_, err = t.backend.db.Exec(
		`UPDATE visits SET dog_id = ?, notes = ?, price_cents = ?, duration_min = ?, status = ?, updated_at = ? WHERE visit_id = ?`,
		v.DogID, v.Notes, nullableInt(v.PriceCents), nullableInt(v.DurationMin),
		v.Status, nowRFC3339(), id)
	if err != nil {
		return fmt.Errorf("patching visit: %w", err)
	}
	return nil
}

// patchInt normalizes optional integer patch values.
func patchInt(value any) (*int64, error) {
	switch n := value.(type) {
	case nil:
		return nil, nil
	case *int64:
		return n, nil
	case int64:
		return &n, nil
	case int:
		v := int64(n)
		return &v, nil
	default:
		return nil, types.ErrInvalidPatch
	}
}
