package sqlite

import (
	"fmt"
	"time"

	"github.com/groomcrm/groomcrm/pkg/types"
)

const visitPhotoSelect = `SELECT photo_id, visit_id, name, relative_path, created_at FROM visit_photos`

func (t *table) getVisitPhoto(id string) (any, error) {
	row := t.backend.db.QueryRow(visitPhotoSelect+` WHERE photo_id = ?`, id)
	return scanVisitPhoto(row)
}

func scanVisitPhoto(row rowScanner) (*types.VisitPhoto, error) {
	var p types.VisitPhoto
	var createdAt string
	err := row.Scan(&p.PhotoID, &p.VisitID, &p.Name, &p.RelativePath, &createdAt)
	if err != nil {
		return nil, scanErr("visit photo", err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing visit photo created_at: %w", err)
	}
	return &p, nil
}

func insertVisitPhoto(db execer, p *types.VisitPhoto) error {
	_, err := db.Exec(
		`INSERT INTO visit_photos (photo_id, visit_id, name, relative_path, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.PhotoID, p.VisitID, p.Name, p.RelativePath,
		p.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (t *table) setVisitPhoto(id string, data any) (string, error) {
	p, ok := data.(*types.VisitPhoto)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	if id == "" {
		id = generateUUID()
	}
	p.PhotoID = id
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if err := insertVisitPhoto(t.backend.db, p); err != nil {
		return "", fmt.Errorf("inserting visit photo: %w", err)
	}
	return id, nil
}

var visitPhotoFilterColumns = map[string]string{
	"visitId":   "visit_id",
	"createdAt": "created_at",
}

func (t *table) fetchVisitPhotos(filter map[string]any) ([]any, error) {
	where, args, err := buildWhere(filter, visitPhotoFilterColumns)
	if err != nil {
		return nil, err
	}
	rows, err := t.backend.db.Query(visitPhotoSelect+where+` ORDER BY created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching visit photos: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		p, err := scanVisitPhoto(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// patchVisitPhoto allows renaming only; the relative path is immutable once
// the file is on disk.
func (t *table) patchVisitPhoto(id string, patch map[string]any) error {
	if _, err := t.getVisitPhoto(id); err != nil {
		return err
	}
	for key, value := range patch {
		if key != "name" {
			return types.ErrInvalidPatch
		}
		name, ok := value.(string)
		if !ok {
			return types.ErrInvalidPatch
		}
		_, err := t.backend.db.Exec(
			`UPDATE visit_photos SET name = ? WHERE photo_id = ?`, name, id)
		if err != nil {
			return fmt.Errorf("patching visit photo: %w", err)
		}
	}
	return nil
}
