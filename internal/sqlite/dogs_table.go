package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/groomcrm/groomcrm/pkg/types"
)

const dogSelect = `SELECT dog_id, client_id, dog_name, breed, notes, tags, created_at, updated_at FROM dogs`

func (t *table) getDog(id string) (any, error) {
	row := t.backend.db.QueryRow(dogSelect+` WHERE dog_id = ?`, id)
	return scanDog(row)
}

func scanDog(row rowScanner) (*types.Dog, error) {
	var d types.Dog
	var tagsJSON, createdAt, updatedAt string
	err := row.Scan(&d.DogID, &d.ClientID, &d.DogName, &d.Breed, &d.Notes, &tagsJSON, &createdAt, &updatedAt)
	if err != nil {
		return nil, scanErr("dog", err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &d.Tags); err != nil {
		return nil, fmt.Errorf("parsing dog tags: %w", err)
	}
	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing dog created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing dog updated_at: %w", err)
	}
	return &d, nil
}

func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding dog tags: %w", err)
	}
	return string(raw), nil
}

func insertDog(db execer, d *types.Dog) error {
	tags, err := marshalTags(d.Tags)
	if err != nil {
		return err
	}
	_, err = db.Exec(
		`INSERT INTO dogs (dog_id, client_id, dog_name, breed, notes, tags, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DogID, d.ClientID, d.DogName, d.Breed, d.Notes, tags,
		d.CreatedAt.UTC().Format(time.RFC3339), d.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (t *table) setDog(id string, data any) (string, error) {
	d, ok := data.(*types.Dog)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := d.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	if id == "" {
		id = generateUUID()
		d.DogID = id
		d.CreatedAt = now
		d.UpdatedAt = now
		if err := insertDog(t.backend.db, d); err != nil {
			return "", fmt.Errorf("inserting dog: %w", err)
		}
		return id, nil
	}

	d.DogID = id
	d.UpdatedAt = now
	tags, err := marshalTags(d.Tags)
	if err != nil {
		return "", err
	}
	res, err := t.backend.db.Exec(
		`UPDATE dogs SET client_id = ?, dog_name = ?, breed = ?, notes = ?, tags = ?, updated_at = ? WHERE dog_id = ?`,
		d.ClientID, d.DogName, d.Breed, d.Notes, tags, now.UTC().Format(time.RFC3339), id)
	if err != nil {
		return "", fmt.Errorf("updating dog: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		d.CreatedAt = now
		if err := insertDog(t.backend.db, d); err != nil {
			return "", fmt.Errorf("inserting dog: %w", err)
		}
	}
	return id, nil
}

var dogFilterColumns = map[string]string{
	"clientId":  "client_id",
	"dogName":   "dog_name",
	"createdAt": "created_at",
}

func (t *table) fetchDogs(filter map[string]any) ([]any, error) {
	where, args, err := buildWhere(filter, dogFilterColumns)
	if err != nil {
		return nil, err
	}
	rows, err := t.backend.db.Query(dogSelect+where+` ORDER BY dog_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching dogs: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (t *table) patchDog(id string, patch map[string]any) error {
	entity, err := t.getDog(id)
	if err != nil {
		return err
	}
	d := entity.(*types.Dog)

	for key, value := range patch {
		switch key {
		case "dogName", "breed", "notes", "clientId":
			s, ok := value.(string)
			if !ok {
				return types.ErrInvalidPatch
			}
			switch key {
			case "dogName":
				d.DogName = s
			case "breed":
				d.Breed = s
			case "notes":
				d.Notes = s
			case "clientId":
				d.ClientID = s
			}
		case "tags":
			tags, ok := value.([]string)
			if !ok {
				return types.ErrInvalidPatch
			}
			d.Tags = tags
		default:
			return types.ErrInvalidPatch
		}
	}
	if err := d.Validate(); err != nil {
		return err
	}

	tags, err := marshalTags(d.Tags)
	if err != nil {
		return err
	}
	_, err = t.backend.db.Exec(
		`UPDATE dogs SET client_id = ?, dog_name = ?, breed = ?, notes = ?, tags = ?, updated_at = ? WHERE dog_id = ?`,
		d.ClientID, d.DogName, d.Breed, d.Notes, tags, nowRFC3339(), id)
	if err != nil {
		return fmt.Errorf("patching dog: %w", err)
	}
	return nil
}
