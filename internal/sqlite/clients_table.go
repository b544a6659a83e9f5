package sqlite

import (
	"fmt"
	"time"

	"github.com/groomcrm/groomcrm/pkg/types"
)

const clientSelect = `SELECT client_id, owner_name, phone, notes, created_at, updated_at FROM clients`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (t *table) getClient(id string) (any, error) {
	row := t.backend.db.QueryRow(clientSelect+` WHERE client_id = ?`, id)
	return scanClient(row)
}

func scanClient(row rowScanner) (*types.Client, error) {
	var c types.Client
	var createdAt, updatedAt string
	err := row.Scan(&c.ClientID, &c.OwnerName, &c.Phone, &c.Notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, scanErr("client", err)
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing client created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing client updated_at: %w", err)
	}
	return &c, nil
}

func insertClient(db execer, c *types.Client) error {
	_, err := db.Exec(
		`INSERT INTO clients (client_id, owner_name, phone, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ClientID, c.OwnerName, c.Phone, c.Notes,
		c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (t *table) setClient(id string, data any) (string, error) {
	c, ok := data.(*types.Client)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	now := time.Now()
	if id == "" {
		id = generateUUID()
		c.ClientID = id
		c.CreatedAt = now
		c.UpdatedAt = now
		if err := insertClient(t.backend.db, c); err != nil {
			return "", fmt.Errorf("inserting client: %w", err)
		}
		return id, nil
	}

	c.ClientID = id
	c.UpdatedAt = now
	res, err := t.backend.db.Exec(
		`UPDATE clients SET owner_name = ?, phone = ?, notes = ?, updated_at = ? WHERE client_id = ?`,
		c.OwnerName, c.Phone, c.Notes, now.UTC().Format(time.RFC3339), id)
	if err != nil {
		return "", fmt.Errorf("updating client: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if n == 0 {
		// Explicit ID for a new record.
		c.CreatedAt = now
		if err := insertClient(t.backend.db, c); err != nil {
			return "", fmt.Errorf("inserting client: %w", err)
		}
	}
	return id, nil
}

var clientFilterColumns = map[string]string{
	"ownerName": "owner_name",
	"createdAt": "created_at",
}

func (t *table) fetchClients(filter map[string]any) ([]any, error) {
	where, args, err := buildWhere(filter, clientFilterColumns)
	if err != nil {
		return nil, err
	}
	rows, err := t.backend.db.Query(clientSelect+where+` ORDER BY owner_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching clients: %w", err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (t *table) patchClient(id string, patch map[string]any) error {
	entity, err := t.getClient(id)
	if err != nil {
		return err
	}
	c := entity.(*types.Client)

	for key, value := range patch {
		s, ok := value.(string)
		if !ok {
			return types.ErrInvalidPatch
		}
		switch key {
		case "ownerName":
			c.OwnerName = s
		case "phone":
			c.Phone = s
		case "notes":
			c.Notes = s
		default:
			return types.ErrInvalidPatch
		}
	}
	if err := c.Validate(); err != nil {
		return err
	}

	_, err = t.backend.db.Exec(
		`UPDATE clients SET owner_name = ?, phone = ?, notes = ?, updated_at = ? WHERE client_id = ?`,
		c.OwnerName, c.Phone, c.Notes, nowRFC3339(), id)
	if err != nil {
		return fmt.Errorf("patching client: %w", err)
	}
	return nil
}
