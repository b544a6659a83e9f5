package types

import "time"

// Client represents a dog owner. Deleting a Client does not cascade to the
// Dogs that reference it; a dog's ClientID may dangle and resolves to
// "unknown" at read time.
type Client struct {
	ClientID  string    `json:"id"`
	OwnerName string    `json:"ownerName"`
	Phone     string    `json:"phone,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks required fields before persistence.
func (c *Client) Validate() error {
	if c.OwnerName == "" {
		return ErrInvalidName
	}
	return nil
}
