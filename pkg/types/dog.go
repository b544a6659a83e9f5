package types

import "time"

// Dog represents a grooming client's dog. ClientID is an optional soft
// reference to the owning Client.
type Dog struct {
	DogID     string    `json:"id"`
	ClientID  string    `json:"clientId,omitempty"`
	DogName   string    `json:"dogName"`
	Breed     string    `json:"breed,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks required fields before persistence.
func (d *Dog) Validate() error {
	if d.DogName == "" {
		return ErrInvalidName
	}
	return nil
}

// HasTag reports whether the dog carries the given free-text tag.
func (d *Dog) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
