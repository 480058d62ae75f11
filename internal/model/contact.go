package model

import "time"

// Contact is a row of the contact store as seen by the calendar and campaigns.
// Name and Birthday are optional; an empty string means absent.
type Contact struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name,omitempty"`
	PhoneNumber string    `json:"phone_number"`
	Birthday    string    `json:"birthday,omitempty"` // YYYY-MM-DD, year ignored
	Status      string    `json:"-"`
	CreatedAt   time.Time `json:"-"`
}

// Contact statuses
const (
	ContactStatusActive   = "active"
	ContactStatusArchived = "archived"
)

// DisplayName returns the name when present, else the phone number
func (c Contact) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.PhoneNumber
}

// ExportedClient is the handoff shape consumed by campaign creation
type ExportedClient struct {
	DisplayName string `json:"display_name"`
	PhoneNumber string `json:"phone_number"`
}
