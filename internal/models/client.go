package models

import "time"

// Client is a customer that sales documents are addressed to.
// Deleting a client deletes its documents.
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	POBox     string    `gorm:"column:po_box;size:100" json:"po_box,omitempty"`
	Location  string    `gorm:"size:255" json:"location,omitempty"`
	Telephone string    `gorm:"size:50" json:"telephone,omitempty"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	PIN       string    `gorm:"column:pin;size:50" json:"pin,omitempty"`
}

// AddressLines returns the non-empty postal lines of the client.
func (c *Client) AddressLines() []string {
	var lines []string
	for _, s := range []string{c.POBox, c.Location, c.Telephone, c.Email} {
		if s != "" {
			lines = append(lines, s)
		}
	}
	if c.PIN != "" {
		lines = append(lines, "PIN: "+c.PIN)
	}
	return lines
}
