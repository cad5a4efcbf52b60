package entity

import (
	"context"

	"inkhub/internal/core/apperror"
)

// Client is a customer. Sales reference clients by name, not id; the link
// is informational and carries no referential integrity.
type Client struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Phone    string `db:"phone" json:"phone,omitempty"`
	Address  string `db:"address" json:"address,omitempty"`
	Location string `db:"location" json:"location,omitempty"`
}

// RecordID implements Record.
func (c Client) RecordID() any { return c.ID }

// Validate checks boundary invariants.
func (c *Client) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}
