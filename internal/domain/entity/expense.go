package entity

import (
	"context"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/types"
)

// Expense is an operating cost entry.
type Expense struct {
	ID       int64       `db:"id" json:"id"`
	Date     string      `db:"date" json:"date"`
	Category string      `db:"category" json:"category"`
	Amount   types.Money `db:"amount" json:"amount"`
	Desc     string      `db:"description" json:"desc,omitempty"`
	Branch   string      `db:"branch" json:"branch,omitempty"`
}

// RecordID implements Record.
func (e Expense) RecordID() any { return e.ID }

// Validate checks boundary invariants.
func (e *Expense) Validate(ctx context.Context) error {
	if e.Category == "" {
		return apperror.NewValidation("category is required").WithDetail("field", "category")
	}
	return nil
}
