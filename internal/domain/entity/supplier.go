package entity

import (
	"context"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/types"
)

// Supplier is a vendor shared across branches.
type Supplier struct {
	ID          int64       `db:"id" json:"id"`
	Name        string      `db:"name" json:"name"`
	Contact     string      `db:"contact" json:"contact,omitempty"`
	Phone       string      `db:"phone" json:"phone,omitempty"`
	Email       string      `db:"email" json:"email,omitempty"`
	TaxID       string      `db:"tax_id" json:"taxId,omitempty"`
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`
}

// RecordID implements Record.
func (s Supplier) RecordID() any { return s.ID }

// Validate checks boundary invariants.
func (s *Supplier) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}

// SupplierExpense is a payment or charge against a supplier account.
type SupplierExpense struct {
	ID         int64       `db:"id" json:"id"`
	Date       string      `db:"date" json:"date"`
	SupplierID int64       `db:"supplier_id" json:"supplierId"`
	Type       string      `db:"type" json:"type,omitempty"`
	Amount     types.Money `db:"amount" json:"amount"`
	Remarks    string      `db:"remarks" json:"remarks,omitempty"`
}

// RecordID implements Record.
func (s SupplierExpense) RecordID() any { return s.ID }

// Validate checks boundary invariants.
func (s *SupplierExpense) Validate(ctx context.Context) error {
	if s.SupplierID == 0 {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	return nil
}
