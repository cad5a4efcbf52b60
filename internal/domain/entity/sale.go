package entity

import (
	"context"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/types"
)

// Sale sources.
const (
	SourceDirectSale    = "Direct Sale"
	SourceDesignProject = "Design Project"
)

// Sale payment statuses.
const (
	SalePaid    = "Paid"
	SalePending = "Pending"
)

// Sale is a revenue record, either entered directly or generated from a
// completed design project.
type Sale struct {
	ID            int64       `db:"id" json:"id"`
	Date          string      `db:"date" json:"date"`
	Client        string      `db:"client" json:"client"`
	Dept          string      `db:"dept" json:"dept"`
	Amount        types.Money `db:"amount" json:"amount"`
	Desc          string      `db:"description" json:"desc"`
	PaymentStatus string      `db:"payment_status" json:"paymentStatus"`
	PaymentMethod string      `db:"payment_method" json:"paymentMethod"`
	Source        string      `db:"source" json:"source"`
	DesignID      *int64      `db:"design_id" json:"designId,omitempty"`
	HandedOver    bool        `db:"handed_over" json:"handedOver"`
	HandoverDate  string      `db:"handover_date" json:"handoverDate,omitempty"`
	Branch        string      `db:"branch" json:"branch,omitempty"`
}

// RecordID implements Record.
func (s Sale) RecordID() any { return s.ID }

// Validate checks boundary invariants before the record reaches the
// mutation engine.
func (s *Sale) Validate(ctx context.Context) error {
	if s.Client == "" {
		return apperror.NewValidation("client is required").WithDetail("field", "client")
	}
	if s.Source != "" && s.Source != SourceDirectSale && s.Source != SourceDesignProject {
		return apperror.NewValidation("invalid sale source").
			WithDetail("field", "source").
			WithDetail("value", s.Source)
	}
	return nil
}

// FromDesign returns true when this sale was generated from a design project.
func (s *Sale) FromDesign() bool {
	return s.DesignID != nil && s.Source == SourceDesignProject
}
