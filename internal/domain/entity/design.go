package entity

import (
	"context"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/types"
)

// Design statuses.
const (
	DesignInProgress = "In Progress"
	DesignCompleted  = "Completed"
	DesignPending    = "Pending"
	DesignOutsourced = "Outsourced"
)

// Design payment statuses. "Full" and "Paid" both count as fully paid; both
// spellings occur in exported data.
const (
	PaymentNotStarted = "Not Started"
	PaymentPartial    = "Partial"
	PaymentFull       = "Full"
	PaymentPaid       = "Paid"
)

// Design is a client design project. Completing a fully paid design
// generates a sale; handing it over propagates to its linked sales.
type Design struct {
	ID            int64       `db:"id" json:"id"`
	Date          string      `db:"date" json:"date"`
	Client        string      `db:"client" json:"client"`
	Type          string      `db:"type" json:"type"`
	Amount        types.Money `db:"amount" json:"amount"`
	AssignedTo    string      `db:"assigned_to" json:"assignedTo,omitempty"`
	Status        string      `db:"status" json:"status"`
	PaymentStatus string      `db:"payment_status" json:"paymentStatus"`
	PaymentAmount types.Money `db:"payment_amount" json:"paymentAmount"`
	PaymentDate   string      `db:"payment_date" json:"paymentDate,omitempty"`
	HandedOver    bool        `db:"handed_over" json:"handedOver"`
	HandoverDate  string      `db:"handover_date" json:"handoverDate,omitempty"`
	Branch        string      `db:"branch" json:"branch,omitempty"`
}

// RecordID implements Record.
func (d Design) RecordID() any { return d.ID }

// Validate checks boundary invariants.
func (d *Design) Validate(ctx context.Context) error {
	if d.Client == "" {
		return apperror.NewValidation("client is required").WithDetail("field", "client")
	}
	if d.Status != "" && !validDesignStatus(d.Status) {
		return apperror.NewValidation("invalid design status").
			WithDetail("field", "status").
			WithDetail("value", d.Status)
	}
	if d.PaymentStatus != "" && !validPaymentStatus(d.PaymentStatus) {
		return apperror.NewValidation("invalid payment status").
			WithDetail("field", "paymentStatus").
			WithDetail("value", d.PaymentStatus)
	}
	return nil
}

// IsFullyPaid reports whether the design's payment is complete.
func (d *Design) IsFullyPaid() bool {
	return IsFullyPaidStatus(d.PaymentStatus)
}

// IsFullyPaidStatus reports whether a payment status counts as fully paid.
func IsFullyPaidStatus(status string) bool {
	return status == PaymentFull || status == PaymentPaid
}

func validDesignStatus(s string) bool {
	switch s {
	case DesignInProgress, DesignCompleted, DesignPending, DesignOutsourced:
		return true
	}
	return false
}

func validPaymentStatus(s string) bool {
	switch s {
	case PaymentNotStarted, PaymentPartial, PaymentFull, PaymentPaid:
		return true
	}
	return false
}
