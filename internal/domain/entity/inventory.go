package entity

import (
	"context"
	"time"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/types"
)

// Stock transaction types. The ledger is append-only; corrections are new
// entries, never edits.
const (
	StockRestock       = "RESTOCK"
	StockVariance      = "VARIANCE"
	StockProjectUsage  = "PROJECT_USAGE"
	StockProjectReturn = "PROJECT_RETURN"
	StockCorrection    = "CORRECTION"
)

// Inventory status labels derived from quantity vs reorder level.
const (
	StatusInStock    = "In Stock"
	StatusLowStock   = "Low Stock"
	StatusOutOfStock = "Out of Stock"
)

// InventoryItem is a stocked material. Quantity is a denormalized running
// counter over the item's stock ledger entries.
type InventoryItem struct {
	ID           int64       `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	SKU          string      `db:"sku" json:"sku,omitempty"`
	Category     string      `db:"category" json:"category,omitempty"`
	Quantity     int64       `db:"quantity" json:"quantity"`
	ReorderLevel int64       `db:"reorder_level" json:"reorderLevel"`
	UnitPrice    types.Money `db:"unit_price" json:"unitPrice"`
	SupplierID   int64       `db:"supplier_id" json:"supplierId,omitempty"`
	Branch       string      `db:"branch" json:"branch,omitempty"`
}

// RecordID implements Record.
func (i InventoryItem) RecordID() any { return i.ID }

// Validate checks boundary invariants.
func (i *InventoryItem) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	return nil
}

// Status classifies the item's stock level.
func (i *InventoryItem) Status() string {
	switch {
	case i.Quantity <= 0:
		return StatusOutOfStock
	case i.Quantity <= i.ReorderLevel:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// StockTransaction is one stock ledger entry: a signed quantity change with
// its reason. Immutable once created.
type StockTransaction struct {
	ID             int64     `db:"id" json:"id"`
	ItemID         int64     `db:"item_id" json:"itemId"`
	QuantityChange int64     `db:"quantity_change" json:"quantity_change"`
	Type           string    `db:"transaction_type" json:"transaction_type"`
	Reason         string    `db:"reason" json:"reason,omitempty"`
	Notes          string    `db:"notes" json:"notes,omitempty"`
	CreatedBy      string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	Branch         string    `db:"branch" json:"branch,omitempty"`
}

// RecordID implements Record.
func (t StockTransaction) RecordID() any { return t.ID }

// Validate checks boundary invariants.
func (t *StockTransaction) Validate(ctx context.Context) error {
	if t.ItemID == 0 {
		return apperror.NewValidation("item is required").WithDetail("field", "itemId")
	}
	if !validStockType(t.Type) {
		return apperror.NewValidation("invalid transaction type").
			WithDetail("field", "transaction_type").
			WithDetail("value", t.Type)
	}
	return nil
}

func validStockType(s string) bool {
	switch s {
	case StockRestock, StockVariance, StockProjectUsage, StockProjectReturn, StockCorrection:
		return true
	}
	return false
}

// DesignMaterial links a design to an inventory item it consumes. Creating
// or deleting a link issues the paired ledger entry.
type DesignMaterial struct {
	ID           int64  `db:"id" json:"id"`
	DesignID     int64  `db:"design_id" json:"designId"`
	ItemID       int64  `db:"item_id" json:"itemId"`
	QuantityUsed int64  `db:"quantity_used" json:"quantity_used"`
	AssignedBy   string `db:"assigned_by" json:"assigned_by,omitempty"`
}

// RecordID implements Record.
func (m DesignMaterial) RecordID() any { return m.ID }

// Validate checks boundary invariants.
func (m *DesignMaterial) Validate(ctx context.Context) error {
	if m.DesignID == 0 {
		return apperror.NewValidation("design is required").WithDetail("field", "designId")
	}
	if m.ItemID == 0 {
		return apperror.NewValidation("item is required").WithDetail("field", "itemId")
	}
	if m.QuantityUsed <= 0 {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity_used")
	}
	return nil
}
