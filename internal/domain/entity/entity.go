// Package entity provides the tagged record types for every collection the
// data layer mirrors, plus the db-tag reflection helpers used to turn
// records into rows and to merge partial updates into existing records.
package entity

import "github.com/shopspring/decimal"

// Table names in the remote store. The local blob store uses the same keys.
const (
	TableSales             = "sales"
	TableClients           = "clients"
	TableDesigns           = "designs"
	TableExpenses          = "expenses"
	TableSuppliers         = "suppliers"
	TableSupplierExpenses  = "supplier_expenses"
	TableInventory         = "inventory"
	TableStockTransactions = "stock_transactions"
	TableDesignMaterials   = "design_materials"
	TableUsers             = "users"
	TableAudit             = "audit"
)

// Record is implemented by every entity; the identifier is the value of the
// collection's key field (numeric id for most entities, username for users).
type Record interface {
	RecordID() any
}

func init() {
	// Amounts are numbers on the wire, both in the remote store's JSON
	// payloads and in the offline blob.
	decimal.MarshalJSONWithoutQuotes = true
}
