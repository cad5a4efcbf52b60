package data

import (
	"context"

	"inkhub/internal/core/types"
	"inkhub/internal/domain/entity"
)

// DateRange bounds a report. Empty bounds are open.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// contains compares date strings; the wire format sorts lexically.
func (r DateRange) contains(date string) bool {
	if r.From != "" && date < r.From {
		return false
	}
	if r.To != "" && date > r.To {
		return false
	}
	return true
}

// Summary is the topline financial report.
type Summary struct {
	TotalSales      types.Money            `json:"totalSales"`
	TotalExpenses   types.Money            `json:"totalExpenses"`
	NetBalance      types.Money            `json:"netBalance"`
	SalesCount      int                    `json:"salesCount"`
	ExpensesCount   int                    `json:"expensesCount"`
	PendingPayments types.Money            `json:"pendingPayments"`
	SalesByDept     map[string]types.Money `json:"salesByDept"`
}

// Summarize computes totals over the sales and expenses visible to the
// session identity within the range.
func (l *Layer) Summarize(ctx context.Context, r DateRange) Summary {
	s := Summary{
		TotalSales:      types.Zero(),
		TotalExpenses:   types.Zero(),
		PendingPayments: types.Zero(),
		SalesByDept:     make(map[string]types.Money),
	}

	for _, sale := range l.Sales(ctx) {
		if !r.contains(sale.Date) {
			continue
		}
		s.TotalSales = s.TotalSales.Add(sale.Amount)
		s.SalesCount++
		if sale.PaymentStatus == entity.SalePending {
			s.PendingPayments = s.PendingPayments.Add(sale.Amount)
		}
		dept := sale.Dept
		if dept == "" {
			dept = "Other"
		}
		current, ok := s.SalesByDept[dept]
		if !ok {
			current = types.Zero()
		}
		s.SalesByDept[dept] = current.Add(sale.Amount)
	}

	for _, e := range l.Expenses(ctx) {
		if !r.contains(e.Date) {
			continue
		}
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
		s.ExpensesCount++
	}

	s.NetBalance = s.TotalSales.Sub(s.TotalExpenses)
	return s
}

// SupplierBalance is what has been paid to one supplier over a range.
type SupplierBalance struct {
	SupplierID int64       `json:"supplierId"`
	Name       string      `json:"name"`
	Total      types.Money `json:"total"`
	Entries    int         `json:"entries"`
}

// SupplierBalances aggregates supplier expenses per supplier.
func (l *Layer) SupplierBalances(ctx context.Context, r DateRange) []SupplierBalance {
	byID := make(map[int64]*SupplierBalance)
	for _, s := range l.Suppliers(ctx) {
		byID[s.ID] = &SupplierBalance{SupplierID: s.ID, Name: s.Name, Total: types.Zero()}
	}

	for _, e := range l.SupplierExpenses(ctx) {
		if !r.contains(e.Date) {
			continue
		}
		b, ok := byID[e.SupplierID]
		if !ok {
			continue
		}
		b.Total = b.Total.Add(e.Amount)
		b.Entries++
	}

	out := make([]SupplierBalance, 0, len(byID))
	for _, s := range l.Suppliers(ctx) {
		out = append(out, *byID[s.ID])
	}
	return out
}

// StockStatus counts inventory items per stock level.
type StockStatus struct {
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

// InventoryStatus classifies the visible stock items.
func (l *Layer) InventoryStatus(ctx context.Context) StockStatus {
	var s StockStatus
	for _, item := range l.Inventory(ctx) {
		switch item.Status() {
		case entity.StatusOutOfStock:
			s.OutOfStock++
		case entity.StatusLowStock:
			s.LowStock++
		default:
			s.InStock++
		}
	}
	return s
}

// LedgerSum replays an item's ledger and returns the summed quantity.
// The denormalized counter on the item should match this; callers that
// need strict consistency can compare the two.
func (l *Layer) LedgerSum(itemID int64) int64 {
	var sum int64
	for _, tx := range l.stockTx.Snapshot() {
		if tx.ItemID == itemID {
			sum += tx.QuantityChange
		}
	}
	return sum
}
