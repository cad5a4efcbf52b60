package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkhub/internal/core/types"
	"inkhub/internal/domain/entity"
)

func TestSummarize(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	_, err := l.CreateSale(ctx, entity.Sale{
		Client: "Acme", Dept: "Printing", Date: "2024-01-10",
		Amount: types.MustMoney("1000"), PaymentStatus: entity.SalePaid,
	})
	require.NoError(t, err)
	_, err = l.CreateSale(ctx, entity.Sale{
		Client: "Beta", Dept: "Branding", Date: "2024-01-20",
		Amount: types.MustMoney("2500"),
	})
	require.NoError(t, err)
	_, err = l.CreateExpense(ctx, entity.Expense{
		Category: "Rent", Date: "2024-01-05", Amount: types.MustMoney("800"),
	})
	require.NoError(t, err)

	s := l.Summarize(ctx, DateRange{})
	assert.Equal(t, 2, s.SalesCount)
	assert.Equal(t, 1, s.ExpensesCount)
	assert.True(t, s.TotalSales.Equal(types.MustMoney("3500")))
	assert.True(t, s.TotalExpenses.Equal(types.MustMoney("800")))
	assert.True(t, s.NetBalance.Equal(types.MustMoney("2700")))
	assert.True(t, s.PendingPayments.Equal(types.MustMoney("2500")))
	assert.True(t, s.SalesByDept["Printing"].Equal(types.MustMoney("1000")))
	assert.True(t, s.SalesByDept["Branding"].Equal(types.MustMoney("2500")))

	// Range bounds are inclusive and cut by date string.
	ranged := l.Summarize(ctx, DateRange{From: "2024-01-15", To: "2024-01-31"})
	assert.Equal(t, 1, ranged.SalesCount)
	assert.Equal(t, 0, ranged.ExpensesCount)
	assert.True(t, ranged.TotalSales.Equal(types.MustMoney("2500")))
}

func TestSupplierBalances(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	sup, err := l.CreateSupplier(ctx, entity.Supplier{Name: "PaperCo"})
	require.NoError(t, err)
	_, err = l.CreateSupplierExpense(ctx, entity.SupplierExpense{
		SupplierID: sup.ID, Date: "2024-01-10", Amount: types.MustMoney("300"),
	})
	require.NoError(t, err)
	_, err = l.CreateSupplierExpense(ctx, entity.SupplierExpense{
		SupplierID: sup.ID, Date: "2024-02-10", Amount: types.MustMoney("200"),
	})
	require.NoError(t, err)

	balances := l.SupplierBalances(ctx, DateRange{})
	require.Len(t, balances, 1)
	assert.Equal(t, "PaperCo", balances[0].Name)
	assert.Equal(t, 2, balances[0].Entries)
	assert.True(t, balances[0].Total.Equal(types.MustMoney("500")))
}

func TestInventoryStatus(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	items := []entity.InventoryItem{
		{ID: 1, Name: "A", Quantity: 10, ReorderLevel: 2},
		{ID: 2, Name: "B", Quantity: 2, ReorderLevel: 2},
		{ID: 3, Name: "C", Quantity: 0, ReorderLevel: 2},
	}
	for _, item := range items {
		_, err := l.CreateInventoryItem(ctx, item)
		require.NoError(t, err)
	}

	s := l.InventoryStatus(ctx)
	assert.Equal(t, 1, s.InStock)
	assert.Equal(t, 1, s.LowStock)
	assert.Equal(t, 1, s.OutOfStock)
}
