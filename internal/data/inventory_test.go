package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkhub/internal/core/apperror"
	"inkhub/internal/domain/entity"
)

func TestStockTransactionMovesQuantity(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	item, err := l.CreateInventoryItem(ctx, entity.InventoryItem{
		ID: 1, Name: "Vinyl Roll", Quantity: 0, ReorderLevel: 2,
	})
	require.NoError(t, err)

	_, err = l.RecordStockTransaction(ctx, entity.StockTransaction{
		ItemID: item.ID, QuantityChange: 5, Type: entity.StockRestock,
	})
	require.NoError(t, err)
	_, err = l.RecordStockTransaction(ctx, entity.StockTransaction{
		ItemID: item.ID, QuantityChange: -3, Type: entity.StockVariance,
	})
	require.NoError(t, err)

	got, ok := l.inventory.Get(item.ID)
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Quantity)
	assert.Equal(t, entity.StatusLowStock, got.Status())

	// Two ledger rows whose replay matches the counter.
	assert.Len(t, l.StockTransactions(ctx), 2)
	assert.Equal(t, got.Quantity, l.LedgerSum(item.ID))
}

func TestStockTransactionUnknownItem(t *testing.T) {
	l := newTestLayer(t)

	_, err := l.RecordStockTransaction(adminCtx(), entity.StockTransaction{
		ItemID: 404, QuantityChange: 1, Type: entity.StockRestock,
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestStockTransactionAllowsNegativeQuantity(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	item, err := l.CreateInventoryItem(ctx, entity.InventoryItem{
		ID: 1, Name: "Ink", Quantity: 1,
	})
	require.NoError(t, err)

	_, err = l.RecordStockTransaction(ctx, entity.StockTransaction{
		ItemID: item.ID, QuantityChange: -4, Type: entity.StockVariance,
	})
	require.NoError(t, err)

	got, _ := l.inventory.Get(item.ID)
	assert.Equal(t, int64(-3), got.Quantity)
	assert.Equal(t, entity.StatusOutOfStock, got.Status())
}

func TestUpdateItemQuantityGoesThroughLedger(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	item, err := l.CreateInventoryItem(ctx, entity.InventoryItem{
		ID: 1, Name: "Paper", Quantity: 10,
	})
	require.NoError(t, err)

	_, err = l.UpdateInventoryItem(ctx, item.ID, entity.Row{
		"quantity": float64(7),
		"category": "Print",
	})
	require.NoError(t, err)

	got, _ := l.inventory.Get(item.ID)
	assert.Equal(t, int64(7), got.Quantity)
	assert.Equal(t, "Print", got.Category)

	ledger := l.StockTransactions(ctx)
	require.Len(t, ledger, 1)
	assert.Equal(t, entity.StockCorrection, ledger[0].Type)
	assert.Equal(t, int64(-3), ledger[0].QuantityChange)
	assert.Equal(t, got.Quantity, l.LedgerSum(item.ID)+10)
}

func TestDesignMaterialUsageAndReturn(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	_, err := l.CreateDesign(ctx, entity.Design{ID: 1, Client: "Acme", Type: "Banner"})
	require.NoError(t, err)
	item, err := l.CreateInventoryItem(ctx, entity.InventoryItem{
		ID: 2, Name: "Canvas", Quantity: 10,
	})
	require.NoError(t, err)

	m, err := l.AddDesignMaterial(ctx, entity.DesignMaterial{
		DesignID: 1, ItemID: item.ID, QuantityUsed: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "jane", m.AssignedBy)

	got, _ := l.inventory.Get(item.ID)
	assert.Equal(t, int64(6), got.Quantity)

	ledger := l.StockTransactions(ctx)
	require.Len(t, ledger, 1)
	assert.Equal(t, entity.StockProjectUsage, ledger[0].Type)
	assert.Equal(t, int64(-4), ledger[0].QuantityChange)

	require.NoError(t, l.RemoveDesignMaterial(ctx, m.ID))

	got, _ = l.inventory.Get(item.ID)
	assert.Equal(t, int64(10), got.Quantity)
	assert.Empty(t, l.DesignMaterials(ctx, 1))

	ledger = l.StockTransactions(ctx)
	require.Len(t, ledger, 2)
	assert.Equal(t, entity.StockProjectReturn, ledger[0].Type)
	assert.Equal(t, int64(4), ledger[0].QuantityChange)
}
