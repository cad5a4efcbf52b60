package data

import (
	"context"
	"fmt"
	"time"

	"inkhub/internal/core/apperror"
	appctx "inkhub/internal/core/context"
	"inkhub/internal/core/id"
	"inkhub/internal/core/types"
	"inkhub/internal/domain/entity"
	"inkhub/pkg/logger"
)

// CreateInventoryItem adds a stock item.
func (l *Layer) CreateInventoryItem(ctx context.Context, item entity.InventoryItem) (entity.InventoryItem, error) {
	if item.ID == 0 {
		item.ID = id.New()
	}
	if item.Branch == "" {
		item.Branch = sessionBranch(ctx)
	}
	if err := item.Validate(ctx); err != nil {
		return entity.InventoryItem{}, err
	}

	l.inventory.InsertLocal(item)
	if err := l.persist(ctx, entity.TableInventory, "insert", func() error {
		return l.inventory.Backend().Insert(ctx, item)
	}); err != nil {
		return entity.InventoryItem{}, err
	}

	l.audit.Record(ctx, entity.ActionCreate, ModuleInventory,
		fmt.Sprintf("Added inventory item: %s", item.Name))
	return item, nil
}

// UpdateInventoryItem applies a partial update to a stock item. A quantity
// change in the patch is not written directly: it is converted into a
// CORRECTION ledger entry so the ledger stays the source of truth for
// every quantity movement.
func (l *Layer) UpdateInventoryItem(ctx context.Context, itemID int64, patch entity.Row) (entity.InventoryItem, error) {
	prior, ok := l.inventory.Get(itemID)
	if !ok {
		return entity.InventoryItem{}, apperror.NewNotFound(entity.TableInventory, itemID)
	}

	patch = l.inventory.WithoutKey(patch)
	if raw, ok := patch["quantity"]; ok {
		delete(patch, "quantity")
		delta := int64(types.CoerceFloat(raw)) - prior.Quantity
		if delta != 0 {
			if _, err := l.RecordStockTransaction(ctx, entity.StockTransaction{
				ItemID:         itemID,
				QuantityChange: delta,
				Type:           entity.StockCorrection,
				Reason:         "Manual quantity adjustment",
			}); err != nil {
				return entity.InventoryItem{}, err
			}
		}
	}

	if len(patch) > 0 {
		merged, _ := l.inventory.Get(itemID)
		entity.ApplyPatch(&merged, patch)
		if err := merged.Validate(ctx); err != nil {
			return entity.InventoryItem{}, err
		}

		l.inventory.UpdateLocal(itemID, patch)
		if err := l.persist(ctx, entity.TableInventory, "update", func() error {
			return l.inventory.Backend().Update(ctx, itemID, patch)
		}); err != nil {
			return entity.InventoryItem{}, err
		}
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleInventory,
		fmt.Sprintf("Updated inventory ID %d", itemID))

	rec, _ := l.inventory.Get(itemID)
	return rec, nil
}

// DeleteInventoryItem removes a stock item.
func (l *Layer) DeleteInventoryItem(ctx context.Context, itemID int64) error {
	if _, ok := l.inventory.Get(itemID); !ok {
		return apperror.NewNotFound(entity.TableInventory, itemID)
	}

	l.inventory.DeleteLocal(itemID)
	if err := l.persist(ctx, entity.TableInventory, "delete", func() error {
		return l.inventory.Backend().Delete(ctx, itemID)
	}); err != nil {
		return err
	}

	l.audit.Record(ctx, entity.ActionDelete, ModuleInventory,
		fmt.Sprintf("Deleted inventory ID %d", itemID))
	return nil
}

// RecordStockTransaction appends a ledger entry and moves the item's
// quantity counter. Unlike the rest of the mutation engine this is not
// optimistic: the ledger entry is persisted first and the counter only
// moves once it is durable, so the two cannot diverge from a local-only
// write. Negative resulting stock is allowed but logged.
func (l *Layer) RecordStockTransaction(ctx context.Context, tx entity.StockTransaction) (entity.StockTransaction, error) {
	item, ok := l.inventory.Get(tx.ItemID)
	if !ok {
		return entity.StockTransaction{}, apperror.NewNotFound(entity.TableInventory, tx.ItemID)
	}

	if tx.ID == 0 {
		tx.ID = id.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if tx.CreatedBy == "" {
		tx.CreatedBy = appctx.GetUsername(ctx)
	}
	if tx.Branch == "" {
		tx.Branch = item.Branch
	}
	if err := tx.Validate(ctx); err != nil {
		return entity.StockTransaction{}, err
	}

	newQty := item.Quantity + tx.QuantityChange
	if newQty < 0 {
		logger.Warn(ctx, "stock quantity going negative",
			"item", item.ID, "name", item.Name, "quantity", newQty)
	}

	if err := l.persist(ctx, entity.TableStockTransactions, "insert", func() error {
		return l.stockTx.Backend().Insert(ctx, tx)
	}); err != nil {
		return entity.StockTransaction{}, err
	}

	qtyPatch := entity.Row{"quantity": newQty}
	if err := l.persist(ctx, entity.TableInventory, "update", func() error {
		return l.inventory.Backend().Update(ctx, tx.ItemID, qtyPatch)
	}); err != nil {
		return entity.StockTransaction{}, err
	}

	l.stockTx.InsertLocal(tx)
	l.inventory.UpdateLocal(tx.ItemID, qtyPatch)

	l.audit.Record(ctx, entity.ActionUpdate, ModuleInventory,
		fmt.Sprintf("Stock %s for %s: %+d (now %d)",
			tx.Type, item.Name, tx.QuantityChange, newQty))
	return tx, nil
}

// AddDesignMaterial links an inventory item to a design and books the
// usage against stock.
func (l *Layer) AddDesignMaterial(ctx context.Context, m entity.DesignMaterial) (entity.DesignMaterial, error) {
	if m.ID == 0 {
		m.ID = id.New()
	}
	if m.AssignedBy == "" {
		m.AssignedBy = appctx.GetUsername(ctx)
	}
	if err := m.Validate(ctx); err != nil {
		return entity.DesignMaterial{}, err
	}
	if _, ok := l.designs.Get(m.DesignID); !ok {
		return entity.DesignMaterial{}, apperror.NewNotFound(entity.TableDesigns, m.DesignID)
	}
	item, ok := l.inventory.Get(m.ItemID)
	if !ok {
		return entity.DesignMaterial{}, apperror.NewNotFound(entity.TableInventory, m.ItemID)
	}

	l.designMaterials.InsertLocal(m)
	if err := l.persist(ctx, entity.TableDesignMaterials, "insert", func() error {
		return l.designMaterials.Backend().Insert(ctx, m)
	}); err != nil {
		return entity.DesignMaterial{}, err
	}

	if _, err := l.RecordStockTransaction(ctx, entity.StockTransaction{
		ItemID:         m.ItemID,
		QuantityChange: -m.QuantityUsed,
		Type:           entity.StockProjectUsage,
		Reason:         fmt.Sprintf("Used on design %d", m.DesignID),
	}); err != nil {
		return entity.DesignMaterial{}, err
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleInventory,
		fmt.Sprintf("Assigned %d x %s to design %d", m.QuantityUsed, item.Name, m.DesignID))
	return m, nil
}

// RemoveDesignMaterial unlinks a material from a design and refunds the
// stock. If the refund fails after the link is gone the quantities are
// left short; that inconsistency is logged rather than failing the removal,
// since the link deletion cannot be taken back.
func (l *Layer) RemoveDesignMaterial(ctx context.Context, materialID int64) error {
	m, ok := l.designMaterials.Get(materialID)
	if !ok {
		return apperror.NewNotFound(entity.TableDesignMaterials, materialID)
	}

	l.designMaterials.DeleteLocal(materialID)
	if err := l.persist(ctx, entity.TableDesignMaterials, "delete", func() error {
		return l.designMaterials.Backend().Delete(ctx, materialID)
	}); err != nil {
		return err
	}

	if _, err := l.RecordStockTransaction(ctx, entity.StockTransaction{
		ItemID:         m.ItemID,
		QuantityChange: m.QuantityUsed,
		Type:           entity.StockProjectReturn,
		Reason:         fmt.Sprintf("Returned from design %d", m.DesignID),
	}); err != nil {
		logger.Error(ctx, "stock refund failed after material removal",
			"material", materialID, "item", m.ItemID, "quantity", m.QuantityUsed,
			"error", err)
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleInventory,
		fmt.Sprintf("Removed material %d from design %d", materialID, m.DesignID))
	return nil
}
