package data

import (
	"context"
	"fmt"
	"time"

	"inkhub/internal/core/apperror"
	"inkhub/internal/core/id"
	"inkhub/internal/core/types"
	"inkhub/internal/domain/entity"
)

// CreateSupplier adds a supplier. Suppliers are shared across branches.
func (l *Layer) CreateSupplier(ctx context.Context, s entity.Supplier) (entity.Supplier, error) {
	if s.ID == 0 {
		s.ID = id.New()
	}
	if err := s.Validate(ctx); err != nil {
		return entity.Supplier{}, err
	}

	l.suppliers.InsertLocal(s)
	if err := l.persist(ctx, entity.TableSuppliers, "insert", func() error {
		return l.suppliers.Backend().Insert(ctx, s)
	}); err != nil {
		return entity.Supplier{}, err
	}

	l.audit.Record(ctx, entity.ActionCreate, ModuleSuppliers,
		fmt.Sprintf("Added supplier: %s", s.Name))
	return s, nil
}

// UpdateSupplier applies a partial update to a supplier.
func (l *Layer) UpdateSupplier(ctx context.Context, supplierID int64, patch entity.Row) (entity.Supplier, error) {
	prior, ok := l.suppliers.Get(supplierID)
	if !ok {
		return entity.Supplier{}, apperror.NewNotFound(entity.TableSuppliers, supplierID)
	}

	patch = l.suppliers.WithoutKey(patch)
	merged := prior
	entity.ApplyPatch(&merged, patch)
	if err := merged.Validate(ctx); err != nil {
		return entity.Supplier{}, err
	}

	l.suppliers.UpdateLocal(supplierID, patch)
	if err := l.persist(ctx, entity.TableSuppliers, "update", func() error {
		return l.suppliers.Backend().Update(ctx, supplierID, patch)
	}); err != nil {
		return entity.Supplier{}, err
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleSuppliers,
		fmt.Sprintf("Updated supplier ID %d", supplierID))
	return merged, nil
}

// DeleteSupplier removes a supplier.
func (l *Layer) DeleteSupplier(ctx context.Context, supplierID int64) error {
	if _, ok := l.suppliers.Get(supplierID); !ok {
		return apperror.NewNotFound(entity.TableSuppliers, supplierID)
	}

	l.suppliers.DeleteLocal(supplierID)
	if err := l.persist(ctx, entity.TableSuppliers, "delete", func() error {
		return l.suppliers.Backend().Delete(ctx, supplierID)
	}); err != nil {
		return err
	}

	l.audit.Record(ctx, entity.ActionDelete, ModuleSuppliers,
		fmt.Sprintf("Deleted supplier ID %d", supplierID))
	return nil
}

// CreateSupplierExpense records a payment or charge against a supplier.
func (l *Layer) CreateSupplierExpense(ctx context.Context, e entity.SupplierExpense) (entity.SupplierExpense, error) {
	if e.ID == 0 {
		e.ID = id.New()
	}
	e.Date = types.CoerceDate(e.Date, time.Now())
	if err := e.Validate(ctx); err != nil {
		return entity.SupplierExpense{}, err
	}
	if _, ok := l.suppliers.Get(e.SupplierID); !ok {
		return entity.SupplierExpense{}, apperror.NewNotFound(entity.TableSuppliers, e.SupplierID)
	}

	l.supplierExpenses.InsertLocal(e)
	if err := l.persist(ctx, entity.TableSupplierExpenses, "insert", func() error {
		return l.supplierExpenses.Backend().Insert(ctx, e)
	}); err != nil {
		return entity.SupplierExpense{}, err
	}

	l.audit.Record(ctx, entity.ActionCreate, ModuleSupplierExpenses,
		fmt.Sprintf("Added supplier expense of KSh %s", e.Amount.String()))
	return e, nil
}

// UpdateSupplierExpense applies a partial update to a supplier expense.
func (l *Layer) UpdateSupplierExpense(ctx context.Context, expenseID int64, patch entity.Row) (entity.SupplierExpense, error) {
	prior, ok := l.supplierExpenses.Get(expenseID)
	if !ok {
		return entity.SupplierExpense{}, apperror.NewNotFound(entity.TableSupplierExpenses, expenseID)
	}

	patch = l.supplierExpenses.WithoutKey(patch)
	merged := prior
	entity.ApplyPatch(&merged, patch)
	if err := merged.Validate(ctx); err != nil {
		return entity.SupplierExpense{}, err
	}

	l.supplierExpenses.UpdateLocal(expenseID, patch)
	if err := l.persist(ctx, entity.TableSupplierExpenses, "update", func() error {
		return l.supplierExpenses.Backend().Update(ctx, expenseID, patch)
	}); err != nil {
		return entity.SupplierExpense{}, err
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleSupplierExpenses,
		fmt.Sprintf("Updated supplier expense ID %d", expenseID))
	return merged, nil
}

// DeleteSupplierExpense removes a supplier expense.
func (l *Layer) DeleteSupplierExpense(ctx context.Context, expenseID int64) error {
	if _, ok := l.supplierExpenses.Get(expenseID); !ok {
		return apperror.NewNotFound(entity.TableSupplierExpenses, expenseID)
	}

	l.supplierExpenses.DeleteLocal(expenseID)
	if err := l.persist(ctx, entity.TableSupplierExpenses, "delete", func() error {
		return l.supplierExpenses.Backend().Delete(ctx, expenseID)
	}); err != nil {
		return err
	}

	l.audit.Record(ctx, entity.ActionDelete, ModuleSupplierExpenses,
		fmt.Sprintf("Deleted supplier expense ID %d", expenseID))
	return nil
}
