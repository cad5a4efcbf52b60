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

// CreateExpense records a new expense.
func (l *Layer) CreateExpense(ctx context.Context, e entity.Expense) (entity.Expense, error) {
	if e.ID == 0 {
		e.ID = id.New()
	}
	e.Date = types.CoerceDate(e.Date, time.Now())
	if e.Branch == "" {
		e.Branch = sessionBranch(ctx)
	}
	if err := e.Validate(ctx); err != nil {
		return entity.Expense{}, err
	}

	l.expenses.InsertLocal(e)
	if err := l.persist(ctx, entity.TableExpenses, "insert", func() error {
		return l.expenses.Backend().Insert(ctx, e)
	}); err != nil {
		return entity.Expense{}, err
	}

	l.audit.Record(ctx, entity.ActionCreate, ModuleExpenses,
		fmt.Sprintf("Added expense of KSh %s in %s", e.Amount.String(), e.Category))
	return e, nil
}

// UpdateExpense applies a partial update to an expense.
func (l *Layer) UpdateExpense(ctx context.Context, expenseID int64, patch entity.Row) (entity.Expense, error) {
	prior, ok := l.expenses.Get(expenseID)
	if !ok {
		return entity.Expense{}, apperror.NewNotFound(entity.TableExpenses, expenseID)
	}

	patch = l.expenses.WithoutKey(patch)
	merged := prior
	entity.ApplyPatch(&merged, patch)
	if err := merged.Validate(ctx); err != nil {
		return entity.Expense{}, err
	}

	l.expenses.UpdateLocal(expenseID, patch)
	if err := l.persist(ctx, entity.TableExpenses, "update", func() error {
		return l.expenses.Backend().Update(ctx, expenseID, patch)
	}); err != nil {
		return entity.Expense{}, err
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleExpenses,
		fmt.Sprintf("Updated expense ID %d", expenseID))
	return merged, nil
}

// DeleteExpense removes an expense.
func (l *Layer) DeleteExpense(ctx context.Context, expenseID int64) error {
	if _, ok := l.expenses.Get(expenseID); !ok {
		return apperror.NewNotFound(entity.TableExpenses, expenseID)
	}

	l.expenses.DeleteLocal(expenseID)
	if err := l.persist(ctx, entity.TableExpenses, "delete", func() error {
		return l.expenses.Backend().Delete(ctx, expenseID)
	}); err != nil {
		return err
	}

	l.audit.Record(ctx, entity.ActionDelete, ModuleExpenses,
		fmt.Sprintf("Deleted expense ID %d", expenseID))
	return nil
}
