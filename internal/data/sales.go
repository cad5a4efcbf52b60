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
)

// sessionBranch returns the branch of the session identity, empty when
// anonymous.
func sessionBranch(ctx context.Context) string {
	if u := appctx.GetUser(ctx); u != nil {
		return u.Branch
	}
	return ""
}

// CreateSale records a new sale.
func (l *Layer) CreateSale(ctx context.Context, s entity.Sale) (entity.Sale, error) {
	if s.ID == 0 {
		s.ID = id.New()
	}
	s.Date = types.CoerceDate(s.Date, time.Now())
	if s.Source == "" {
		s.Source = entity.SourceDirectSale
	}
	if s.PaymentStatus == "" {
		s.PaymentStatus = entity.SalePending
	}
	if s.Branch == "" {
		s.Branch = sessionBranch(ctx)
	}
	if err := s.Validate(ctx); err != nil {
		return entity.Sale{}, err
	}

	l.sales.InsertLocal(s)
	if err := l.persist(ctx, entity.TableSales, "insert", func() error {
		return l.sales.Backend().Insert(ctx, s)
	}); err != nil {
		return entity.Sale{}, err
	}

	l.audit.Record(ctx, entity.ActionCreate, ModuleSales,
		fmt.Sprintf("Added sale of KSh %s from %s", s.Amount.String(), s.Client))
	return s, nil
}

// UpdateSale applies a partial update to a sale.
func (l *Layer) UpdateSale(ctx context.Context, saleID int64, patch entity.Row) (entity.Sale, error) {
	prior, ok := l.sales.Get(saleID)
	if !ok {
		return entity.Sale{}, apperror.NewNotFound(entity.TableSales, saleID)
	}

	patch = l.sales.WithoutKey(patch)
	merged := prior
	entity.ApplyPatch(&merged, patch)
	if err := merged.Validate(ctx); err != nil {
		return entity.Sale{}, err
	}

	l.sales.UpdateLocal(saleID, patch)
	if err := l.persist(ctx, entity.TableSales, "update", func() error {
		return l.sales.Backend().Update(ctx, saleID, patch)
	}); err != nil {
		return entity.Sale{}, err
	}

	l.audit.Record(ctx, entity.ActionUpdate, ModuleSales,
		fmt.Sprintf("Updated sale ID %d", saleID))
	return merged, nil
}

// DeleteSale removes a sale.
func (l *Layer) DeleteSale(ctx context.Context, saleID int64) error {
	if _, ok := l.sales.Get(saleID); !ok {
		return apperror.NewNotFound(entity.TableSales, saleID)
	}

	l.sales.DeleteLocal(saleID)
	if err := l.persist(ctx, entity.TableSales, "delete", func() error {
		return l.sales.Backend().Delete(ctx, saleID)
	}); err != nil {
		return err
	}

	l.audit.Record(ctx, entity.ActionDelete, ModuleSales,
		fmt.Sprintf("Deleted sale ID %d", saleID))
	return nil
}
