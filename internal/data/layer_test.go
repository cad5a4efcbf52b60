package data

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkhub/internal/core/apperror"
	appctx "inkhub/internal/core/context"
	"inkhub/internal/core/security"
	"inkhub/internal/core/types"
	"inkhub/internal/domain/entity"
	"inkhub/internal/store"
	"inkhub/internal/store/local"
)

func newTestLayer(t *testing.T) *Layer {
	t.Helper()

	blob, err := local.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	policy, err := security.DefaultPolicy()
	require.NoError(t, err)

	l := NewLocal(blob, policy)
	require.NoError(t, l.Load(context.Background()))
	// Audit writes run on background goroutines; wait for them before the
	// framework removes the TempDir backing the blob store.
	t.Cleanup(func() { l.audit.Wait() })
	return l
}

func adminCtx() context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		Username:    "jane",
		Role:        entity.RoleAdmin,
		Branch:      "Main",
		AllBranches: true,
	})
}

func TestCreateSaleDefaults(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	sale, err := l.CreateSale(ctx, entity.Sale{
		Client: "Acme",
		Amount: types.MustMoney("1200"),
	})
	require.NoError(t, err)

	assert.NotZero(t, sale.ID)
	assert.NotEmpty(t, sale.Date)
	assert.Equal(t, entity.SourceDirectSale, sale.Source)
	assert.Equal(t, entity.SalePending, sale.PaymentStatus)
	assert.Equal(t, "Main", sale.Branch)

	sales := l.Sales(ctx)
	require.Len(t, sales, 1)
	assert.Equal(t, sale.ID, sales[0].ID)

	trail := l.AuditTrail(ctx)
	require.Len(t, trail, 1)
	assert.Equal(t, entity.ActionCreate, trail[0].Action)
	assert.Equal(t, ModuleSales, trail[0].Module)
	assert.Equal(t, "jane", trail[0].User)
}

func TestAuditDefaultsToUnknownUser(t *testing.T) {
	l := newTestLayer(t)

	_, err := l.CreateClient(context.Background(), entity.Client{Name: "Walk-in"})
	require.NoError(t, err)

	trail := l.AuditTrail(adminCtx())
	require.Len(t, trail, 1)
	assert.Equal(t, "Unknown", trail[0].User)
}

func TestUpdateSaleMergesPatch(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	sale, err := l.CreateSale(ctx, entity.Sale{Client: "Acme", Amount: types.MustMoney("500")})
	require.NoError(t, err)

	updated, err := l.UpdateSale(ctx, sale.ID, entity.Row{
		"payment_status": entity.SalePaid,
		"amount":         float64(750),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.SalePaid, updated.PaymentStatus)
	assert.True(t, updated.Amount.Equal(types.MustMoney("750")))
	assert.Equal(t, "Acme", updated.Client)
}

func TestUpdateSaleIgnoresKeyInPatch(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	sale, err := l.CreateSale(ctx, entity.Sale{Client: "Acme", Amount: types.MustMoney("500")})
	require.NoError(t, err)

	// A body that smuggles in a new id must not rewrite the record's
	// identity, neither in the returned record nor in the mirror.
	updated, err := l.UpdateSale(ctx, sale.ID, entity.Row{
		"id":     float64(999),
		"client": "Acme East",
	})
	require.NoError(t, err)
	assert.Equal(t, sale.ID, updated.ID)
	assert.Equal(t, "Acme East", updated.Client)

	got, ok := l.sales.Get(sale.ID)
	require.True(t, ok)
	assert.Equal(t, sale.ID, got.ID)
	assert.Equal(t, "Acme East", got.Client)
	_, ok = l.sales.Get(int64(999))
	assert.False(t, ok)

	// The record stays reachable for subsequent updates under its real id.
	_, err = l.UpdateSale(ctx, sale.ID, entity.Row{"payment_status": entity.SalePaid})
	require.NoError(t, err)
}

func TestDeleteMissingSale(t *testing.T) {
	l := newTestLayer(t)

	err := l.DeleteSale(adminCtx(), 404)
	assert.True(t, apperror.IsNotFound(err))
}

func TestIdempotentInsert(t *testing.T) {
	c := NewCollection[entity.Client](entity.TableClients, "id", nil)

	rec := entity.Client{ID: 1, Name: "Jane"}
	assert.True(t, c.InsertLocal(rec))
	assert.False(t, c.InsertLocal(rec))
	assert.Equal(t, 1, c.Len())
}

func TestApplyEventConvergence(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	sale, err := l.CreateSale(ctx, entity.Sale{Client: "Acme", Amount: types.MustMoney("100")})
	require.NoError(t, err)

	// Our own insert echoed back must not duplicate.
	l.ApplyEvent(ctx, store.Event{
		Table: entity.TableSales,
		Kind:  store.KindInsert,
		Row:   entity.RowOf(sale),
	})
	assert.Len(t, l.Sales(ctx), 1)

	// An update for the row merges; keys arrive as JSON numbers.
	l.ApplyEvent(ctx, store.Event{
		Table: entity.TableSales,
		Kind:  store.KindUpdate,
		Row:   entity.Row{"id": float64(sale.ID), "payment_status": entity.SalePaid},
	})
	got, ok := l.sales.Get(sale.ID)
	require.True(t, ok)
	assert.Equal(t, entity.SalePaid, got.PaymentStatus)

	// Updates and deletes for unseen rows are ignored.
	l.ApplyEvent(ctx, store.Event{
		Table: entity.TableSales,
		Kind:  store.KindDelete,
		Row:   entity.Row{"id": float64(999)},
	})
	assert.Len(t, l.Sales(ctx), 1)

	l.ApplyEvent(ctx, store.Event{
		Table: entity.TableSales,
		Kind:  store.KindDelete,
		Row:   entity.Row{"id": float64(sale.ID)},
	})
	assert.Empty(t, l.Sales(ctx))
}

// failingBackend accepts reads and refuses writes.
type failingBackend[T entity.Record] struct{}

func (failingBackend[T]) SelectAll(ctx context.Context) ([]T, error) { return nil, nil }
func (failingBackend[T]) Insert(ctx context.Context, rec T) error {
	return errors.New("store down")
}
func (failingBackend[T]) Update(ctx context.Context, key any, patch entity.Row) error {
	return errors.New("store down")
}
func (failingBackend[T]) Delete(ctx context.Context, key any) error {
	return errors.New("store down")
}

func TestPersistenceFailureReloads(t *testing.T) {
	l := newTestLayer(t)
	ctx := adminCtx()

	l.sales = NewCollection[entity.Sale](entity.TableSales, "id", failingBackend[entity.Sale]{})
	l.finish()

	_, err := l.CreateSale(ctx, entity.Sale{Client: "Acme", Amount: types.MustMoney("100")})
	require.Error(t, err)
	assert.True(t, apperror.IsPersistenceFailure(err))

	// The reload rolled the optimistic insert back to stored truth.
	assert.Empty(t, l.Sales(ctx))
}

func TestBranchVisibility(t *testing.T) {
	l := newTestLayer(t)
	admin := adminCtx()

	_, err := l.CreateSale(admin, entity.Sale{Client: "Acme", Amount: types.MustMoney("100"), Branch: "Main"})
	require.NoError(t, err)
	_, err = l.CreateSale(admin, entity.Sale{Client: "Beta", Amount: types.MustMoney("200"), Branch: "Westlands"})
	require.NoError(t, err)

	// Branch-scoped user sees only their branch.
	scoped := appctx.WithUser(context.Background(), &appctx.UserContext{
		Username: "bob", Role: entity.RoleUser, Branch: "Westlands",
	})
	sales := l.Sales(scoped)
	require.Len(t, sales, 1)
	assert.Equal(t, "Beta", sales[0].Client)

	// Admin in all-branches mode sees everything; clients are shared
	// regardless of branch.
	assert.Len(t, l.Sales(admin), 2)
	_, err = l.CreateClient(admin, entity.Client{Name: "Shared"})
	require.NoError(t, err)
	assert.Len(t, l.Clients(scoped), 1)
}
