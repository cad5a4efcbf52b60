package data

import (
	"context"

	"inkhub/internal/core/apperror"
	appctx "inkhub/internal/core/context"
	"inkhub/internal/core/security"
	"inkhub/internal/domain/entity"
	"inkhub/internal/store"
	"inkhub/internal/store/local"
	"inkhub/internal/store/postgres"
	"inkhub/pkg/logger"
)

// Audit module names, as they appear in the trail.
const (
	ModuleSales            = "Sales"
	ModuleClients          = "Clients"
	ModuleDesigns          = "Design Projects"
	ModuleExpenses         = "Expenses"
	ModuleSuppliers        = "Suppliers"
	ModuleSupplierExpenses = "Supplier Expenses"
	ModuleInventory        = "Inventory"
	ModuleUsers            = "Users"
)

// Mode says which backend the layer is running against.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// Layer owns the in-memory mirrors of every collection and runs all
// mutations through them: apply locally first, then persist; a persistence
// failure triggers a full reload so the mirror snaps back to stored truth.
type Layer struct {
	mode   Mode
	remote *postgres.Store
	policy *security.Policy
	audit  *Auditor

	sales            *Collection[entity.Sale]
	clients          *Collection[entity.Client]
	designs          *Collection[entity.Design]
	expenses         *Collection[entity.Expense]
	suppliers        *Collection[entity.Supplier]
	supplierExpenses *Collection[entity.SupplierExpense]
	inventory        *Collection[entity.InventoryItem]
	stockTx          *Collection[entity.StockTransaction]
	designMaterials  *Collection[entity.DesignMaterial]
	users            *Collection[entity.User]
	auditTrail       *Collection[entity.AuditEntry]

	appliers map[string]applier
}

// NewRemote builds a layer over the Postgres store.
func NewRemote(remote *postgres.Store, policy *security.Policy) *Layer {
	l := &Layer{
		mode:   ModeRemote,
		remote: remote,
		policy: policy,

		sales:            NewCollection[entity.Sale](entity.TableSales, "id", remote.Sales),
		clients:          NewCollection[entity.Client](entity.TableClients, "id", remote.Clients),
		designs:          NewCollection[entity.Design](entity.TableDesigns, "id", remote.Designs),
		expenses:         NewCollection[entity.Expense](entity.TableExpenses, "id", remote.Expenses),
		suppliers:        NewCollection[entity.Supplier](entity.TableSuppliers, "id", remote.Suppliers),
		supplierExpenses: NewCollection[entity.SupplierExpense](entity.TableSupplierExpenses, "id", remote.SupplierExpenses),
		inventory:        NewCollection[entity.InventoryItem](entity.TableInventory, "id", remote.Inventory),
		stockTx:          NewCollection[entity.StockTransaction](entity.TableStockTransactions, "id", remote.StockTx),
		designMaterials:  NewCollection[entity.DesignMaterial](entity.TableDesignMaterials, "id", remote.DesignMaterials),
		users:            NewCollection[entity.User](entity.TableUsers, "username", remote.Users),
		auditTrail:       NewCollection[entity.AuditEntry](entity.TableAudit, "id", remote.Audit),
	}
	l.finish()
	return l
}

// NewLocal builds a layer over the blob store. Used when the database is
// unreachable at startup.
func NewLocal(blob *local.Store, policy *security.Policy) *Layer {
	l := &Layer{
		mode:   ModeLocal,
		policy: policy,

		sales:            NewCollection[entity.Sale](entity.TableSales, "id", local.Collection[entity.Sale](blob, entity.TableSales)),
		clients:          NewCollection[entity.Client](entity.TableClients, "id", local.Collection[entity.Client](blob, entity.TableClients)),
		designs:          NewCollection[entity.Design](entity.TableDesigns, "id", local.Collection[entity.Design](blob, entity.TableDesigns)),
		expenses:         NewCollection[entity.Expense](entity.TableExpenses, "id", local.Collection[entity.Expense](blob, entity.TableExpenses)),
		suppliers:        NewCollection[entity.Supplier](entity.TableSuppliers, "id", local.Collection[entity.Supplier](blob, entity.TableSuppliers)),
		supplierExpenses: NewCollection[entity.SupplierExpense](entity.TableSupplierExpenses, "id", local.Collection[entity.SupplierExpense](blob, entity.TableSupplierExpenses)),
		inventory:        NewCollection[entity.InventoryItem](entity.TableInventory, "id", local.Collection[entity.InventoryItem](blob, entity.TableInventory)),
		stockTx:          NewCollection[entity.StockTransaction](entity.TableStockTransactions, "id", local.Collection[entity.StockTransaction](blob, entity.TableStockTransactions)),
		designMaterials:  NewCollection[entity.DesignMaterial](entity.TableDesignMaterials, "id", local.Collection[entity.DesignMaterial](blob, entity.TableDesignMaterials)),
		users:            NewCollection[entity.User](entity.TableUsers, "username", local.KeyedCollection[entity.User](blob, entity.TableUsers, "username")),
		auditTrail:       NewCollection[entity.AuditEntry](entity.TableAudit, "id", local.Collection[entity.AuditEntry](blob, entity.TableAudit)),
	}
	l.finish()
	return l
}

func (l *Layer) finish() {
	l.audit = NewAuditor(l.auditTrail)
	l.appliers = map[string]applier{
		entity.TableSales:             l.sales,
		entity.TableClients:           l.clients,
		entity.TableDesigns:           l.designs,
		entity.TableExpenses:          l.expenses,
		entity.TableSuppliers:         l.suppliers,
		entity.TableSupplierExpenses:  l.supplierExpenses,
		entity.TableInventory:         l.inventory,
		entity.TableStockTransactions: l.stockTx,
		entity.TableDesignMaterials:   l.designMaterials,
		entity.TableUsers:             l.users,
		entity.TableAudit:             l.auditTrail,
	}
}

// Mode reports which backend the layer runs against.
func (l *Layer) Mode() Mode { return l.mode }

// Remote returns the Postgres store, nil in local mode.
func (l *Layer) Remote() *postgres.Store { return l.remote }

// Audit returns the audit logger.
func (l *Layer) Audit() *Auditor { return l.audit }

// Load pulls every collection from the backend, replacing the mirrors
// wholesale. Also used as the recovery path after a persistence failure.
func (l *Layer) Load(ctx context.Context) error {
	loaders := []func(context.Context) error{
		l.sales.Load, l.clients.Load, l.designs.Load, l.expenses.Load,
		l.suppliers.Load, l.supplierExpenses.Load, l.inventory.Load,
		l.stockTx.Load, l.designMaterials.Load, l.users.Load,
		l.auditTrail.Load,
	}
	for _, load := range loaders {
		if err := load(ctx); err != nil {
			return err
		}
	}

	logger.Info(ctx, "data loaded",
		"mode", string(l.mode),
		"sales", l.sales.Len(),
		"clients", l.clients.Len(),
		"designs", l.designs.Len(),
		"inventory", l.inventory.Len(),
		"users", l.users.Len(),
	)
	return nil
}

// ApplyEvent folds a reconciler change event into the right mirror. Events
// for unknown tables are dropped.
func (l *Layer) ApplyEvent(ctx context.Context, ev store.Event) {
	a, ok := l.appliers[ev.Table]
	if !ok {
		logger.Debug(ctx, "change event for unknown table", "table", ev.Table)
		return
	}
	a.Apply(ev)
}

// persist runs a backend write after the mirror has already been updated.
// On failure the whole dataset is reloaded so the optimistic change is
// rolled back to stored truth, and the caller gets a persistence failure.
func (l *Layer) persist(ctx context.Context, table, action string, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}

	logger.Error(ctx, "persist failed, reloading from store",
		"table", table, "action", action, "error", err)
	if rerr := l.Load(ctx); rerr != nil {
		logger.Error(ctx, "reload after failed persist also failed", "error", rerr)
	}
	return apperror.NewPersistenceFailure(table, action, err)
}

// viewer builds the policy subject from the session identity on ctx. An
// absent identity sees shared tables only.
func viewer(ctx context.Context) security.Viewer {
	u := appctx.GetUser(ctx)
	if u == nil {
		return security.Viewer{}
	}
	return security.Viewer{
		Username:    u.Username,
		Role:        u.Role,
		Branch:      u.Branch,
		AllBranches: u.AllBranches,
	}
}

// visible filters a snapshot through the branch-visibility policy. Records
// the policy cannot evaluate are withheld.
func visible[T entity.Record](ctx context.Context, p *security.Policy, table string, items []T) []T {
	v := viewer(ctx)
	out := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := p.Visible(table, v, entity.RowOf(item))
		if err != nil {
			logger.Warn(ctx, "visibility check failed", "table", table, "error", err)
			continue
		}
		if ok {
			out = append(out, item)
		}
	}
	return out
}

// Sales returns the sales visible to the session identity, newest first.
func (l *Layer) Sales(ctx context.Context) []entity.Sale {
	return visible(ctx, l.policy, entity.TableSales, l.sales.Snapshot())
}

// Clients returns all clients. The client book is shared across branches.
func (l *Layer) Clients(ctx context.Context) []entity.Client {
	return visible(ctx, l.policy, entity.TableClients, l.clients.Snapshot())
}

// Designs returns the design projects visible to the session identity.
func (l *Layer) Designs(ctx context.Context) []entity.Design {
	return visible(ctx, l.policy, entity.TableDesigns, l.designs.Snapshot())
}

// Expenses returns the expenses visible to the session identity.
func (l *Layer) Expenses(ctx context.Context) []entity.Expense {
	return visible(ctx, l.policy, entity.TableExpenses, l.expenses.Snapshot())
}

// Suppliers returns all suppliers.
func (l *Layer) Suppliers(ctx context.Context) []entity.Supplier {
	return visible(ctx, l.policy, entity.TableSuppliers, l.suppliers.Snapshot())
}

// SupplierExpenses returns all supplier expense records.
func (l *Layer) SupplierExpenses(ctx context.Context) []entity.SupplierExpense {
	return visible(ctx, l.policy, entity.TableSupplierExpenses, l.supplierExpenses.Snapshot())
}

// Inventory returns the stock items visible to the session identity.
func (l *Layer) Inventory(ctx context.Context) []entity.InventoryItem {
	return visible(ctx, l.policy, entity.TableInventory, l.inventory.Snapshot())
}

// StockTransactions returns the ledger entries visible to the session
// identity, newest first.
func (l *Layer) StockTransactions(ctx context.Context) []entity.StockTransaction {
	return visible(ctx, l.policy, entity.TableStockTransactions, l.stockTx.Snapshot())
}

// DesignMaterials returns material links for one design.
func (l *Layer) DesignMaterials(ctx context.Context, designID int64) []entity.DesignMaterial {
	return l.designMaterials.Find(func(m entity.DesignMaterial) bool {
		return m.DesignID == designID
	})
}

// Users returns all user accounts.
func (l *Layer) Users(ctx context.Context) []entity.User {
	return visible(ctx, l.policy, entity.TableUsers, l.users.Snapshot())
}

// User returns one account by username.
func (l *Layer) User(username string) (entity.User, bool) {
	return l.users.Get(username)
}

// AuditTrail returns the audit entries, newest first.
func (l *Layer) AuditTrail(ctx context.Context) []entity.AuditEntry {
	return visible(ctx, l.policy, entity.TableAudit, l.auditTrail.Snapshot())
}
