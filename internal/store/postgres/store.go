package postgres

import (
	"context"

	"inkhub/internal/core/apperror"
	"inkhub/internal/domain/entity"
	"inkhub/internal/store"
)

// Store is the Postgres-backed implementation of the persistence layer.
// Each collection gets a typed table; users are keyed by username.
type Store struct {
	pool     *Pool
	listener *Listener

	Sales            *Table[entity.Sale]
	Clients          *Table[entity.Client]
	Designs          *Table[entity.Design]
	Expenses         *Table[entity.Expense]
	Suppliers        *Table[entity.Supplier]
	SupplierExpenses *Table[entity.SupplierExpense]
	Inventory        *Table[entity.InventoryItem]
	StockTx          *Table[entity.StockTransaction]
	DesignMaterials  *Table[entity.DesignMaterial]
	Users            *Table[entity.User]
	Audit            *Table[entity.AuditEntry]
}

// New connects to the database and builds the store. A connection failure
// is reported as remote-unavailable so the caller can fall back to the
// local store.
func New(ctx context.Context, cfg PoolConfig) (*Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, apperror.NewRemoteUnavailable(err)
	}

	return &Store{
		pool:             pool,
		listener:         NewListener(cfg.DSN),
		Sales:            NewTable[entity.Sale](pool, entity.TableSales),
		Clients:          NewTable[entity.Client](pool, entity.TableClients),
		Designs:          NewTable[entity.Design](pool, entity.TableDesigns),
		Expenses:         NewTable[entity.Expense](pool, entity.TableExpenses),
		Suppliers:        NewTable[entity.Supplier](pool, entity.TableSuppliers),
		SupplierExpenses: NewTable[entity.SupplierExpense](pool, entity.TableSupplierExpenses),
		Inventory:        NewTable[entity.InventoryItem](pool, entity.TableInventory),
		StockTx:          NewTable[entity.StockTransaction](pool, entity.TableStockTransactions),
		DesignMaterials:  NewTable[entity.DesignMaterial](pool, entity.TableDesignMaterials),
		Users:            NewKeyedTable[entity.User](pool, entity.TableUsers, "username"),
		Audit:            NewTable[entity.AuditEntry](pool, entity.TableAudit),
	}, nil
}

// Subscribe starts the LISTEN connection and returns the event stream. The
// stream closes when ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context) (<-chan store.Event, error) {
	go s.listener.Run(ctx)
	return s.listener.Events(), nil
}

// SessionToken fetches the current session token for a user. Polled by the
// reconciler to detect logins from another device.
func (s *Store) SessionToken(ctx context.Context, username string) (string, error) {
	u, err := s.Users.Get(ctx, username)
	if err != nil {
		return "", err
	}
	return u.SessionToken, nil
}

// Ping verifies connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Pool exposes the underlying pool for stats logging.
func (s *Store) Pool() *Pool {
	return s.pool
}

// Close releases all connections.
func (s *Store) Close() {
	s.pool.Close()
}
