package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"inkhub/internal/store/postgres"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <export-file>",
		Short: "Upsert an export file into the database",
		Long: `Load reads a JSON export (plain or .gz) and upserts every table into
the database. Rows are matched by key; existing rows are overwritten.

Table failures are reported but do not abort the run: a partially
applied import can be re-run safely.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runImport(cmd *cobra.Command, opts *RootOptions, path string) error {
	export, err := ReadExport(path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}

	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	failures := 0
	report := func(table string, n int64, err error) {
		if err != nil {
			failures++
			fmt.Fprintf(cmd.ErrOrStderr(), "%-20s FAILED: %v\n", table, err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d rows\n", table, n)
	}

	// Referenced tables first so foreign keys resolve.
	n, err := store.Clients.Upsert(ctx, export.Clients)
	report("clients", n, err)
	n, err = store.Suppliers.Upsert(ctx, export.Suppliers)
	report("suppliers", n, err)
	n, err = store.Users.Upsert(ctx, export.Users)
	report("users", n, err)
	n, err = store.Designs.Upsert(ctx, export.Designs)
	report("designs", n, err)
	n, err = store.Sales.Upsert(ctx, export.Sales)
	report("sales", n, err)
	n, err = store.Expenses.Upsert(ctx, export.Expenses)
	report("expenses", n, err)
	n, err = store.SupplierExpenses.Upsert(ctx, export.SupplierExpenses)
	report("supplier_expenses", n, err)
	n, err = store.Inventory.Upsert(ctx, export.Inventory)
	report("inventory", n, err)
	n, err = store.StockTx.Upsert(ctx, export.StockTx)
	report("stock_transactions", n, err)
	n, err = store.DesignMaterials.Upsert(ctx, export.DesignMaterials)
	report("design_materials", n, err)
	n, err = store.Audit.Upsert(ctx, export.Audit)
	report("audit", n, err)

	if failures > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "done with %d failed tables\n", failures)
	}
	return nil
}

// openStore connects using the --dsn flag or DATABASE_URL.
func openStore(opts *RootOptions) (*postgres.Store, error) {
	dsn := opts.DSN
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		return nil, fmt.Errorf("no connection string: pass --dsn or set DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := postgres.New(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return store, nil
}
