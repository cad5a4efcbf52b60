package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <output-file>",
		Short: "Dump the database into an export file",
		Long: `Dump reads every table and writes a JSON export. An output path
ending in .gz is gzip-compressed. The file loads back with "load" and is
also a valid offline blob.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runExport(cmd *cobra.Command, opts *RootOptions, path string) error {
	store, err := openStore(opts)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var export Export
	if export.Sales, err = store.Sales.SelectAll(ctx); err != nil {
		return fmt.Errorf("read sales: %w", err)
	}
	if export.Clients, err = store.Clients.SelectAll(ctx); err != nil {
		return fmt.Errorf("read clients: %w", err)
	}
	if export.Designs, err = store.Designs.SelectAll(ctx); err != nil {
		return fmt.Errorf("read designs: %w", err)
	}
	if export.Expenses, err = store.Expenses.SelectAll(ctx); err != nil {
		return fmt.Errorf("read expenses: %w", err)
	}
	if export.Suppliers, err = store.Suppliers.SelectAll(ctx); err != nil {
		return fmt.Errorf("read suppliers: %w", err)
	}
	if export.SupplierExpenses, err = store.SupplierExpenses.SelectAll(ctx); err != nil {
		return fmt.Errorf("read supplier expenses: %w", err)
	}
	if export.Inventory, err = store.Inventory.SelectAll(ctx); err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}
	if export.StockTx, err = store.StockTx.SelectAll(ctx); err != nil {
		return fmt.Errorf("read stock transactions: %w", err)
	}
	if export.DesignMaterials, err = store.DesignMaterials.SelectAll(ctx); err != nil {
		return fmt.Errorf("read design materials: %w", err)
	}
	if export.Users, err = store.Users.SelectAll(ctx); err != nil {
		return fmt.Errorf("read users: %w", err)
	}
	if export.Audit, err = store.Audit.SelectAll(ctx); err != nil {
		return fmt.Errorf("read audit: %w", err)
	}

	if err := WriteExport(path, &export); err != nil {
		return fmt.Errorf("write export: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
