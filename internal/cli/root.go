// Package cli implements the inkhub-import command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DSN     string
	Verbose bool
}

// NewRootCommand creates the root command for the import CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "inkhub-import",
		Short: "Load inkhub data exports into the hosted database",
		Long: `inkhub-import reads a JSON export (plain or gzip-compressed) and
upserts its tables into the hosted database. Existing rows with matching
keys are overwritten; rows present only in the database are left alone.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "database connection string (defaults to DATABASE_URL)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}
