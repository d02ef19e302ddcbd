// Package cli wires the command tree: run, status, init and add.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/oluwaseun-ajayi/postsync/internal/common"
)

// NewRootCmd builds the postsync command tree. Flags override the
// environment-driven configuration.
func NewRootCmd(logger *slog.Logger) *cobra.Command {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := common.LoadConfig()

	cmd := &cobra.Command{
		Use:          "postsync",
		Short:        "Reconcile a sheet of content links against the remote source",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, "job store backend (xlsx|sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&cfg.Store.XLSXPath, "xlsx", cfg.Store.XLSXPath, "path to the xlsx workbook")
	cmd.PersistentFlags().StringVar(&cfg.Store.SheetName, "sheet", cfg.Store.SheetName, "worksheet name")
	cmd.PersistentFlags().StringVar(&cfg.Store.SQLitePath, "sqlite", cfg.Store.SQLitePath, "path to the sqlite database")
	cmd.PersistentFlags().StringVar(&cfg.Store.DSN, "dsn", cfg.Store.DSN, "postgres connection string")

	cmd.AddCommand(
		newRunCmd(cfg, logger),
		newStatusCmd(cfg, logger),
		newInitCmd(cfg, logger),
		newAddCmd(cfg, logger),
	)
	return cmd
}
