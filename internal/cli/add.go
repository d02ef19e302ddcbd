package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/oluwaseun-ajayi/postsync/internal/common"
	"github.com/oluwaseun-ajayi/postsync/internal/store"
)

// appender is the owner-side half of a backend; the engine never appends.
type appender interface {
	Append(ctx context.Context, rawReference string) error
}

func newAddCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "add <url>...",
		Short: "Append job rows for the given references",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, cleanup, err := store.Open(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ap, ok := st.(appender)
			if !ok {
				return fmt.Errorf("backend %q does not support appends", cfg.Store.Backend)
			}
			for _, ref := range args {
				if err := ap.Append(ctx, ref); err != nil {
					return err
				}
			}
			fmt.Printf("Added %d row(s).\n", len(args))
			return nil
		},
	}
}
