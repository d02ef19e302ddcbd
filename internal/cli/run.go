package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/oluwaseun-ajayi/postsync/internal/common"
	"github.com/oluwaseun-ajayi/postsync/internal/engine"
	"github.com/oluwaseun-ajayi/postsync/internal/fetch"
	"github.com/oluwaseun-ajayi/postsync/internal/store"
)

func newRunCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	var (
		persistent bool
		force      bool
		row        int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process pending rows",
		Long: `Process pending rows: parse each reference, fetch its attributes with
retries and identity rotation, and write the outcome back to the sheet.
With --persistent the engine keeps re-reading the sheet and retrying
failed rows until everything succeeds or the batch budget runs out.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Engine.ForceRefresh = cfg.Engine.ForceRefresh || force
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			st, cleanup, err := store.Open(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			factory, err := fetch.NewHTTPJSONFactory(cfg.Fetch.BaseURL, cfg.Fetch.Timeout, logger)
			if err != nil {
				return err
			}
			eng := engine.New(st, factory, cfg.Engine, logger)

			if cmd.Flags().Changed("row") {
				// Rows are numbered as in the sheet: data starts at row 2.
				if err := eng.RunRow(ctx, row-2); err != nil {
					return err
				}
				fmt.Println("Row processed.")
				return nil
			}

			mode := engine.ModeSinglePass
			if persistent {
				mode = engine.ModePersistent
			}
			n, err := eng.Run(ctx, mode)
			if err != nil {
				return err
			}
			fmt.Printf("Processed %d row(s) successfully.\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&persistent, "persistent", false, "keep retrying in batches until convergence")
	cmd.Flags().BoolVar(&force, "force", false, "re-process rows that already succeeded")
	cmd.Flags().IntVar(&row, "row", 0, "process exactly one sheet row (header is row 1)")
	return cmd
}
