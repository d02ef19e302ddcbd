package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/oluwaseun-ajayi/postsync/constants"
	"github.com/oluwaseun-ajayi/postsync/internal/common"
	"github.com/oluwaseun-ajayi/postsync/internal/engine"
	"github.com/oluwaseun-ajayi/postsync/internal/store"
)

func newStatusCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show per-status row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, cleanup, err := store.Open(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			eng := engine.New(st, nil, cfg.Engine, logger)
			counts, err := eng.Summary(ctx)
			if err != nil {
				return err
			}

			order := []constants.JobStatus{
				constants.JobStatusSuccess,
				constants.JobStatusPending,
				constants.JobStatusInProgress,
				constants.JobStatusInvalid,
				constants.JobStatusUnavailable,
				constants.JobStatusExhausted,
			}
			fmt.Println("Sheet status:")
			total, remaining := 0, 0
			for _, s := range order {
				if counts[s] == 0 {
					continue
				}
				fmt.Printf("  %-20s %d\n", s, counts[s])
				total += counts[s]
				if s.NeedsProcessing() {
					remaining += counts[s]
				}
			}
			fmt.Printf("  %-20s %d\n", "TOTAL", total)
			if remaining == 0 {
				fmt.Println("All rows are up to date.")
			} else {
				fmt.Printf("%d row(s) still need processing.\n", remaining)
			}
			return nil
		},
	}
}
