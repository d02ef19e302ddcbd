package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/oluwaseun-ajayi/postsync/internal/common"
	"github.com/oluwaseun-ajayi/postsync/internal/store"
)

func newInitCmd(cfg *common.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the job sheet (headers, tables) if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, cleanup, err := store.Open(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			// Opening sqlite/postgres already runs migrations; the xlsx
			// backend gets its header row repaired explicitly.
			if xs, ok := st.(*store.XLSXStore); ok {
				if err := xs.InitHeaders(); err != nil {
					return err
				}
				if err := xs.Save(); err != nil {
					return err
				}
			}
			fmt.Println("Job sheet ready.")
			return nil
		},
	}
}
