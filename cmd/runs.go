package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/eligibility-cli/internal/model"
	"github.com/sells-group/eligibility-cli/internal/store"
)

var (
	runsStage string
	runsLimit int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List past pipeline stage runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ledger, err := store.Open(cfg.Ledger.Path)
		if err != nil {
			return err
		}
		defer ledger.Close()
		if err := ledger.Migrate(ctx); err != nil {
			return err
		}

		runs, err := ledger.List(ctx, model.Stage(runsStage), runsLimit)
		if err != nil {
			return eris.Wrap(err, "runs: list")
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tSTAGE\tSTATUS\tIN\tOUT\tSKIPPED\tDURATION\tINPUTS")
		for _, run := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
				run.StartedAt.Format(time.RFC3339),
				run.Stage,
				run.Status,
				run.RowsIn,
				run.RowsOut,
				run.RowsSkipped,
				run.Duration().Round(time.Millisecond),
				strings.Join(run.Inputs, ","),
			)
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStage, "stage", "", "filter by stage (clean|parse|export|build|train|predict)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "max runs to show (0 = all)")
	rootCmd.AddCommand(runsCmd)
}
