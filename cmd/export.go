package main

import (
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/eligibility-cli/internal/model"
	"github.com/sells-group/eligibility-cli/internal/refdata"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the reference extract from the warehouse",
	Long: `Runs the configured extract query against Postgres and writes the
result as the reference CSV consumed by build, train, and predict.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Refdata.DatabaseURL == "" {
			return eris.New("export: refdata.database_url is not configured")
		}

		return recordRun(ctx, model.StageExport, []string{cfg.Refdata.Query}, func(run *model.StageRun) error {
			pool, err := pgxpool.New(ctx, cfg.Refdata.DatabaseURL)
			if err != nil {
				return eris.Wrap(err, "export: connect")
			}
			defer pool.Close()

			out, err := os.Create(exportOutput)
			if err != nil {
				return eris.Wrapf(err, "export: create %s", exportOutput)
			}
			defer out.Close()

			n, err := refdata.Export(ctx, pool, cfg.Refdata.Query, out)
			if err != nil {
				return err
			}
			run.RowsIn = n
			run.RowsOut = n
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOutput, "output", "refdata.csv", "reference extract CSV output")
	rootCmd.AddCommand(exportCmd)
}
