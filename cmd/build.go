package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/eligibility-cli/internal/feature"
	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
	"github.com/sells-group/eligibility-cli/internal/refdata"
)

var (
	buildExtracted string
	buildRefdata   string
	buildOutput    string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Join the extracted table with the reference extract",
	Long: `Left-joins the extracted HTML table against the internal SQL
reference extract on the policy-eligibility id and reduces the
in/out-of-network column pairs. Writes the raw joined set as a CSV
checkpoint for audit and for the train/predict stages.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		inputs := []string{buildExtracted, buildRefdata}
		return recordRun(ctx, model.StageBuild, inputs, func(run *model.StageRun) error {
			joined, err := loadAndJoin(ctx, buildExtracted, buildRefdata, run)
			if err != nil {
				return err
			}

			out, err := os.Create(buildOutput)
			if err != nil {
				return eris.Wrapf(err, "build: create %s", buildOutput)
			}
			defer out.Close()
			return joined.WriteCSV(out)
		})
	},
}

// loadAndJoin is shared by build, train, and predict: read both tables and
// produce the raw joined set.
func loadAndJoin(ctx context.Context, extractedPath, refdataPath string, run *model.StageRun) (*frame.Table, error) {
	f, err := os.Open(extractedPath)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", extractedPath)
	}
	defer f.Close()

	extracted, err := frame.ReadCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", extractedPath)
	}

	ref, err := refdata.Load(ctx, refdataPath)
	if err != nil {
		return nil, err
	}

	run.RowsIn = int64(extracted.NumRows())
	joined, err := feature.BuildSet(extracted, ref)
	if err != nil {
		return nil, err
	}
	run.RowsOut = int64(joined.NumRows())
	run.RowsSkipped = run.RowsIn - run.RowsOut
	return joined, nil
}

func init() {
	buildCmd.Flags().StringVar(&buildExtracted, "extracted", "extracted.csv", "extracted table CSV")
	buildCmd.Flags().StringVar(&buildRefdata, "refdata", "refdata.csv", "reference extract (CSV or XLSX)")
	buildCmd.Flags().StringVar(&buildOutput, "output", "joined.csv", "joined set CSV output")
	rootCmd.AddCommand(buildCmd)
}
