package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/classifier"
	"github.com/sells-group/eligibility-cli/internal/feature"
	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

var (
	trainExtracted string
	trainRefdata   string
	trainJoinedOut string
	trainCleanOut  string
	trainModelOut  string
	trainPolicy    string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Build the training set and fit the classifier",
	Long: `Joins the extracted and reference tables, runs the training feature
transform, fits the tree ensemble, and writes the model bundle. The raw
joined set and the cleaned feature set are written as CSV checkpoints.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		inputs := []string{trainExtracted, trainRefdata}
		return recordRun(ctx, model.StageTrain, inputs, func(run *model.StageRun) error {
			joined, err := loadAndJoin(ctx, trainExtracted, trainRefdata, run)
			if err != nil {
				return err
			}
			if err := writeCheckpoint(joined, trainJoinedOut); err != nil {
				return err
			}

			policy, err := feature.LoadPolicy(trainPolicy)
			if err != nil {
				return err
			}
			result, err := feature.TrainTransform(joined, policy, time.Now())
			if err != nil {
				return err
			}
			if err := writeCheckpoint(result.Table, trainCleanOut); err != nil {
				return err
			}
			run.RowsOut = int64(result.Table.NumRows())

			x, err := feature.Matrix(result.Table, result.Schema.FeatureColumns())
			if err != nil {
				return err
			}
			y, err := feature.Labels(result.Table)
			if err != nil {
				return err
			}

			zap.L().Info("train: fitting ensemble",
				zap.Int("rows", len(x)),
				zap.Int("features", len(result.Schema.FeatureColumns())),
				zap.Int("trees", cfg.Train.Trees),
			)
			forest, err := classifier.Train(x, y, cfg.Train.Trees)
			if err != nil {
				return err
			}

			bundle := classifier.NewBundle(forest, result.Schema, cfg.Train.Trees)
			return bundle.Save(trainModelOut)
		})
	},
}

func writeCheckpoint(t *frame.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create checkpoint %s", path)
	}
	defer f.Close()
	return t.WriteCSV(f)
}

func init() {
	trainCmd.Flags().StringVar(&trainExtracted, "extracted", "extracted.csv", "extracted table CSV")
	trainCmd.Flags().StringVar(&trainRefdata, "refdata", "refdata.csv", "reference extract (CSV or XLSX)")
	trainCmd.Flags().StringVar(&trainJoinedOut, "joined-output", "train-joined.csv", "raw joined checkpoint")
	trainCmd.Flags().StringVar(&trainCleanOut, "cleaned-output", "train-cleaned.csv", "cleaned feature checkpoint")
	trainCmd.Flags().StringVar(&trainModelOut, "model", "model.json", "model bundle output path")
	trainCmd.Flags().StringVar(&trainPolicy, "policy", "", "column policy YAML (default: built-in MetLife policy)")
	rootCmd.AddCommand(trainCmd)
}
