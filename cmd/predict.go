package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/classifier"
	"github.com/sells-group/eligibility-cli/internal/feature"
	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

var (
	predictExtracted string
	predictRefdata   string
	predictModel     string
	predictJoinedOut string
	predictOutput    string
	predictPolicy    string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score a batch against a trained model",
	Long: `Joins the extracted and reference tables, runs the inference
transform against the model bundle's training schema and medians, and
writes per-row predictions alongside the reconciled feature set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		inputs := []string{predictExtracted, predictRefdata, predictModel}
		return recordRun(ctx, model.StagePredict, inputs, func(run *model.StageRun) error {
			bundle, err := classifier.LoadBundle(predictModel)
			if err != nil {
				return err
			}

			joined, err := loadAndJoin(ctx, predictExtracted, predictRefdata, run)
			if err != nil {
				return err
			}
			if err := writeCheckpoint(joined, predictJoinedOut); err != nil {
				return err
			}

			policy, err := feature.LoadPolicy(predictPolicy)
			if err != nil {
				return err
			}
			features, err := feature.InferTransform(joined, policy, bundle.Schema, time.Now())
			if err != nil {
				return err
			}

			x, err := feature.Matrix(features, bundle.Schema.FeatureColumns())
			if err != nil {
				return err
			}

			labels := bundle.Model().PredictAll(x)
			cells := make([]frame.Cell, len(labels))
			positives := 0
			for i, label := range labels {
				cells[i] = frame.Float(float64(label))
				positives += label
			}
			if err := features.AddColumn("Predict", cells); err != nil {
				return err
			}
			run.RowsOut = int64(features.NumRows())

			zap.L().Info("predict: batch scored",
				zap.Int("rows", len(labels)),
				zap.Int("predicted_agreements", positives),
			)
			return writeCheckpoint(features, predictOutput)
		})
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictExtracted, "extracted", "extracted.csv", "extracted table CSV")
	predictCmd.Flags().StringVar(&predictRefdata, "refdata", "refdata.csv", "reference extract (CSV or XLSX)")
	predictCmd.Flags().StringVar(&predictModel, "model", "model.json", "model bundle path")
	predictCmd.Flags().StringVar(&predictJoinedOut, "joined-output", "predict-joined.csv", "raw joined checkpoint")
	predictCmd.Flags().StringVar(&predictOutput, "output", "predictions.csv", "predictions CSV output")
	predictCmd.Flags().StringVar(&predictPolicy, "policy", "", "column policy YAML (default: built-in MetLife policy)")
	rootCmd.AddCommand(predictCmd)
}
