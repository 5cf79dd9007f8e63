package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/extract"
	"github.com/sells-group/eligibility-cli/internal/fetcher"
	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

var (
	parseInput  string
	parseOutput string
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract benefit fields from cleaned HTML responses",
	Long: `Runs the carrier HTML extractor over a cleaned NDJSON corpus and
writes the flat extracted table as a CSV checkpoint. Documents without a
payer section, and documents from other carriers, are skipped.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return recordRun(ctx, model.StageParse, []string{parseInput}, func(run *model.StageRun) error {
			schema, err := schemaFor(cfg.Extract.Carrier)
			if err != nil {
				return err
			}
			extractor, err := extract.New(schema)
			if err != nil {
				return err
			}

			in, err := os.Open(parseInput)
			if err != nil {
				return eris.Wrapf(err, "parse: open %s", parseInput)
			}
			defer in.Close()

			table := frame.New(model.ExtractColumns)
			docCh, errCh := fetcher.DecodeJSONLines[model.Document](ctx, in)

			for doc := range docCh {
				run.RowsIn++
				if cfg.Extract.ProgressEvery > 0 && run.RowsIn%int64(cfg.Extract.ProgressEvery) == 0 {
					zap.L().Info("parse: progress", zap.Int64("records", run.RowsIn))
				}

				rec, err := extractor.Extract(doc)
				if err != nil {
					return err
				}
				if rec == nil {
					run.RowsSkipped++
					continue
				}
				table.AppendRecord(rec)
				run.RowsOut++
			}
			if err := <-errCh; err != nil {
				return eris.Wrap(err, "parse: read corpus")
			}

			out, err := os.Create(parseOutput)
			if err != nil {
				return eris.Wrapf(err, "parse: create %s", parseOutput)
			}
			defer out.Close()
			return table.WriteCSV(out)
		})
	},
}

// schemaFor resolves a carrier name to its extraction schema. Adding a
// carrier means registering a schema here.
func schemaFor(carrier string) (*extract.Schema, error) {
	switch carrier {
	case "metlife", "MetLife":
		return extract.MetLifeSchema(), nil
	default:
		return nil, eris.Errorf("parse: no extraction schema for carrier %q", carrier)
	}
}

func init() {
	parseCmd.Flags().StringVar(&parseInput, "input", "cleaned.jsonl", "cleaned NDJSON corpus")
	parseCmd.Flags().StringVar(&parseOutput, "output", "extracted.csv", "extracted table CSV output")
	rootCmd.AddCommand(parseCmd)
}
