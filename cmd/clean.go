package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/fetcher"
	"github.com/sells-group/eligibility-cli/internal/model"
)

var (
	cleanInputs []string
	cleanOutput string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Filter the raw scraped corpus down to usable responses",
	Long: `Reads raw eligibility-response exports (JSON array or NDJSON), keeps
records whose HTML mentions the configured carrier and contains no error
banner, and writes them as NDJSON for the parse stage.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		return recordRun(ctx, model.StageClean, cleanInputs, func(run *model.StageRun) error {
			out, err := os.Create(cleanOutput)
			if err != nil {
				return eris.Wrapf(err, "clean: create %s", cleanOutput)
			}
			defer out.Close()

			w := bufio.NewWriter(out)
			enc := json.NewEncoder(w)

			for _, path := range cleanInputs {
				if err := cleanFile(ctx, path, enc, run); err != nil {
					return err
				}
			}
			return eris.Wrap(w.Flush(), "clean: flush output")
		})
	},
}

func cleanFile(ctx context.Context, path string, enc *json.Encoder, run *model.StageRun) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "clean: open %s", path)
	}
	defer f.Close()

	docCh, errCh, err := decodeCorpus(ctx, f)
	if err != nil {
		return eris.Wrapf(err, "clean: %s", path)
	}

	for doc := range docCh {
		run.RowsIn++
		if !doc.MentionsCarrier(cfg.Extract.Carrier) || doc.HasError() {
			run.RowsSkipped++
			continue
		}
		if err := enc.Encode(doc); err != nil {
			return eris.Wrap(err, "clean: write record")
		}
		run.RowsOut++
	}
	if err := <-errCh; err != nil {
		return eris.Wrapf(err, "clean: %s", path)
	}

	zap.L().Info("clean: file done", zap.String("path", path), zap.Int64("kept", run.RowsOut))
	return nil
}

// decodeCorpus streams documents from either export shape: a single JSON
// array or newline-delimited JSON, sniffed from the first byte.
func decodeCorpus(ctx context.Context, f *os.File) (<-chan model.Document, <-chan error, error) {
	br := bufio.NewReader(f)
	for {
		b, err := br.Peek(1)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, eris.Wrap(err, "peek")
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
			continue
		case '[':
			ch, errCh := fetcher.DecodeJSONArray[model.Document](ctx, br)
			return ch, errCh, nil
		default:
			ch, errCh := fetcher.DecodeJSONLines[model.Document](ctx, br)
			return ch, errCh, nil
		}
	}

	// Empty file: nothing to stream.
	ch := make(chan model.Document)
	errCh := make(chan error, 1)
	close(ch)
	close(errCh)
	return ch, errCh, nil
}

func init() {
	cleanCmd.Flags().StringSliceVar(&cleanInputs, "input", nil, "raw corpus file (repeatable)")
	cleanCmd.Flags().StringVar(&cleanOutput, "output", "cleaned.jsonl", "cleaned NDJSON output path")
	_ = cleanCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(cleanCmd)
}
