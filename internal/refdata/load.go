// Package refdata loads the internal SQL reference extract: the table of
// system-computed benefit values and exclusion-policy inputs keyed by
// policy-eligibility id. Extracts arrive as ISO-8859-1 CSV, as XLSX, or are
// pulled straight from the warehouse.
package refdata

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/eligibility-cli/internal/fetcher"
	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

// Load reads a reference extract, dispatching on the file extension.
func Load(ctx context.Context, path string) (*frame.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path, "")
	default:
		return LoadCSV(ctx, path)
	}
}

// LoadCSV streams a CSV extract, transcoding from ISO-8859-1. The upstream
// export tool writes Latin-1 (plain ASCII passes through unchanged) and does
// not escape embedded quotes.
func LoadCSV(ctx context.Context, path string) (*frame.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: open %s", path)
	}
	defer f.Close()

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, fetcher.Latin1Reader(f), fetcher.CSVOptions{
		HasHeader:  true,
		HeaderCh:   headerCh,
		LazyQuotes: true,
	})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(err, "refdata: read %s", path)
	}

	select {
	case header := <-headerCh:
		t := frame.FromRows(header, rows)
		return t, validate(t)
	default:
		return nil, eris.Errorf("refdata: %s has no header row", path)
	}
}

// LoadXLSX reads a spreadsheet extract. An empty sheet name selects the
// first sheet.
func LoadXLSX(path, sheet string) (*frame.Table, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SheetName: sheet})
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: read %s", path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("refdata: %s is empty", path)
	}
	t := frame.FromRows(rows[0], rows[1:])
	return t, validate(t)
}

// validate checks the columns the downstream stages cannot work without.
func validate(t *frame.Table) error {
	required := []string{
		model.ColPolicyEligibilityID,
		model.ColCarrierName,
		model.ColIsInNetwork,
		model.ColLifetimeMaxRef,
		model.ColLifetimeRemRef,
	}
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return eris.Errorf("refdata: extract missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
