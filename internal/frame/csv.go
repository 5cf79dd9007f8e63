package frame

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// nbsp is the carrier portal's rendering of a blank cell. Treated as null on
// read, alongside the empty string.
const nbsp = " "

// ReadCSV reads a headered CSV into a table. Empty and non-breaking-space
// cells become null. Short rows are padded with nulls.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "frame: read csv header")
	}
	t := New(header)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "frame: read csv row")
		}

		row := make([]Cell, len(header))
		for i := range header {
			if i >= len(record) {
				continue
			}
			v := record[i]
			if v == "" || strings.TrimSpace(strings.ReplaceAll(v, nbsp, " ")) == "" {
				continue
			}
			row[i] = String(v)
		}
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
}

// WriteCSV writes the table as headered CSV. Null cells write as empty
// strings.
func (t *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.cols); err != nil {
		return eris.Wrap(err, "frame: write csv header")
	}
	record := make([]string, len(t.cols))
	for _, row := range t.rows {
		for i, c := range row {
			if c.Valid {
				record[i] = c.Str
			} else {
				record[i] = ""
			}
		}
		if err := writer.Write(record); err != nil {
			return eris.Wrap(err, "frame: write csv row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "frame: flush csv")
}

// FromRows builds a table from a header row and data rows, applying the same
// null normalization as ReadCSV. Used for XLSX-sourced extracts.
func FromRows(header []string, rows [][]string) *Table {
	t := New(header)
	for _, record := range rows {
		row := make([]Cell, len(header))
		for i := range header {
			if i >= len(record) {
				continue
			}
			v := record[i]
			if v == "" || strings.TrimSpace(strings.ReplaceAll(v, nbsp, " ")) == "" {
				continue
			}
			row[i] = String(v)
		}
		t.rows = append(t.rows, row)
	}
	return t
}
