package refdata

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/eligibility-cli/internal/frame"
)

// dateLayout matches the upstream system's month/day/year date rendering so
// exported dates round-trip through the CSV checkpoint unchanged.
const dateLayout = "01/02/2006"

// Querier is the slice of a pgx pool the exporter needs. Satisfied by
// *pgxpool.Pool and by pgxmock in tests.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Export runs the extract query against the warehouse and writes the result
// as a CSV checkpoint. Returns the row count.
func Export(ctx context.Context, q Querier, query string, w io.Writer) (int64, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return 0, eris.Wrap(err, "refdata: query extract")
	}
	defer rows.Close()

	var cols []string
	for _, fd := range rows.FieldDescriptions() {
		cols = append(cols, fd.Name)
	}
	t := frame.New(cols)

	var count int64
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return 0, eris.Wrap(err, "refdata: read row values")
		}
		row := make([]frame.Cell, len(cols))
		for i, v := range values {
			row[i] = cellFor(v)
		}
		if err := t.AppendRow(row); err != nil {
			return 0, err
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, eris.Wrap(err, "refdata: iterate rows")
	}

	if err := t.WriteCSV(w); err != nil {
		return 0, eris.Wrap(err, "refdata: write csv")
	}
	return count, nil
}

// cellFor converts a database value to a checkpoint cell.
func cellFor(v any) frame.Cell {
	switch x := v.(type) {
	case nil:
		return frame.Null()
	case string:
		return frame.String(x)
	case bool:
		return frame.Bool(x)
	case int16:
		return frame.Float(float64(x))
	case int32:
		return frame.Float(float64(x))
	case int64:
		return frame.Float(float64(x))
	case float32:
		return frame.Float(float64(x))
	case float64:
		return frame.Float(x)
	case time.Time:
		return frame.String(x.Format(dateLayout))
	default:
		return frame.String(fmt.Sprint(x))
	}
}
