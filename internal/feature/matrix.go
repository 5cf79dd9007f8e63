package feature

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

// Matrix extracts the named columns as a dense float matrix. Every cell must
// be numeric by this point; a non-numeric cell is a transform bug and is
// reported with its position.
func Matrix(t *frame.Table, cols []string) ([][]float64, error) {
	x := make([][]float64, t.NumRows())
	for i := range x {
		row := make([]float64, len(cols))
		for j, col := range cols {
			f, ok := t.Get(i, col).AsFloat()
			if !ok {
				return nil, eris.Errorf("feature: non-numeric cell at row %d column %s", i, col)
			}
			row[j] = f
		}
		x[i] = row
	}
	return x, nil
}

// Labels extracts the binary target vector.
func Labels(t *frame.Table) ([]int, error) {
	y := make([]int, t.NumRows())
	for i := range y {
		f, ok := t.Get(i, model.ColLabel).AsFloat()
		if !ok {
			return nil, eris.Errorf("feature: missing label at row %d", i)
		}
		y[i] = int(f)
	}
	return y, nil
}
