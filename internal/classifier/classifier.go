// Package classifier wraps the off-the-shelf tree-ensemble used to predict
// whether an eligibility check will agree with the scraped answer. The
// ensemble is treated as an opaque capability: train on a matrix, predict
// per row. Everything the inference side needs — the fitted forest, the
// feature schema, the training medians — travels together in one bundle
// artifact.
package classifier

import (
	randomforest "github.com/malaschitz/randomForest"
	"github.com/rotisserie/eris"
)

// Model predicts a binary label for one feature row.
type Model interface {
	Predict(features []float64) int
}

// Forest is a bootstrap-aggregated randomized tree ensemble.
type Forest struct {
	forest *randomforest.Forest
}

// Train fits a forest with the given number of trees. X rows must all have
// the same width and Y must be 0/1 labels of the same length.
func Train(x [][]float64, y []int, trees int) (*Forest, error) {
	if len(x) == 0 {
		return nil, eris.New("classifier: empty training set")
	}
	if len(x) != len(y) {
		return nil, eris.Errorf("classifier: %d feature rows but %d labels", len(x), len(y))
	}
	if trees <= 0 {
		return nil, eris.Errorf("classifier: tree count must be positive, got %d", trees)
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return nil, eris.Errorf("classifier: row %d has %d features, expected %d", i, len(row), width)
		}
	}

	forest := &randomforest.Forest{}
	forest.Data = randomforest.ForestData{X: x, Class: y}
	forest.Train(trees)

	return &Forest{forest: forest}, nil
}

// Predict returns the majority-vote label for one feature row.
func (f *Forest) Predict(features []float64) int {
	votes := f.forest.Vote(features)
	best := 0
	for class, v := range votes {
		if v > votes[best] {
			best = class
		}
	}
	return best
}

// PredictAll predicts a label per row.
func (f *Forest) PredictAll(x [][]float64) []int {
	labels := make([]int, len(x))
	for i, row := range x {
		labels[i] = f.Predict(row)
	}
	return labels
}
