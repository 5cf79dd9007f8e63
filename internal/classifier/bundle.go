package classifier

import (
	"encoding/json"
	"math"
	"os"

	randomforest "github.com/malaschitz/randomForest"
	"github.com/rotisserie/eris"

	"github.com/sells-group/eligibility-cli/internal/feature"
)

// Bundle is the persisted model artifact: the fitted forest plus the feature
// schema and training medians the inference transform must reuse. Predicting
// with a bundle against any other column ordering is undefined, so the two
// never travel separately.
type Bundle struct {
	Schema feature.Schema       `json:"schema"`
	Trees  int                  `json:"trees"`
	Forest *randomforest.Forest `json:"forest"`
}

// NewBundle packages a trained forest with its schema.
func NewBundle(f *Forest, schema feature.Schema, trees int) *Bundle {
	return &Bundle{Schema: schema, Trees: trees, Forest: f.forest}
}

// Model returns the bundled forest ready to predict.
func (b *Bundle) Model() *Forest {
	return &Forest{forest: b.Forest}
}

// Save writes the bundle as JSON to path. Fitting can leave NaN in a tree's
// out-of-bag validation score (empty OOB sample), which encoding/json
// rejects; those scores play no part in voting, so Save zeroes them first.
func (b *Bundle) Save(path string) error {
	sanitizeForest(b.Forest)

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "classifier: create bundle %s", path)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(b); err != nil {
		return eris.Wrap(err, "classifier: encode bundle")
	}
	return nil
}

// sanitizeForest replaces non-finite per-tree validation scores so the
// forest always encodes.
func sanitizeForest(f *randomforest.Forest) {
	if f == nil {
		return
	}
	for i := range f.Trees {
		v := f.Trees[i].Validation
		if math.IsNaN(v) || math.IsInf(v, 0) {
			f.Trees[i].Validation = 0
		}
	}
}

// LoadBundle reads a bundle written by Save.
func LoadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classifier: open bundle %s", path)
	}
	defer f.Close()

	var b Bundle
	if err := json.NewDecoder(f).Decode(&b); err != nil {
		return nil, eris.Wrap(err, "classifier: decode bundle")
	}
	if b.Forest == nil {
		return nil, eris.Errorf("classifier: bundle %s has no forest", path)
	}
	if len(b.Schema.Columns) == 0 {
		return nil, eris.Errorf("classifier: bundle %s has no schema", path)
	}
	return &b, nil
}
