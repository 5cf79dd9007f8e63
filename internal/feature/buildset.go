package feature

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

// monetaryColumns are the HTML amount columns that arrive as text with
// thousands separators.
var monetaryColumns = []string{
	model.ColLifetimeMaxIn,
	model.ColLifetimeMaxOut,
	model.ColLifetimeRemainingIn,
	model.ColLifetimeRemainingOut,
	model.ColLifetimeUsedIn,
	model.ColLifetimeUsedOut,
}

// htmlUnreliable are extractor columns that are mostly blank in the HTML;
// the reference extract's versions are joined in instead.
var htmlUnreliable = []string{
	model.ColGroupName,
	model.ColSubscriberSSN,
}

// BuildSet joins the extracted HTML table with the reference extract into
// the raw joined set:
//
//  1. coerce the monetary text columns to numbers, drop unreliable HTML
//     columns;
//  2. left-join on the policy-eligibility id, after dropping rows with a
//     null id and every row whose id is duplicated (an ambiguous join
//     target is less trustworthy than no join at all);
//  3. reduce each in/out-network column pair to a single value using the
//     reference IsInNetwork flag.
//
// Both inputs are left unmodified.
func BuildSet(htmlTable, refTable *frame.Table) (*frame.Table, error) {
	log := zap.L()
	t := htmlTable.Clone()

	coerceMonetary(t, log)
	t.DropColumns(htmlUnreliable...)

	// Columns unique to the reference extract, join key always included.
	htmlCols := make(map[string]bool, len(t.Columns()))
	for _, c := range t.Columns() {
		htmlCols[c] = true
	}
	var refCols []string
	for _, c := range refTable.Columns() {
		if !htmlCols[c] && c != model.ColPolicyEligibilityID {
			refCols = append(refCols, c)
		}
	}

	if !t.HasColumn(model.ColPolicyEligibilityID) {
		return nil, eris.Errorf("feature: extracted table lacks %s", model.ColPolicyEligibilityID)
	}

	before := t.NumRows()
	t.FilterRows(func(i int) bool {
		return t.Get(i, model.ColPolicyEligibilityID).Valid
	})
	if dropped := before - t.NumRows(); dropped > 0 {
		log.Info("feature: dropped rows with null join key", zap.Int("rows", dropped))
	}

	counts := t.KeyCounts(model.ColPolicyEligibilityID)
	before = t.NumRows()
	t.FilterRows(func(i int) bool {
		return counts[t.Get(i, model.ColPolicyEligibilityID).Str] == 1
	})
	if dropped := before - t.NumRows(); dropped > 0 {
		log.Info("feature: dropped rows with duplicated join key", zap.Int("rows", dropped))
	}

	joined, err := t.LeftJoin(refTable, model.ColPolicyEligibilityID, refCols)
	if err != nil {
		return nil, eris.Wrap(err, "feature: join reference extract")
	}

	if err := reduceNetworkVariants(joined); err != nil {
		return nil, err
	}
	return joined, nil
}

// coerceMonetary strips thousands separators and reformats the monetary
// columns as canonical numbers. Unparseable values become null.
func coerceMonetary(t *frame.Table, log *zap.Logger) {
	bad := 0
	for _, col := range monetaryColumns {
		if !t.HasColumn(col) {
			continue
		}
		for i := 0; i < t.NumRows(); i++ {
			c := t.Get(i, col)
			if !c.Valid {
				continue
			}
			f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(c.Str), ",", ""), 64)
			if err != nil {
				bad++
				_ = t.Set(i, col, frame.Null())
				continue
			}
			_ = t.Set(i, col, frame.Float(f))
		}
	}
	if bad > 0 {
		log.Warn("feature: unparseable monetary values nulled", zap.Int("cells", bad))
	}
}

// networkPairs maps each derived column to its (out-of-network, in-network)
// source pair.
var networkPairs = []struct {
	derived, out, in string
}{
	{model.ColLifetimeRemainingValue, model.ColLifetimeRemainingOut, model.ColLifetimeRemainingIn},
	{model.ColLifetimeMaxValue, model.ColLifetimeMaxOut, model.ColLifetimeMaxIn},
	{model.ColOrthoBenefitUsed, model.ColLifetimeUsedOut, model.ColLifetimeUsedIn},
	{model.ColCoIns, model.ColCoInsOut, model.ColCoInsIn},
}

// reduceNetworkVariants picks the out-of-network value only when IsInNetwork
// is explicitly 0; any other value, including missing, selects in-network.
func reduceNetworkVariants(t *frame.Table) error {
	for _, pair := range networkPairs {
		cells := make([]frame.Cell, t.NumRows())
		for i := 0; i < t.NumRows(); i++ {
			flag, ok := t.Get(i, model.ColIsInNetwork).AsFloat()
			if ok && flag == 0 {
				cells[i] = t.Get(i, pair.out)
			} else {
				cells[i] = t.Get(i, pair.in)
			}
		}
		if err := t.AddColumn(pair.derived, cells); err != nil {
			return eris.Wrapf(err, "feature: derive %s", pair.derived)
		}
	}
	return nil
}
