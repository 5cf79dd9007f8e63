package feature

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

// Schema is the training-set contract the inference path must reproduce:
// the exact encoded column order and the training medians used for
// imputation. It is persisted inside the model bundle.
type Schema struct {
	Columns []string           `json:"columns"`
	Medians map[string]float64 `json:"medians"`
}

// FeatureColumns returns the schema columns handed to the classifier: all of
// them except the label, the exclusion flag, and the row identifier.
func (s Schema) FeatureColumns() []string {
	skip := map[string]bool{
		model.ColLabel:               true,
		model.ColExclusion:           true,
		model.ColPolicyEligibilityID: true,
	}
	var cols []string
	for _, c := range s.Columns {
		if !skip[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// TrainResult is the output of the training transform.
type TrainResult struct {
	Table  *frame.Table
	Schema Schema
}

// TrainTransform runs the full training-side feature transform on the joined
// set: prune per policy, derive computed columns, recode, encode, and impute
// with this set's own medians.
func TrainTransform(joined *frame.Table, policy ColumnPolicy, today time.Time) (*TrainResult, error) {
	if err := policy.Validate(joined); err != nil {
		return nil, err
	}
	t := joined.Clone()

	filterCarrier(t, policy.Carrier)
	t.DropColumns(policy.HTMLSuperseded...)
	t.DropColumns(policy.NoSignal...)

	var idCols []string
	for _, c := range t.Columns() {
		if policy.idSuffixed(c) {
			idCols = append(idCols, c)
		}
	}
	t.DropColumns(idCols...)

	var nullCols []string
	for _, c := range t.Columns() {
		if t.IsAllNull(c) {
			nullCols = append(nullCols, c)
		}
	}
	t.DropColumns(nullCols...)

	if err := deriveComputed(t, today); err != nil {
		return nil, err
	}

	t.DropColumns(policy.Datetime...)

	// Rows without observed lifetime values cannot be labeled.
	t.FilterRows(func(i int) bool {
		return t.Get(i, model.ColLifetimeMaxValue).Valid &&
			t.Get(i, model.ColLifetimeRemainingValue).Valid
	})

	recode(t)
	if err := presenceEncode(t, policy); err != nil {
		return nil, err
	}
	if err := deriveLabel(t); err != nil {
		return nil, err
	}

	medians := imputeOwnMedians(t)
	if err := oneHotEncode(t, policy); err != nil {
		return nil, err
	}

	return &TrainResult{
		Table: t,
		Schema: Schema{
			Columns: append([]string(nil), t.Columns()...),
			Medians: medians,
		},
	}, nil
}

// InferTransform runs the inference-side transform and reconciles the output
// to the training schema: columns the training set had but this set lacks
// are materialized as zero, extra columns are dropped, and nulls are imputed
// with the TRAINING medians — never statistics of this set.
func InferTransform(joined *frame.Table, policy ColumnPolicy, schema Schema, today time.Time) (*frame.Table, error) {
	t := joined.Clone()

	filterCarrier(t, policy.Carrier)

	if err := deriveComputed(t, today); err != nil {
		return nil, err
	}

	recode(t)
	if err := presenceEncode(t, policy); err != nil {
		return nil, err
	}
	if t.HasColumn(model.ColLifetimeMaxRef) && t.HasColumn(model.ColLifetimeRemRef) {
		if err := deriveLabel(t); err != nil {
			return nil, err
		}
	}
	if err := oneHotEncode(t, policy); err != nil {
		return nil, err
	}

	return Reconcile(t, schema)
}

// Reconcile shapes an encoded table to exactly the training schema. It is
// idempotent: applying it to a table already in schema shape is a no-op
// beyond median imputation of nulls.
func Reconcile(t *frame.Table, schema Schema) (*frame.Table, error) {
	out := frame.New(schema.Columns)
	for i := 0; i < t.NumRows(); i++ {
		row := make([]frame.Cell, len(schema.Columns))
		for j, col := range schema.Columns {
			if t.HasColumn(col) {
				row[j] = t.Get(i, col)
			} else {
				row[j] = frame.Float(0)
			}
		}
		if err := out.AppendRow(row); err != nil {
			return nil, err
		}
	}

	for _, col := range schema.Columns {
		median, ok := schema.Medians[col]
		for i := 0; i < out.NumRows(); i++ {
			if out.Get(i, col).Valid {
				continue
			}
			if ok {
				_ = out.Set(i, col, frame.Float(median))
			} else {
				_ = out.Set(i, col, frame.Float(0))
			}
		}
	}
	return out, nil
}

// filterCarrier keeps only rows of the target carrier and drops the carrier
// column; the pipeline is single-carrier by construction.
func filterCarrier(t *frame.Table, carrier string) {
	if !t.HasColumn(model.ColCarrierName) {
		return
	}
	t.FilterRows(func(i int) bool {
		c := t.Get(i, model.ColCarrierName)
		return c.Valid && c.Str == carrier
	})
	t.DropColumns(model.ColCarrierName)
}

// deriveComputed adds PatientAge and the Exclusion flag. The flag is encoded
// 0/1 so it survives the encoding passes as a numeric column. Malformed dates
// of birth are logged per row and leave the age null with the row excluded.
func deriveComputed(t *frame.Table, today time.Time) error {
	ages := make([]frame.Cell, t.NumRows())
	excl := make([]frame.Cell, t.NumRows())
	badDates := 0

	for i := 0; i < t.NumRows(); i++ {
		dob := t.Get(i, model.ColPatientDOB)
		if dob.Valid {
			if age, err := AgeYears(dob.Str, today); err == nil {
				ages[i] = frame.Float(float64(age))
			}
		}

		excluded, err := IsExcluded(ExclusionInput{
			DOB:               dob,
			StudentStatus:     t.Get(i, model.ColStudentStatus),
			NeedsPreauth:      t.Get(i, model.ColIsPreAuthRequired),
			AgeMax:            t.Get(i, model.ColAgeMax),
			AgeMaxStudent:     t.Get(i, model.ColAgeMaxStudent),
			HasWaitPeriod:     t.Get(i, model.ColWaitPeriod),
			LifetimeMax:       t.Get(i, model.ColLifetimeMaxValue),
			LifetimeRemaining: t.Get(i, model.ColLifetimeRemainingValue),
		}, today)
		if err != nil {
			if !eris.Is(err, ErrMalformedDate) {
				return err
			}
			badDates++
			zap.L().Warn("feature: malformed date of birth, row excluded",
				zap.String("policy_eligibility_id", t.Get(i, model.ColPolicyEligibilityID).Str),
			)
		}
		if excluded {
			excl[i] = frame.Float(1)
		} else {
			excl[i] = frame.Float(0)
		}
	}
	if badDates > 0 {
		zap.L().Warn("feature: rows excluded for malformed dates", zap.Int("rows", badDates))
	}

	if err := t.AddColumn(model.ColPatientAge, ages); err != nil {
		return eris.Wrap(err, "feature: add age column")
	}
	if err := t.AddColumn(model.ColExclusion, excl); err != nil {
		return eris.Wrap(err, "feature: add exclusion column")
	}
	return nil
}

// deriveLabel adds the binary target and removes the reference columns it
// was computed from.
func deriveLabel(t *frame.Table) error {
	labels := make([]frame.Cell, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		excluded, _ := t.Get(i, model.ColExclusion).AsBool()
		labels[i] = frame.Float(float64(Label(
			t.Get(i, model.ColLifetimeMaxValue),
			t.Get(i, model.ColLifetimeRemainingValue),
			t.Get(i, model.ColLifetimeMaxRef),
			t.Get(i, model.ColLifetimeRemRef),
			excluded,
		)))
	}
	if err := t.AddColumn(model.ColLabel, labels); err != nil {
		return eris.Wrap(err, "feature: add label column")
	}
	t.DropColumns(model.ColLifetimeMaxRef, model.ColLifetimeRemRef)
	return nil
}

// recode maps CoordinationOfBenefits onto {none, one, two} and WaitPeriod
// onto {0, 1}.
func recode(t *frame.Table) {
	if t.HasColumn(model.ColCoordOfBenefits) {
		for i := 0; i < t.NumRows(); i++ {
			c := t.Get(i, model.ColCoordOfBenefits)
			v, ok := c.AsFloat()
			switch {
			case !c.Valid:
				_ = t.Set(i, model.ColCoordOfBenefits, frame.String("none"))
			case ok && v == 1:
				_ = t.Set(i, model.ColCoordOfBenefits, frame.String("one"))
			case ok && v == 2:
				_ = t.Set(i, model.ColCoordOfBenefits, frame.String("two"))
			}
		}
	}
	if t.HasColumn(model.ColWaitPeriod) {
		for i := 0; i < t.NumRows(); i++ {
			if b, ok := t.Get(i, model.ColWaitPeriod).AsBool(); ok {
				if b {
					_ = t.Set(i, model.ColWaitPeriod, frame.Float(1))
				} else {
					_ = t.Set(i, model.ColWaitPeriod, frame.Float(0))
				}
			}
		}
	}
}

// presenceEncode replaces every remaining free-text column outside the
// categorical allow-list with a presence indicator: the information content
// beyond presence is discarded for these columns by design. Replaced columns
// are re-appended at the end of the table in sorted order.
func presenceEncode(t *frame.Table, policy ColumnPolicy) error {
	var textCols []string
	for _, c := range t.Columns() {
		if policy.isCategorical(c) || t.IsNumeric(c) || t.IsAllNull(c) {
			continue
		}
		textCols = append(textCols, c)
	}
	sort.Strings(textCols)

	indicators := make([][]frame.Cell, len(textCols))
	for j, col := range textCols {
		cells := make([]frame.Cell, t.NumRows())
		for i := 0; i < t.NumRows(); i++ {
			if t.Get(i, col).Valid {
				cells[i] = frame.Float(1)
			} else {
				cells[i] = frame.Float(0)
			}
		}
		indicators[j] = cells
	}

	t.DropColumns(textCols...)
	for j, col := range textCols {
		if err := t.AddColumn(col, indicators[j]); err != nil {
			return eris.Wrapf(err, "feature: presence-encode %s", col)
		}
	}
	return nil
}

// imputeOwnMedians fills numeric nulls with the column median of this table
// and returns the medians for the schema. Columns with no computable median
// fill with zero.
func imputeOwnMedians(t *frame.Table) map[string]float64 {
	medians := make(map[string]float64)
	for _, col := range t.Columns() {
		if !t.IsNumeric(col) {
			continue
		}
		median, ok := t.Median(col)
		if !ok {
			median = 0
		}
		medians[col] = median
		for i := 0; i < t.NumRows(); i++ {
			if !t.Get(i, col).Valid {
				_ = t.Set(i, col, frame.Float(median))
			}
		}
	}
	return medians
}

// oneHotEncode expands each remaining categorical column into one indicator
// column per observed value, sorted for determinism. Null cells encode as
// all zeros. Originals are dropped.
func oneHotEncode(t *frame.Table, policy ColumnPolicy) error {
	for _, col := range policy.Categorical {
		if !t.HasColumn(col) {
			continue
		}

		seen := map[string]bool{}
		for i := 0; i < t.NumRows(); i++ {
			if c := t.Get(i, col); c.Valid {
				seen[c.Str] = true
			}
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)

		for _, v := range values {
			cells := make([]frame.Cell, t.NumRows())
			for i := 0; i < t.NumRows(); i++ {
				c := t.Get(i, col)
				if c.Valid && c.Str == v {
					cells[i] = frame.Float(1)
				} else {
					cells[i] = frame.Float(0)
				}
			}
			if err := t.AddColumn(col+"_"+v, cells); err != nil {
				return eris.Wrapf(err, "feature: one-hot %s", col)
			}
		}
		t.DropColumns(col)
	}
	return nil
}
