// Package feature builds the classifier's feature matrix: it joins the
// extracted HTML table with the internal reference extract, derives computed
// columns, applies the exclusion policy, encodes, and imputes.
package feature

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// dobLayout is the locale-fixed date format the upstream system emits for
// dates of birth.
const dobLayout = "01/02/2006"

// daysPerYear is the year length used for age computation throughout the
// pipeline.
const daysPerYear = 365.25

// ErrMalformedDate marks a date of birth that does not parse in the expected
// month/day/year format. Surfaced per row; never aborts a batch.
var ErrMalformedDate = eris.New("feature: malformed date")

// AgeYears converts a date of birth to whole years at the given reference
// time, using a 365.25-day year rounded to the nearest integer. Both the
// derived PatientAge column and the exclusion predicate use this one
// definition.
func AgeYears(dob string, today time.Time) (int, error) {
	t, err := time.Parse(dobLayout, dob)
	if err != nil {
		return 0, eris.Wrapf(ErrMalformedDate, "%q", dob)
	}
	days := today.Sub(t).Hours() / 24
	return int(math.Round(days / daysPerYear)), nil
}
