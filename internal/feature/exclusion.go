package feature

import (
	"time"

	"github.com/sells-group/eligibility-cli/internal/frame"
)

// Student statuses subject to the student age limit.
var studentStatuses = map[string]bool{
	"PartTime": true,
	"FullTime": true,
}

// ExclusionInput carries the per-row inputs of the exclusion policy. Cells
// are null-aware because any missing input fails safe toward exclusion.
type ExclusionInput struct {
	DOB               frame.Cell
	StudentStatus     frame.Cell
	NeedsPreauth      frame.Cell
	AgeMax            frame.Cell
	AgeMaxStudent     frame.Cell
	HasWaitPeriod     frame.Cell
	LifetimeMax       frame.Cell
	LifetimeRemaining frame.Cell
}

// IsExcluded decides whether a row falls under one of the known exception
// cases and must not contribute a positive label. The policy fails safe: any
// missing or malformed input excludes the row. A non-nil error is only ever
// ErrMalformedDate (wrapped), and the row is still excluded.
func IsExcluded(in ExclusionInput, today time.Time) (bool, error) {
	if !in.DOB.Valid || !in.StudentStatus.Valid || !in.NeedsPreauth.Valid ||
		!in.AgeMax.Valid || !in.AgeMaxStudent.Valid || !in.HasWaitPeriod.Valid {
		return true, nil
	}
	if !in.LifetimeMax.Valid || !in.LifetimeRemaining.Valid {
		return true, nil
	}

	age, err := AgeYears(in.DOB.Str, today)
	if err != nil {
		return true, err
	}

	waitPeriod, ok := in.HasWaitPeriod.AsBool()
	if !ok {
		return true, nil
	}
	ageMax, ok := in.AgeMax.AsFloat()
	if !ok {
		return true, nil
	}
	ageMaxStudent, ok := in.AgeMaxStudent.AsFloat()
	if !ok {
		return true, nil
	}
	preauth, ok := in.NeedsPreauth.AsFloat()
	if !ok {
		return true, nil
	}

	switch {
	case waitPeriod:
		return true, nil
	case studentStatuses[in.StudentStatus.Str] && float64(age) >= ageMaxStudent:
		return true, nil
	case (age >= 18 && age <= 26) || float64(age) >= ageMax:
		return true, nil
	case preauth != 0:
		return true, nil
	}
	return false, nil
}

// Label derives the binary training target: 1 iff the HTML-derived lifetime
// max and remaining exactly equal the reference system's values and the row
// is not excluded.
func Label(htmlMax, htmlRemaining, refMax, refRemaining frame.Cell, excluded bool) int {
	if excluded {
		return 0
	}
	hm, ok1 := htmlMax.AsFloat()
	hr, ok2 := htmlRemaining.AsFloat()
	rm, ok3 := refMax.AsFloat()
	rr, ok4 := refRemaining.AsFloat()
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return 0
	}
	if hm == rm && hr == rr {
		return 1
	}
	return 0
}
