package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/frame"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// fixedToday pins age computation for the whole package's tests.
var fixedToday = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

func TestAgeYears(t *testing.T) {
	tests := []struct {
		dob  string
		want int
	}{
		{"06/15/1994", 30},
		{"06/15/2002", 22},
		{"06/20/2002", 22}, // a few days short still rounds to 22
		{"06/15/2024", 0},
	}
	for _, tt := range tests {
		t.Run(tt.dob, func(t *testing.T) {
			got, err := AgeYears(tt.dob, fixedToday)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAgeYearsMalformed(t *testing.T) {
	for _, dob := range []string{"1994-06-15", "13/40/1994", "not a date", ""} {
		_, err := AgeYears(dob, fixedToday)
		assert.ErrorIs(t, err, ErrMalformedDate, dob)
	}
}

// includableInput is a baseline that trips none of the exception cases:
// age 30, non-student, no wait period, no pre-authorization.
func includableInput() ExclusionInput {
	return ExclusionInput{
		DOB:               frame.String("06/15/1994"),
		StudentStatus:     frame.String("None"),
		NeedsPreauth:      frame.String("0"),
		AgeMax:            frame.String("40"),
		AgeMaxStudent:     frame.String("19"),
		HasWaitPeriod:     frame.String("false"),
		LifetimeMax:       frame.Float(1500),
		LifetimeRemaining: frame.Float(1000),
	}
}

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ExclusionInput)
		want   bool
	}{
		{"baseline includable", func(in *ExclusionInput) {}, false},
		{"wait period", func(in *ExclusionInput) { in.HasWaitPeriod = frame.String("true") }, true},
		{"full-time student past student age max", func(in *ExclusionInput) {
			in.StudentStatus = frame.String("FullTime")
		}, true},
		{"part-time student past student age max", func(in *ExclusionInput) {
			in.StudentStatus = frame.String("PartTime")
		}, true},
		{"student under the student age max", func(in *ExclusionInput) {
			in.StudentStatus = frame.String("FullTime")
			in.DOB = frame.String("06/15/2008") // age 16
			in.AgeMaxStudent = frame.String("19")
		}, false},
		{"dependent age band 18-26", func(in *ExclusionInput) {
			in.DOB = frame.String("06/15/2002") // age 22
		}, true},
		{"past plan age max", func(in *ExclusionInput) {
			in.DOB = frame.String("06/15/1974") // age 50
		}, true},
		{"pre-authorization required", func(in *ExclusionInput) {
			in.NeedsPreauth = frame.String("1")
		}, true},
		{"missing dob", func(in *ExclusionInput) { in.DOB = frame.Null() }, true},
		{"missing student status", func(in *ExclusionInput) { in.StudentStatus = frame.Null() }, true},
		{"missing lifetime max", func(in *ExclusionInput) { in.LifetimeMax = frame.Null() }, true},
		{"missing lifetime remaining", func(in *ExclusionInput) { in.LifetimeRemaining = frame.Null() }, true},
		{"unparseable age max", func(in *ExclusionInput) { in.AgeMax = frame.String("forty") }, true},
		{"unparseable wait period", func(in *ExclusionInput) { in.HasWaitPeriod = frame.String("maybe") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := includableInput()
			tt.mutate(&in)
			got, err := IsExcluded(in, fixedToday)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsExcludedMalformedDOB(t *testing.T) {
	in := includableInput()
	in.DOB = frame.String("1994-06-15")

	got, err := IsExcluded(in, fixedToday)
	assert.True(t, got, "malformed dates fail safe toward exclusion")
	assert.ErrorIs(t, err, ErrMalformedDate)
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name                       string
		htmlMax, htmlRem           frame.Cell
		refMax, refRem             frame.Cell
		excluded                   bool
		want                       int
	}{
		{"exact match", frame.Float(1500), frame.Float(1000), frame.Float(1500), frame.Float(1000), false, 1},
		{"max differs", frame.Float(2000), frame.Float(1000), frame.Float(1500), frame.Float(1000), false, 0},
		{"remaining differs", frame.Float(1500), frame.Float(900), frame.Float(1500), frame.Float(1000), false, 0},
		{"match but excluded", frame.Float(1500), frame.Float(1000), frame.Float(1500), frame.Float(1000), true, 0},
		{"null reference", frame.Float(1500), frame.Float(1000), frame.Null(), frame.Float(1000), false, 0},
		{"null html", frame.Null(), frame.Float(1000), frame.Float(1500), frame.Float(1000), false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Label(tt.htmlMax, tt.htmlRem, tt.refMax, tt.refRem, tt.excluded)
			assert.Equal(t, tt.want, got)
		})
	}
}
