package feature

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

// ColumnPolicy enumerates, in one place, every hand-maintained column rule
// the feature transform applies. The lists are validated against the live
// table schema before use so a renamed upstream column fails loudly instead
// of silently no-opping.
type ColumnPolicy struct {
	// Carrier filters the joined table; rows from other carriers are dropped
	// and the carrier column itself is removed afterwards.
	Carrier string `yaml:"carrier"`

	// HTMLSuperseded are HTML-path columns whose reference-extract versions
	// are authoritative.
	HTMLSuperseded []string `yaml:"html_superseded"`

	// NoSignal are columns known from domain review to carry no signal.
	NoSignal []string `yaml:"no_signal"`

	// IDAllow are the id-suffixed columns kept despite the IDSuffixes rule.
	IDAllow []string `yaml:"id_allow"`

	// IDSuffixes drop any column ending in one of these suffixes unless it
	// is allow-listed.
	IDSuffixes []string `yaml:"id_suffixes"`

	// Datetime are raw timestamp columns dropped before encoding.
	Datetime []string `yaml:"datetime"`

	// Categorical are the free-text columns that keep their values for
	// one-hot encoding; every other non-numeric column collapses to a
	// presence indicator.
	Categorical []string `yaml:"categorical"`

	// Optional are listed columns permitted to be absent from a given
	// extract (duplicate-suffixed SQL columns vary across exports).
	Optional []string `yaml:"optional"`
}

// DefaultPolicy returns the reviewed column policy for the MetLife pipeline.
func DefaultPolicy() ColumnPolicy {
	return ColumnPolicy{
		Carrier: "MetLife",
		HTMLSuperseded: []string{
			model.ColLifetimeRemainingOut,
			model.ColLifetimeRemainingIn,
			model.ColLifetimeMaxOut,
			model.ColLifetimeMaxIn,
			model.ColLifetimeUsedOut,
			model.ColLifetimeUsedIn,
			model.ColCoInsOut,
			model.ColCoInsIn,
			model.ColCarrierNameHTML,
			model.ColCoverageType,
			model.ColProviderAddress,
			model.ColProviderID,
			model.ColProviderName,
			model.ColProviderTaxID,
			model.ColSubscriberMemberID,
			model.ColSubscriberPatientName,
			model.ColTransactionID,
		},
		NoSignal: []string{
			"InitialPaymentPercent",
			model.ColOrthoBenefitUsed,
			"PlanPriority",
			"IsMinMaxDependentsOnly",
			"IsActive",
			"IsActive.1",
			model.ColIsInNetwork,
			"PracticeOverriddenBenefit",
			"IsTerminated",
			"TotalNumberOfAdjustments",
			"TotalAdjustmentValue",
			"BenefitPaidToDate",
			"CurrentEstimatedAr",
			"SystemCalculatedBenefit",
			model.ColSubscriberAddress2,
			"SubscriberMiddleInitial",
			"SubscriberPhonePrimary",
			"SubscriberPhoneSecondary",
			model.ColSubscriberSex,
			"SubscriberSuffix",
			"DeductibleOrthoLifetimeMax",
			"ClaimStatus",
			"HowManyElecChecks",
			"AgeLimit",
		},
		IDAllow: []string{
			"InsurancePlanPriorityId",
			"PayerId",
			model.ColPatientDOB,
			model.ColPolicyEligibilityID,
		},
		IDSuffixes: []string{"Id", "Id.1"},
		Datetime: []string{
			"CreatedOn",
			"CreatedOn.1",
			"EligibilityCheckRequestedOn",
			"EligibilityEndCheck",
			"EligibilityStartCheck",
			model.ColPlanBenefitsEnd,
			model.ColPlanBenefitsStart,
			model.ColPlanEffectiveStart,
			model.ColPlanEffectiveEnd,
			model.ColSubscriberDOB,
			"UpdatedOn",
			"UpdatedOn.1",
		},
		Categorical: []string{
			model.ColCoordOfBenefits,
			"RelationshipToSubscriber",
			model.ColStudentStatus,
			model.ColSubscriberState,
		},
		Optional: []string{
			"IsActive.1",
			"CreatedOn.1",
			"UpdatedOn.1",
			model.ColSubscriberAddress2,
			"SystemCalculatedBenefit",
			"HowManyElecChecks",
		},
	}
}

// LoadPolicy reads a column policy from a YAML file. Lets a reviewed policy
// revision ship alongside a data drop without a rebuild. An empty path
// returns the built-in default.
func LoadPolicy(path string) (ColumnPolicy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return ColumnPolicy{}, eris.Wrapf(err, "feature: read policy %s", path)
	}
	var p ColumnPolicy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return ColumnPolicy{}, eris.Wrapf(err, "feature: parse policy %s", path)
	}
	if p.Carrier == "" {
		return ColumnPolicy{}, eris.Errorf("feature: policy %s does not name a carrier", path)
	}
	return p, nil
}

// Validate checks every listed column against the table schema. Columns
// absent from the table are an error unless marked Optional.
func (p ColumnPolicy) Validate(t *frame.Table) error {
	optional := make(map[string]bool, len(p.Optional))
	for _, c := range p.Optional {
		optional[c] = true
	}

	var missing []string
	check := func(cols []string) {
		for _, c := range cols {
			if !t.HasColumn(c) && !optional[c] {
				missing = append(missing, c)
			}
		}
	}
	check(p.HTMLSuperseded)
	check(p.NoSignal)
	check(p.Datetime)
	// Categorical and IDAllow columns may legitimately be gone by the time
	// they matter (dropped as all-null); only the drop-lists are strict.

	if len(missing) > 0 {
		return eris.Errorf("feature: policy lists unknown columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// idSuffixed reports whether the column falls under the id-suffix drop rule.
func (p ColumnPolicy) idSuffixed(col string) bool {
	for _, allow := range p.IDAllow {
		if col == allow {
			return false
		}
	}
	for _, suffix := range p.IDSuffixes {
		if strings.HasSuffix(col, suffix) {
			return true
		}
	}
	return false
}

// isCategorical reports whether the column keeps its values for one-hot
// encoding.
func (p ColumnPolicy) isCategorical(col string) bool {
	for _, c := range p.Categorical {
		if col == c {
			return true
		}
	}
	return false
}
