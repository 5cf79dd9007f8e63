package model

// Record is the flat output of the HTML extractor: field name to raw value.
// Field presence is conditional on which markup sections existed in the
// source document, so partial records are normal. Values stay as the raw
// strings found in the markup except where a rule computes one (co-insurance
// fractions, the wait-period boolean); type coercion happens downstream in
// the feature stage.
type Record map[string]string

// Column names shared between the extractor output, the reference extract,
// and the feature builder. These are the wire contract of the CSV
// checkpoints, so they keep the upstream system's exact spelling.
const (
	ColPolicyEligibilityID = "InsurancePolicyPatientEligibilityId"
	ColAuditID             = "InsuranceEligibilityAuditId"

	ColCarrierNameHTML = "CarrierName_HTML"
	ColCarrierName     = "CarrierName"
	ColTransactionID   = "TransactionId"

	ColProviderName    = "ProviderName"
	ColProviderAddress = "ProviderAddress"
	ColProviderID      = "ProviderId"
	ColProviderTaxID   = "ProviderTaxId"

	ColSubscriberPatientName = "SubscriberPatientName"
	ColSubscriberMemberID    = "SubscriberMemberId"
	ColSubscriberSSN         = "SubscriberSSN"
	ColGroupNumber           = "GroupNumber"
	ColGroupName             = "GroupName"
	ColSubscriberDOB         = "SubscriberDOB"
	ColSubscriberSex         = "SubscriberSex"
	ColSubscriberAddress     = "SubscriberAddress"
	ColSubscriberCity        = "SubscriberCity"
	ColSubscriberState       = "SubscriberState"
	ColSubscriberZip         = "SubscriberZip"
	ColSubscriberAddress2    = "SubscriberAddress2"

	ColCoverageType = "CoverageType"

	ColPlanEffectiveStart = "SubscriberPlanEffectiveDateStart"
	ColPlanEffectiveEnd   = "SubscriberPlanEffectiveDateEnd"
	ColPlanBenefitsStart  = "PlanBenefitsStart"
	ColPlanBenefitsEnd    = "PlanBenefitsEnd"

	ColLifetimeMaxIn        = "LifetimeMax_InNetwork"
	ColLifetimeMaxOut       = "LifetimeMax_OutNetwork"
	ColLifetimeUsedIn       = "LifetimeUsed_InNetwork"
	ColLifetimeUsedOut      = "LifetimeUsed_OutNetwork"
	ColLifetimeRemainingIn  = "LifetimeRemaining_InNetwork"
	ColLifetimeRemainingOut = "LifetimeRemaining_OutNetwork"

	ColWaitPeriod = "WaitPeriod"
	ColCoInsIn    = "CoIns_InNetwork"
	ColCoInsOut   = "CoIns_OutNetwork"
)

// Derived columns added by the feature builder.
const (
	ColLifetimeMaxValue       = "LifeTimeMaxValue"
	ColLifetimeRemainingValue = "LifeTimeRemainingValue"
	ColOrthoBenefitUsed       = "OrthoBenefitUsedLifetime"
	ColCoIns                  = "CoIns"
	ColPatientAge             = "PatientAge"
	ColExclusion              = "Exclusion"
	ColLabel                  = "EligibilityMatch"
)

// Reference-extract columns consumed by the exclusion predicate and label.
const (
	ColIsInNetwork       = "IsInNetwork"
	ColPatientDOB        = "PatientDateOfBirth"
	ColStudentStatus     = "StudentStatus"
	ColIsPreAuthRequired = "IsPreAuthRequired"
	ColAgeMax            = "AgeMax"
	ColAgeMaxStudent     = "AgeMaxStudent"
	ColLifetimeMaxRef    = "LifetimeMax"
	ColLifetimeRemRef    = "LifetimeRemaining"
	ColCoordOfBenefits   = "CoordinationOfBenefits"
)

// ExtractColumns is the column order of the extracted-table CSV checkpoint.
var ExtractColumns = []string{
	ColPolicyEligibilityID,
	ColAuditID,
	ColCarrierNameHTML,
	ColTransactionID,
	ColProviderName,
	ColProviderAddress,
	ColProviderID,
	ColProviderTaxID,
	ColSubscriberPatientName,
	ColSubscriberMemberID,
	ColSubscriberSSN,
	ColGroupNumber,
	ColGroupName,
	ColSubscriberDOB,
	ColSubscriberSex,
	ColSubscriberAddress,
	ColSubscriberCity,
	ColSubscriberState,
	ColSubscriberZip,
	ColSubscriberAddress2,
	ColCoverageType,
	ColPlanEffectiveStart,
	ColPlanEffectiveEnd,
	ColPlanBenefitsStart,
	ColPlanBenefitsEnd,
	ColLifetimeMaxIn,
	ColLifetimeMaxOut,
	ColLifetimeUsedIn,
	ColLifetimeUsedOut,
	ColLifetimeRemainingIn,
	ColLifetimeRemainingOut,
	ColWaitPeriod,
	ColCoInsIn,
	ColCoInsOut,
}
