package extract

import "github.com/sells-group/eligibility-cli/internal/model"

// MetLifeSchema describes the MetLife portal's eligibility-response layout.
// Section and class names are the portal's own markup ids; they are stable
// across the scraped corpus.
func MetLifeSchema() *Schema {
	return &Schema{
		Carrier:           "metlife",
		PayerSectionID:    "payerTable",
		PayerNameAnchor:   "Payer Name",
		TransactionAnchor: "Transaction ID",
		InNetworkClass:    "inNetwork",
		OutNetworkClass:   "outNetwork",
		Sections: []Section{
			{
				ID: "providerTable",
				Rules: []Rule{
					{Kind: KindLabelValue, Anchor: "Provider", Outputs: []string{model.ColProviderName}},
					{Kind: KindLabelValue, Anchor: "Address", Outputs: []string{model.ColProviderAddress}},
					{Kind: KindLabelValue, Anchor: "Provider ID", Outputs: []string{model.ColProviderID}},
					{Kind: KindLabelValue, Anchor: "Tax ID", Outputs: []string{model.ColProviderTaxID}},
				},
			},
			{
				ID: "subscriberTable",
				Rules: []Rule{
					{Kind: KindLabelValue, Anchor: "Patient Name", Outputs: []string{model.ColSubscriberPatientName}},
					{Kind: KindLabelValue, Anchor: "Member ID", Outputs: []string{model.ColSubscriberMemberID}},
					{Kind: KindLabelValue, Anchor: "SSN", Outputs: []string{model.ColSubscriberSSN}},
					{Kind: KindLabelValue, Anchor: "Group Number", Outputs: []string{model.ColGroupNumber}},
					{Kind: KindLabelValue, Anchor: "Group Name", Outputs: []string{model.ColGroupName}},
					{Kind: KindLabelValue, Anchor: "Date of Birth", Outputs: []string{model.ColSubscriberDOB}},
					{Kind: KindLabelValue, Anchor: "Gender", Outputs: []string{model.ColSubscriberSex}},
					{Kind: KindLabelValue, Anchor: "Address", Outputs: []string{model.ColSubscriberAddress}},
					{Kind: KindAddressSplit, Anchor: "Address", Outputs: []string{
						model.ColSubscriberCity,
						model.ColSubscriberState,
						model.ColSubscriberZip,
						model.ColSubscriberAddress2,
					}},
				},
			},
			{
				ID: "coveragesTable",
				Rules: []Rule{
					{Kind: KindCoverageList, Outputs: []string{model.ColCoverageType}},
				},
			},
			{
				ID: "coverageDatesTable",
				Rules: []Rule{
					{Kind: KindDateTail, Anchor: "Policy Effective", Outputs: []string{model.ColPlanEffectiveStart}},
					{Kind: KindDateTail, Anchor: "Policy Expiration", Outputs: []string{model.ColPlanEffectiveEnd}},
					{Kind: KindDateTail, Anchor: "Plan Begin Date", Outputs: []string{model.ColPlanBenefitsStart}},
					{Kind: KindDateTail, Anchor: "Plan End", Outputs: []string{model.ColPlanBenefitsEnd}},
				},
			},
			{
				ID: "maximumsTable",
				Rules: []Rule{
					// Orthodontics row is lifetime max; the two rows beneath
					// it are used and remaining, in that order.
					{Kind: KindAmountTriplet, Anchor: "Orthodontics", Outputs: []string{
						model.ColLifetimeMaxIn, model.ColLifetimeMaxOut,
						model.ColLifetimeUsedIn, model.ColLifetimeUsedOut,
						model.ColLifetimeRemainingIn, model.ColLifetimeRemainingOut,
					}},
				},
			},
			{
				ID: "planProvisionsTable",
				Rules: []Rule{
					{Kind: KindSentenceFlag, Anchor: "Waiting Period does not apply.", Outputs: []string{model.ColWaitPeriod}},
				},
			},
			{
				ID: "coInsuranceTable",
				Rules: []Rule{
					{Kind: KindPercentPair, Anchor: "Orthodontics", Outputs: []string{
						model.ColCoInsIn, model.ColCoInsOut,
					}},
				},
			},
		},
	}
}
