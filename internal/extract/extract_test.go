package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/eligibility-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const payerHTML = `
<table id="payerTable">
  <tr><th>Payer Name</th><td>MetLife</td></tr>
  <tr><th>Transaction ID</th><td>TXN-829</td></tr>
</table>`

func testDoc(body string) model.Document {
	return model.Document{
		PolicyEligibilityID: 101,
		AuditID:             7,
		HTMLResponse:        "<html><body>" + body + "</body></html>",
	}
}

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(MetLifeSchema())
	require.NoError(t, err)
	return e
}

func TestExtractSkipsDocumentWithoutPayerSection(t *testing.T) {
	rec, err := newExtractor(t).Extract(testDoc("<p>session expired</p>"))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestExtractSkipsOtherCarrier(t *testing.T) {
	body := `
<table id="payerTable">
  <tr><th>Payer Name</th><td>Delta Dental</td></tr>
  <tr><th>Transaction ID</th><td>TXN-1</td></tr>
</table>`
	rec, err := newExtractor(t).Extract(testDoc(body))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestExtractPayerOnly(t *testing.T) {
	rec, err := newExtractor(t).Extract(testDoc(payerHTML))
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "101", rec[model.ColPolicyEligibilityID])
	assert.Equal(t, "7", rec[model.ColAuditID])
	assert.Equal(t, "MetLife", rec[model.ColCarrierNameHTML])
	assert.Equal(t, "TXN-829", rec[model.ColTransactionID])

	// Absent sections leave their fields out entirely, including the
	// wait-period flag.
	_, ok := rec[model.ColWaitPeriod]
	assert.False(t, ok)
	_, ok = rec[model.ColProviderName]
	assert.False(t, ok)
}

func TestExtractFullDocument(t *testing.T) {
	body := payerHTML + `
<table id="providerTable">
  <tr><th>Provider</th><td>SMILE ORTHODONTICS</td></tr>
  <tr><th>Address</th><td>12 ELM ST</td></tr>
  <tr><th>Provider ID</th><td>PRV-44</td></tr>
  <tr><th>Tax ID</th><td>99-1234567</td></tr>
</table>
<table id="subscriberTable">
  <tr><th>Patient Name</th><td>JANE DOE</td></tr>
  <tr><th>Member ID</th><td>M123456</td></tr>
  <tr><th>SSN</th><td>&#160;</td></tr>
  <tr><th>Group Number</th><td>G-555</td></tr>
  <tr><th>Group Name</th><td>ACME CORP</td></tr>
  <tr><th>Date of Birth</th><td>06/15/1994</td></tr>
  <tr><th>Gender</th><td>F</td></tr>
  <tr><th>Address</th><td>34 OAK AVE</td></tr>
  <tr><td>Springfield, IL 62704</td></tr>
</table>
<table id="coveragesTable">
  <tr><td>Orthodontics<br/>Dental</td></tr>
</table>
<table id="coverageDatesTable">
  <tr><td>Policy Effective Date: 01/01/2023</td></tr>
  <tr><td>Policy Expiration Date: 12/31/2023</td></tr>
  <tr><td>Plan Begin Date: 01/01/2023</td></tr>
  <tr><td>Plan End Date: 12/31/2023</td></tr>
</table>
<table id="maximumsTable">
  <tr><td>Orthodontics Lifetime Maximum</td><td class="inNetwork">$1,500.00</td><td class="outNetwork">$1,000.00</td></tr>
  <tr><td>Amount Used</td><td class="inNetwork">$500.00</td><td class="outNetwork">$0.00</td></tr>
  <tr><td>Amount Remaining</td><td class="inNetwork">$1,000.00</td><td class="outNetwork">$1,000.00</td></tr>
</table>
<table id="planProvisionsTable">
  <tr><td>Waiting Period does not apply.</td></tr>
</table>
<table id="coInsuranceTable">
  <tr><td>Orthodontics</td><td class="inNetwork">50%</td><td class="outNetwork">40%</td></tr>
</table>`

	rec, err := newExtractor(t).Extract(testDoc(body))
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "SMILE ORTHODONTICS", rec[model.ColProviderName])
	assert.Equal(t, "12 ELM ST", rec[model.ColProviderAddress])
	assert.Equal(t, "PRV-44", rec[model.ColProviderID])
	assert.Equal(t, "99-1234567", rec[model.ColProviderTaxID])

	assert.Equal(t, "JANE DOE", rec[model.ColSubscriberPatientName])
	assert.Equal(t, "M123456", rec[model.ColSubscriberMemberID])
	assert.Equal(t, "G-555", rec[model.ColGroupNumber])
	assert.Equal(t, "ACME CORP", rec[model.ColGroupName])
	assert.Equal(t, "06/15/1994", rec[model.ColSubscriberDOB])
	assert.Equal(t, "34 OAK AVE", rec[model.ColSubscriberAddress])
	assert.Equal(t, "Springfield", rec[model.ColSubscriberCity])
	assert.Equal(t, "IL", rec[model.ColSubscriberState])
	assert.Equal(t, "62704", rec[model.ColSubscriberZip])

	// The blank SSN cell normalizes away instead of carrying a nbsp.
	_, ok := rec[model.ColSubscriberSSN]
	assert.False(t, ok)

	assert.Equal(t, "Orthodontics, Dental", rec[model.ColCoverageType])

	assert.Equal(t, "01/01/2023", rec[model.ColPlanEffectiveStart])
	assert.Equal(t, "12/31/2023", rec[model.ColPlanEffectiveEnd])
	assert.Equal(t, "01/01/2023", rec[model.ColPlanBenefitsStart])
	assert.Equal(t, "12/31/2023", rec[model.ColPlanBenefitsEnd])

	// Maximums come through with the currency symbol stripped but separators
	// intact; numeric coercion is the feature stage's job.
	assert.Equal(t, "1,500.00", rec[model.ColLifetimeMaxIn])
	assert.Equal(t, "1,000.00", rec[model.ColLifetimeMaxOut])
	assert.Equal(t, "500.00", rec[model.ColLifetimeUsedIn])
	assert.Equal(t, "0.00", rec[model.ColLifetimeUsedOut])
	assert.Equal(t, "1,000.00", rec[model.ColLifetimeRemainingIn])
	assert.Equal(t, "1,000.00", rec[model.ColLifetimeRemainingOut])

	assert.Equal(t, "false", rec[model.ColWaitPeriod], "sentence present means no waiting period")

	assert.Equal(t, "0.5", rec[model.ColCoInsIn])
	assert.Equal(t, "0.4", rec[model.ColCoInsOut])
}

func TestExtractMultiByteCurrencySymbol(t *testing.T) {
	body := payerHTML + `
<table id="maximumsTable">
  <tr><td>Orthodontics Lifetime Maximum</td><td class="inNetwork">£1,500.00</td><td class="outNetwork">€1,000.00</td></tr>
</table>`
	rec, err := newExtractor(t).Extract(testDoc(body))
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "1,500.00", rec[model.ColLifetimeMaxIn])
	assert.Equal(t, "1,000.00", rec[model.ColLifetimeMaxOut])
}

func TestExtractWaitPeriodApplies(t *testing.T) {
	body := payerHTML + `
<table id="planProvisionsTable">
  <tr><td>Benefits subject to a 12 month waiting period.</td></tr>
</table>`
	rec, err := newExtractor(t).Extract(testDoc(body))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "true", rec[model.ColWaitPeriod])
}

func TestExtractAddressFallback(t *testing.T) {
	body := payerHTML + `
<table id="subscriberTable">
  <tr><th>Address</th><td>34 OAK AVE</td></tr>
  <tr><td>Springfield, Illinois</td></tr>
</table>`
	rec, err := newExtractor(t).Extract(testDoc(body))
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "Springfield", rec[model.ColSubscriberCity])
	assert.Equal(t, "Illinois", rec[model.ColSubscriberAddress2], "unsplittable tail lands in the fallback field")
	_, ok := rec[model.ColSubscriberState]
	assert.False(t, ok)
	_, ok = rec[model.ColSubscriberZip]
	assert.False(t, ok)
}

func TestExtractPercentCellWithoutPercentSign(t *testing.T) {
	body := payerHTML + `
<table id="coInsuranceTable">
  <tr><td>Orthodontics</td><td class="inNetwork">50%</td><td class="outNetwork">N/A</td></tr>
</table>`
	rec, err := newExtractor(t).Extract(testDoc(body))
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, "0.5", rec[model.ColCoInsIn])
	_, ok := rec[model.ColCoInsOut]
	assert.False(t, ok)
}

func TestSchemaValidate(t *testing.T) {
	s := MetLifeSchema()
	require.NoError(t, s.Validate())

	s.Sections[0].Rules[0].Outputs = nil
	assert.Error(t, s.Validate(), "label rule needs exactly one output")

	s = MetLifeSchema()
	s.Carrier = ""
	assert.Error(t, s.Validate())

	s = MetLifeSchema()
	s.Sections[0].ID = ""
	assert.Error(t, s.Validate())
}
