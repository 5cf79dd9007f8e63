// Package model defines the shared types passed between pipeline stages.
package model

import "strings"

// Document is one scraped eligibility response as delivered by the upstream
// REST export: the raw HTML body plus the two identifiers that key it back
// to the internal system.
type Document struct {
	PolicyEligibilityID int64  `json:"InsurancePolicyPatientEligibilityId"`
	AuditID             int64  `json:"InsuranceEligibilityAuditId"`
	HTMLResponse        string `json:"HtmlResponse"`
}

// HasError reports whether the scraped response contains the carrier portal's
// error banner. Such responses carry no usable eligibility data.
func (d Document) HasError() bool {
	return strings.Contains(d.HTMLResponse, "An Error Occurred")
}

// MentionsCarrier reports whether the raw HTML mentions the given carrier
// name anywhere, case-insensitively. Used as a cheap pre-filter before full
// parsing; the extractor re-checks the payer section properly.
func (d Document) MentionsCarrier(carrier string) bool {
	return strings.Contains(strings.ToLower(d.HTMLResponse), strings.ToLower(carrier))
}
