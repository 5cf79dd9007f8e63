package extract

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/sells-group/eligibility-cli/internal/model"
)

// Extractor applies one carrier schema to scraped documents.
type Extractor struct {
	schema *Schema
	log    *zap.Logger
}

// New creates an Extractor for the given schema.
func New(schema *Schema) (*Extractor, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{schema: schema, log: zap.L()}, nil
}

// Extract parses one document into a flat record.
//
// A nil record with nil error means the document was soft-skipped: either it
// has no payer section (malformed scrape, logged with its id) or the payer
// is a different carrier. Missing optional sections just leave their fields
// absent; partial records are valid output.
func (e *Extractor) Extract(doc model.Document) (model.Record, error) {
	root, err := html.Parse(strings.NewReader(doc.HTMLResponse))
	if err != nil {
		return nil, eris.Wrapf(err, "extract: parse html for id %d", doc.PolicyEligibilityID)
	}

	payer := findByID(root, e.schema.PayerSectionID)
	if payer == nil {
		e.log.Warn("extract: document has no payer section",
			zap.Int64("policy_eligibility_id", doc.PolicyEligibilityID),
			zap.Int64("audit_id", doc.AuditID),
		)
		return nil, nil
	}

	rec := model.Record{}
	if doc.PolicyEligibilityID != 0 {
		rec[model.ColPolicyEligibilityID] = strconv.FormatInt(doc.PolicyEligibilityID, 10)
	}
	if doc.AuditID != 0 {
		rec[model.ColAuditID] = strconv.FormatInt(doc.AuditID, 10)
	}

	if v, ok := anchorSiblingText(payer, "th", e.schema.PayerNameAnchor, "td", 1); ok {
		rec[model.ColCarrierNameHTML] = v
	}
	if v, ok := anchorSiblingText(payer, "th", e.schema.TransactionAnchor, "td", 1); ok {
		rec[model.ColTransactionID] = v
	}

	// This extractor understands exactly one carrier's layout; responses
	// from other carriers need their own schema.
	if !strings.Contains(strings.ToLower(rec[model.ColCarrierNameHTML]), strings.ToLower(e.schema.Carrier)) {
		return nil, nil
	}

	for _, sec := range e.schema.Sections {
		e.schema.applySection(root, sec, rec)
	}

	normalizeBlanks(rec)
	return rec, nil
}

// normalizeBlanks drops fields whose value is the portal's blank rendering
// (non-breaking space) or empty after trimming.
func normalizeBlanks(rec model.Record) {
	for k, v := range rec {
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, " ", " "))
		if cleaned == "" {
			delete(rec, k)
		}
	}
}
