package extract

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"

	"github.com/sells-group/eligibility-cli/internal/frame"
	"github.com/sells-group/eligibility-cli/internal/model"
)

// RuleKind selects how a Rule reads its value(s) out of a section.
type RuleKind int

const (
	// KindLabelValue anchors on a <th> containing Anchor and takes the text
	// of the next <td> sibling.
	KindLabelValue RuleKind = iota
	// KindAddressSplit parses the composite "City, State Zip" row that
	// follows the Address row. Outputs: city, state, zip, unparsed fallback.
	KindAddressSplit
	// KindCoverageList takes the section's first <td> with line breaks
	// normalized to a comma-separated list. Outputs: one field.
	KindCoverageList
	// KindDateTail anchors on a <td> containing Anchor and takes the last
	// whitespace-delimited token of that cell. Outputs: one field.
	KindDateTail
	// KindAmountTriplet anchors on a <td> containing Anchor, then reads the
	// anchored row and its next two sibling rows, each split into
	// in-network/out-of-network cells by class, with the leading currency
	// symbol stripped. Outputs: maxIn, maxOut, usedIn, usedOut, remIn, remOut.
	KindAmountTriplet
	// KindSentenceFlag emits "false" if the section contains a <td> with the
	// literal Anchor sentence, "true" otherwise. Outputs: one field.
	KindSentenceFlag
	// KindPercentPair anchors on a <td> containing Anchor and reads the
	// in-network/out-of-network percent cells of that row, converting each
	// to a fraction in [0,1]. Cells without a percent sign are skipped.
	// Outputs: in, out.
	KindPercentPair
)

// Rule extracts one or more fields from a section.
type Rule struct {
	Kind    RuleKind
	Anchor  string   // anchor text; meaning depends on Kind
	Steps   int      // sibling steps for KindLabelValue (default 1)
	Outputs []string // output field names, in the order the Kind defines
}

// Section is a named markup section identified by element id. Sections are
// optional: a missing section yields no fields, never an error.
type Section struct {
	ID    string
	Rules []Rule
}

// Schema describes one carrier's response layout.
type Schema struct {
	// Carrier is matched case-insensitively against the payer name.
	Carrier string
	// PayerSectionID anchors the whole document; a document without it is
	// discarded.
	PayerSectionID    string
	PayerNameAnchor   string
	TransactionAnchor string
	// Network cell classes for amount and percent rules.
	InNetworkClass  string
	OutNetworkClass string
	Sections        []Section
}

// Validate checks the schema's rule shapes so a malformed schema fails at
// startup instead of silently dropping fields mid-corpus.
func (s *Schema) Validate() error {
	if s.Carrier == "" || s.PayerSectionID == "" {
		return eris.New("extract: schema needs carrier and payer section id")
	}
	want := map[RuleKind]int{
		KindLabelValue:    1,
		KindAddressSplit:  4,
		KindCoverageList:  1,
		KindDateTail:      1,
		KindAmountTriplet: 6,
		KindSentenceFlag:  1,
		KindPercentPair:   2,
	}
	for _, sec := range s.Sections {
		if sec.ID == "" {
			return eris.New("extract: section without id")
		}
		for _, r := range sec.Rules {
			n, ok := want[r.Kind]
			if !ok {
				return eris.Errorf("extract: section %s has unknown rule kind %d", sec.ID, r.Kind)
			}
			if len(r.Outputs) != n {
				return eris.Errorf("extract: section %s rule %q wants %d outputs, has %d",
					sec.ID, r.Anchor, n, len(r.Outputs))
			}
		}
	}
	return nil
}

// applySection interprets every rule of a section against the section's
// subtree, merging extracted fields into rec.
func (s *Schema) applySection(root *html.Node, sec Section, rec model.Record) {
	secNode := findByID(root, sec.ID)

	for _, r := range sec.Rules {
		switch r.Kind {
		case KindSentenceFlag:
			// The flag distinguishes "section absent" (no field) from
			// "section present without the sentence" (true).
			if secNode == nil {
				continue
			}
			rec[r.Outputs[0]] = strconv.FormatBool(findElement(secNode, "td", r.Anchor) == nil)
		default:
			if secNode == nil {
				continue
			}
			s.applyRule(secNode, r, rec)
		}
	}
}

func (s *Schema) applyRule(sec *html.Node, r Rule, rec model.Record) {
	switch r.Kind {
	case KindLabelValue:
		steps := r.Steps
		if steps == 0 {
			steps = 1
		}
		if v, ok := anchorSiblingText(sec, "th", r.Anchor, "td", steps); ok {
			rec[r.Outputs[0]] = v
		}

	case KindAddressSplit:
		s.applyAddressSplit(sec, r, rec)

	case KindCoverageList:
		if td := findNode(sec, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "td"
		}); td != nil {
			rec[r.Outputs[0]] = nodeTextWithBreaks(td)
		}

	case KindDateTail:
		if elem := findElement(sec, "td", r.Anchor); elem != nil {
			tokens := strings.Split(nodeText(elem), " ")
			rec[r.Outputs[0]] = tokens[len(tokens)-1]
		}

	case KindAmountTriplet:
		anchor := findElement(sec, "td", r.Anchor)
		if anchor == nil {
			return
		}
		row := anchor.Parent
		for i := 0; i < 3 && row != nil; i++ {
			s.amountPair(row, rec, r.Outputs[2*i], r.Outputs[2*i+1])
			row = nextElemSibling(row, "tr", 1)
		}

	case KindPercentPair:
		anchor := findElement(sec, "td", r.Anchor)
		if anchor == nil || anchor.Parent == nil {
			return
		}
		s.percentCell(anchor.Parent, s.InNetworkClass, r.Outputs[0], rec)
		s.percentCell(anchor.Parent, s.OutNetworkClass, r.Outputs[1], rec)
	}
}

// applyAddressSplit parses the "City, State Zip" row following the Address
// label. State is accepted only as a 2-character token, zip only at 5+
// characters; any other token count lands in the unparsed fallback field.
func (s *Schema) applyAddressSplit(sec *html.Node, r Rule, rec model.Record) {
	cityField, stateField, zipField, fallbackField := r.Outputs[0], r.Outputs[1], r.Outputs[2], r.Outputs[3]

	anchor := findElement(sec, "th", r.Anchor)
	if anchor == nil || anchor.Parent == nil {
		return
	}
	row := nextElemSibling(anchor.Parent, "tr", 1)
	if row == nil {
		return
	}
	td := findNode(row, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "td"
	})
	if td == nil {
		return
	}

	parts := strings.SplitN(nodeText(td), ",", 2)
	rec[cityField] = parts[0]
	if len(parts) < 2 {
		return
	}

	tokens := []string{}
	for _, tok := range strings.Split(parts[1], " ") {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	if len(tokens) != 2 {
		if len(tokens) > 0 {
			rec[fallbackField] = strings.Join(tokens, " ")
		}
		return
	}
	if len(tokens[0]) == 2 {
		rec[stateField] = tokens[0]
	}
	if len(tokens[1]) >= 5 {
		rec[zipField] = tokens[1]
	}
}

// amountPair reads the in/out network cells of a row, stripping the leading
// currency symbol. Values are passed through raw beyond that; numeric
// coercion belongs to the feature stage.
func (s *Schema) amountPair(row *html.Node, rec model.Record, inField, outField string) {
	if cell := findWithClass(row, "td", s.InNetworkClass); cell != nil {
		if v := nodeText(cell); v != "" {
			rec[inField] = stripCurrency(v)
		}
	}
	if cell := findWithClass(row, "td", s.OutNetworkClass); cell != nil {
		if v := nodeText(cell); v != "" {
			rec[outField] = stripCurrency(v)
		}
	}
}

// stripCurrency drops the leading currency rune, which may be multi-byte
// ("£", "€").
func stripCurrency(v string) string {
	_, size := utf8.DecodeRuneInString(v)
	return v[size:]
}

// percentCell converts a "NN%" cell to a fraction. Cells without a percent
// sign carry no usable value and are skipped.
func (s *Schema) percentCell(row *html.Node, class, field string, rec model.Record) {
	cell := findWithClass(row, "td", class)
	if cell == nil {
		return
	}
	text := strings.TrimSpace(nodeText(cell))
	if !strings.Contains(text, "%") {
		return
	}
	pct, err := strconv.Atoi(strings.TrimSuffix(text, "%"))
	if err != nil {
		return
	}
	rec[field] = frame.Float(float64(pct) / 100).Str
}
