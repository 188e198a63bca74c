package hoshin

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Issue codes reported by the validator.
const (
	CodeStatementCount        = "statement-count-invalid"
	CodeStatementPrefix       = "statement-prefix-invalid"
	CodeStatementWordCount    = "statement-word-count-invalid"
	CodeInitialOrderInvalid   = "initial-order-invalid"
	CodeInitialOrderDuplicate = "initial-order-duplicate"
	CodeInitialOrderCoverage  = "initial-order-coverage-invalid"
	CodeConnectionCount       = "connection-count-invalid"
	CodeConnectionPair        = "connection-pair-invalid"
	CodeDirectionMissing      = "connection-direction-missing"
	CodeDirectionInvalid      = "connection-direction-invalid"
	CodePairMissing           = "connection-pair-missing"
	CodeStatementIDMissing    = "statement-id-missing"
)

const (
	requiredPrefixLabel = "I/We must"
	minAdditionalWords  = 3
	maxAdditionalWords  = 7
)

var (
	requiredPrefixPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^i/we must\b`),
		regexp.MustCompile(`(?i)^i must\b`),
		regexp.MustCompile(`(?i)^we must\b`),
	}
	wordRegex = regexp.MustCompile(`[A-Za-z0-9'-]+`)
)

// policy selects which rule groups run.
type policy struct {
	connections bool
}

var (
	draftPolicy  = policy{connections: true}
	wizardPolicy = policy{connections: false}
)

// ValidateDraft runs every rule. Ranking and export require a valid result.
func ValidateDraft(doc Document) ValidationResult {
	return validate(doc, draftPolicy)
}

// ValidateForCalculation is the gate used by ranking and export.
func ValidateForCalculation(doc Document) ValidationResult {
	return ValidateDraft(doc)
}

// ValidateWizardReady runs the statement and order rules only. A document
// whose directions are all unset passes.
func ValidateWizardReady(doc Document) ValidationResult {
	return validate(doc, wizardPolicy)
}

// CanCalculate reports whether a ranking can be computed.
func CanCalculate(doc Document) bool {
	return ValidateForCalculation(doc).IsValid
}

// CanRunWizard reports whether the pairwise wizard may start.
func CanRunWizard(doc Document) bool {
	return ValidateWizardReady(doc).IsValid
}

func validate(doc Document, p policy) ValidationResult {
	var issues []ValidationIssue
	add := func(code, message, path string) {
		issues = append(issues, ValidationIssue{Code: code, Message: message, Path: path})
	}

	if len(doc.Statements) != len(StatementIDs) {
		add(CodeStatementCount, "A Hoshin MUST contain exactly five statements.", "Statements")
	}

	seenOrders := make(map[int]bool, len(StatementIDs))
	for _, s := range inSlotOrder(doc.Statements) {
		path := statementPath(s.ID)
		trimmed := strings.TrimSpace(s.Text)
		if _, ok := suffixAfterPrefix(trimmed); !ok {
			add(CodeStatementPrefix,
				fmt.Sprintf("Each statement MUST begin with '%s', 'I must', or 'We must'.", requiredPrefixLabel),
				path)
		}
		if n := additionalWordCount(trimmed); n < minAdditionalWords || n > maxAdditionalWords {
			add(CodeStatementWordCount,
				fmt.Sprintf("Each statement MUST include %d-%d additional words after '%s'.",
					minAdditionalWords, maxAdditionalWords, requiredPrefixLabel),
				path)
		}

		switch {
		case s.InitialOrder == nil || *s.InitialOrder < 1 || *s.InitialOrder > 5:
			add(CodeInitialOrderInvalid, "Each statement MUST include an initial order value from 1 to 5.", path)
		case seenOrders[*s.InitialOrder]:
			add(CodeInitialOrderDuplicate, "Initial order values MUST be unique from 1 to 5.", path)
		default:
			seenOrders[*s.InitialOrder] = true
		}
	}

	if len(seenOrders) != len(StatementIDs) {
		add(CodeInitialOrderCoverage, "Initial order values MUST cover all 1 through 5 exactly once.", "Order")
	}

	if p.connections {
		if len(doc.Connections) != len(FixedPairs) {
			add(CodeConnectionCount, "The Hoshin template MUST include all ten fixed connections.", "Links")
		}

		for _, c := range doc.Connections {
			path := connectionPath(c.ID)
			endpoints, canonical := endpointsFor(c)
			if !canonical {
				add(CodeConnectionPair, "Connection pair is not part of the fixed Hoshin template.", path)
			}
			if c.Direction == nil {
				add(CodeDirectionMissing, "All fixed connection lines MUST have a selected direction.", path)
				continue
			}
			forward := c.Direction.From == endpoints[0] && c.Direction.To == endpoints[1]
			reverse := c.Direction.From == endpoints[1] && c.Direction.To == endpoints[0]
			if !forward && !reverse {
				add(CodeDirectionInvalid, "Direction MUST point between the two statements in the connection pair.", path)
			}
		}

		present := make(map[ConnectionPairID]bool, len(doc.Connections))
		for _, c := range doc.Connections {
			present[c.ID] = true
		}
		for _, fp := range FixedPairs {
			if !present[fp.ID()] {
				add(CodePairMissing, fmt.Sprintf("Missing fixed connection pair: %s.", fp.ID()), connectionPath(fp.ID()))
			}
		}

		slots := make(map[StatementID]bool, len(doc.Statements))
		for _, s := range doc.Statements {
			slots[s.ID] = true
		}
		for _, id := range StatementIDs {
			if !slots[id] {
				add(CodeStatementIDMissing, fmt.Sprintf("Missing fixed statement slot: %s.", id), statementPath(id))
			}
		}
	}

	if issues == nil {
		issues = []ValidationIssue{}
	}
	return ValidationResult{IsValid: len(issues) == 0, Issues: issues}
}

// endpointsFor returns the two slots a direction must connect. The canonical
// id is authoritative; the stored pair is only used when the id is not one
// of the fixed pairs. canonical is false when the id is unknown or the
// stored pair disagrees with it.
func endpointsFor(c Connection) (Pair, bool) {
	if !IsFixedPairID(c.ID) {
		return c.Pair, false
	}
	a, b, _ := ParseConnectionPairID(c.ID)
	return Pair{a, b}, ToConnectionPairID(c.Pair[0], c.Pair[1]) == c.ID
}

// inSlotOrder returns the statements sorted by slot. Unknown ids keep their
// relative order after the known slots.
func inSlotOrder(statements []Statement) []Statement {
	out := make([]Statement, len(statements))
	copy(out, statements)
	sort.SliceStable(out, func(i, j int) bool {
		return slotIndex(out[i].ID) < slotIndex(out[j].ID)
	})
	return out
}

func slotIndex(id StatementID) int {
	for i, s := range StatementIDs {
		if s == id {
			return i
		}
	}
	return len(StatementIDs)
}

// suffixAfterPrefix strips a recognised prefix. ok is false when the text
// has none.
func suffixAfterPrefix(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	for _, re := range requiredPrefixPatterns {
		if loc := re.FindStringIndex(trimmed); loc != nil {
			return strings.TrimSpace(trimmed[loc[1]:]), true
		}
	}
	return "", false
}

// additionalWordCount counts words after the prefix, or -1 without one.
func additionalWordCount(text string) int {
	suffix, ok := suffixAfterPrefix(text)
	if !ok {
		return -1
	}
	if suffix == "" {
		return 0
	}
	return len(wordRegex.FindAllString(suffix, -1))
}

func statementPath(id StatementID) string {
	return "Card " + strings.ToUpper(string(id))
}

func connectionPath(id ConnectionPairID) string {
	a, b, err := ParseConnectionPairID(id)
	if err != nil {
		return "Link " + strings.ToUpper(string(id))
	}
	return "Link " + strings.ToUpper(string(a)) + "-" + strings.ToUpper(string(b))
}
