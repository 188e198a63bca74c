package hoshin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validDocument returns a document that passes draft validation, with every
// connection pointing from the lower slot to the higher one.
func validDocument() Document {
	doc := NewDocument("")
	doc.Statements = []Statement{
		{ID: S1, Text: "I/We must establish weekly planning rituals", InitialOrder: IntPtr(1)},
		{ID: S2, Text: "I/We must define measurable revenue goals", InitialOrder: IntPtr(2)},
		{ID: S3, Text: "I/We must improve cross-team communication cadence", InitialOrder: IntPtr(3)},
		{ID: S4, Text: "I/We must automate repetitive reporting tasks", InitialOrder: IntPtr(4)},
		{ID: S5, Text: "I/We must reduce blocked dependency handoffs", InitialOrder: IntPtr(5)},
	}
	for i := range doc.Connections {
		p := doc.Connections[i].Pair
		doc.Connections[i].Direction = &Direction{From: p[0], To: p[1]}
	}
	return doc
}

// wizardReadyDocument has valid statements but no directions.
func wizardReadyDocument() Document {
	doc := validDocument()
	for i := range doc.Connections {
		doc.Connections[i].Direction = nil
	}
	return doc
}

func issueCodes(r ValidationResult) []string {
	codes := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		codes = append(codes, i.Code)
	}
	return codes
}

func TestValidateDraft_AcceptsValidDocument(t *testing.T) {
	r := ValidateDraft(validDocument())
	assert.True(t, r.IsValid)
	assert.Empty(t, r.Issues)
	assert.NotNil(t, r.Issues, "issues should be an empty list, not nil")
}

func TestValidateDraft_SingleRuleViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
		codes  []string
	}{
		{
			name:   "wrong prefix",
			mutate: func(d *Document) { d.Statements[0].Text = "We should establish weekly planning rituals" },
			codes:  []string{CodeStatementPrefix, CodeStatementWordCount},
		},
		{
			name:   "too few words",
			mutate: func(d *Document) { d.Statements[0].Text = "I/We must do this" },
			codes:  []string{CodeStatementWordCount},
		},
		{
			name:   "too many words",
			mutate: func(d *Document) { d.Statements[0].Text = "I must one two three four five six seven eight" },
			codes:  []string{CodeStatementWordCount},
		},
		{
			name:   "prefix only",
			mutate: func(d *Document) { d.Statements[1].Text = "I/We must" },
			codes:  []string{CodeStatementWordCount},
		},
		{
			name:   "order out of range",
			mutate: func(d *Document) { d.Statements[2].InitialOrder = IntPtr(7) },
			codes:  []string{CodeInitialOrderInvalid, CodeInitialOrderCoverage},
		},
		{
			name:   "order missing",
			mutate: func(d *Document) { d.Statements[2].InitialOrder = nil },
			codes:  []string{CodeInitialOrderInvalid, CodeInitialOrderCoverage},
		},
		{
			name:   "duplicate order",
			mutate: func(d *Document) { d.Statements[4].InitialOrder = IntPtr(1) },
			codes:  []string{CodeInitialOrderDuplicate, CodeInitialOrderCoverage},
		},
		{
			name:   "missing direction",
			mutate: func(d *Document) { d.Connections[0].Direction = nil },
			codes:  []string{CodeDirectionMissing},
		},
		{
			name:   "direction off the pair",
			mutate: func(d *Document) { d.Connections[0].Direction = &Direction{From: S3, To: S4} },
			codes:  []string{CodeDirectionInvalid},
		},
		{
			name:   "unknown pair id",
			mutate: func(d *Document) { d.Connections[0].ID = "s1-s1" },
			codes:  []string{CodeConnectionPair, CodePairMissing},
		},
		{
			name:   "stored pair disagrees with id",
			mutate: func(d *Document) { d.Connections[0].Pair = Pair{S1, S3} },
			codes:  []string{CodeConnectionPair},
		},
		{
			name:   "nine connections",
			mutate: func(d *Document) { d.Connections = d.Connections[:9] },
			codes:  []string{CodeConnectionCount, CodePairMissing},
		},
		{
			name: "duplicate slot masks an omission",
			mutate: func(d *Document) {
				d.Statements[0] = Statement{ID: S2, Text: "I/We must align cross-team planning outcomes", InitialOrder: IntPtr(1)}
			},
			codes: []string{CodeStatementIDMissing},
		},
		{
			name:   "four statements",
			mutate: func(d *Document) { d.Statements = d.Statements[:4] },
			codes:  []string{CodeStatementCount, CodeInitialOrderCoverage, CodeStatementIDMissing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(&doc)
			r := ValidateDraft(doc)
			assert.False(t, r.IsValid)
			assert.ElementsMatch(t, tt.codes, uniqueCodes(issueCodes(r)))
		})
	}
}

func uniqueCodes(codes []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func TestValidateDraft_AcceptedPrefixes(t *testing.T) {
	for _, text := range []string{
		"We must establish weekly planning rituals today",
		"we must define measurable revenue goals now",
		"I must ship the onboarding revamp",
		"i/we MUST ship the onboarding revamp",
		"   I/We must trim surrounding whitespace please   ",
	} {
		doc := validDocument()
		doc.Statements[0].Text = text
		assert.True(t, ValidateDraft(doc).IsValid, text)
	}
}

func TestValidateDraft_PrefixNeedsWordBoundary(t *testing.T) {
	doc := validDocument()
	doc.Statements[0].Text = "We mustard the planning rituals"
	assert.Contains(t, issueCodes(ValidateDraft(doc)), CodeStatementPrefix)
}

func TestValidateDraft_IssueOrderIsDeterministic(t *testing.T) {
	doc := validDocument()
	// Shuffle statements; checks still run in slot order.
	doc.Statements[0], doc.Statements[3] = doc.Statements[3], doc.Statements[0]
	doc.Statements[0].Text = "nope"    // s4
	doc.Statements[3].Text = "nope"    // s1
	doc.Connections[9].Direction = nil // s4-s5
	doc.Connections[2].Direction = nil // s1-s4

	r := ValidateDraft(doc)
	require.Len(t, r.Issues, 6)
	paths := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		paths = append(paths, i.Path)
	}
	assert.Equal(t, []string{"Card S1", "Card S1", "Card S4", "Card S4", "Link S1-S4", "Link S4-S5"}, paths)
	assert.Equal(t, r, ValidateDraft(doc))
}

func TestValidateDraft_MissingPairPath(t *testing.T) {
	doc := validDocument()
	doc.Connections = doc.Connections[1:]
	r := ValidateDraft(doc)
	var missing []ValidationIssue
	for _, i := range r.Issues {
		if i.Code == CodePairMissing {
			missing = append(missing, i)
		}
	}
	require.Len(t, missing, 1)
	assert.Equal(t, "Link S1-S2", missing[0].Path)
	assert.Equal(t, "Missing fixed connection pair: s1-s2.", missing[0].Message)
}

func TestCanCalculate(t *testing.T) {
	valid := validDocument()
	invalid := validDocument()
	invalid.Connections[0].Direction = nil
	assert.True(t, CanCalculate(valid))
	assert.False(t, CanCalculate(invalid))
}

func TestValidateWizardReady(t *testing.T) {
	t.Run("no directions required", func(t *testing.T) {
		doc := wizardReadyDocument()
		r := ValidateWizardReady(doc)
		assert.True(t, r.IsValid)
		assert.Empty(t, r.Issues)
		assert.True(t, CanRunWizard(doc))
		assert.False(t, CanCalculate(doc))
	})

	t.Run("calculation-ready documents also pass", func(t *testing.T) {
		assert.True(t, CanRunWizard(validDocument()))
	})

	t.Run("statement count", func(t *testing.T) {
		doc := wizardReadyDocument()
		doc.Statements = doc.Statements[:4]
		assert.Contains(t, issueCodes(ValidateWizardReady(doc)), CodeStatementCount)
		assert.False(t, CanRunWizard(doc))
	})

	t.Run("prefix", func(t *testing.T) {
		doc := wizardReadyDocument()
		doc.Statements[0].Text = "We should establish weekly planning rituals"
		assert.Contains(t, issueCodes(ValidateWizardReady(doc)), CodeStatementPrefix)
	})

	t.Run("orders", func(t *testing.T) {
		doc := wizardReadyDocument()
		doc.Statements[0].InitialOrder = nil
		assert.False(t, CanRunWizard(doc))
		doc.Statements[0].InitialOrder = IntPtr(1)
		doc.Statements[1].InitialOrder = IntPtr(1)
		assert.False(t, CanRunWizard(doc))
	})

	t.Run("fresh document fails on statements only", func(t *testing.T) {
		r := ValidateWizardReady(NewDocument("x"))
		for _, code := range issueCodes(r) {
			assert.NotContains(t, []string{CodeDirectionMissing, CodeConnectionCount, CodePairMissing}, code)
		}
	})
}

func TestAdditionalWordCount(t *testing.T) {
	assert.Equal(t, -1, additionalWordCount("no prefix here"))
	assert.Equal(t, 0, additionalWordCount("I must"))
	assert.Equal(t, 3, additionalWordCount("I must ship it now"))
	assert.Equal(t, 3, additionalWordCount("We must re-plan team's work!!"))
}
