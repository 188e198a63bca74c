package hoshin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seededDocument makes s3 the strongest driver; other pairs point from the
// lower slot to the higher one.
func seededDocument() Document {
	doc := NewDocument("seeded")
	doc.Statements = []Statement{
		{ID: S1, Text: "I/We must align teams on quarterly objectives", InitialOrder: IntPtr(3)},
		{ID: S2, Text: "I/We must publish a weekly decision digest", InitialOrder: IntPtr(4)},
		{ID: S3, Text: "I/We must enforce dependency handoff standards", InitialOrder: IntPtr(1)},
		{ID: S4, Text: "I/We must automate core sales qualification steps", InitialOrder: IntPtr(2)},
		{ID: S5, Text: "I/We must reduce queue time in customer support", InitialOrder: IntPtr(5)},
	}
	for i := range doc.Connections {
		p := doc.Connections[i].Pair
		if p.Contains(S3) {
			doc.Connections[i].Direction = &Direction{From: S3, To: p.Other(S3)}
		} else {
			doc.Connections[i].Direction = &Direction{From: p[0], To: p[1]}
		}
	}
	return doc
}

// tie sets every direction so that driver and driven both have exactly one
// arrow out and driver points directly at driven. No other statement shares
// their out-degree.
func tie(doc Document, driver, driven StatementID) Document {
	dirs := map[ConnectionPairID]Direction{
		ToConnectionPairID(driver, driven): {From: driver, To: driven},
		ToConnectionPairID(driven, S4):     {From: driven, To: S4},
		ToConnectionPairID(S3, driver):     {From: S3, To: driver},
		ToConnectionPairID(S3, driven):     {From: S3, To: driven},
		ToConnectionPairID(S4, driver):     {From: S4, To: driver},
		ToConnectionPairID(S5, driver):     {From: S5, To: driver},
		ToConnectionPairID(S5, driven):     {From: S5, To: driven},
		"s3-s4":                            {From: S3, To: S4},
		"s3-s5":                            {From: S3, To: S5},
		"s4-s5":                            {From: S4, To: S5},
	}
	for i := range doc.Connections {
		d := dirs[doc.Connections[i].ID]
		doc.Connections[i].Direction = &d
	}
	return doc
}

func rankOf(t *testing.T, r *RankingResult, id StatementID) int {
	t.Helper()
	for _, row := range r.Ranking {
		if row.StatementID == id {
			return row.Rank
		}
	}
	t.Fatalf("statement %s not ranked", id)
	return 0
}

func TestCalculateRanking_ArrowsOut(t *testing.T) {
	r, err := CalculateRanking(seededDocument())
	require.NoError(t, err)
	assert.Equal(t, map[StatementID]int{S1: 3, S2: 2, S3: 4, S4: 1, S5: 0}, r.ArrowsOutByStatement)
}

func TestCalculateRanking_HighestArrowsOutFirst(t *testing.T) {
	r, err := CalculateRanking(seededDocument())
	require.NoError(t, err)
	require.Len(t, r.Ranking, 5)
	assert.Equal(t, S3, r.Ranking[0].StatementID)
	assert.Equal(t, S3, r.FocusTopTwo[0])
	assert.Equal(t, S1, r.FocusTopTwo[1])
	for i, row := range r.Ranking {
		assert.Equal(t, i+1, row.Rank)
	}
}

func TestCalculateRanking_DirectDriverTieBreak(t *testing.T) {
	// The driven statement always has the smaller initial order, so only the
	// direct edge can put the driver first.
	doc := seededDocument()
	doc.Statements[0].InitialOrder = IntPtr(4)
	doc.Statements[1].InitialOrder = IntPtr(3)
	forward, err := CalculateRanking(tie(doc, S1, S2))
	require.NoError(t, err)
	require.Equal(t, 1, forward.ArrowsOutByStatement[S1])
	require.Equal(t, 1, forward.ArrowsOutByStatement[S2])
	assert.Less(t, rankOf(t, forward, S1), rankOf(t, forward, S2))

	reverse, err := CalculateRanking(tie(seededDocument(), S2, S1))
	require.NoError(t, err)
	require.Equal(t, 1, reverse.ArrowsOutByStatement[S1])
	require.Equal(t, 1, reverse.ArrowsOutByStatement[S2])
	assert.Less(t, rankOf(t, reverse, S2), rankOf(t, reverse, S1))
}

func TestCalculateRanking_InitialOrderTieBreak(t *testing.T) {
	doc := validDocument()
	doc.Statements[0].InitialOrder = IntPtr(3)
	doc.Statements[1].InitialOrder = IntPtr(1)
	doc.Statements[2].InitialOrder = IntPtr(4)
	doc.Statements[3].InitialOrder = IntPtr(2)
	doc.Statements[4].InitialOrder = IntPtr(5)
	dirs := map[ConnectionPairID]Direction{
		"s1-s2": {From: S1, To: S2}, "s1-s3": {From: S3, To: S1}, "s1-s4": {From: S1, To: S4},
		"s1-s5": {From: S5, To: S1}, "s2-s3": {From: S2, To: S3}, "s2-s4": {From: S4, To: S2},
		"s2-s5": {From: S5, To: S2}, "s3-s4": {From: S3, To: S4}, "s3-s5": {From: S5, To: S3},
		"s4-s5": {From: S4, To: S5},
	}
	for i := range doc.Connections {
		d := dirs[doc.Connections[i].ID]
		doc.Connections[i].Direction = &d
	}

	r, err := CalculateRanking(doc)
	require.NoError(t, err)
	// s5 has 3 arrows out; s1, s3, s4 tie at 2 with s1->s4, s3->s1, s3->s4.
	assert.Equal(t, S5, r.Ranking[0].StatementID)
	assert.Equal(t, 3, r.ArrowsOutByStatement[S5])
	got := make([]StatementID, 0, 5)
	for _, row := range r.Ranking {
		got = append(got, row.StatementID)
	}
	assert.Equal(t, []StatementID{S5, S3, S1, S4, S2}, got)
	assert.Equal(t, [2]StatementID{S5, S3}, r.FocusTopTwo)
}

func TestCalculateRanking_InitialOrderWithoutDirectEdge(t *testing.T) {
	doc := validDocument()
	a := Statement{ID: S1, InitialOrder: IntPtr(3)}
	b := Statement{ID: S4, InitialOrder: IntPtr(2)}
	// Remove the direct edge so only initial order can decide.
	doc.Connections[2].Direction = nil
	cmp := rankComparator(&doc, map[StatementID]int{S1: 1, S4: 1})
	assert.Positive(t, cmp(a, b))
	assert.Negative(t, cmp(b, a))
}

func TestCalculateRanking_IdentifierTieBreak(t *testing.T) {
	doc := validDocument()
	doc.Connections[0].Direction = nil
	same := map[StatementID]int{S1: 2, S2: 2}
	cmp := rankComparator(&doc, same)
	a := Statement{ID: S1}
	b := Statement{ID: S2}
	assert.Negative(t, cmp(a, b))
	assert.Positive(t, cmp(b, a))
	assert.Zero(t, cmp(a, a))
}

func TestCalculateRanking_NullOrderSortsLast(t *testing.T) {
	doc := validDocument()
	doc.Connections[0].Direction = nil
	cmp := rankComparator(&doc, map[StatementID]int{S1: 1, S2: 1})
	assert.Positive(t, cmp(Statement{ID: S1}, Statement{ID: S2, InitialOrder: IntPtr(5)}))
}

func TestCalculateRanking_RejectsInvalidDocuments(t *testing.T) {
	doc := seededDocument()
	doc.Connections[0].Direction = nil

	r, err := CalculateRanking(doc)
	require.Error(t, err)
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, ErrCannotCalculate))
	assert.Contains(t, err.Error(), "Cannot calculate ranking")
	assert.Contains(t, err.Error(), "All fixed connection lines MUST have a selected direction.")

	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, CodeDirectionMissing, pe.Issue.Code)
}

func TestCalculateRanking_IgnoresUnrelatedFields(t *testing.T) {
	a := seededDocument()
	b := seededDocument()
	b.Name = "another"
	b.PromptQuestion = ComposePrompt("grow revenue")
	b.Settings.ArrowInputMode = ArrowInputDrag
	// Reverse array order of statements and connections.
	for i, j := 0, len(b.Statements)-1; i < j; i, j = i+1, j-1 {
		b.Statements[i], b.Statements[j] = b.Statements[j], b.Statements[i]
	}
	for i, j := 0, len(b.Connections)-1; i < j; i, j = i+1, j-1 {
		b.Connections[i], b.Connections[j] = b.Connections[j], b.Connections[i]
	}

	ra, err := CalculateRanking(a)
	require.NoError(t, err)
	rb, err := CalculateRanking(b)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}

func TestCalculateRanking_IsPure(t *testing.T) {
	doc := seededDocument()
	before := doc.Clone()
	first, err := CalculateRanking(doc)
	require.NoError(t, err)
	second, err := CalculateRanking(doc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, before, doc)
}
