package status

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/hoshin/hoshintest"
)

func TestNextStage(t *testing.T) {
	assert.Equal(t, 0, NextStage([]bool{false, false, false}))
	assert.Equal(t, 1, NextStage([]bool{true, false, true}))
	assert.Equal(t, -1, NextStage([]bool{true, true, true}))
}

func TestGetDocumentStatus_Empty(t *testing.T) {
	st := GetDocumentStatus(hoshin.NewDocument("Plan"))

	assert.Equal(t, "Plan", st.Name)
	assert.Equal(t, 0, st.NextStage)
	assert.False(t, st.WizardReady)
	assert.False(t, st.Calculable)
	assert.Equal(t, 0, st.DirectionsSet)
	require.NotNil(t, st.FirstIssue)
	assert.Equal(t, "Card S1", st.FirstIssue.Path)
	require.NotNil(t, st.NextUnsetPair)
	assert.Equal(t, hoshin.Pair{hoshin.S1, hoshin.S2}, *st.NextUnsetPair)
	assert.Nil(t, st.FocusTopTwo)
}

func TestGetDocumentStatus_PartiallyDirected(t *testing.T) {
	doc := hoshintest.Ready("Plan")
	doc, err := hoshin.SetConnectionDirection(doc, "s1-s2", hoshin.S1, hoshin.S2)
	require.NoError(t, err)

	st := GetDocumentStatus(doc)
	assert.True(t, st.WizardReady)
	assert.Equal(t, StageDirections, st.NextStage)
	assert.Equal(t, 1, st.DirectionsSet)
	assert.Equal(t, hoshin.Pair{hoshin.S1, hoshin.S3}, *st.NextUnsetPair)
	require.NotNil(t, st.FirstIssue)
	assert.Equal(t, hoshin.CodeDirectionMissing, st.FirstIssue.Code)
}

func TestGetDocumentStatus_Complete(t *testing.T) {
	st := GetDocumentStatus(hoshintest.Complete("Plan"))
	assert.Equal(t, -1, st.NextStage)
	assert.True(t, st.Calculable)
	assert.Equal(t, 10, st.DirectionsSet)
	assert.Nil(t, st.FirstIssue)
	assert.Nil(t, st.NextUnsetPair)
	assert.Equal(t, []hoshin.StatementID{hoshin.S1, hoshin.S2}, st.FocusTopTwo)
	for _, s := range st.Stages {
		assert.True(t, s.Complete, s.Name)
	}
}

func TestListStatuses_MostRecentFirst(t *testing.T) {
	older := hoshin.NewDocument("Older")
	older.UpdatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := hoshin.NewDocument("Newer")
	newer.UpdatedAt = older.UpdatedAt.Add(time.Hour)

	docs := []hoshin.Document{older, newer}
	out := ListStatuses(docs)
	require.Len(t, out, 2)
	assert.Equal(t, "Newer", out[0].Name)
	assert.Equal(t, "Older", docs[0].Name, "input order is untouched")
}
