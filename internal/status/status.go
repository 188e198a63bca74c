// Package status summarises how far along a document is.
package status

import (
	"time"

	"github.com/dusk-indust/hoshin/internal/hoshin"
)

// Stage numbers, in the order a document is filled in.
const (
	StageStatements = iota // five valid statements with orders 1..5
	StageDirections        // all ten directions set
	StageRanking           // document passes draft validation
	stageCount
)

// StageInfo describes the completion state of a single stage.
type StageInfo struct {
	Stage    int    `json:"stage"`
	Name     string `json:"name"`
	Complete bool   `json:"complete"`
}

// DocumentStatus holds the status of one document.
type DocumentStatus struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	UpdatedAt     time.Time               `json:"updatedAt"`
	Stages        []StageInfo             `json:"stages"`
	NextStage     int                     `json:"nextStage"` // -1 if all complete
	DirectionsSet int                     `json:"directionsSet"`
	WizardReady   bool                    `json:"wizardReady"`
	Calculable    bool                    `json:"calculable"`
	FirstIssue    *hoshin.ValidationIssue `json:"firstIssue,omitempty"`
	NextUnsetPair *hoshin.Pair            `json:"nextUnsetPair,omitempty"`
	FocusTopTwo   []hoshin.StatementID    `json:"focusTopTwo,omitempty"`
}

var stageLabels = [stageCount]string{
	"Statements",
	"Directions",
	"Ranking",
}

// NextStage returns the first incomplete stage, or -1 if every stage is
// complete.
func NextStage(complete []bool) int {
	for i, done := range complete {
		if !done {
			return i
		}
	}
	return -1
}

// GetDocumentStatus returns the status of a single document.
func GetDocumentStatus(doc hoshin.Document) DocumentStatus {
	ready := hoshin.CanRunWizard(doc)
	draft := hoshin.ValidateDraft(doc)
	unset := hoshin.PairsWithNullDirection(doc)
	set := hoshin.DirectionsSet(doc)

	complete := [stageCount]bool{
		StageStatements: ready,
		StageDirections: len(unset) == 0 && set == len(hoshin.FixedPairs),
		StageRanking:    draft.IsValid,
	}
	stages := make([]StageInfo, stageCount)
	for i := range stages {
		stages[i] = StageInfo{Stage: i, Name: stageLabels[i], Complete: complete[i]}
	}

	st := DocumentStatus{
		ID:            doc.ID,
		Name:          doc.Name,
		UpdatedAt:     doc.UpdatedAt,
		Stages:        stages,
		NextStage:     NextStage(complete[:]),
		DirectionsSet: set,
		WizardReady:   ready,
		Calculable:    draft.IsValid,
	}
	if len(draft.Issues) > 0 {
		issue := draft.Issues[0]
		st.FirstIssue = &issue
	}
	if len(unset) > 0 {
		p := unset[0]
		st.NextUnsetPair = &p
	}
	if draft.IsValid {
		if r, err := hoshin.CalculateRanking(doc); err == nil {
			st.FocusTopTwo = r.FocusTopTwo[:]
		}
	}
	return st
}

// ListStatuses returns the status of every document, most recent first.
func ListStatuses(docs []hoshin.Document) []DocumentStatus {
	sorted := make([]hoshin.Document, len(docs))
	copy(sorted, docs)
	hoshin.SortByRecent(sorted)

	out := make([]DocumentStatus, 0, len(sorted))
	for _, d := range sorted {
		out = append(out, GetDocumentStatus(d))
	}
	return out
}
