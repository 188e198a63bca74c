// Package export turns a finished document into shareable artifacts: a
// vBRIEF plan (JSON) and a Mermaid diagram.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dusk-indust/hoshin/internal/hoshin"
)

const (
	// VBriefVersion is the vBRIEF core version written to every export.
	VBriefVersion = "0.5"
	// VBriefPinnedReleaseTag is the vBRIEF release the export shape follows.
	VBriefPinnedReleaseTag = "v0.5-beta"

	vbriefProfile     = "hoshin-success-compass"
	vbriefDescription = "Hoshin Success Compass export"
	vbriefSource      = "hoshin-web"
	defaultPlanTitle  = "Hoshin Compass"
	defaultFileBase   = "hoshin"
	fileExtension     = ".vbrief.json"
	maxFileBase       = 64

	overviewNarrative = "Ranking follows the Hoshin PDF rule: count outgoing driver arrows and tie-break by direct driver relationship."
	actionNarrative   = "Focus execution on final rank #1 and #2 statements to maximize cascading impact."
)

// ErrExport is matched by errors.Is for every strict export failure.
var ErrExport = errors.New("strict export failed")

// Error reports why a document could not be exported. Issue is the first
// validation issue.
type Error struct {
	Issue hoshin.ValidationIssue
}

func (e *Error) Error() string {
	return "Strict export failed: " + e.Issue.Message
}

// Is lets errors.Is match ErrExport.
func (e *Error) Is(target error) bool {
	return target == ErrExport
}

// VBrief is the top-level vBRIEF document.
type VBrief struct {
	Info VBriefInfo `json:"vBRIEFInfo"`
	Plan Plan       `json:"plan"`
}

// VBriefInfo describes the export itself.
type VBriefInfo struct {
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Metadata    InfoMetadata `json:"metadata"`
	Created     time.Time    `json:"created"`
	Updated     time.Time    `json:"updated"`
}

// InfoMetadata pins the profile and release of the export.
type InfoMetadata struct {
	Profile          string `json:"profile"`
	PinnedReleaseTag string `json:"pinnedReleaseTag"`
}

// Plan is the exported plan: one item per statement, one edge per direction.
type Plan struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Status     string            `json:"status"`
	Items      []PlanItem        `json:"items"`
	Edges      []PlanEdge        `json:"edges"`
	Narratives map[string]string `json:"narratives"`
	Metadata   PlanMetadata      `json:"metadata"`
}

// PlanItem is one statement with its ranking facts.
type PlanItem struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Status    string            `json:"status"`
	Priority  string            `json:"priority"`
	Narrative map[string]string `json:"narrative"`
}

// PlanEdge records that From blocks To.
type PlanEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// PlanMetadata carries the final ranking.
type PlanMetadata struct {
	Source           string        `json:"source"`
	PinnedReleaseTag string        `json:"pinnedReleaseTag"`
	FinalRanking     []RankSummary `json:"finalRanking"`
}

// RankSummary is one row of the final ranking.
type RankSummary struct {
	StatementID string `json:"statementId"`
	Rank        int    `json:"rank"`
	ArrowsOut   int    `json:"arrowsOut"`
}

// ToVBrief builds the vBRIEF export. The document must pass draft
// validation; otherwise the error is an *Error.
func ToVBrief(doc hoshin.Document) (*VBrief, error) {
	if v := hoshin.ValidateForCalculation(doc); !v.IsValid {
		return nil, &Error{Issue: v.Issues[0]}
	}
	ranking, err := hoshin.CalculateRanking(doc)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	rankByID := make(map[hoshin.StatementID]int, len(ranking.Ranking))
	summary := make([]RankSummary, 0, len(ranking.Ranking))
	for _, row := range ranking.Ranking {
		rankByID[row.StatementID] = row.Rank
		summary = append(summary, RankSummary{
			StatementID: string(row.StatementID),
			Rank:        row.Rank,
			ArrowsOut:   row.ArrowsOut,
		})
	}

	items := make([]PlanItem, 0, len(doc.Statements))
	for _, s := range doc.Statements {
		rank := rankByID[s.ID]
		priority := "medium"
		if rank <= 2 {
			priority = "high"
		}
		items = append(items, PlanItem{
			ID:       string(s.ID),
			Title:    s.Text,
			Status:   "pending",
			Priority: priority,
			Narrative: map[string]string{
				"InitialOrder": strconv.Itoa(*s.InitialOrder),
				"FinalRank":    strconv.Itoa(rank),
				"ArrowsOut":    strconv.Itoa(ranking.ArrowsOutByStatement[s.ID]),
			},
		})
	}

	edges := make([]PlanEdge, 0, len(doc.Connections))
	for _, c := range doc.Connections {
		edges = append(edges, PlanEdge{
			From: string(c.Direction.From),
			To:   string(c.Direction.To),
			Type: "blocks",
		})
	}

	title := strings.TrimSpace(doc.PromptQuestion)
	if title == "" {
		title = defaultPlanTitle
	}

	return &VBrief{
		Info: VBriefInfo{
			Version:     VBriefVersion,
			Description: vbriefDescription,
			Metadata: InfoMetadata{
				Profile:          vbriefProfile,
				PinnedReleaseTag: VBriefPinnedReleaseTag,
			},
			Created: doc.CreatedAt,
			Updated: doc.UpdatedAt,
		},
		Plan: Plan{
			ID:     doc.ID,
			Title:  title,
			Status: "running",
			Items:  items,
			Edges:  edges,
			Narratives: map[string]string{
				"Overview": overviewNarrative,
				"Action":   actionNarrative,
			},
			Metadata: PlanMetadata{
				Source:           vbriefSource,
				PinnedReleaseTag: VBriefPinnedReleaseTag,
				FinalRanking:     summary,
			},
		},
	}, nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// BuildFilename derives "<slug>.vbrief.json" from the prompt question. The
// slug is lower-case, hyphen-separated and at most 64 characters; a blank
// slug becomes "hoshin".
func BuildFilename(doc hoshin.Document) string {
	base := unsafeFileChars.ReplaceAllString(strings.ToLower(doc.PromptQuestion), "-")
	base = strings.Trim(base, "-")
	if len(base) > maxFileBase {
		base = base[:maxFileBase]
	}
	if base == "" {
		base = defaultFileBase
	}
	return base + fileExtension
}

// Marshal encodes the export as indented JSON with a trailing newline.
func Marshal(v *VBrief) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode vbrief: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteFile exports doc into dir under BuildFilename and returns the path.
func WriteFile(dir string, doc hoshin.Document) (string, error) {
	v, err := ToVBrief(doc)
	if err != nil {
		return "", err
	}
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, BuildFilename(doc))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}
