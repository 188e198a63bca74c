package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/hoshin/internal/hoshin"
)

// GenerateMermaid produces a Mermaid graph LR diagram of the document.
// Statements become nodes in slot order and set directions become arrows.
// When the ranking can be calculated, the top two statements get the
// "focus" class.
func GenerateMermaid(doc hoshin.Document) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, id := range hoshin.StatementIDs {
		label := string(id)
		if s, ok := doc.Statement(id); ok && strings.TrimSpace(s.Text) != "" {
			label = fmt.Sprintf("%s: %s", id, shortText(s.Text))
		}
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", nodeID(id), escapeLabel(label)))
	}

	for _, c := range doc.Connections {
		if c.Direction == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", nodeID(c.Direction.From), nodeID(c.Direction.To)))
	}

	if ranking, err := hoshin.CalculateRanking(doc); err == nil {
		sb.WriteString("  classDef focus fill:#f9d77e,stroke:#b8860b,stroke-width:2px\n")
		sb.WriteString(fmt.Sprintf("  class %s,%s focus\n",
			nodeID(ranking.FocusTopTwo[0]), nodeID(ranking.FocusTopTwo[1])))
	}

	return sb.String()
}

// nodeID maps a slot to an upper-case Mermaid identifier: s1 -> S1.
func nodeID(id hoshin.StatementID) string {
	return strings.ToUpper(string(id))
}

// shortText trims the statement to 40 runes for readability.
func shortText(s string) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= 40 {
		return string(r)
	}
	return string(r[:39]) + "…"
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}
