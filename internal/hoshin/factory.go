package hoshin

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// PromptPrefix is the fixed part of the prompt question.
	PromptPrefix = "What are the key issues that must be addressed in order for me/us to"
	// PromptPlaceholder stands in for an unanswered blank.
	PromptPlaceholder = "________"
	// DefaultNamePrefix is used for generated "Hoshin N" names.
	DefaultNamePrefix = "Hoshin"
)

// DefaultPromptQuestion is the prompt of a fresh document.
var DefaultPromptQuestion = ComposePrompt("")

// now is swapped in tests that need deterministic timestamps.
var now = func() time.Time { return time.Now().UTC() }

// NewDocument returns a document with all five slots and all ten pairs
// pre-populated and empty. A blank name becomes "Hoshin 1".
func NewDocument(name string) Document {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultNamePrefix + " 1"
	}
	created := now()

	statements := make([]Statement, 0, len(StatementIDs))
	for _, id := range StatementIDs {
		statements = append(statements, Statement{ID: id})
	}
	connections := make([]Connection, 0, len(FixedPairs))
	for _, p := range FixedPairs {
		connections = append(connections, Connection{ID: p.ID(), Pair: p})
	}

	return Document{
		ID:             uuid.NewString(),
		Name:           name,
		PromptQuestion: DefaultPromptQuestion,
		Statements:     statements,
		Connections:    connections,
		Settings:       Settings{ArrowInputMode: DefaultArrowInputMode},
		CreatedAt:      created,
		UpdatedAt:      created,
	}
}

// ComposePrompt fills the prompt blank. An empty blank keeps the placeholder.
func ComposePrompt(blank string) string {
	if blank == "" {
		blank = PromptPlaceholder
	}
	return PromptPrefix + " " + blank + "?"
}

// ExtractPromptBlank is the inverse of ComposePrompt. A prompt that does not
// follow the template is returned trimmed, as if it were the blank itself.
func ExtractPromptBlank(prompt string) string {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return ""
	}
	prefix := PromptPrefix + " "
	if strings.HasPrefix(trimmed, prefix) && strings.HasSuffix(trimmed, "?") {
		blank := trimmed[len(prefix) : len(trimmed)-1]
		if strings.TrimSpace(blank) == PromptPlaceholder {
			return ""
		}
		return blank
	}
	return trimmed
}

var defaultNameRegex = regexp.MustCompile(`^Hoshin\s+(\d+)$`)

// parseDefaultNumber returns N for names of the form "Hoshin N", N > 0.
func parseDefaultNumber(name string) (int, bool) {
	m := defaultNameRegex.FindStringSubmatch(strings.TrimSpace(name))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// NextDefaultName returns "Hoshin N" for the smallest N not already in use.
func NextDefaultName(docs []Document) string {
	used := make(map[int]bool, len(docs))
	for _, d := range docs {
		if n, ok := parseDefaultNumber(d.Name); ok {
			used[n] = true
		}
	}
	next := 1
	for used[next] {
		next++
	}
	return fmt.Sprintf("%s %d", DefaultNamePrefix, next)
}

// NormalizeNames trims every name and gives blank-named documents the next
// free default name. The input slice is not modified.
func NormalizeNames(docs []Document) ([]Document, bool) {
	out := make([]Document, 0, len(docs))
	changed := false
	for _, d := range docs {
		raw := d.Name
		name := strings.TrimSpace(raw)
		if name == "" {
			name = NextDefaultName(out)
		}
		if name != raw {
			changed = true
		}
		d.Name = name
		out = append(out, d)
	}
	return out, changed
}
