package mcptools

import (
	"github.com/dusk-indust/hoshin/internal/export"
	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/status"
)

// --- MCP tool types for the hoshin server mode (serve-mcp) ---
// They let an assistant fill in, check and rank a Hoshin without driving
// the CLI.

// CreateHoshinInput is the input for the create_hoshin MCP tool.
type CreateHoshinInput struct {
	Name   string `json:"name,omitempty" jsonschema:"document name (default: next free Hoshin N)"`
	Prompt string `json:"prompt,omitempty" jsonschema:"text for the prompt blank: what must be addressed in order for me/us to ..."`
}

// DocumentOutput returns one full document.
type DocumentOutput struct {
	Document hoshin.Document `json:"document"`
}

// ListHoshinsInput is the input for the list_hoshins MCP tool.
type ListHoshinsInput struct{}

// ListHoshinsOutput is the result of the list_hoshins MCP tool.
type ListHoshinsOutput struct {
	Hoshins []status.DocumentStatus `json:"hoshins"`
}

// DocumentInput names a document.
type DocumentInput struct {
	ID string `json:"id" jsonschema:"document id"`
}

// UpdateStatementInput is the input for the update_statement MCP tool.
type UpdateStatementInput struct {
	ID           string  `json:"id" jsonschema:"document id"`
	Slot         string  `json:"slot" jsonschema:"statement slot: s1, s2, s3, s4 or s5"`
	Text         *string `json:"text,omitempty" jsonschema:"new statement text, starting with I/We must, I must or We must"`
	InitialOrder *int    `json:"initialOrder,omitempty" jsonschema:"initial order from 1 to 5; 0 clears it"`
}

// SetDirectionInput is the input for the set_direction MCP tool.
type SetDirectionInput struct {
	ID    string `json:"id" jsonschema:"document id"`
	From  string `json:"from" jsonschema:"slot that drives or enables the other"`
	To    string `json:"to" jsonschema:"slot that is driven"`
	Clear bool   `json:"clear,omitempty" jsonschema:"unset the direction of the from/to pair instead"`
}

// ValidateHoshinInput is the input for the validate_hoshin MCP tool.
type ValidateHoshinInput struct {
	ID     string `json:"id" jsonschema:"document id"`
	Policy string `json:"policy,omitempty" jsonschema:"draft (default) checks everything; wizard checks statements and orders only"`
}

// ValidateHoshinOutput is the result of the validate_hoshin MCP tool.
type ValidateHoshinOutput struct {
	Policy string                  `json:"policy"`
	Result hoshin.ValidationResult `json:"result"`
}

// RankHoshinOutput is the result of the rank_hoshin MCP tool.
type RankHoshinOutput struct {
	Ranking hoshin.RankingResult `json:"ranking"`
}

// ExportHoshinInput is the input for the export_hoshin MCP tool.
type ExportHoshinInput struct {
	ID    string `json:"id" jsonschema:"document id"`
	Write bool   `json:"write,omitempty" jsonschema:"also write the file into the configured export directory"`
}

// ExportHoshinOutput is the result of the export_hoshin MCP tool.
type ExportHoshinOutput struct {
	Filename string        `json:"filename"`
	Path     string        `json:"path,omitempty"`
	VBrief   export.VBrief `json:"vbrief"`
}

// GetStatusOutput is the result of the get_status MCP tool.
type GetStatusOutput struct {
	Status status.DocumentStatus `json:"status"`
}
