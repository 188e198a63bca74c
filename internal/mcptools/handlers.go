package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/dusk-indust/hoshin/internal/export"
	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/logging"
	"github.com/dusk-indust/hoshin/internal/status"
	"github.com/dusk-indust/hoshin/internal/store"
)

// HoshinService handles MCP tool calls against a document store.
type HoshinService struct {
	repo      store.Repository
	exportDir string
	log       *zap.Logger
}

// NewHoshinService creates a HoshinService. exportDir is where export_hoshin
// writes files when asked to.
func NewHoshinService(repo store.Repository, exportDir string, log *zap.Logger) *HoshinService {
	return &HoshinService{
		repo:      repo,
		exportDir: exportDir,
		log:       logging.OrNop(log),
	}
}

// CreateHoshin stores a new empty document.
func (s *HoshinService) CreateHoshin(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CreateHoshinInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		docs, err := s.repo.List(ctx)
		if err != nil {
			return nil, DocumentOutput{}, fmt.Errorf("list documents: %w", err)
		}
		name = hoshin.NextDefaultName(docs)
	}
	doc := hoshin.NewDocument(name)
	if blank := strings.TrimSpace(input.Prompt); blank != "" {
		doc = hoshin.SetPromptBlank(doc, blank)
	}
	if err := s.repo.Upsert(ctx, doc); err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("save document: %w", err)
	}
	s.log.Info("mcp: created document", zap.String("id", doc.ID), zap.String("name", doc.Name))
	return nil, DocumentOutput{Document: doc}, nil
}

// ListHoshins returns the status of every document, most recent first.
func (s *HoshinService) ListHoshins(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListHoshinsInput,
) (*mcp.CallToolResult, ListHoshinsOutput, error) {
	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, ListHoshinsOutput{}, fmt.Errorf("list documents: %w", err)
	}
	return nil, ListHoshinsOutput{Hoshins: status.ListStatuses(docs)}, nil
}

// GetHoshin returns one document.
func (s *HoshinService) GetHoshin(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, DocumentOutput{Document: doc}, nil
}

// UpdateStatement changes the text and/or initial order of one statement.
func (s *HoshinService) UpdateStatement(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateStatementInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	slot := hoshin.StatementID(strings.ToLower(strings.TrimSpace(input.Slot)))
	if !hoshin.IsStatementID(slot) {
		return nil, DocumentOutput{}, fmt.Errorf("unknown statement slot %q", input.Slot)
	}
	if input.Text == nil && input.InitialOrder == nil {
		return nil, DocumentOutput{}, fmt.Errorf("nothing to update: give text or initialOrder")
	}
	doc, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	if input.Text != nil {
		doc = hoshin.SetStatementText(doc, slot, *input.Text)
	}
	if input.InitialOrder != nil {
		var order *int
		if *input.InitialOrder != 0 {
			order = input.InitialOrder
		}
		doc = hoshin.SetInitialOrder(doc, slot, order)
	}
	return s.save(ctx, doc)
}

// SetDirection points, or clears, the connection between two statements.
func (s *HoshinService) SetDirection(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SetDirectionInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	from := hoshin.StatementID(strings.ToLower(strings.TrimSpace(input.From)))
	to := hoshin.StatementID(strings.ToLower(strings.TrimSpace(input.To)))
	pair := hoshin.ToConnectionPairID(from, to)
	if !hoshin.IsFixedPairID(pair) {
		return nil, DocumentOutput{}, fmt.Errorf("%s and %s are not a fixed pair", input.From, input.To)
	}
	doc, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, DocumentOutput{}, err
	}

	if input.Clear {
		doc = hoshin.ClearConnectionDirection(doc, pair)
	} else {
		doc, err = hoshin.SetConnectionDirection(doc, pair, from, to)
		if err != nil {
			return nil, DocumentOutput{}, err
		}
	}
	return s.save(ctx, doc)
}

// ValidateHoshin runs the draft or wizard-readiness policy. Issues are
// returned as data, not as a tool error.
func (s *HoshinService) ValidateHoshin(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ValidateHoshinInput,
) (*mcp.CallToolResult, ValidateHoshinOutput, error) {
	doc, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, ValidateHoshinOutput{}, err
	}
	switch input.Policy {
	case "", "draft":
		return nil, ValidateHoshinOutput{Policy: "draft", Result: hoshin.ValidateDraft(doc)}, nil
	case "wizard":
		return nil, ValidateHoshinOutput{Policy: "wizard", Result: hoshin.ValidateWizardReady(doc)}, nil
	default:
		return nil, ValidateHoshinOutput{}, fmt.Errorf("unknown policy %q (want draft or wizard)", input.Policy)
	}
}

// RankHoshin calculates the ranking of a complete document.
func (s *HoshinService) RankHoshin(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, RankHoshinOutput, error) {
	doc, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, RankHoshinOutput{}, err
	}
	r, err := hoshin.CalculateRanking(doc)
	if err != nil {
		return nil, RankHoshinOutput{}, err
	}
	return nil, RankHoshinOutput{Ranking: *r}, nil
}

// ExportHoshin builds the vBRIEF export and optionally writes it to disk.
func (s *HoshinService) ExportHoshin(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExportHoshinInput,
) (*mcp.CallToolResult, ExportHoshinOutput, error) {
	doc, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, ExportHoshinOutput{}, err
	}
	v, err := export.ToVBrief(doc)
	if err != nil {
		return nil, ExportHoshinOutput{}, err
	}
	out := ExportHoshinOutput{Filename: export.BuildFilename(doc), VBrief: *v}
	if input.Write {
		path, err := export.WriteFile(s.exportDir, doc)
		if err != nil {
			return nil, ExportHoshinOutput{}, err
		}
		out.Path = path
		s.log.Info("mcp: exported document", zap.String("id", doc.ID), zap.String("path", path))
	}
	return nil, out, nil
}

// GetStatus summarises how far along a document is.
func (s *HoshinService) GetStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, GetStatusOutput, error) {
	doc, err := s.load(ctx, input.ID)
	if err != nil {
		return nil, GetStatusOutput{}, err
	}
	return nil, GetStatusOutput{Status: status.GetDocumentStatus(doc)}, nil
}

// load fetches a document, turning "absent" into an error.
func (s *HoshinService) load(ctx context.Context, id string) (hoshin.Document, error) {
	if strings.TrimSpace(id) == "" {
		return hoshin.Document{}, fmt.Errorf("document id is required")
	}
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return hoshin.Document{}, fmt.Errorf("load %s: %w", id, err)
	}
	if doc == nil {
		return hoshin.Document{}, fmt.Errorf("hoshin %s not found", id)
	}
	return *doc, nil
}

func (s *HoshinService) save(ctx context.Context, doc hoshin.Document) (*mcp.CallToolResult, DocumentOutput, error) {
	if err := s.repo.Upsert(ctx, doc); err != nil {
		return nil, DocumentOutput{}, fmt.Errorf("save %s: %w", doc.ID, err)
	}
	s.log.Debug("mcp: saved document", zap.String("id", doc.ID))
	return nil, DocumentOutput{Document: doc}, nil
}
