//go:build cgo

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	kuzu "github.com/kuzudb/go-kuzu"

	"github.com/dusk-indust/hoshin/internal/hoshin"
)

// KuzuStore implements Repository on an embedded KuzuDB graph. The full
// document is kept as a JSON payload on its Hoshin node; statements and set
// directions are mirrored as Statement nodes and DRIVES edges so the graph
// can be queried directly (see ArrowsOut).
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	mu   sync.Mutex // one connection, serialised
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Repository.
var _ Repository = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzuDatabase(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a KuzuDB at dbPath. KuzuDB
// creates the leaf directory itself for new databases.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzuDatabase(dbPath)
}

func openKuzuDatabase(path string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	s := &KuzuStore{db: db, conn: conn}
	if err := s.initSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func openKuzu(cfg Config) (Repository, error) {
	if cfg.InMemory || cfg.Path == "" {
		return NewKuzuStore()
	}
	return NewKuzuFileStore(cfg.Path)
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL run when the store opens.
// Node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Hoshin(
		id STRING,
		name STRING,
		prompt STRING,
		payload STRING,
		updated_at INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Statement(
		key STRING,
		doc_id STRING,
		slot STRING,
		text STRING,
		initial_order INT64,
		PRIMARY KEY(key)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DRIVES(FROM Statement TO Statement)`,
}

func (s *KuzuStore) initSchema() error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// statementKey is the primary key of a Statement node: "docID/slot".
func statementKey(docID string, slot hoshin.StatementID) string {
	return docID + "/" + string(slot)
}

// ---------- Repository ----------

// Upsert replaces the Hoshin node and rebuilds its statement subgraph inside
// one transaction.
func (s *KuzuStore) Upsert(ctx context.Context, doc hoshin.Document) error {
	if doc.ID == "" {
		return errMissingID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("kuzu: encode %s: %w", doc.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(func() error {
		if err := s.exec(
			`MERGE (h:Hoshin {id: $id})
			 SET h.name = $name, h.prompt = $prompt, h.payload = $payload, h.updated_at = $updated`,
			map[string]any{
				"id":      doc.ID,
				"name":    doc.Name,
				"prompt":  doc.PromptQuestion,
				"payload": string(payload),
				"updated": doc.UpdatedAt.UnixNano(),
			},
		); err != nil {
			return err
		}
		if err := s.exec(
			"MATCH (st:Statement {doc_id: $id}) DETACH DELETE st",
			map[string]any{"id": doc.ID},
		); err != nil {
			return err
		}

		// Malformed documents may repeat or misname slots; mirror only the
		// first occurrence of each known slot.
		present := map[hoshin.StatementID]bool{}
		for _, st := range doc.Statements {
			if !hoshin.IsStatementID(st.ID) || present[st.ID] {
				continue
			}
			present[st.ID] = true
			order := int64(0)
			if st.InitialOrder != nil {
				order = int64(*st.InitialOrder)
			}
			if err := s.exec(
				`CREATE (st:Statement {key: $key, doc_id: $doc, slot: $slot, text: $text, initial_order: $order})`,
				map[string]any{
					"key":   statementKey(doc.ID, st.ID),
					"doc":   doc.ID,
					"slot":  string(st.ID),
					"text":  st.Text,
					"order": order,
				},
			); err != nil {
				return err
			}
		}

		for _, c := range doc.Connections {
			d := c.Direction
			if d == nil || !present[d.From] || !present[d.To] || d.From == d.To {
				continue
			}
			if err := s.exec(
				`MATCH (a:Statement {key: $src}), (b:Statement {key: $dst})
				 CREATE (a)-[:DRIVES]->(b)`,
				map[string]any{
					"src": statementKey(doc.ID, d.From),
					"dst": statementKey(doc.ID, d.To),
				},
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID decodes the payload of one Hoshin node, or returns nil if not found.
func (s *KuzuStore) GetByID(ctx context.Context, id string) (*hoshin.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		"MATCH (h:Hoshin {id: $id}) RETURN h.payload",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	doc, err := decodePayload(rows[0][0])
	if err != nil {
		return nil, fmt.Errorf("kuzu: get %s: %w", id, err)
	}
	return doc, nil
}

// List decodes every Hoshin node.
func (s *KuzuStore) List(ctx context.Context) ([]hoshin.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query("MATCH (h:Hoshin) RETURN h.payload", nil)
	if err != nil {
		return nil, err
	}
	out := make([]hoshin.Document, 0, len(rows))
	for _, r := range rows {
		doc, err := decodePayload(r[0])
		if err != nil {
			return nil, fmt.Errorf("kuzu: list: %w", err)
		}
		out = append(out, *doc)
	}
	return out, nil
}

// Delete removes the Hoshin node and its statement subgraph.
func (s *KuzuStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inTx(func() error {
		if err := s.exec(
			"MATCH (st:Statement {doc_id: $id}) DETACH DELETE st",
			map[string]any{"id": id},
		); err != nil {
			return err
		}
		return s.exec("MATCH (h:Hoshin {id: $id}) DELETE h", map[string]any{"id": id})
	})
}

// ---------- Graph queries ----------

// ArrowsOut counts outgoing DRIVES edges per statement of one document,
// straight from the graph. Slots with no statement node are absent.
func (s *KuzuStore) ArrowsOut(ctx context.Context, id string) (map[hoshin.StatementID]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.query(
		`MATCH (a:Statement {doc_id: $id})
		 OPTIONAL MATCH (a)-[:DRIVES]->(b:Statement)
		 RETURN a.slot, count(b)`,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, err
	}
	out := make(map[hoshin.StatementID]int, len(rows))
	for _, r := range rows {
		out[hoshin.StatementID(toString(r[0]))] = toInt(r[1])
	}
	return out, nil
}

// ---------- Internal helpers ----------

// inTx runs fn between BEGIN TRANSACTION and COMMIT, rolling back on error.
func (s *KuzuStore) inTx(fn func() error) error {
	if err := s.exec("BEGIN TRANSACTION", nil); err != nil {
		return err
	}
	if err := fn(); err != nil {
		_ = s.exec("ROLLBACK", nil)
		return err
	}
	return s.exec("COMMIT", nil)
}

// exec runs a Cypher statement that produces no result rows. Statements with
// parameters are prepared first.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	if len(params) == 0 {
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: query: %w", err)
		}
		res.Close()
		return nil
	}

	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func decodePayload(v any) (*hoshin.Document, error) {
	var doc hoshin.Document
	if err := json.Unmarshal([]byte(toString(v)), &doc); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &doc, nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, string, ...).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
