package hoshin

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// --- Enums ---

// StatementID names one of the five fixed statement slots.
type StatementID string

const (
	S1 StatementID = "s1"
	S2 StatementID = "s2"
	S3 StatementID = "s3"
	S4 StatementID = "s4"
	S5 StatementID = "s5"
)

// StatementIDs lists the fixed statement slots in slot order.
var StatementIDs = [5]StatementID{S1, S2, S3, S4, S5}

// ArrowInputMode records how the user prefers to enter directions.
type ArrowInputMode string

const (
	ArrowInputPicker ArrowInputMode = "picker"
	ArrowInputDrag   ArrowInputMode = "drag"
)

// DefaultArrowInputMode is applied to every new document.
const DefaultArrowInputMode = ArrowInputPicker

// Pair is an unordered pair of statement slots, stored in canonical order.
type Pair [2]StatementID

// FixedPairs is the canonical enumeration of the ten template connections.
// The wizard walks pairs in this order.
var FixedPairs = [10]Pair{
	{S1, S2},
	{S1, S3},
	{S1, S4},
	{S1, S5},
	{S2, S3},
	{S2, S4},
	{S2, S5},
	{S3, S4},
	{S3, S5},
	{S4, S5},
}

// ConnectionPairID is the canonical "a-b" identifier of a connection.
type ConnectionPairID string

// ID returns the canonical identifier of the pair.
func (p Pair) ID() ConnectionPairID {
	return ToConnectionPairID(p[0], p[1])
}

// Contains reports whether id is one of the pair's endpoints.
func (p Pair) Contains(id StatementID) bool {
	return p[0] == id || p[1] == id
}

// Other returns the endpoint opposite id.
func (p Pair) Other(id StatementID) StatementID {
	if p[0] == id {
		return p[1]
	}
	return p[0]
}

// ToConnectionPairID sorts the two slot names lexically and joins them, so
// the result does not depend on argument order.
func ToConnectionPairID(a, b StatementID) ConnectionPairID {
	if b < a {
		a, b = b, a
	}
	return ConnectionPairID(string(a) + "-" + string(b))
}

// ParseConnectionPairID splits an identifier into its two slot names.
// It does not check that the result is one of the fixed pairs.
func ParseConnectionPairID(id ConnectionPairID) (StatementID, StatementID, error) {
	a, b, ok := strings.Cut(string(id), "-")
	if !ok || a == "" || b == "" {
		return "", "", fmt.Errorf("malformed connection id %q", id)
	}
	return StatementID(a), StatementID(b), nil
}

// IsStatementID reports whether id names one of the fixed slots.
func IsStatementID(id StatementID) bool {
	for _, s := range StatementIDs {
		if s == id {
			return true
		}
	}
	return false
}

// IsFixedPairID reports whether id is one of the ten canonical pair ids.
func IsFixedPairID(id ConnectionPairID) bool {
	for _, p := range FixedPairs {
		if p.ID() == id {
			return true
		}
	}
	return false
}

// --- Models ---

// Statement is one of the five "I/We must ..." cards.
type Statement struct {
	ID           StatementID `json:"id"`
	Text         string      `json:"text"`
	InitialOrder *int        `json:"initialOrder"`
}

// Direction points from the enabling statement to the enabled one.
type Direction struct {
	From StatementID `json:"from"`
	To   StatementID `json:"to"`
}

// Connection is one of the ten fixed pairwise relationships.
type Connection struct {
	ID        ConnectionPairID `json:"id"`
	Pair      Pair             `json:"pair"`
	Direction *Direction       `json:"direction"`
}

// Settings holds per-document preferences.
type Settings struct {
	ArrowInputMode ArrowInputMode `json:"arrowInputMode"`
}

// Document is the aggregate root and the only unit of persistence.
// Statements and Connections are slices because documents read back from
// storage may be malformed; the validator checks their closure.
type Document struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	PromptQuestion string       `json:"promptQuestion"`
	Statements     []Statement  `json:"statements"`
	Connections    []Connection `json:"connections"`
	Settings       Settings     `json:"settings"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// ValidationIssue is a single rule violation.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path"`
}

// ValidationResult collects every issue found in a document.
type ValidationResult struct {
	IsValid bool              `json:"isValid"`
	Issues  []ValidationIssue `json:"issues"`
}

// RankedStatement is one row of a ranking.
type RankedStatement struct {
	StatementID   StatementID `json:"statementId"`
	StatementText string      `json:"statementText"`
	InitialOrder  *int        `json:"initialOrder"`
	ArrowsOut     int         `json:"arrowsOut"`
	Rank          int         `json:"rank"`
}

// RankingResult is the output of CalculateRanking.
type RankingResult struct {
	ArrowsOutByStatement map[StatementID]int `json:"arrowsOutByStatement"`
	Ranking              []RankedStatement   `json:"ranking"`
	FocusTopTwo          [2]StatementID      `json:"focusTopTwo"`
}

// IntPtr returns a pointer to v, for building initial orders.
func IntPtr(v int) *int {
	return &v
}

// Clone returns a deep copy sharing no pointers or slices with d.
func (d Document) Clone() Document {
	out := d
	if d.Statements != nil {
		out.Statements = make([]Statement, len(d.Statements))
		for i, s := range d.Statements {
			if s.InitialOrder != nil {
				s.InitialOrder = IntPtr(*s.InitialOrder)
			}
			out.Statements[i] = s
		}
	}
	if d.Connections != nil {
		out.Connections = make([]Connection, len(d.Connections))
		for i, c := range d.Connections {
			if c.Direction != nil {
				dir := *c.Direction
				c.Direction = &dir
			}
			out.Connections[i] = c
		}
	}
	return out
}

// Statement returns the first statement with the given id.
func (d Document) Statement(id StatementID) (*Statement, bool) {
	for i := range d.Statements {
		if d.Statements[i].ID == id {
			return &d.Statements[i], true
		}
	}
	return nil, false
}

// Connection returns the first connection with the given id.
func (d Document) Connection(id ConnectionPairID) (*Connection, bool) {
	for i := range d.Connections {
		if d.Connections[i].ID == id {
			return &d.Connections[i], true
		}
	}
	return nil, false
}

// DirectionFor returns the direction stored for the pair {a, b}, or nil.
func (d Document) DirectionFor(a, b StatementID) *Direction {
	c, ok := d.Connection(ToConnectionPairID(a, b))
	if !ok {
		return nil
	}
	return c.Direction
}

// SortByRecent orders documents by UpdatedAt, newest first. Ties keep id order
// so listings are stable across backends.
func SortByRecent(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
		}
		return docs[i].ID < docs[j].ID
	})
}
