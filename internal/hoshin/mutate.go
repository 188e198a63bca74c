package hoshin

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Mutation helpers never modify their input. Each returns a deep copy with
// the change applied and UpdatedAt refreshed.

func touched(doc Document) Document {
	out := doc.Clone()
	out.UpdatedAt = now()
	return out
}

// SetConnectionDirection points the pair's connection from -> to. from and to
// must be the two endpoints of a fixed pair, in either order.
func SetConnectionDirection(doc Document, id ConnectionPairID, from, to StatementID) (Document, error) {
	if !IsFixedPairID(id) {
		return doc, fmt.Errorf("connection %q is not a fixed pair", id)
	}
	if ToConnectionPairID(from, to) != id {
		return doc, fmt.Errorf("direction %s->%s does not belong to connection %s", from, to, id)
	}
	if _, ok := doc.Connection(id); !ok {
		return doc, fmt.Errorf("document has no connection %s", id)
	}
	out := touched(doc)
	for i := range out.Connections {
		if out.Connections[i].ID == id {
			out.Connections[i].Direction = &Direction{From: from, To: to}
		}
	}
	return out, nil
}

// ClearConnectionDirection unsets the direction of a connection.
func ClearConnectionDirection(doc Document, id ConnectionPairID) Document {
	out := touched(doc)
	for i := range out.Connections {
		if out.Connections[i].ID == id {
			out.Connections[i].Direction = nil
		}
	}
	return out
}

// SetStatementText replaces the text of a statement slot.
func SetStatementText(doc Document, id StatementID, text string) Document {
	out := touched(doc)
	for i := range out.Statements {
		if out.Statements[i].ID == id {
			out.Statements[i].Text = text
		}
	}
	return out
}

// SetInitialOrder replaces a statement's initial order. nil clears it.
func SetInitialOrder(doc Document, id StatementID, order *int) Document {
	out := touched(doc)
	for i := range out.Statements {
		if out.Statements[i].ID == id {
			if order == nil {
				out.Statements[i].InitialOrder = nil
			} else {
				out.Statements[i].InitialOrder = IntPtr(*order)
			}
		}
	}
	return out
}

// SetPromptBlank rewrites the prompt question around a new blank.
func SetPromptBlank(doc Document, blank string) Document {
	out := touched(doc)
	out.PromptQuestion = ComposePrompt(blank)
	return out
}

// Rename sets a trimmed name. A blank name leaves the document unchanged.
func Rename(doc Document, name string) Document {
	name = strings.TrimSpace(name)
	if name == "" {
		return doc
	}
	out := touched(doc)
	out.Name = name
	return out
}

// SetArrowInputMode stores the preferred arrow input mode.
func SetArrowInputMode(doc Document, mode ArrowInputMode) Document {
	out := touched(doc)
	out.Settings.ArrowInputMode = mode
	return out
}

// PairsWithNullDirection lists, in canonical order, the fixed pairs whose
// connection exists and has no direction yet.
func PairsWithNullDirection(doc Document) []Pair {
	var pairs []Pair
	for _, p := range FixedPairs {
		c, ok := doc.Connection(p.ID())
		if ok && c.Direction == nil {
			pairs = append(pairs, p)
		}
	}
	return pairs
}

// DirectionsSet counts connections with a direction.
func DirectionsSet(doc Document) int {
	n := 0
	for _, c := range doc.Connections {
		if c.Direction != nil {
			n++
		}
	}
	return n
}

// EqualContent reports whether two documents are equal ignoring UpdatedAt.
// It decides whether an edit is a no-op.
func EqualContent(a, b Document) bool {
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	return reflect.DeepEqual(a, b)
}
