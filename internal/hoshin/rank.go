package hoshin

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrCannotCalculate is matched by errors.Is for every ranking precondition failure.
var ErrCannotCalculate = errors.New("cannot calculate ranking")

// PreconditionError reports that an operation was invoked on a document that
// fails validation. Issue is the first validation issue.
type PreconditionError struct {
	Op    string
	Issue ValidationIssue
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Issue.Message)
}

// Is lets errors.Is match ErrCannotCalculate.
func (e *PreconditionError) Is(target error) bool {
	return target == ErrCannotCalculate && e.Op == rankingOp
}

const rankingOp = "Cannot calculate ranking"

// CalculateRanking orders the five statements by outgoing arrows. The
// document must pass draft validation.
func CalculateRanking(doc Document) (*RankingResult, error) {
	if v := ValidateForCalculation(doc); !v.IsValid {
		return nil, &PreconditionError{Op: rankingOp, Issue: v.Issues[0]}
	}

	arrowsOut := make(map[StatementID]int, len(StatementIDs))
	for _, id := range StatementIDs {
		arrowsOut[id] = 0
	}
	for _, c := range doc.Connections {
		if c.Direction == nil {
			continue
		}
		arrowsOut[c.Direction.From]++
	}

	// Start from slot order so the result does not depend on array order
	// when direct edges form a cycle among tied statements.
	ordered := inSlotOrder(doc.Statements)
	slices.SortStableFunc(ordered, rankComparator(&doc, arrowsOut))

	rows := make([]RankedStatement, 0, len(ordered))
	for i, s := range ordered {
		rows = append(rows, RankedStatement{
			StatementID:   s.ID,
			StatementText: s.Text,
			InitialOrder:  s.InitialOrder,
			ArrowsOut:     arrowsOut[s.ID],
			Rank:          i + 1,
		})
	}

	return &RankingResult{
		ArrowsOutByStatement: arrowsOut,
		Ranking:              rows,
		FocusTopTwo:          [2]StatementID{rows[0].StatementID, rows[1].StatementID},
	}, nil
}

// rankComparator composes the tie-break chain: arrows out descending, then
// the source of a direct edge first, then initial order ascending with unset
// last, then id ascending.
func rankComparator(doc *Document, arrowsOut map[StatementID]int) func(a, b Statement) int {
	return func(a, b Statement) int {
		return cmp.Or(
			cmp.Compare(arrowsOut[b.ID], arrowsOut[a.ID]),
			directDriver(doc, a.ID, b.ID),
			cmp.Compare(orderKey(a.InitialOrder), orderKey(b.InitialOrder)),
			cmp.Compare(a.ID, b.ID),
		)
	}
}

// directDriver is -1 when a directly drives b, 1 when b drives a, else 0.
func directDriver(doc *Document, a, b StatementID) int {
	dir := doc.DirectionFor(a, b)
	switch {
	case dir == nil:
		return 0
	case dir.From == a && dir.To == b:
		return -1
	case dir.From == b && dir.To == a:
		return 1
	default:
		return 0
	}
}

func orderKey(order *int) int {
	if order == nil {
		return math.MaxInt
	}
	return *order
}
