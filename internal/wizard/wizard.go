// Package wizard walks the ten fixed pairs one at a time and records the
// user's choice of direction for each.
//
// Every answer is persisted before the sequencer advances, so step N+1 is
// never shown before step N's write has settled. A failed write leaves the
// sequencer on the same step with its previous document.
package wizard

import (
	"context"
	"errors"
	"fmt"

	"github.com/dusk-indust/hoshin/internal/hoshin"
)

// Mode selects which pairs become steps.
type Mode int

const (
	// ModeUnsetOnly asks only the pairs whose direction was unset when the
	// wizard started.
	ModeUnsetOnly Mode = iota
	// ModeWalkAll visits all ten pairs. Pairs that already have a direction
	// need an explicit Next (or may be answered again).
	ModeWalkAll
)

// String returns the config spelling of the mode.
func (m Mode) String() string {
	switch m {
	case ModeUnsetOnly:
		return "unset"
	case ModeWalkAll:
		return "all"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "unset" or "all". The empty string means ModeUnsetOnly.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "unset":
		return ModeUnsetOnly, nil
	case "all":
		return ModeWalkAll, nil
	default:
		return 0, fmt.Errorf("unknown wizard mode %q", s)
	}
}

var (
	// ErrNotReady is returned by New when the statements are not complete.
	ErrNotReady = errors.New("wizard requires five valid statements with unique orders")
	// ErrFinished is returned when a step is requested after the last one.
	ErrFinished = errors.New("wizard already finished")
	// ErrChoiceRequired is returned by Next on a step without a direction.
	ErrChoiceRequired = errors.New("this pair needs a direction before moving on")
	// ErrInvalidAnswer is returned when from/to are not the current pair.
	ErrInvalidAnswer = errors.New("answer does not match the current pair")
)

// Saver persists a document. store.Repository satisfies it.
type Saver interface {
	Upsert(ctx context.Context, doc hoshin.Document) error
}

// Step describes the pair currently shown.
type Step struct {
	Index int         // zero-based position in the sequence
	Total int         // number of steps in the sequence
	Pair  hoshin.Pair // canonical order
	// Current is the pair's direction before answering, nil when unset.
	Current *hoshin.Direction
	// NeedsChoice is false for pass-through steps in ModeWalkAll.
	NeedsChoice bool
}

// Sequencer drives one wizard run over a document.
type Sequencer struct {
	doc        hoshin.Document
	saver      Saver
	mode       Mode
	steps      []hoshin.Pair
	index      int
	onComplete func(hoshin.Document)
	completed  bool
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// OnComplete registers a callback invoked once, with the final document,
// after the last step has been answered or passed.
func OnComplete(fn func(hoshin.Document)) Option {
	return func(s *Sequencer) { s.onComplete = fn }
}

// New starts a wizard over doc. The document must pass wizard-readiness
// validation; the error then wraps ErrNotReady and names the first issue.
func New(doc hoshin.Document, saver Saver, mode Mode, opts ...Option) (*Sequencer, error) {
	if v := hoshin.ValidateWizardReady(doc); !v.IsValid {
		return nil, fmt.Errorf("%w: %s", ErrNotReady, v.Issues[0].Message)
	}
	s := &Sequencer{
		doc:   doc.Clone(),
		saver: saver,
		mode:  mode,
	}
	switch mode {
	case ModeWalkAll:
		s.steps = hoshin.FixedPairs[:]
	default:
		s.steps = hoshin.PairsWithNullDirection(doc)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Document returns a copy of the wizard's working document.
func (s *Sequencer) Document() hoshin.Document {
	return s.doc.Clone()
}

// Done reports whether every step has been visited. A wizard with no steps
// is done from the start.
func (s *Sequencer) Done() bool {
	return s.index >= len(s.steps)
}

// Remaining returns the number of steps not yet visited.
func (s *Sequencer) Remaining() int {
	return len(s.steps) - s.index
}

// Current returns the step being shown. ok is false once Done.
func (s *Sequencer) Current() (Step, bool) {
	if s.Done() {
		return Step{}, false
	}
	p := s.steps[s.index]
	var current *hoshin.Direction
	if d := s.doc.DirectionFor(p[0], p[1]); d != nil {
		cp := *d
		current = &cp
	}
	return Step{
		Index:       s.index,
		Total:       len(s.steps),
		Pair:        p,
		Current:     current,
		NeedsChoice: current == nil,
	}, true
}

// Answer sets the current pair's direction to from -> to, persists the
// whole document and advances. It returns true when this answer completed
// the sequence.
func (s *Sequencer) Answer(ctx context.Context, from, to hoshin.StatementID) (bool, error) {
	step, ok := s.Current()
	if !ok {
		return false, ErrFinished
	}
	if hoshin.ToConnectionPairID(from, to) != step.Pair.ID() || from == to {
		return false, fmt.Errorf("%w: %s->%s for %s", ErrInvalidAnswer, from, to, step.Pair.ID())
	}
	next, err := hoshin.SetConnectionDirection(s.doc, step.Pair.ID(), from, to)
	if err != nil {
		return false, err
	}
	if err := s.saver.Upsert(ctx, next); err != nil {
		return false, fmt.Errorf("save answer for %s: %w", step.Pair.ID(), err)
	}
	s.doc = next
	return s.advance(), nil
}

// Next passes over a step whose direction is already set. Nothing is
// written. It returns true when this completed the sequence.
func (s *Sequencer) Next() (bool, error) {
	step, ok := s.Current()
	if !ok {
		return false, ErrFinished
	}
	if step.NeedsChoice {
		return false, ErrChoiceRequired
	}
	return s.advance(), nil
}

// BackToEditor persists the partial progress and returns the document. The
// run can be abandoned at any step; unanswered pairs stay unset.
func (s *Sequencer) BackToEditor(ctx context.Context) (hoshin.Document, error) {
	if err := s.saver.Upsert(ctx, s.doc); err != nil {
		return s.Document(), fmt.Errorf("save wizard progress: %w", err)
	}
	return s.Document(), nil
}

func (s *Sequencer) advance() bool {
	s.index++
	if !s.Done() || s.completed {
		return false
	}
	s.completed = true
	if s.onComplete != nil {
		s.onComplete(s.Document())
	}
	return true
}
