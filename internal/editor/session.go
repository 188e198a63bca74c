// Package editor is the document-editing session behind the CLI shell and
// the wizard: one open document with undo/redo, plus switching, creating,
// renaming and deleting documents in a store.
//
// Every change to the open document is written through to the store. A
// failed write is returned to the caller but the in-memory document keeps
// the change, so the next successful save persists it.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/hoshin/internal/history"
	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/logging"
	"github.com/dusk-indust/hoshin/internal/store"
)

// ErrNotFound is returned by Select for an unknown document id.
var ErrNotFound = errors.New("document not found")

// Session holds the open document and a cache of the stored ones.
// It is not safe for concurrent use.
type Session struct {
	repo store.Repository
	log  *zap.Logger
	docs []hoshin.Document // most recent first
	hist *history.History[hoshin.Document]
}

// Load lists the store, trims names and fills blank ones (writing the
// changed documents back in parallel), then opens the most recent document.
// An empty store gets a fresh "Hoshin 1".
func Load(ctx context.Context, repo store.Repository, log *zap.Logger) (*Session, error) {
	log = logging.OrNop(log)
	listed, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	hoshin.SortByRecent(listed)

	docs, changed := hoshin.NormalizeNames(listed)
	if changed {
		g, gctx := errgroup.WithContext(ctx)
		for i := range docs {
			if docs[i].Name == listed[i].Name {
				continue
			}
			d := docs[i]
			g.Go(func() error {
				if err := repo.Upsert(gctx, d); err != nil {
					return fmt.Errorf("normalize %s: %w", d.ID, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		log.Info("normalized document names", zap.Int("documents", len(docs)))
	}

	s := &Session{repo: repo, log: log, docs: docs}
	if len(docs) == 0 {
		doc := hoshin.NewDocument("")
		if err := repo.Upsert(ctx, doc); err != nil {
			return nil, fmt.Errorf("create first document: %w", err)
		}
		s.docs = []hoshin.Document{doc}
		log.Info("created first document", zap.String("id", doc.ID))
	}
	s.hist = history.New(s.docs[0], hoshin.Document.Clone, hoshin.EqualContent)
	return s, nil
}

// Current returns a copy of the open document.
func (s *Session) Current() hoshin.Document {
	return s.hist.Present()
}

// Documents returns the known documents, most recent first. The open
// document appears with its in-memory content.
func (s *Session) Documents() []hoshin.Document {
	out := make([]hoshin.Document, len(s.docs))
	for i, d := range s.docs {
		out[i] = d.Clone()
	}
	return out
}

// Save writes the open document.
func (s *Session) Save(ctx context.Context) error {
	doc := s.hist.Present()
	if err := s.repo.Upsert(ctx, doc); err != nil {
		s.log.Warn("save failed", zap.String("id", doc.ID), zap.Error(err))
		return fmt.Errorf("save %q: %w", doc.Name, err)
	}
	s.log.Debug("saved", zap.String("id", doc.ID))
	return nil
}

// Select saves the open document, then opens id with a fresh history.
func (s *Session) Select(ctx context.Context, id string) error {
	if err := s.Save(ctx); err != nil {
		return err
	}
	next, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load %s: %w", id, err)
	}
	if next == nil {
		cached, ok := s.find(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		next = &cached
	}
	s.remember(*next)
	s.hist.Replace(*next)
	return nil
}

// Create stores and opens a new empty document. A blank name becomes the
// next free "Hoshin N".
func (s *Session) Create(ctx context.Context, name string) (hoshin.Document, error) {
	doc := hoshin.NewDocument(name)
	if strings.TrimSpace(name) == "" {
		doc.Name = hoshin.NextDefaultName(s.docs)
	}
	if err := s.repo.Upsert(ctx, doc); err != nil {
		return hoshin.Document{}, fmt.Errorf("create %q: %w", doc.Name, err)
	}
	s.remember(doc)
	s.hist.Replace(doc)
	s.log.Info("created document", zap.String("id", doc.ID), zap.String("name", doc.Name))
	return doc.Clone(), nil
}

// Delete removes the open document and opens the most recent remaining one,
// creating a new document when none remain.
func (s *Session) Delete(ctx context.Context) error {
	doc := s.hist.Present()
	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete %q: %w", doc.Name, err)
	}
	remaining := s.docs[:0:0]
	for _, d := range s.docs {
		if d.ID != doc.ID {
			remaining = append(remaining, d)
		}
	}
	s.docs = remaining
	s.log.Info("deleted document", zap.String("id", doc.ID))

	if len(s.docs) == 0 {
		_, err := s.Create(ctx, "")
		return err
	}
	s.hist.Replace(s.docs[0])
	return nil
}

// Rename sets a trimmed name. A blank name is ignored.
func (s *Session) Rename(ctx context.Context, name string) error {
	return s.apply(ctx, func(d hoshin.Document) (hoshin.Document, error) {
		return hoshin.Rename(d, name), nil
	})
}

// SetStatementText replaces the text of a statement slot.
func (s *Session) SetStatementText(ctx context.Context, id hoshin.StatementID, text string) error {
	return s.apply(ctx, func(d hoshin.Document) (hoshin.Document, error) {
		return hoshin.SetStatementText(d, id, text), nil
	})
}

// SetInitialOrder sets or (with nil) clears a statement's initial order.
func (s *Session) SetInitialOrder(ctx context.Context, id hoshin.StatementID, order *int) error {
	return s.apply(ctx, func(d hoshin.Document) (hoshin.Document, error) {
		return hoshin.SetInitialOrder(d, id, order), nil
	})
}

// SetPromptBlank rewrites the prompt around a new blank.
func (s *Session) SetPromptBlank(ctx context.Context, blank string) error {
	return s.apply(ctx, func(d hoshin.Document) (hoshin.Document, error) {
		return hoshin.SetPromptBlank(d, blank), nil
	})
}

// SetDirection points a connection from -> to.
func (s *Session) SetDirection(ctx context.Context, from, to hoshin.StatementID) error {
	return s.apply(ctx, func(d hoshin.Document) (hoshin.Document, error) {
		return hoshin.SetConnectionDirection(d, hoshin.ToConnectionPairID(from, to), from, to)
	})
}

// ClearDirection unsets a connection's direction.
func (s *Session) ClearDirection(ctx context.Context, id hoshin.ConnectionPairID) error {
	return s.apply(ctx, func(d hoshin.Document) (hoshin.Document, error) {
		if !hoshin.IsFixedPairID(id) {
			return d, fmt.Errorf("connection %q is not a fixed pair", id)
		}
		return hoshin.ClearConnectionDirection(d, id), nil
	})
}

// SetArrowInputMode stores the preferred arrow input mode.
func (s *Session) SetArrowInputMode(ctx context.Context, mode hoshin.ArrowInputMode) error {
	return s.apply(ctx, func(d hoshin.Document) (hoshin.Document, error) {
		if mode != hoshin.ArrowInputPicker && mode != hoshin.ArrowInputDrag {
			return d, fmt.Errorf("unknown arrow input mode %q", mode)
		}
		return hoshin.SetArrowInputMode(d, mode), nil
	})
}

// Replace records doc, typically the result of a wizard run, as one edit of
// the open document.
func (s *Session) Replace(ctx context.Context, doc hoshin.Document) error {
	return s.apply(ctx, func(d hoshin.Document) (hoshin.Document, error) {
		if doc.ID != d.ID {
			return d, fmt.Errorf("document %s is not open", doc.ID)
		}
		return doc, nil
	})
}

// Undo reverts the last edit and saves. It reports false when there was
// nothing to undo.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	if !s.hist.Undo() {
		return false, nil
	}
	return true, s.persist(ctx)
}

// Redo re-applies the last undone edit and saves. It reports false when
// there was nothing to redo.
func (s *Session) Redo(ctx context.Context) (bool, error) {
	if !s.hist.Redo() {
		return false, nil
	}
	return true, s.persist(ctx)
}

// CanUndo reports whether Undo would change the document.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether Redo would change the document.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// apply runs fn against the open document. Errors from fn leave the
// document untouched; no-op edits are neither recorded nor saved.
func (s *Session) apply(ctx context.Context, fn func(hoshin.Document) (hoshin.Document, error)) error {
	next, err := fn(s.hist.Present())
	if err != nil {
		return err
	}
	if !s.hist.Update(func(hoshin.Document) hoshin.Document { return next }) {
		return nil
	}
	return s.persist(ctx)
}

func (s *Session) persist(ctx context.Context) error {
	s.remember(s.hist.Present())
	return s.Save(ctx)
}

// remember puts doc at the front of the cache, replacing any older copy.
func (s *Session) remember(doc hoshin.Document) {
	out := make([]hoshin.Document, 0, len(s.docs)+1)
	out = append(out, doc.Clone())
	for _, d := range s.docs {
		if d.ID != doc.ID {
			out = append(out, d)
		}
	}
	s.docs = out
}

func (s *Session) find(id string) (hoshin.Document, bool) {
	for _, d := range s.docs {
		if d.ID == id {
			return d.Clone(), true
		}
	}
	return hoshin.Document{}, false
}
