// Package store persists Hoshin documents.
//
// Every backend satisfies Repository, a key-value contract keyed by document
// id. Backends return a failure as an error and never as an empty result.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/dusk-indust/hoshin/internal/hoshin"
)

// Repository is the persistence contract for documents.
// Implementations: BadgerStore (default), KuzuStore (cgo), MemStore (testing).
type Repository interface {
	io.Closer

	// Upsert inserts or replaces the document with doc.ID.
	Upsert(ctx context.Context, doc hoshin.Document) error
	// GetByID returns the document, or nil when no document has that id.
	GetByID(ctx context.Context, id string) (*hoshin.Document, error)
	// List returns every document in no particular order. Callers sort with
	// hoshin.SortByRecent.
	List(ctx context.Context) ([]hoshin.Document, error)
	// Delete removes the document. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Backend names a Repository implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendBadger Backend = "badger"
	BackendKuzu   Backend = "kuzu"
)

// errMissingID is returned by Upsert for a document without an id.
var errMissingID = errors.New("store: document id is required")

// Config selects and configures a backend.
type Config struct {
	Backend Backend
	// Path is the database directory. Ignored by the memory backend and when
	// InMemory is set.
	Path string
	// InMemory keeps badger or kuzu data in RAM only.
	InMemory   bool
	SyncWrites bool
	Logger     *zap.Logger
}

// Open returns the Repository named by cfg.Backend. An empty backend means
// memory.
func Open(cfg Config) (Repository, error) {
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemStore(), nil
	case BackendBadger:
		return NewBadgerStore(BadgerConfig{
			Path:       cfg.Path,
			InMemory:   cfg.InMemory,
			SyncWrites: cfg.SyncWrites,
			Logger:     cfg.Logger,
		})
	case BackendKuzu:
		return openKuzu(cfg)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}
