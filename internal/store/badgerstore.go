package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/dusk-indust/hoshin/internal/hoshin"
)

// Compile-time assertion: *BadgerStore satisfies Repository.
var _ Repository = (*BadgerStore)(nil)

// docPrefix namespaces document keys: "hoshin/doc/<id>" -> JSON document.
const docPrefix = "hoshin/doc/"

// BadgerConfig configures a BadgerStore.
type BadgerConfig struct {
	// Path is the database directory, created if missing. Required unless
	// InMemory is set.
	Path string
	// InMemory disables disk persistence. Useful for tests.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Logger receives BadgerDB's internal log lines. nil disables them.
	Logger *zap.Logger
}

// BadgerStore implements Repository on an embedded BadgerDB. Each document is
// one JSON value; the DB handles its own locking.
type BadgerStore struct {
	db *badger.DB
}

// badgerLogger adapts zap to BadgerDB's Logger interface.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.s.Infof(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }

// NewBadgerStore opens a BadgerDB with the given configuration.
func NewBadgerStore(cfg BadgerConfig) (*BadgerStore, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("badger: create directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(badgerLogger{s: cfg.Logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func docKey(id string) []byte {
	return []byte(docPrefix + id)
}

// Upsert writes doc as JSON under its id.
func (s *BadgerStore) Upsert(ctx context.Context, doc hoshin.Document) error {
	if doc.ID == "" {
		return errMissingID
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("badger: encode %s: %w", doc.ID, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(doc.ID), data)
	})
	if err != nil {
		return fmt.Errorf("badger: upsert %s: %w", doc.ID, err)
	}
	return nil
}

// GetByID reads one document, or returns nil if not found.
func (s *BadgerStore) GetByID(ctx context.Context, id string) (*hoshin.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var doc *hoshin.Document
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var d hoshin.Document
			if err := json.Unmarshal(val, &d); err != nil {
				return fmt.Errorf("decode %s: %w", id, err)
			}
			doc = &d
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("badger: get %s: %w", id, err)
	}
	return doc, nil
}

// List scans the document prefix.
func (s *BadgerStore) List(ctx context.Context) ([]hoshin.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docs := []hoshin.Document{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var d hoshin.Document
				if err := json.Unmarshal(val, &d); err != nil {
					return fmt.Errorf("decode %s: %w", item.Key(), err)
				}
				docs = append(docs, d)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger: list: %w", err)
	}
	return docs, nil
}

// Delete removes the document key.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(docKey(id))
	})
	if err != nil {
		return fmt.Errorf("badger: delete %s: %w", id, err)
	}
	return nil
}
