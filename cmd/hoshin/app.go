package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dusk-indust/hoshin/internal/config"
	"github.com/dusk-indust/hoshin/internal/hoshin"
	"github.com/dusk-indust/hoshin/internal/logging"
	"github.com/dusk-indust/hoshin/internal/store"
)

// app bundles what every command needs: settings, a logger and an open
// store. Callers must Close it.
type app struct {
	cfg  *config.ProjectConfig
	log  *zap.Logger
	repo store.Repository
}

func openApp(flags *cliFlags) (*app, error) {
	cfg, err := config.Load(flags.ProjectDir)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if flags.Verbose {
		level = "debug"
	}
	log, err := logging.New(level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	repo, err := store.Open(store.Config{
		Backend:    store.Backend(cfg.Storage.Backend),
		Path:       cfg.Storage.Path,
		SyncWrites: cfg.Storage.SyncWrites,
		Logger:     log,
	})
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	log.Debug("store opened", zap.String("backend", cfg.Storage.Backend), zap.String("path", cfg.Storage.Path))
	return &app{cfg: cfg, log: log, repo: repo}, nil
}

func (a *app) Close() error {
	err := a.repo.Close()
	_ = a.log.Sync()
	return err
}

// resolve finds a document by id, then by case-insensitive name. An empty
// ref picks the most recently updated document.
func (a *app) resolve(ctx context.Context, ref string) (hoshin.Document, error) {
	ref = strings.TrimSpace(ref)
	if ref != "" {
		doc, err := a.repo.GetByID(ctx, ref)
		if err != nil {
			return hoshin.Document{}, err
		}
		if doc != nil {
			return *doc, nil
		}
	}

	docs, err := a.repo.List(ctx)
	if err != nil {
		return hoshin.Document{}, fmt.Errorf("list documents: %w", err)
	}
	hoshin.SortByRecent(docs)
	if ref == "" {
		if len(docs) == 0 {
			return hoshin.Document{}, fmt.Errorf("no hoshins yet\nRun 'hoshin new' to create one")
		}
		return docs[0], nil
	}

	var match []hoshin.Document
	for _, d := range docs {
		if strings.EqualFold(strings.TrimSpace(d.Name), ref) {
			match = append(match, d)
		}
	}
	switch len(match) {
	case 0:
		return hoshin.Document{}, fmt.Errorf("no hoshin with id or name %q", ref)
	case 1:
		return match[0], nil
	default:
		return hoshin.Document{}, fmt.Errorf("%d hoshins are named %q; use the id", len(match), ref)
	}
}

// refArg returns the optional document reference positional argument.
func refArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
