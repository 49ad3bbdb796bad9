package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/tally/internal/categorize"
	"github.com/cleared-dev/tally/internal/config"
	"github.com/cleared-dev/tally/internal/document"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/logger"
	"github.com/cleared-dev/tally/internal/pipeline"
	"github.com/cleared-dev/tally/internal/runlog"
)

type globalOptions struct {
	root     string
	logLevel string
}

// app bundles what the commands share for one data root.
type app struct {
	root     string
	cfg      *config.Config
	log      zerolog.Logger
	rules    *categorize.Categorizer
	store    ledger.Store
	archiver *importer.Archiver
	runLog   *runlog.Log
}

func loadApp(opts *globalOptions) (*app, error) {
	root, err := filepath.Abs(opts.root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.LoadRoot(root)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	log := logger.New(level, cfg.Logging.Format, os.Stderr)

	rules, err := categorize.Open(cfg.Paths.Rules)
	if err != nil {
		return nil, err
	}

	return &app{
		root:     root,
		cfg:      cfg,
		log:      log,
		rules:    rules,
		store:    ledger.Open(cfg.Paths.Ledger),
		archiver: importer.NewArchiver(cfg.Paths.ImportDir, cfg.Paths.ProcessedDir),
		runLog:   runlog.New(cfg.Paths.RunLog),
	}, nil
}

func (a *app) pipeline() *pipeline.Pipeline {
	return pipeline.New(pipeline.Deps{
		Opener:      document.FileOpener{},
		Categorizer: a.rules,
		Store:       a.store,
		Archiver:    a.archiver,
		RunLog:      a.runLog,
		Logger:      a.log,
		Config:      a.cfg,
	})
}
