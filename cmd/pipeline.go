package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/scoutline/sourcing-cli/internal/config"
	"github.com/scoutline/sourcing-cli/internal/dedup"
	"github.com/scoutline/sourcing-cli/internal/orchestrate"
	"github.com/scoutline/sourcing-cli/internal/scoring"
	"github.com/scoutline/sourcing-cli/internal/source"
	"github.com/scoutline/sourcing-cli/internal/store"
	"github.com/scoutline/sourcing-cli/pkg/github"
	"github.com/scoutline/sourcing-cli/pkg/stackexchange"
	"github.com/scoutline/sourcing-cli/pkg/websearch"
)

// buildRegistry wires one collector per supported platform from config.
func buildRegistry(cfg *config.Config) *source.Registry {
	perSource := cfg.Search.MaxRecordsPerSource

	gh := github.NewClient(cfg.GitHub.Token, github.WithBaseURL(cfg.GitHub.BaseURL))
	se := stackexchange.NewClient(cfg.StackExchange.Key, cfg.StackExchange.Site,
		stackexchange.WithBaseURL(cfg.StackExchange.BaseURL))
	ws := websearch.NewClient(cfg.WebSearch.Key,
		websearch.WithSearchBaseURL(cfg.WebSearch.SearchBaseURL),
		websearch.WithReaderBaseURL(cfg.WebSearch.ReaderBaseURL))

	reg := source.NewRegistry()
	reg.Register(source.NewGitHubCollector(gh, perSource))
	reg.Register(source.NewStackOverflowCollector(se, perSource))
	reg.Register(source.NewLinkedInCollector(ws, perSource))
	reg.Register(source.NewWebSearchCollector(ws, perSource))
	return reg
}

// buildOrchestrator constructs the full pipeline from config.
func buildOrchestrator(cfg *config.Config) (*orchestrate.Orchestrator, error) {
	weights := scoring.DefaultWeights()
	if cfg.Scoring.WeightsFile != "" {
		w, err := scoring.LoadWeights(cfg.Scoring.WeightsFile)
		if err != nil {
			return nil, eris.Wrap(err, "load scoring weights")
		}
		weights = w
	}

	return orchestrate.New(
		buildRegistry(cfg),
		dedup.NewEngine(),
		scoring.NewEngine(weights),
		cfg.Search,
	), nil
}

// openStore opens the configured store backend and runs migrations.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.SQLitePath)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
