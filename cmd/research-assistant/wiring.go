// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/pdiddy/research-assistant/internal/analysis"
	"github.com/pdiddy/research-assistant/internal/assistant"
	"github.com/pdiddy/research-assistant/internal/observability"
	"github.com/pdiddy/research-assistant/internal/paperstore"
	"github.com/pdiddy/research-assistant/internal/search"
	"github.com/pdiddy/research-assistant/internal/secrets"
	"github.com/pdiddy/research-assistant/internal/server"
)

var (
	_ assistant.Analyzer   = (*analysis.Engine)(nil)
	_ assistant.Repository = (*paperstore.Store)(nil)
	_ server.Pipeline      = (*assistant.Assistant)(nil)
	_ server.Library       = (*paperstore.Store)(nil)
)

// pipeline bundles the collaborators behind one Assistant. Callers must Close it.
type pipeline struct {
	store     *paperstore.Store
	assistant *assistant.Assistant
	metrics   *observability.Metrics
}

// openStore opens the configured paper database.
func openStore() (*paperstore.Store, error) {
	store, err := paperstore.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("path", cfg.Store.Path).Msg("opened paper store")
	return store, nil
}

// newPipeline builds the full search, analysis, and storage stack.
// metrics may be nil.
func newPipeline(metrics *observability.Metrics) (*pipeline, error) {
	model, err := analysis.NewModel(cfg.Model, loadedSecrets.Get(secrets.OpenAIAPIKey))
	if err != nil {
		return nil, err
	}
	engine, err := analysis.NewEngine(model, cfg.Model)
	if err != nil {
		return nil, err
	}
	engine.Metrics = metrics

	store, err := openStore()
	if err != nil {
		return nil, err
	}

	a := assistant.New(search.NewArxivSource(cfg.Source), engine, store, logger)
	a.Metrics = metrics

	logger.Debug().
		Str("provider", string(cfg.Model.Provider)).
		Str("model", cfg.Model.Name).
		Msg("pipeline ready")
	return &pipeline{store: store, assistant: a, metrics: metrics}, nil
}

// Close releases the paper store.
func (p *pipeline) Close() error {
	return p.store.Close()
}
