package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"limelight/internal/bio"
	"limelight/internal/collector"
	"limelight/internal/config"
	"limelight/internal/core"
	"limelight/internal/email"
	"limelight/internal/fetch"
	"limelight/internal/knowledge"
	"limelight/internal/llm"
	"limelight/internal/pipeline"
	"limelight/internal/profiles"
	"limelight/internal/search"
	"limelight/internal/store"
	"limelight/internal/summarize"
	"limelight/internal/synthesize"
	"limelight/internal/validate"
)

// app wires the components a command needs from the loaded configuration.
// Missing credentials disable the matching collaborator instead of failing;
// commands that cannot run without one report that themselves.
type app struct {
	cfg       *config.Config
	repo      store.Repository
	provider  search.Provider
	kb        *knowledge.Client
	fetcher   *fetch.Fetcher
	resolver  *profiles.Resolver
	collector *collector.Collector
	gen       *llm.Gemini
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.Get()
	caps := cfg.Capabilities()

	a := &app{cfg: cfg}

	repo, err := store.NewSQLite(cfg.App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.repo = repo

	if caps.SearchEnabled {
		provider, err := search.NewSerper(cfg.Search.SerperAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create search provider: %w", err)
		}
		a.provider = provider
	}
	if caps.KnowledgeBaseEnabled {
		a.kb = knowledge.NewClient(cfg.Knowledge.BaseURL)
	}
	if caps.LanguageModelEnabled {
		gen, err := llm.New(ctx, cfg.AI.Gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to create language model client: %w", err)
		}
		a.gen = gen
	}

	a.fetcher = fetch.NewFetcher(caps.OutboundFetchEnabled, cfg.Fetch.MaxChars)
	a.resolver = profiles.NewResolver(a.provider, a.kb)
	a.collector = collector.New(a.provider, a.resolver, a.fetcher, a.kb)
	return a, nil
}

func (a *app) close() {
	if a.repo != nil {
		a.repo.Close()
	}
	if a.gen != nil {
		a.gen.Close()
	}
}

// generator returns the llm seam as an interface, keeping the typed nil out
// of the capability checks downstream.
func (a *app) generator() llm.Generator {
	if a.gen == nil {
		return nil
	}
	return a.gen
}

func (a *app) orchestrator() *pipeline.Orchestrator {
	var sender email.Sender
	if smtp := email.NewSMTPSender(a.cfg.Email); smtp != nil {
		sender = smtp
	}
	return pipeline.New(
		a.repo,
		a.collector,
		synthesize.New(a.generator(), a.fetcher),
		summarize.New(a.generator(), a.fetcher),
		a.resolver,
		sender,
		a.cfg.Digest.PreviousWeeks,
	)
}

func (a *app) bioGenerator() *bio.Generator {
	return bio.NewGenerator(a.collector, a.generator())
}

func (a *app) validator() *validate.Validator {
	return validate.New(a.provider, a.kb)
}

// loadOrCreateRoleModel returns the stored role model by name, registering
// it on first use.
func (a *app) loadOrCreateRoleModel(ctx context.Context, name string) (*core.RoleModel, error) {
	rm, err := a.repo.GetRoleModel(ctx, name)
	if err != nil {
		return nil, err
	}
	if rm != nil {
		return rm, nil
	}

	rm = &core.RoleModel{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := a.repo.SaveRoleModel(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}
