package main

import (
	"fmt"
	"log"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/tokensage/tokensage/internal/agents"
	"github.com/tokensage/tokensage/internal/config"
	"github.com/tokensage/tokensage/internal/contextstore"
	"github.com/tokensage/tokensage/internal/dexscreener"
	"github.com/tokensage/tokensage/internal/llm"
	"github.com/tokensage/tokensage/internal/orchestrator"
	"github.com/tokensage/tokensage/internal/router"
	"github.com/tokensage/tokensage/internal/state"
	"github.com/tokensage/tokensage/pkg/models"
)

// app bundles the assembled orchestrator with its owned resources.
type app struct {
	orch     *orchestrator.Orchestrator
	store    *contextstore.Store
	db       *state.DB
	recorder *state.SessionRecorder
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Printf("[tokensage] close database: %v", err)
		}
	}
}

// buildApp assembles the full pipeline from configuration. When store
// is nil a fresh context store is created; passing an existing store
// preserves conversation context across a rebuild.
func buildApp(cfg *config.Config, store *contextstore.Store) (*app, error) {
	scorer, err := router.NewScorer(registrationsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}

	rt := router.New(router.Config{
		Threshold:       cfg.Router.Threshold,
		Epsilon:         cfg.Router.Epsilon,
		Default:         models.Category(cfg.Router.Default),
		EnableComposite: cfg.Router.EnableComposite,
	})

	if store == nil {
		store = contextstore.New(cfg.Context.WindowCapacity)
	}

	var dexOpts []dexscreener.Option
	if cfg.Dexscreener.BaseURL != "" {
		dexOpts = append(dexOpts, dexscreener.WithBaseURL(cfg.Dexscreener.BaseURL))
	}
	dexClient := dexscreener.New(dexOpts...)

	llmClient, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		MaxTokens:     int64(cfg.Anthropic.MaxTokens),
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	registry, err := agents.NewRegistry(
		agents.NewMarketAgent(dexClient),
		agents.NewSwapAgent(),
		agents.NewAnalysisAgent(llmClient),
	)
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}

	opts := []orchestrator.Option{
		orchestrator.WithDispatchTimeout(cfg.Context.DispatchTimeout),
	}

	a := &app{store: store}
	if cfg.State.Enabled {
		dbPath := cfg.State.DBPath
		if dbPath == "" {
			dbPath = state.DefaultDBPath()
		}
		db, err := state.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open state database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate state database: %w", err)
		}
		recorder, err := state.NewSessionRecorder(db, uuid.New().String())
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create session: %w", err)
		}
		a.db = db
		a.recorder = recorder
		opts = append(opts, orchestrator.WithRecorder(recorder))
	}

	a.orch, err = orchestrator.New(scorer, rt, store, registry, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// resume replays the most recent active session's interactions into the
// context window. Returns the number of interactions restored.
func (a *app) resume(cfg *config.Config) (int, error) {
	if a.db == nil {
		return 0, fmt.Errorf("state persistence is disabled")
	}
	session, err := a.db.GetPreviousSession(a.recorder.SessionID())
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, nil
	}
	interactions, err := a.db.RecentInteractions(session.ID, cfg.Context.WindowCapacity)
	if err != nil {
		return 0, err
	}
	a.orch.Restore(interactions)
	return len(interactions), nil
}

// registrationsFromConfig extends the built-in category registrations
// with any extra keywords from configuration.
func registrationsFromConfig(cfg *config.Config) []router.Registration {
	regs := router.DefaultRegistrations()
	for i := range regs {
		extra := cfg.Router.ExtraKeywords[string(regs[i].Category)]
		if len(extra) == 0 {
			continue
		}
		keywords := make([]string, 0, len(regs[i].Keywords)+len(extra))
		keywords = append(keywords, regs[i].Keywords...)
		keywords = append(keywords, extra...)
		regs[i].Keywords = keywords
	}
	return regs
}
