package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/convoeval/internal/analytics"
	"github.com/sells-group/convoeval/internal/config"
	"github.com/sells-group/convoeval/internal/evaluator"
	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/scorer"
	"github.com/sells-group/convoeval/internal/signal"
	"github.com/sells-group/convoeval/internal/store"
	"github.com/sells-group/convoeval/pkg/anthropic"
)

// evalEnv bundles the wired pipeline components a command needs.
type evalEnv struct {
	store     store.Store
	processor *evaluator.Processor
	analyzer  *analytics.Analyzer
}

func (e *evalEnv) Close() {
	_ = e.store.Close()
}

// initStore opens the configured store backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initStrategy builds the configured scoring strategy.
func initStrategy(c *config.Config) (scorer.Strategy, error) {
	variant := signal.ComplexityVariant(c.Signal.ComplexityVariant)
	switch c.Scorer.Strategy {
	case "heuristic", "":
		return scorer.NewHeuristic(variant), nil
	case "delegated":
		if c.Anthropic.Key == "" {
			return nil, eris.New("delegated strategy requires anthropic.key")
		}
		client := anthropic.NewClient(c.Anthropic.Key)
		return scorer.NewDelegated(client, c.Anthropic.Model, c.Anthropic.MaxTokens, c.Scorer.MinCallSpacing()), nil
	default:
		return nil, eris.Errorf("unknown scorer strategy %q", c.Scorer.Strategy)
	}
}

// initEnv wires store, strategy, aggregator, processor, and analyzer.
// Rubric validation failures abort here, before any scoring starts.
func initEnv(ctx context.Context) (*evalEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	strategy, err := initStrategy(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	agg, err := evaluator.NewAggregator(model.DefaultRubric(), cfg.Scorer.PassThreshold)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	variant := signal.ComplexityVariant(cfg.Signal.ComplexityVariant)
	return &evalEnv{
		store:     st,
		processor: evaluator.NewProcessor(strategy, agg, st, cfg.Scorer.ItemTimeout(), cfg.Batch.MaxConcurrent),
		analyzer:  analytics.NewAnalyzer(st, variant),
	}, nil
}
