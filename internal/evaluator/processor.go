package evaluator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/scorer"
	"github.com/sells-group/convoeval/internal/store"
)

// Report summarizes one batch run. Submitted counts conversations with
// text; empty ones are skipped before submission.
type Report struct {
	BatchID   string                   `json:"batch_id"`
	Submitted int                      `json:"submitted"`
	Succeeded int                      `json:"succeeded"`
	Failed    int                      `json:"failed"`
	Skipped   int                      `json:"skipped"`
	Results   []model.EvaluationResult `json:"results"`
}

// Processor runs a scoring strategy over a batch of conversations and
// persists each result. Failures are counted, never fatal: a bad item
// does not stop the batch.
type Processor struct {
	strategy      scorer.Strategy
	aggregator    *Aggregator
	store         store.Store
	itemTimeout   time.Duration
	maxConcurrent int
}

// NewProcessor creates a batch processor. maxConcurrent bounds parallel
// scoring for concurrency-safe strategies; strategies that are not
// concurrency-safe run sequentially regardless.
func NewProcessor(strategy scorer.Strategy, aggregator *Aggregator, st store.Store, itemTimeout time.Duration, maxConcurrent int) *Processor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Processor{
		strategy:      strategy,
		aggregator:    aggregator,
		store:         st,
		itemTimeout:   itemTimeout,
		maxConcurrent: maxConcurrent,
	}
}

// Run evaluates all conversations and returns the batch report. An
// empty batch returns a zero report without error.
func (p *Processor) Run(ctx context.Context, convs []model.Conversation) Report {
	report := Report{BatchID: uuid.NewString()}

	var queue []model.Conversation
	for _, conv := range convs {
		if !conv.HasText() {
			zap.L().Info("skipping conversation without text",
				zap.String("conversation_id", conv.ID))
			report.Skipped++
			continue
		}
		queue = append(queue, conv)
	}
	report.Submitted = len(queue)
	if len(queue) == 0 {
		return report
	}

	workers := p.maxConcurrent
	if !p.strategy.Concurrent() {
		workers = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, conv := range queue {
		conv := conv
		g.Go(func() error {
			result, err := p.processOne(gctx, conv)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				zap.L().Error("conversation evaluation failed",
					zap.String("conversation_id", conv.ID),
					zap.Error(err),
				)
				return nil
			}
			report.Succeeded++
			report.Results = append(report.Results, result)
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("batch complete",
		zap.String("batch_id", report.BatchID),
		zap.String("strategy", p.strategy.Name()),
		zap.Int("submitted", report.Submitted),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
	return report
}

func (p *Processor) processOne(ctx context.Context, conv model.Conversation) (model.EvaluationResult, error) {
	scoreCtx := ctx
	if p.itemTimeout > 0 {
		var cancel context.CancelFunc
		scoreCtx, cancel = context.WithTimeout(ctx, p.itemTimeout)
		defer cancel()
	}

	res := p.strategy.Score(scoreCtx, conv)

	result, err := p.aggregator.Aggregate(conv, res, time.Now().UTC())
	if err != nil {
		return model.EvaluationResult{}, err
	}

	if p.store != nil {
		if err := p.store.PutEvaluation(ctx, result); err != nil {
			return model.EvaluationResult{}, err
		}
	}
	return result, nil
}
