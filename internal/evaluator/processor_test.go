package evaluator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/convoeval/internal/model"
	"github.com/sells-group/convoeval/internal/scorer"
	"github.com/sells-group/convoeval/internal/store"
)

type stubStrategy struct {
	concurrent bool
	score      float64
}

func (s *stubStrategy) Name() string     { return "stub" }
func (s *stubStrategy) Concurrent() bool { return s.concurrent }

func (s *stubStrategy) Score(_ context.Context, _ model.Conversation) scorer.Result {
	scores := make(map[string]float64)
	for _, name := range model.KnownCriteria() {
		scores[name] = s.score
	}
	return scorer.Result{Scores: scores}
}

type memStore struct {
	store.Store

	mu      sync.Mutex
	puts    []model.EvaluationResult
	failIDs map[string]bool
}

func (m *memStore) PutEvaluation(_ context.Context, result model.EvaluationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIDs[result.ConversationID] {
		return errors.New("disk full")
	}
	m.puts = append(m.puts, result)
	return nil
}

func TestProcessorEmptyBatch(t *testing.T) {
	p := NewProcessor(&stubStrategy{score: 0.8}, newTestAggregator(t), &memStore{}, time.Second, 4)

	report := p.Run(context.Background(), nil)

	assert.Equal(t, 0, report.Submitted)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.Empty(t, report.Results)
}

func TestProcessorSkipsEmptyText(t *testing.T) {
	st := &memStore{}
	p := NewProcessor(&stubStrategy{score: 0.8, concurrent: true}, newTestAggregator(t), st, time.Second, 4)

	report := p.Run(context.Background(), []model.Conversation{
		{ID: "c1", Text: "a real conversation"},
		{ID: "c2", Text: "   \n\t "},
		{ID: "c3", Text: ""},
	})

	assert.Equal(t, 1, report.Submitted)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, st.puts, 1)
	assert.Equal(t, "c1", st.puts[0].ConversationID)
}

func TestProcessorPersistenceFailureCountsAndContinues(t *testing.T) {
	st := &memStore{failIDs: map[string]bool{"c2": true}}
	p := NewProcessor(&stubStrategy{score: 0.8, concurrent: true}, newTestAggregator(t), st, time.Second, 1)

	report := p.Run(context.Background(), []model.Conversation{
		{ID: "c1", Text: "first"},
		{ID: "c2", Text: "second"},
		{ID: "c3", Text: "third"},
	})

	assert.Equal(t, 3, report.Submitted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, st.puts, 2)
}

func TestProcessorConcurrentBatch(t *testing.T) {
	st := &memStore{}
	p := NewProcessor(&stubStrategy{score: 0.9, concurrent: true}, newTestAggregator(t), st, time.Second, 4)

	convs := make([]model.Conversation, 20)
	for i := range convs {
		convs[i] = model.Conversation{ID: string(rune('a' + i)), Text: "conversation text"}
	}

	report := p.Run(context.Background(), convs)

	assert.Equal(t, 20, report.Submitted)
	assert.Equal(t, 20, report.Succeeded)
	assert.Len(t, report.Results, 20)
	assert.NotEmpty(t, report.BatchID)
}

func TestProcessorNilStore(t *testing.T) {
	p := NewProcessor(&stubStrategy{score: 0.8}, newTestAggregator(t), nil, time.Second, 1)

	report := p.Run(context.Background(), []model.Conversation{{ID: "c1", Text: "hello"}})
	assert.Equal(t, 1, report.Succeeded)
}
