package mcp

import (
	"context"
	"sync/atomic"

	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/services"
)

// mockAnswerer is a mock implementation of driving.QuestionAnswerer.
type mockAnswerer struct {
	answer   *domain.Answer
	chunks   []domain.RetrievedChunk
	stats    domain.IndexStats
	state    domain.PipelineState
	err      error
	question string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (m *mockAnswerer) enter() func() {
	n := m.inFlight.Add(1)
	for {
		old := m.maxInFlight.Load()
		if n <= old || m.maxInFlight.CompareAndSwap(old, n) {
			break
		}
	}
	return func() { m.inFlight.Add(-1) }
}

func (m *mockAnswerer) Ask(_ context.Context, question string) (*domain.Answer, error) {
	defer m.enter()()
	m.question = question
	return m.answer, m.err
}

func (m *mockAnswerer) Retrieve(_ context.Context, question string) ([]domain.RetrievedChunk, error) {
	defer m.enter()()
	m.question = question
	return m.chunks, m.err
}

func (m *mockAnswerer) FormatContext(chunks []domain.RetrievedChunk) string {
	return services.FormatContext(chunks)
}

func (m *mockAnswerer) Stats() domain.IndexStats {
	return m.stats
}

func (m *mockAnswerer) State() domain.PipelineState {
	return m.state
}

func (m *mockAnswerer) Close() error {
	return nil
}
