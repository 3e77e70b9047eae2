// internal/testutil/mocks.go
package testutil

import (
	"context"
	"sync"

	"newsrake/internal/core/domain"
	"newsrake/internal/core/ports"
)

// MockPlanner implementa ports.Planner con un plan fijo o una función
// inyectable.
type MockPlanner struct {
	Specs    []domain.SourceSpec
	Err      error
	PlanFunc func(ctx context.Context, topic string) ([]domain.SourceSpec, error)

	mu        sync.Mutex
	CallCount int
	LastTopic string
}

func (m *MockPlanner) Plan(ctx context.Context, topic string) ([]domain.SourceSpec, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastTopic = topic
	m.mu.Unlock()

	if m.PlanFunc != nil {
		return m.PlanFunc(ctx, topic)
	}
	return m.Specs, m.Err
}

// MockFetchClient implementa ports.FetchClient. Por defecto responde
// con ItemsPerCall items sintéticos por petición; FetchFunc permite
// comportamiento por fuente.
type MockFetchClient struct {
	ItemsPerCall int
	Err          error
	FetchFunc    func(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error)

	mu       sync.Mutex
	requests []ports.FetchRequest
	counter  int
}

func (m *MockFetchClient) Fetch(ctx context.Context, req ports.FetchRequest) ([]*domain.NewsItem, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, req)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	n := m.ItemsPerCall
	if req.Limit > 0 && n > req.Limit {
		n = req.Limit
	}
	items := make([]*domain.NewsItem, 0, n)
	for i := 0; i < n; i++ {
		m.mu.Lock()
		m.counter++
		seq := m.counter
		m.mu.Unlock()
		items = append(items, SyntheticItem(req.Spec, seq))
	}
	return items, nil
}

// Requests retorna un snapshot de las peticiones recibidas.
func (m *MockFetchClient) Requests() []ports.FetchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.FetchRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsFor retorna las peticiones dirigidas a una fuente.
func (m *MockFetchClient) RequestsFor(source string) []ports.FetchRequest {
	var out []ports.FetchRequest
	for _, req := range m.Requests() {
		if req.Spec.Name == source {
			out = append(out, req)
		}
	}
	return out
}

// MockSummarizer implementa ports.Summarizer.
type MockSummarizer struct {
	Summary       *ports.Summary
	Err           error
	SummarizeFunc func(ctx context.Context, topic string, items []*domain.NewsItem) (*ports.Summary, error)

	mu        sync.Mutex
	CallCount int
	LastItems int
}

func (m *MockSummarizer) Summarize(ctx context.Context, topic string, items []*domain.NewsItem) (*ports.Summary, error) {
	m.mu.Lock()
	m.CallCount++
	m.LastItems = len(items)
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, topic, items)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Summary != nil {
		return m.Summary, nil
	}
	return &ports.Summary{Prologue: "mock summary of " + topic}, nil
}
