package mocks

import (
	"context"
	"sync"

	"github.com/SergeiKhy/coin-fortune/internal/llm"
)

// MockGenerator implements llm.Generator for testing.
// Считает вызовы и запоминает запросы, чтобы тесты могли проверять,
// что кэшированные пути не ходят в генератор.
type MockGenerator struct {
	mu       sync.Mutex
	calls    int
	requests []llm.Request

	Response string
	Err      error
}

func NewMockGenerator(response string) *MockGenerator {
	return &MockGenerator{Response: response}
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.requests = append(m.requests, req)

	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// CallCount возвращает число фактических обращений к генератору
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest возвращает последний запрос (nil, если вызовов не было)
func (m *MockGenerator) LastRequest() *llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.requests) == 0 {
		return nil
	}
	req := m.requests[len(m.requests)-1]
	return &req
}

func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = 0
	m.requests = nil
}
