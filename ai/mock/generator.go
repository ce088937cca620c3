package mock

import (
	"context"
	"sync"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via a function field, or a queue of
// scripted responses returned in order.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, scripted responses (or the default echo) are used.
	GenerateFunc func(ctx context.Context, system, user string) (string, error)

	mu        sync.Mutex
	responses []string
	callCount int
	prompts   []string
}

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Enqueue appends scripted responses returned by subsequent Generate calls
// in FIFO order. When the queue is exhausted, the last response repeats.
func (m *MockGenerator) Enqueue(responses ...string) *MockGenerator {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
	return m
}

// Generate returns the next scripted response, or echoes the user prompt if
// nothing was scripted.
func (m *MockGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, user)
	fn := m.GenerateFunc

	if fn != nil {
		m.mu.Unlock()
		return fn(ctx, system, user)
	}

	defer m.mu.Unlock()
	if len(m.responses) == 0 {
		return user, nil
	}

	response := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return response, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns the user prompts received so far, in call order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Reset clears the call count, recorded prompts, queue and custom functions.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.responses = nil
	m.GenerateFunc = nil
}
