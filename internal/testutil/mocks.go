package testutil

import (
	"context"
	"sync"

	"codeberg.org/snonux/batchlingo/internal/translate"
)

// MockProvider mocks the translation provider for testing. Failures can be
// scripted per input: each call for an input consumes the next entry of its
// failure script (nil means success), after which calls succeed.
type MockProvider struct {
	mu       sync.Mutex
	calls    []string
	failures map[string][]error
	Delay    func() // optional hook invoked inside each call
}

// NewMockProvider creates a mock provider with no scripted failures
func NewMockProvider() *MockProvider {
	return &MockProvider{
		failures: make(map[string][]error),
	}
}

// FailWith scripts the errors returned for the given input content, one per
// call, in order. A nil entry makes that call succeed.
func (m *MockProvider) FailWith(input string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[input] = append(m.failures[input], errs...)
}

// TranslateImage records the call and returns the next scripted outcome
func (m *MockProvider) TranslateImage(ctx context.Context, req *translate.Request) (*translate.Result, error) {
	m.mu.Lock()
	key := string(req.ImageData)
	m.calls = append(m.calls, key)

	var err error
	if script := m.failures[key]; len(script) > 0 {
		err = script[0]
		m.failures[key] = script[1:]
	}
	delay := m.Delay
	m.mu.Unlock()

	if delay != nil {
		delay()
	}

	if err != nil {
		return nil, err
	}
	return &translate.Result{
		ImageData: []byte("translated:" + key),
		MIMEType:  "image/png",
	}, nil
}

// Name returns the provider name
func (m *MockProvider) Name() string {
	return "mock"
}

// IsAvailable always succeeds for the mock
func (m *MockProvider) IsAvailable() error {
	return nil
}

// Calls returns a copy of the recorded call inputs
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount returns the total number of TranslateImage calls made
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// CallCountFor returns the number of calls made for the given input content
func (m *MockProvider) CallCountFor(input string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == input {
			n++
		}
	}
	return n
}
