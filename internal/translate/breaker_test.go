package translate

import (
	"context"
	"strings"
	"sync"
	"testing"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

// scriptedProvider returns its queued errors in order, then succeeds.
type scriptedProvider struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (p *scriptedProvider) TranslateImage(ctx context.Context, req *Request) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls++
	if len(p.errs) > 0 {
		err := p.errs[0]
		p.errs = p.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &Result{ImageData: []byte("edited"), MIMEType: "image/png"}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) IsAvailable() error { return nil }

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestBreakerOpensAfterConsecutiveTransientFailures(t *testing.T) {
	inner := &scriptedProvider{}
	for i := 0; i < 10; i++ {
		inner.errs = append(inner.errs, NewFailure(domain.ErrorKindTransient, "service error (HTTP 503)"))
	}
	p := NewBreakerProvider(inner)

	req := &Request{ImageData: []byte("img"), MIMEType: "image/png", TargetLanguage: "German", Prompt: "p"}

	// Five consecutive transient failures reach the inner provider
	for i := 0; i < 5; i++ {
		_, err := p.TranslateImage(context.Background(), req)
		if err == nil {
			t.Fatalf("Call %d: expected error", i+1)
		}
		if got := KindOf(err); got != domain.ErrorKindTransient {
			t.Fatalf("Call %d: expected transient, got %v", i+1, got)
		}
	}
	if inner.callCount() != 5 {
		t.Fatalf("Expected 5 inner calls, got %d", inner.callCount())
	}

	// The breaker is now open: calls are rejected without reaching the
	// inner provider, reported as transient so retries back off normally
	_, err := p.TranslateImage(context.Background(), req)
	if err == nil {
		t.Fatal("Expected open-breaker error")
	}
	if got := KindOf(err); got != domain.ErrorKindTransient {
		t.Errorf("Expected open breaker classified transient, got %v", got)
	}
	if !strings.Contains(err.Error(), "circuit breaker open") {
		t.Errorf("Expected open-breaker message, got %q", err)
	}
	if inner.callCount() != 5 {
		t.Errorf("Expected inner provider untouched while open, got %d calls", inner.callCount())
	}
}

func TestBreakerIgnoresPermanentFailures(t *testing.T) {
	inner := &scriptedProvider{}
	for i := 0; i < 8; i++ {
		inner.errs = append(inner.errs, NewFailure(domain.ErrorKindPermanent, "input rejected (HTTP 422)"))
	}
	p := NewBreakerProvider(inner)

	req := &Request{ImageData: []byte("img"), MIMEType: "image/png", TargetLanguage: "Thai", Prompt: "p"}

	// A stream of bad inputs says nothing about service health, so every
	// call keeps reaching the inner provider
	for i := 0; i < 8; i++ {
		_, err := p.TranslateImage(context.Background(), req)
		if err == nil {
			t.Fatalf("Call %d: expected error", i+1)
		}
		if got := KindOf(err); got != domain.ErrorKindPermanent {
			t.Fatalf("Call %d: expected permanent, got %v", i+1, got)
		}
	}
	if inner.callCount() != 8 {
		t.Errorf("Expected all 8 calls to reach inner provider, got %d", inner.callCount())
	}

	// Exhausted script: the next call succeeds through the closed breaker
	result, err := p.TranslateImage(context.Background(), req)
	if err != nil {
		t.Fatalf("Expected success through closed breaker, got %v", err)
	}
	if string(result.ImageData) != "edited" {
		t.Errorf("Unexpected result payload %q", result.ImageData)
	}
}

func TestBreakerDelegatesNameAndAvailability(t *testing.T) {
	inner := &scriptedProvider{}
	p := NewBreakerProvider(inner)

	if p.Name() != "scripted" {
		t.Errorf("Expected wrapped name, got %q", p.Name())
	}
	if err := p.IsAvailable(); err != nil {
		t.Errorf("Expected available, got %v", err)
	}
}
