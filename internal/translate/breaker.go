package translate

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/batchlingo/internal/domain"
)

// BreakerProvider wraps a Provider with a circuit breaker so a struggling
// external service is not hammered by a large batch. An open breaker is
// reported as a transient failure and flows through the normal retry path.
type BreakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps the given provider with a circuit breaker.
// The breaker opens after five consecutive failures and probes again after
// 30 seconds. Permanent failures do not count against the breaker: a single
// bad input says nothing about the health of the service.
func NewBreakerProvider(inner Provider) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:    inner.Name(),
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || KindOf(err) == domain.ErrorKindPermanent
		},
	}

	return &BreakerProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// TranslateImage calls the wrapped provider through the circuit breaker
func (p *BreakerProvider) TranslateImage(ctx context.Context, req *Request) (*Result, error) {
	result, err := p.breaker.Execute(func() (any, error) {
		return p.inner.TranslateImage(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, NewFailure(domain.ErrorKindTransient, "circuit breaker open for %s", p.inner.Name())
		}
		return nil, err
	}
	return result.(*Result), nil
}

// Name returns the wrapped provider's name
func (p *BreakerProvider) Name() string {
	return p.inner.Name()
}

// IsAvailable checks the wrapped provider's configuration
func (p *BreakerProvider) IsAvailable() error {
	return p.inner.IsAvailable()
}
