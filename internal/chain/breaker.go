package chain

import (
	"context"
	"sync"
	"time"

	scouterrors "options-scout/internal/errors"
)

// BreakerState is the tripping state of a guarded provider.
type BreakerState string

const (
	BreakerClosed   BreakerState = "CLOSED"
	BreakerOpen     BreakerState = "OPEN"
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)

// BreakerConfig tunes the provider circuit breaker.
type BreakerConfig struct {
	FailureThreshold int           // consecutive failures before opening
	SuccessThreshold int           // half-open successes before closing
	Cooldown         time.Duration // open duration before probing again
}

// DefaultBreakerConfig returns sensible defaults for a scan run.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
	}
}

// BreakerProvider guards a Provider so one broken upstream does not get
// hammered across a large batch: after enough consecutive failures the
// remaining tickers fail fast and flow through as chain-unavailable
// annotations.
type BreakerProvider struct {
	inner Provider
	cfg   BreakerConfig

	mu          sync.Mutex
	state       BreakerState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewBreakerProvider wraps a provider with circuit breaking.
func NewBreakerProvider(inner Provider, cfg BreakerConfig) *BreakerProvider {
	return &BreakerProvider{inner: inner, cfg: cfg, state: BreakerClosed}
}

// Fetch delegates to the wrapped provider while the circuit permits it.
func (p *BreakerProvider) Fetch(ctx context.Context, ticker string) (*TickerData, error) {
	if !p.allow() {
		return nil, scouterrors.NewProviderError("breaker", ticker, scouterrors.ErrProviderExhausted)
	}

	data, err := p.inner.Fetch(ctx, ticker)
	if err != nil {
		p.recordFailure()
		return nil, err
	}
	p.recordSuccess()
	return data, nil
}

// State reports the current breaker state.
func (p *BreakerProvider) State() BreakerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *BreakerProvider) allow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == BreakerOpen {
		if time.Since(p.lastFailure) < p.cfg.Cooldown {
			return false
		}
		p.transition(BreakerHalfOpen)
	}
	return true
}

func (p *BreakerProvider) recordSuccess() {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case BreakerHalfOpen:
		p.successes++
		if p.successes >= p.cfg.SuccessThreshold {
			p.transition(BreakerClosed)
		}
	case BreakerClosed:
		p.failures = 0
	}
}

func (p *BreakerProvider) recordFailure() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastFailure = time.Now()
	switch p.state {
	case BreakerClosed:
		p.failures++
		if p.failures >= p.cfg.FailureThreshold {
			p.transition(BreakerOpen)
		}
	case BreakerHalfOpen:
		p.transition(BreakerOpen)
	}
}

func (p *BreakerProvider) transition(state BreakerState) {
	p.state = state
	p.failures = 0
	p.successes = 0
}
