package speech

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrCircuitOpen is returned while the upstream is considered unavailable
var ErrCircuitOpen = errors.New("tts circuit breaker is open")

// BreakerState is the operating mode of a Breaker
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig holds tuning knobs for a Breaker.
// Zero values are replaced with defaults: 5 failures, 30s reset, 3 probes.
type BreakerConfig struct {
	MaxFailures  int
	ResetTimeout time.Duration
	HalfOpenMax  int
}

// Breaker is a three-state circuit breaker around a Provider
type Breaker struct {
	next         Provider
	logger       *zap.Logger
	onReject     func()
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int
	now          func() time.Time

	mu              sync.Mutex
	state           BreakerState
	consecutiveFail int
	lastFailure     time.Time
	halfOpenCalls   int
	halfOpenOK      int
}

// NewBreaker wraps next with a circuit breaker
func NewBreaker(next Provider, cfg BreakerConfig, logger *zap.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMax <= 0 {
		cfg.HalfOpenMax = 3
	}
	return &Breaker{
		next:         next,
		logger:       logger,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
		now:          time.Now,
	}
}

// OnReject registers a callback run whenever a call is rejected
func (b *Breaker) OnReject(fn func()) {
	b.onReject = fn
}

// State returns the current state
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Synthesize forwards to the wrapped provider unless the circuit is open
func (b *Breaker) Synthesize(ctx context.Context, text string) (*Audio, error) {
	inHalfOpen, err := b.acquire()
	if err != nil {
		if b.onReject != nil {
			b.onReject()
		}
		return nil, err
	}

	audio, err := b.next.Synthesize(ctx, text)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil && isUpstreamFailure(err) {
		b.recordFailure(inHalfOpen)
	} else {
		b.recordSuccess(inHalfOpen)
	}
	return audio, err
}

func (b *Breaker) acquire() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.lastFailure) < b.resetTimeout {
			return false, ErrCircuitOpen
		}
		b.state = BreakerHalfOpen
		b.halfOpenCalls = 0
		b.halfOpenOK = 0
		b.logger.Info("TTS circuit breaker half-open")
	case BreakerHalfOpen:
		if b.halfOpenCalls >= b.halfOpenMax {
			return false, ErrCircuitOpen
		}
	}

	inHalfOpen := b.state == BreakerHalfOpen
	if inHalfOpen {
		b.halfOpenCalls++
	}
	return inHalfOpen, nil
}

// Must be called with b.mu held.
func (b *Breaker) recordFailure(inHalfOpen bool) {
	b.lastFailure = b.now()

	if inHalfOpen {
		if b.state == BreakerHalfOpen {
			b.state = BreakerOpen
			b.logger.Warn("TTS circuit breaker re-opened")
		}
		return
	}

	b.consecutiveFail++
	if b.state == BreakerClosed && b.consecutiveFail >= b.maxFailures {
		b.state = BreakerOpen
		b.logger.Warn("TTS circuit breaker opened",
			zap.Int("consecutive_failures", b.consecutiveFail))
	}
}

// Must be called with b.mu held.
func (b *Breaker) recordSuccess(inHalfOpen bool) {
	if !inHalfOpen {
		if b.state == BreakerClosed {
			b.consecutiveFail = 0
		}
		return
	}
	if b.state != BreakerHalfOpen {
		return
	}

	b.halfOpenOK++
	if b.halfOpenOK >= b.halfOpenMax {
		b.state = BreakerClosed
		b.consecutiveFail = 0
		b.logger.Info("TTS circuit breaker closed")
	}
}

// Upstream 5xx, rate limiting and transport errors count against the circuit.
// Other 4xx responses and caller cancellation do not.
func isUpstreamFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode >= http.StatusInternalServerError ||
			upstream.StatusCode == http.StatusTooManyRequests
	}
	return true
}
