package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards calls to a remote dependency such as the competition
// catalog. It opens after consecutive failures and lets trial requests through
// again after a cool-down.
type CircuitBreaker struct {
	mu sync.Mutex

	name      string
	isFailure func(error) bool
	onChange  func(name string, from, to CircuitState)

	failureThreshold int
	openTimeout      time.Duration
	halfOpenMaxReq   int

	state               CircuitState
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
	halfOpenSuccesses   int
	now                 func() time.Time
}

type Option func(*CircuitBreaker)

// WithFailureClassifier decides which errors count against the breaker.
// Errors the classifier rejects are recorded as successes.
func WithFailureClassifier(fn func(error) bool) Option {
	return func(b *CircuitBreaker) {
		if fn != nil {
			b.isFailure = fn
		}
	}
}

// WithStateChange registers a hook invoked on every state transition while
// the breaker lock is held; it must not call back into the breaker.
func WithStateChange(fn func(name string, from, to CircuitState)) Option {
	return func(b *CircuitBreaker) {
		b.onChange = fn
	}
}

// New builds a breaker from settings. Disabled settings yield nil, which
// Execute treats as pass-through.
func New(s Settings, opts ...Option) *CircuitBreaker {
	if !s.Enabled {
		return nil
	}
	s = s.withDefaults()
	b := NewCircuitBreaker(s.MaxFailures, s.Cooldown, s.HalfOpenMaxRequests, opts...)
	b.name = s.Name
	return b
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int, opts ...Option) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if openTimeout <= 0 {
		openTimeout = 15 * time.Second
	}
	if halfOpenMaxReq < 1 {
		halfOpenMaxReq = 1
	}

	b := &CircuitBreaker{
		failureThreshold: failureThreshold,
		openTimeout:      openTimeout,
		halfOpenMaxReq:   halfOpenMaxReq,
		state:            CircuitStateClosed,
		isFailure:        func(err error) bool { return err != nil },
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs fn when the breaker allows it and records the outcome. A nil
// breaker always runs fn.
func (b *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if b == nil {
		return fn(ctx)
	}
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		// The caller gave up; this says nothing about the dependency.
		b.release()
	case b.isFailure(err):
		b.RecordFailure()
	default:
		b.RecordSuccess()
	}
	return err
}

func (b *CircuitBreaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == CircuitStateHalfOpen && b.halfOpenInFlight > 0 {
		b.halfOpenInFlight--
	}
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if b.state == CircuitStateOpen {
		if now.Sub(b.openedAt) < b.openTimeout {
			return ErrCircuitOpen
		}
		b.toHalfOpen()
	}

	if b.state == CircuitStateHalfOpen {
		if b.halfOpenInFlight >= b.halfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.halfOpenInFlight++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.consecutiveFailures = 0
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.halfOpenSuccesses++
		if b.halfOpenSuccesses >= b.halfOpenMaxReq && b.halfOpenInFlight == 0 {
			b.toClosed()
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures >= b.failureThreshold {
			b.toOpen()
		}
	case CircuitStateHalfOpen:
		if b.halfOpenInFlight > 0 {
			b.halfOpenInFlight--
		}
		b.toOpen()
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) >= b.openTimeout {
			return CircuitStateHalfOpen
		}
	}

	return b.state
}

func (b *CircuitBreaker) transition(to CircuitState) {
	from := b.state
	b.state = to
	if from != to && b.onChange != nil {
		b.onChange(b.name, from, to)
	}
}

func (b *CircuitBreaker) toClosed() {
	b.transition(CircuitStateClosed)
	b.consecutiveFailures = 0
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
	b.openedAt = time.Time{}
}

func (b *CircuitBreaker) toOpen() {
	b.transition(CircuitStateOpen)
	b.openedAt = b.now()
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}

func (b *CircuitBreaker) toHalfOpen() {
	b.transition(CircuitStateHalfOpen)
	b.halfOpenInFlight = 0
	b.halfOpenSuccesses = 0
}
