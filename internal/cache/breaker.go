package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/geocoder89/profilehub/internal/domain/user"
)

var ErrCircuitOpen = errors.New("cache circuit breaker open")

type BreakerConfig struct {
	Timeout          time.Duration // hard timeout per call
	FailureThreshold int           // consecutive failures to open circuit
	Cooldown         time.Duration // how long to stay open before half-open
	HalfOpenMaxCalls int           // allow N trial calls in half-open
}

const (
	stateClosed   = "closed"
	stateOpen     = "open"
	stateHalfOpen = "half_open"
)

// ProtectedSkillsCache keeps an unhealthy remote cache from adding its
// timeout to every top-skills request. Invalidate is never short-circuited:
// a skipped delete would leave a stale histogram behind once the cache
// recovers.
type ProtectedSkillsCache struct {
	inner SkillsCache
	cfg   BreakerConfig
	now   func() time.Time

	mu                  sync.Mutex
	state               string
	consecutiveFailures int
	openedAt            time.Time
	halfOpenInFlight    int
}

func NewProtectedSkillsCache(inner SkillsCache, cfg BreakerConfig) *ProtectedSkillsCache {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 200 * time.Millisecond
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 1
	}

	return &ProtectedSkillsCache{
		inner: inner,
		cfg:   cfg,
		now:   time.Now,
		state: stateClosed,
	}
}

func (p *ProtectedSkillsCache) Get(ctx context.Context) ([]user.SkillCount, bool, error) {
	allowed, trial := p.allowRequest()
	if !allowed {
		return nil, false, ErrCircuitOpen
	}

	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	out, ok, err := p.inner.Get(cctx)
	p.afterRequest(err, trial)
	return out, ok, err
}

func (p *ProtectedSkillsCache) Version(ctx context.Context) (int64, error) {
	allowed, trial := p.allowRequest()
	if !allowed {
		return 0, ErrCircuitOpen
	}

	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	v, err := p.inner.Version(cctx)
	p.afterRequest(err, trial)
	return v, err
}

func (p *ProtectedSkillsCache) Set(ctx context.Context, version int64, skills []user.SkillCount) error {
	allowed, trial := p.allowRequest()
	if !allowed {
		return ErrCircuitOpen
	}

	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err := p.inner.Set(cctx, version, skills)
	p.afterRequest(err, trial)
	return err
}

// Invalidate holds no half-open slot, so while the circuit is half-open its
// result is left to the trial calls.
func (p *ProtectedSkillsCache) Invalidate(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err := p.inner.Invalidate(cctx)
	p.afterRequest(err, false)
	return err
}

// State reports the breaker state, mostly for tests and logs.
func (p *ProtectedSkillsCache) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// allowRequest reports whether the call may proceed and whether it took one
// of the half-open trial slots.
func (p *ProtectedSkillsCache) allowRequest() (allowed, trial bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateOpen:
		if p.now().Sub(p.openedAt) >= p.cfg.Cooldown {
			p.state = stateHalfOpen
			p.halfOpenInFlight = 1
			return true, true
		}
		return false, false
	case stateHalfOpen:
		if p.halfOpenInFlight >= p.cfg.HalfOpenMaxCalls {
			return false, false
		}
		p.halfOpenInFlight++
		return true, true
	default:
		return true, false
	}
}

func (p *ProtectedSkillsCache) afterRequest(err error, trial bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if trial {
		if p.halfOpenInFlight > 0 {
			p.halfOpenInFlight--
		}
	} else if p.state == stateHalfOpen {
		return
	}

	if err == nil {
		p.consecutiveFailures = 0
		p.state = stateClosed
		return
	}

	p.consecutiveFailures++

	if p.state == stateHalfOpen || p.consecutiveFailures >= p.cfg.FailureThreshold {
		p.state = stateOpen
		p.openedAt = p.now()
	}
}
