package interpreter

import (
	"context"
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// GuardedResolver wraps a resolver, usually the AI one, with a small
// circuit breaker. After failThreshold consecutive failures it answers
// ErrNotHandled immediately for openFor, so a dead AI service degrades to
// the regex fallback without paying its timeout on every command. One
// probe call is allowed when the window expires.
type GuardedResolver struct {
	inner Resolver

	mu            sync.Mutex
	st            breakerState
	fails         int
	failThreshold int
	openFor       time.Duration
	nextTryAt     time.Time
}

func Guarded(inner Resolver, failThreshold int, openFor time.Duration) *GuardedResolver {
	if failThreshold < 1 {
		failThreshold = 3
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return &GuardedResolver{inner: inner, failThreshold: failThreshold, openFor: openFor}
}

func (g *GuardedResolver) Name() string { return g.inner.Name() }

func (g *GuardedResolver) Attempt(ctx context.Context, command string, numbers []string) (Action, error) {
	if !g.allow() {
		return Action{}, ErrNotHandled
	}

	action, err := g.inner.Attempt(ctx, command, numbers)
	// ErrNotHandled is a clean "no" from a healthy service, not a failure
	if err != nil && err != ErrNotHandled {
		g.onFailure()
		return Action{}, err
	}
	g.onSuccess()
	return action, err
}

func (g *GuardedResolver) allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.st {
	case stateOpen:
		if time.Now().After(g.nextTryAt) {
			g.st = stateHalfOpen
			return true
		}
		return false
	default:
		return true
	}
}

func (g *GuardedResolver) onSuccess() {
	g.mu.Lock()
	g.fails = 0
	g.st = stateClosed
	g.mu.Unlock()
}

func (g *GuardedResolver) onFailure() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.st == stateHalfOpen {
		g.st = stateOpen
		g.nextTryAt = time.Now().Add(g.openFor)
		return
	}
	g.fails++
	if g.fails >= g.failThreshold {
		g.st = stateOpen
		g.nextTryAt = time.Now().Add(g.openFor)
	}
}
