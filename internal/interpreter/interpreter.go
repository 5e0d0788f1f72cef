// Package interpreter maps free-text commands onto discrete call actions.
// Resolvers are tried in order; the AI resolver is first, a deterministic
// regex resolver is last, and a command neither can place is rejected with
// ErrNotUnderstood rather than silently dropped.
package interpreter

import (
	"context"
	"errors"
)

type ActionKind string

const (
	ActionCallOne ActionKind = "call_single"
	ActionCallAll ActionKind = "call_all"
)

// Action is the discrete outcome of interpreting a command.
type Action struct {
	Kind   ActionKind
	Number string // set for ActionCallOne
}

var (
	// ErrNotHandled: this resolver cannot place the command; try the next.
	ErrNotHandled = errors.New("command not handled")
	// ErrNotUnderstood: no resolver produced an action.
	ErrNotUnderstood = errors.New("command not understood")
)

// Resolver attempts to turn a command into an action.
type Resolver interface {
	Name() string
	Attempt(ctx context.Context, command string, numbers []string) (Action, error)
}

// Chain tries resolvers in order until one succeeds.
type Chain struct {
	resolvers []Resolver
}

func NewChain(resolvers ...Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Resolve returns the first resolver's action along with that resolver's
// name. Any resolver error, ErrNotHandled included, moves on to the next
// resolver; that is the AI-to-fallback degradation path.
func (c *Chain) Resolve(ctx context.Context, command string, numbers []string) (Action, string, error) {
	for _, r := range c.resolvers {
		action, err := r.Attempt(ctx, command, numbers)
		if err != nil {
			continue
		}
		return action, r.Name(), nil
	}
	return Action{}, "", ErrNotUnderstood
}
