// Package logstore persists the call history. The store is the sole source
// of truth for past call attempts; nothing else retains history across
// requests.
package logstore

import (
	"context"

	"github.com/jmehdipour/dialer/internal/model"
)

// Transform rewrites a stored error string during cleanup. It must be
// idempotent; cleanup may run any number of times.
type Transform func(string) string

// Store is an append-only call history with a bulk error-cleanup pass.
// Reads return entries in insertion order, oldest first. Implementations
// must serialize writes; requests race on the store.
type Store interface {
	Append(ctx context.Context, e model.CallLogEntry) error
	All(ctx context.Context) ([]model.CallLogEntry, error)
	// Cleanup rewrites every entry's error field through transform, leaving
	// number, status and timestamp untouched. Returns the number of entries
	// in the store.
	Cleanup(ctx context.Context, transform Transform) (int, error)
}
