// Package telephony isolates the outbound-calling vendor behind a narrow
// interface so the dispatcher and matcher stay testable without the network.
package telephony

import (
	"context"
	"fmt"
)

// Provider is the telephony boundary: place one call, list the account's
// verified caller IDs.
type Provider interface {
	PlaceCall(ctx context.Context, to string) (sid string, err error)
	ListVerifiedNumbers(ctx context.Context) ([]string, error)
}

// ProviderError is a vendor-reported failure (auth, unverified destination,
// rate limit). Code is the vendor's error code when it sent one.
type ProviderError struct {
	Code       int
	Message    string
	HTTPStatus int
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
	}
	return e.Message
}
