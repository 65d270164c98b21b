// Package registry resolves referring-provider identity against the national
// NPI registry (NPPES). The lookup is the engine's only suspending I/O and is
// abstracted behind the Lookup interface so adjudication can be tested
// without network access.
package registry

import (
	"context"
	"errors"

	"github.com/walterreed/referral-api/internal/model"
)

var (
	// ErrUnavailable means the registry could not give an answer: network
	// failure, timeout, rate limiting, or a non-retryable HTTP error. The
	// caller treats the verification as indeterminate, never as a denial.
	ErrUnavailable = errors.New("provider registry unavailable")

	// ErrMalformedResponse means the registry answered with a payload that
	// violates its own contract. This escalates instead of becoming a
	// decision.
	ErrMalformedResponse = errors.New("malformed provider registry response")
)

// Query identifies the provider to search for. First and last name are
// required; city and state only narrow the search.
type Query struct {
	FirstName string
	LastName  string
	City      string
	State     string
}

// Lookup is the registry capability the provider verifier depends on.
// Implementations must be idempotent and safe to retry.
type Lookup interface {
	Search(ctx context.Context, q Query) ([]model.RegistryRecord, error)
}
