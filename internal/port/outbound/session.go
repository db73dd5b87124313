package outbound

import "context"

// SessionProviderPort is the contract-only Session Provider: a fresh
// session token factory. Implementation (browser automation + temporary
// email pickup) is excluded from this core; consumed as an opaque factory.
type SessionProviderPort interface {
	// NewSessionToken mints a fresh session token. Failures surface as a
	// provisioning error.
	NewSessionToken(ctx context.Context) (string, error)
}

// TokenPoolPort is the immutable, read-only split of a configured pool
// string. Selection is random per call; exhaustion is a distinct error.
type TokenPoolPort interface {
	// Acquire returns a randomly selected token from the pool.
	Acquire(ctx context.Context) (string, error)

	// Size reports the number of tokens in the pool.
	Size() int
}
