// Package sessionpool implements outbound.TokenPoolPort: an immutable,
// read-only split of a configured pool string into individual session
// tokens, with random per-call selection.
package sessionpool

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/uniedit/genbridge/internal/port/outbound"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
)

// Pool is a fixed set of session tokens, configured once at startup (e.g.
// from a comma-separated environment variable) and never mutated.
type Pool struct {
	tokens []string
	mu     sync.Mutex
	rng    *rand.Rand
}

// New splits raw on commas/newlines, trims whitespace, and drops empty
// entries.
func New(raw string) *Pool {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			tokens = append(tokens, f)
		}
	}

	return &Pool{tokens: tokens, rng: rand.New(rand.NewSource(1))}
}

var _ outbound.TokenPoolPort = (*Pool)(nil)

// Acquire returns a randomly selected token. Exhaustion (an empty pool) is
// a distinct, provisioning-kind error so the caller can tell it apart from
// an upstream failure.
func (p *Pool) Acquire(ctx context.Context) (string, error) {
	if len(p.tokens) == 0 {
		return "", apperrors.New(apperrors.KindProvisioning, "token pool is empty", nil)
	}

	p.mu.Lock()
	idx := p.rng.Intn(len(p.tokens))
	p.mu.Unlock()

	return p.tokens[idx], nil
}

// Size reports the number of tokens in the pool.
func (p *Pool) Size() int {
	return len(p.tokens)
}
