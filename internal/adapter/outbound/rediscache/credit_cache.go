// Package rediscache implements outbound.CreditCachePort on top of Redis,
// keying the cached balance by session token and expiring it well inside
// the window a credit balance can realistically go stale.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/genbridge/internal/model"
	"github.com/uniedit/genbridge/internal/port/outbound"
)

const (
	creditKeyPrefix = "credit:balance:"
	creditTTL       = 5 * time.Minute
)

// CreditCache implements outbound.CreditCachePort.
type CreditCache struct {
	client redis.UniversalClient
}

// New creates a new Redis-backed credit cache adapter.
func New(client redis.UniversalClient) *CreditCache {
	return &CreditCache{client: client}
}

var _ outbound.CreditCachePort = (*CreditCache)(nil)

func (c *CreditCache) key(sessionToken string) string {
	return creditKeyPrefix + sessionToken
}

// GetCreditBalance returns outbound.ErrCacheMiss when the key is absent,
// letting the orchestrator fall back to an upstream lookup.
func (c *CreditCache) GetCreditBalance(ctx context.Context, sessionToken string) (*model.CreditBalance, error) {
	raw, err := c.client.Get(ctx, c.key(sessionToken)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, outbound.ErrCacheMiss
		}
		return nil, fmt.Errorf("rediscache: get credit balance: %w", err)
	}

	var balance model.CreditBalance
	if err := json.Unmarshal(raw, &balance); err != nil {
		return nil, fmt.Errorf("rediscache: decode credit balance: %w", err)
	}
	return &balance, nil
}

// SetCreditBalance writes the balance with a short TTL; the orchestrator
// treats this as best-effort and does not fail the caller's request when
// this errors.
func (c *CreditCache) SetCreditBalance(ctx context.Context, sessionToken string, balance *model.CreditBalance) error {
	raw, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("rediscache: encode credit balance: %w", err)
	}

	if err := c.client.Set(ctx, c.key(sessionToken), raw, creditTTL).Err(); err != nil {
		return fmt.Errorf("rediscache: set credit balance: %w", err)
	}
	return nil
}
