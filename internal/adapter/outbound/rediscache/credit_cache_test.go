package rediscache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uniedit/genbridge/internal/model"
	"github.com/uniedit/genbridge/internal/port/outbound"
)

func newTestCache(t *testing.T) *CreditCache {
	t.Helper()
	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client)
}

func TestCreditCache_MissReturnsErrCacheMiss(t *testing.T) {
	cache := newTestCache(t)

	_, err := cache.GetCreditBalance(context.Background(), "tok-unknown")
	require.Error(t, err)
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}

func TestCreditCache_SetThenGetRoundTrips(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	balance := &model.CreditBalance{GiftCredit: 10, PurchaseCredit: 5, VipCredit: 0, TotalCredit: 15}
	require.NoError(t, cache.SetCreditBalance(ctx, "tok-a", balance))

	got, err := cache.GetCreditBalance(ctx, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, balance, got)
}

func TestCreditCache_DifferentTokensAreIsolated(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetCreditBalance(ctx, "tok-a", &model.CreditBalance{TotalCredit: 1}))

	_, err := cache.GetCreditBalance(ctx, "tok-b")
	assert.ErrorIs(t, err, outbound.ErrCacheMiss)
}
