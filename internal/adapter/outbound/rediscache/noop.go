package rediscache

import (
	"context"

	"github.com/uniedit/genbridge/internal/model"
	"github.com/uniedit/genbridge/internal/port/outbound"
)

// NoOp implements outbound.CreditCachePort as an always-miss cache, for
// deployments where Redis is unreachable at startup. Every credit check then
// queries the upstream balance directly; the check is advisory either way.
type NoOp struct{}

var _ outbound.CreditCachePort = NoOp{}

func (NoOp) GetCreditBalance(ctx context.Context, sessionToken string) (*model.CreditBalance, error) {
	return nil, outbound.ErrCacheMiss
}

func (NoOp) SetCreditBalance(ctx context.Context, sessionToken string, balance *model.CreditBalance) error {
	return nil
}
