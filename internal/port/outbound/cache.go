package outbound

import (
	"context"
	"errors"

	"github.com/uniedit/genbridge/internal/model"
)

// ErrCacheMiss signals an absent key; callers decide the best-effort
// fallback (genbridge's credit check answers a miss by querying the
// upstream balance).
var ErrCacheMiss = errors.New("cache: miss")

// CreditCachePort caches a session's last-known credit balance so the
// orchestrator's pre-flight check can avoid a remote round trip on every
// call. Best-effort: a miss or backend outage must never block a call.
type CreditCachePort interface {
	GetCreditBalance(ctx context.Context, sessionToken string) (*model.CreditBalance, error)
	SetCreditBalance(ctx context.Context, sessionToken string, balance *model.CreditBalance) error
}
