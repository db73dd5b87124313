// Package sessionprovider holds the contract-only Session Provider's default
// adapter: the browser-automation and temporary-email pickup that would mint
// real tokens is out of scope for this core, so Unavailable simply reports
// provisioning failure for every call. Deployments that carry the real
// implementation wire their own outbound.SessionProviderPort in its place.
package sessionprovider

import (
	"context"

	"github.com/uniedit/genbridge/internal/port/outbound"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
)

// Unavailable implements outbound.SessionProviderPort by always failing.
type Unavailable struct{}

// New returns the default, always-failing Session Provider adapter.
func New() *Unavailable {
	return &Unavailable{}
}

var _ outbound.SessionProviderPort = (*Unavailable)(nil)

// NewSessionToken always fails: this core carries no session-minting
// implementation. Callers that need generateSession must supply their own
// outbound.SessionProviderPort.
func (u *Unavailable) NewSessionToken(ctx context.Context) (string, error) {
	return "", apperrors.New(apperrors.KindProvisioning, "session provider is not configured", nil)
}
