// Package directory provides a placeholder legacy-account directory.
// Deployments replace it with the integration against the real account
// system; the stub reports every phone as ineligible so registration stays
// closed until that integration is wired in.
package directory

import (
	"context"

	"github.com/terangapay/terangapay/internal/server/services"
)

type Stub struct{}

func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) LookupActiveAccount(ctx context.Context, phone string) (*services.LegacyAccount, error) {
	return nil, nil
}
