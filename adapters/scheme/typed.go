package scheme

import (
	"context"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/internal/eth"
	"github.com/layer-3/rangda/ports"
)

// TypedScheme verifies EIP-712 typed-data signatures for dapp wallets
// that present the challenge as structured data instead of plain text.
type TypedScheme struct {
	domain eth.EIP712Domain
}

// NewTypedScheme creates a typed-data scheme bound to a signing domain.
func NewTypedScheme(domain eth.EIP712Domain) ports.SignatureScheme {
	return &TypedScheme{domain: domain}
}

// Verify recovers the signer from the typed-data digest of the challenge
// text and matches it against the candidate key.
func (s *TypedScheme) Verify(_ context.Context, message, sig []byte, address string, key core.AccountKey) (bool, error) {
	pub, err := eth.RecoverTypedSigner(s.domain, eth.NonceMessage(string(message)), sig)
	if err != nil {
		return false, nil
	}
	return matchesKey(pub, address, key), nil
}
