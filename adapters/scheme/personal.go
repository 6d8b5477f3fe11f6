package scheme

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/internal/eth"
	"github.com/layer-3/rangda/ports"
)

// PersonalScheme verifies EIP-191 personal-sign signatures, the format
// produced by browser extension and WalletConnect wallets.
type PersonalScheme struct{}

// NewPersonalScheme creates a personal-sign scheme.
func NewPersonalScheme() ports.SignatureScheme {
	return &PersonalScheme{}
}

// Verify recovers the signer from the prefixed message digest and matches
// it against the candidate key. Malformed or mismatching signatures return
// false; this scheme has no infrastructure dependency, so the error return
// is always nil.
func (s *PersonalScheme) Verify(_ context.Context, message, sig []byte, address string, key core.AccountKey) (bool, error) {
	digest := accounts.TextHash(message)
	pub, err := eth.RecoverSigner(digest, sig)
	if err != nil {
		return false, nil
	}
	return matchesKey(pub, address, key), nil
}
