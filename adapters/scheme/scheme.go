// Package scheme provides the ECDSA signature schemes wallets sign with.
package scheme

import (
	"bytes"
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/layer-3/rangda/core"
)

// matchesKey reports whether the recovered public key corresponds to the
// candidate account key. A candidate without key material is the
// default-key fallback: the signer must then resolve to the claimed
// address itself.
func matchesKey(pub *ecdsa.PublicKey, address string, key core.AccountKey) bool {
	if len(key.PublicKey) == 0 {
		return crypto.PubkeyToAddress(*pub) == common.HexToAddress(address)
	}

	uncompressed := crypto.FromECDSAPub(pub)
	switch len(key.PublicKey) {
	case 65:
		return bytes.Equal(key.PublicKey, uncompressed)
	case 64:
		return bytes.Equal(key.PublicKey, uncompressed[1:])
	case 33:
		return bytes.Equal(key.PublicKey, crypto.CompressPubkey(pub))
	default:
		return false
	}
}
