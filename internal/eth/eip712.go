// Package eth holds the EIP-712 typed-data helpers used by the
// signature schemes.
package eth

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// SignatureLength is the expected length of a chain signature (r || s || v).
const SignatureLength = 65

// EIP712Domain identifies the signing domain presented to wallets.
type EIP712Domain struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}

// NonceMessage builds the typed-data message for a challenge nonce.
func NonceMessage(contents string) apitypes.TypedDataMessage {
	return apitypes.TypedDataMessage{"contents": contents}
}

// HashTypedData computes the EIP-712 digest for a message under domain.
func HashTypedData(domain EIP712Domain, msg apitypes.TypedDataMessage) ([]byte, error) {
	td := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Challenge": {
				{Name: "contents", Type: "string"},
			},
		},
		PrimaryType: "Challenge",
		Domain: apitypes.TypedDataDomain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainId:           math.NewHexOrDecimal256(domain.ChainID.Int64()),
			VerifyingContract: domain.VerifyingContract.Hex(),
		},
		Message: msg,
	}

	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, fmt.Errorf("failed to hash typed data: %w", err)
	}
	return hash, nil
}

// RecoverTypedSigner recovers the public key that produced sig over the
// typed-data digest of msg under domain.
func RecoverTypedSigner(domain EIP712Domain, msg apitypes.TypedDataMessage, sig []byte) (*ecdsa.PublicKey, error) {
	hash, err := HashTypedData(domain, msg)
	if err != nil {
		return nil, err
	}
	return RecoverSigner(hash, sig)
}

// VerifySignatureAgainstAddress reports whether sig over msg under domain
// was produced by the key behind expected.
func VerifySignatureAgainstAddress(domain EIP712Domain, msg apitypes.TypedDataMessage, sig []byte, expected common.Address) (bool, error) {
	pub, err := RecoverTypedSigner(domain, msg, sig)
	if err != nil {
		return false, err
	}
	return crypto.PubkeyToAddress(*pub) == expected, nil
}

// RecoverSigner recovers the public key from a 65-byte signature over a
// precomputed digest, accepting both 0/1 and 27/28 recovery identifiers.
func RecoverSigner(digest, sig []byte) (*ecdsa.PublicKey, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(sig))
	}
	norm := make([]byte, SignatureLength)
	copy(norm, sig)
	if norm[SignatureLength-1] >= 27 {
		norm[SignatureLength-1] -= 27
	}
	pub, err := crypto.SigToPub(digest, norm)
	if err != nil {
		return nil, fmt.Errorf("failed to recover signer: %w", err)
	}
	return pub, nil
}
