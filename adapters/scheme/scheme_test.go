package scheme

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/internal/eth"
)

func TestPersonalSchemeDefaultKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	message := []byte("Sign in to Rangda\n\nNonce: abc123")
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)

	s := NewPersonalScheme()

	// No key material: the recovered signer must resolve to the address.
	ok, err := s.Verify(context.Background(), message, sig, address, core.AccountKey{Index: core.DefaultKeyIndex})
	require.NoError(t, err)
	assert.True(t, ok)

	// Wallets commonly shift the recovery id by 27.
	shifted := append([]byte(nil), sig...)
	shifted[64] += 27
	ok, err = s.Verify(context.Background(), message, shifted, address, core.AccountKey{Index: core.DefaultKeyIndex})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPersonalSchemeRegisteredKeyMaterial(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	message := []byte("challenge text")
	sig, err := crypto.Sign(accounts.TextHash(message), key)
	require.NoError(t, err)

	s := NewPersonalScheme()
	uncompressed := crypto.FromECDSAPub(&key.PublicKey)

	materials := map[string][]byte{
		"uncompressed":        uncompressed,
		"uncompressed no tag": uncompressed[1:],
		"compressed":          crypto.CompressPubkey(&key.PublicKey),
	}
	for name, material := range materials {
		ok, err := s.Verify(context.Background(), message, sig, address, core.AccountKey{Index: 1, PublicKey: material})
		require.NoError(t, err, name)
		assert.True(t, ok, name)
	}

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	ok, err := s.Verify(context.Background(), message, sig, address, core.AccountKey{
		Index:     2,
		PublicKey: crypto.FromECDSAPub(&other.PublicKey),
	})
	require.NoError(t, err)
	assert.False(t, ok, "foreign key material must not match")
}

func TestPersonalSchemeRejectsWithoutThrowing(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	s := NewPersonalScheme()

	// Truncated signature.
	ok, err := s.Verify(context.Background(), []byte("msg"), []byte{0x01, 0x02}, address, core.AccountKey{})
	require.NoError(t, err)
	assert.False(t, ok)

	// Valid signature, wrong claimed address.
	sig, err := crypto.Sign(accounts.TextHash([]byte("msg")), key)
	require.NoError(t, err)
	ok, err = s.Verify(context.Background(), []byte("msg"), sig, "0x1111111111111111111111111111111111111111", core.AccountKey{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTypedScheme(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	domain := eth.EIP712Domain{
		Name:              "Rangda",
		Version:           "1",
		ChainID:           big.NewInt(1),
		VerifyingContract: common.Address{},
	}

	message := "Sign in to Rangda\n\nNonce: abc123"
	digest, err := eth.HashTypedData(domain, eth.NonceMessage(message))
	require.NoError(t, err)
	sig, err := crypto.Sign(digest, key)
	require.NoError(t, err)

	s := NewTypedScheme(domain)

	ok, err := s.Verify(context.Background(), []byte(message), sig, address, core.AccountKey{})
	require.NoError(t, err)
	assert.True(t, ok)

	// A signature over different contents must not verify.
	ok, err = s.Verify(context.Background(), []byte("other text"), sig, address, core.AccountKey{})
	require.NoError(t, err)
	assert.False(t, ok)

	// Nor one under a different domain.
	otherDomain := domain
	otherDomain.ChainID = big.NewInt(5)
	ok, err = NewTypedScheme(otherDomain).Verify(context.Background(), []byte(message), sig, address, core.AccountKey{})
	require.NoError(t, err)
	assert.False(t, ok)
}
