// Package keydirectory provides account key directory lookups.
package keydirectory

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// registryABI covers the single view we call on the key registry
// contract: the account's key indices, key material and revocation flags
// in registration order.
const registryABI = `[{"name":"getKeys","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"indices","type":"uint32[]"},{"name":"pubkeys","type":"bytes[]"},{"name":"revoked","type":"bool[]"}]}]`

// defaultCallTimeout bounds a registry read; a slow node degrades to the
// resolver's fallback path instead of stalling the attempt.
const defaultCallTimeout = 3 * time.Second

// ContractCaller is the slice of ethclient.Client the registry needs.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// RegistryDirectory reads account keys from an on-chain key registry.
type RegistryDirectory struct {
	caller   ContractCaller
	contract common.Address
	abi      abi.ABI
	timeout  time.Duration
}

// NewRegistryDirectory creates a directory backed by the registry
// contract at addr.
func NewRegistryDirectory(caller ContractCaller, addr common.Address) (*RegistryDirectory, error) {
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}
	return &RegistryDirectory{
		caller:   caller,
		contract: addr,
		abi:      parsed,
		timeout:  defaultCallTimeout,
	}, nil
}

// AccountKeys returns the ledger's key list for address, revoked entries
// included, in ledger-reported order.
func (d *RegistryDirectory) AccountKeys(ctx context.Context, address string) ([]core.AccountKey, error) {
	data, err := d.abi.Pack("getKeys", common.HexToAddress(address))
	if err != nil {
		return nil, fmt.Errorf("failed to pack registry call: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res, err := d.caller.CallContract(ctx, ethereum.CallMsg{To: &d.contract, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("registry call failed: %w", err)
	}

	out, err := d.abi.Unpack("getKeys", res)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack registry result: %w", err)
	}

	indices, ok := out[0].([]uint32)
	if !ok {
		return nil, fmt.Errorf("unexpected registry result shape")
	}
	pubkeys, ok := out[1].([][]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected registry result shape")
	}
	revoked, ok := out[2].([]bool)
	if !ok {
		return nil, fmt.Errorf("unexpected registry result shape")
	}
	if len(pubkeys) != len(indices) || len(revoked) != len(indices) {
		return nil, fmt.Errorf("registry returned mismatched key lists")
	}

	keys := make([]core.AccountKey, len(indices))
	for i := range indices {
		keys[i] = core.AccountKey{
			Index:     indices[i],
			PublicKey: pubkeys[i],
			Revoked:   revoked[i],
		}
	}
	return keys, nil
}

var _ ports.KeyDirectory = (*RegistryDirectory)(nil)
