package keydirectory

import (
	"context"
	"strings"
	"sync"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// StaticDirectory serves key lists from an in-process map. It backs tests
// and single-node deployments without a registry contract.
type StaticDirectory struct {
	mu   sync.RWMutex
	keys map[string][]core.AccountKey
}

// NewStaticDirectory creates an empty static directory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{
		keys: make(map[string][]core.AccountKey),
	}
}

// SetKeys replaces the key list for an address.
func (d *StaticDirectory) SetKeys(address string, keys []core.AccountKey) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keys[strings.ToLower(address)] = keys
}

// AccountKeys returns the stored key list for address; unknown addresses
// resolve to an empty list rather than an error.
func (d *StaticDirectory) AccountKeys(ctx context.Context, address string) ([]core.AccountKey, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stored := d.keys[strings.ToLower(address)]
	keys := make([]core.AccountKey, len(stored))
	copy(keys, stored)
	return keys, nil
}

var _ ports.KeyDirectory = (*StaticDirectory)(nil)
