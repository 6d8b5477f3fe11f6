package ports

import (
	"context"

	"github.com/layer-3/rangda/core"
)

// KeyDirectory looks up the key list the ledger holds for an address,
// in ledger-reported order and including revoked entries. Filtering and
// the soft-failure fallback live in the service layer.
type KeyDirectory interface {
	AccountKeys(ctx context.Context, address string) ([]core.AccountKey, error)
}
