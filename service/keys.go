package service

import (
	"context"
	"log/slog"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// KeyResolver queries the ledger directory for an address's active keys.
// Lookup failures are soft: they log, report ok=false and hand the error
// back so the orchestrator can degrade to the default-key path and only
// surface the fault if every fallback also fails. Results are never
// cached across requests; keys can be rotated between them.
type KeyResolver struct {
	directory ports.KeyDirectory
	log       *slog.Logger
}

// NewKeyResolver creates a resolver over the directory.
func NewKeyResolver(directory ports.KeyDirectory, log *slog.Logger) *KeyResolver {
	if log == nil {
		log = slog.Default()
	}
	return &KeyResolver{directory: directory, log: log}
}

// PrimaryKey returns the first non-revoked key in ledger-reported order.
// ok=false means the account has none or the lookup failed; the error is
// set only in the latter case.
func (r *KeyResolver) PrimaryKey(ctx context.Context, address string) (core.AccountKey, bool, error) {
	keys, err := r.directory.AccountKeys(ctx, address)
	if err != nil {
		r.log.Warn("key directory lookup failed", "address", address, "error", err)
		return core.AccountKey{}, false, err
	}
	for _, key := range keys {
		if !key.Revoked {
			return key, true, nil
		}
	}
	return core.AccountKey{}, false, nil
}

// ActiveKeys returns every non-revoked key in ledger-reported order; an
// empty list on lookup failure.
func (r *KeyResolver) ActiveKeys(ctx context.Context, address string) ([]core.AccountKey, error) {
	keys, err := r.directory.AccountKeys(ctx, address)
	if err != nil {
		r.log.Warn("key directory lookup failed", "address", address, "error", err)
		return nil, err
	}
	active := keys[:0:0]
	for _, key := range keys {
		if !key.Revoked {
			active = append(active, key)
		}
	}
	return active, nil
}
