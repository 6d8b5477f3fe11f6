package ports

import (
	"context"
	"time"

	"github.com/layer-3/rangda/core"
)

// NonceStore owns the nonce lifecycle. Consume is the only mutation: it
// must behave as an atomic check-and-set so that two concurrent attempts
// presenting the same nonce yield exactly one winner.
type NonceStore interface {
	// Generate creates and persists a fresh nonce. The address binding is
	// optional; when set, verification enforces it. Expired records are
	// swept opportunistically here rather than on a timer.
	Generate(ctx context.Context, address string) (core.Nonce, error)

	// Validate reports whether a nonce with this value exists, is unused
	// and is within TTL at now. The three failure cases are deliberately
	// indistinguishable. The error return is for infrastructure faults
	// only, never for nonce state.
	Validate(ctx context.Context, value string, now time.Time) (bool, error)

	// Consume atomically transitions the nonce to used. It returns true
	// for exactly one caller per nonce; a false return means the nonce
	// was missing, expired or already used. Safe to call twice.
	Consume(ctx context.Context, value string, usedAt time.Time) (bool, error)

	// Bound returns the address the nonce was bound to at generation, or
	// empty when it was generated unbound.
	Bound(ctx context.Context, value string) (string, error)
}
