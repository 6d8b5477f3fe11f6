package ports

import (
	"context"

	"github.com/layer-3/rangda/core"
)

// SignatureScheme wraps one chain verification primitive. Verify returns
// false (with a nil error) on a cryptographic mismatch or malformed
// signature; an error is reserved for infrastructure faults on the
// underlying primitive. The message is the decoded challenge text and sig
// the canonical signature bytes.
//
// When key carries no public key material (the default-key fallback),
// the scheme falls back to recovering the signer and comparing it to the
// claimed address.
type SignatureScheme interface {
	Verify(ctx context.Context, message, sig []byte, address string, key core.AccountKey) (bool, error)
}
