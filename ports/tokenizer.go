package ports

import "github.com/layer-3/rangda/core"

// Tokenizer issues and verifies session credentials.
type Tokenizer interface {
	// Issue derives the stable subject for the address and signs a
	// credential with the fixed session lifetime. Extra claims are
	// embedded as-is; the "role" key overrides the default role.
	Issue(address string, wallet core.WalletType, extra map[string]string) (*core.SessionCredential, error)

	// Verify parses a credential string and returns its claims, or
	// core.ErrInvalidToken / core.ErrTokenExpired.
	Verify(token string) (*core.SessionCredential, error)
}
