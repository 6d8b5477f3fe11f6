package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims combines standard claims with the session-specific ones.
// The subject is the derived user identity, not the address.
type SessionClaims struct {
	jwt.RegisteredClaims
	Address string            `json:"addr"`
	Role    string            `json:"role"`
	Wallet  string            `json:"wlt"`
	Extra   map[string]string `json:"ext,omitempty"`
}
