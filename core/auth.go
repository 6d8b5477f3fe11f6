package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// WalletType identifies which wallet provider produced a signature. The
// capability descriptor registered for the type decides which signature
// scheme is used and whether the default-key fallback applies.
type WalletType string

const (
	WalletTypeMetaMask      WalletType = "metamask"
	WalletTypeWalletConnect WalletType = "walletconnect"
	WalletTypeDApp          WalletType = "dapp"

	// DefaultWalletType is assumed when the client does not say.
	DefaultWalletType = WalletTypeMetaMask
)

const (
	// RoleUser is the role granted on every fresh login. Elevation comes
	// from an external authorization store, never from this service.
	RoleUser = "user"

	// DefaultKeyIndex is attempted when the key directory cannot be
	// reached; many chains provision only this key.
	DefaultKeyIndex uint32 = 0

	// NonceTTL bounds how long a generated nonce stays presentable.
	NonceTTL = 5 * time.Minute

	// TimestampTolerance bounds client clock skew on auth attempts.
	TimestampTolerance = 2 * time.Minute

	// SessionTTL is the fixed credential lifetime; expiry is the only
	// termination mechanism.
	SessionTTL = 24 * time.Hour

	// UserIDHexLen is how many hex characters of the address digest make
	// up the derived user identity.
	UserIDHexLen = 16
)

// Nonce is a single-use challenge token. It transitions unused -> used
// exactly once; once used or past ExpiresAt it is permanently rejected.
type Nonce struct {
	Value     string
	Address   string // optional binding, set when generation named an address
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    time.Time
}

// Expired reports whether the nonce is past its TTL at now.
func (n Nonce) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) > NonceTTL
}

// NonceChallenge is what a caller receives when requesting a nonce.
type NonceChallenge struct {
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// AuthAttempt is the immutable input to the verification pipeline.
// Timestamp is client-reported epoch milliseconds.
type AuthAttempt struct {
	Address    string
	Signature  string
	Message    string
	Timestamp  int64
	Nonce      string
	WalletType WalletType
}

// AccountKey is one entry of an address's key list in the ledger
// directory. Keys are never cached across attempts; they can be rotated
// between requests.
type AccountKey struct {
	Index     uint32
	PublicKey []byte
	Revoked   bool
}

// SessionCredential is the issued session artifact. ExpiresIn is derived
// from the token's own iat/exp claims, not recomputed from the wall clock.
type SessionCredential struct {
	Token     string
	Subject   string
	Address   string
	Role      string
	Wallet    WalletType
	IssuedAt  time.Time
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

// AuthResult is produced once per successful attempt; failures are
// reported as errors from the taxonomy in errors.go.
type AuthResult struct {
	Address   string
	UserID    string
	Role      string
	Wallet    WalletType
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

// DeriveUserID maps an address to a stable pseudo-identity so repeated
// logins from the same address share a subject without a user database.
func DeriveUserID(address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(address)))
	return "user_" + hex.EncodeToString(sum[:])[:UserIDHexLen]
}

// ChallengeMessage builds the text a wallet is asked to sign for a nonce.
func ChallengeMessage(nonce string) string {
	return fmt.Sprintf("Sign in to Rangda\n\nNonce: %s", nonce)
}
