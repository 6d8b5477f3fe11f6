package tokenizer

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// AudienceSession scopes issued credentials to this service.
const AudienceSession = "rangda:session"

// JWTTokenizer implements the Tokenizer interface using ES256 JWTs.
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
	ttl     time.Duration
}

// NewJWTTokenizer creates a tokenizer with the fixed session lifetime.
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) ports.Tokenizer {
	return &JWTTokenizer{
		signKey: signKey,
		ttl:     core.SessionTTL,
	}
}

// Issue derives the stable subject for address and signs a session
// credential. ExpiresIn is read back from the claims the token itself
// carries so it always agrees with the token.
func (j *JWTTokenizer) Issue(address string, wallet core.WalletType, extra map[string]string) (*core.SessionCredential, error) {
	role := core.RoleUser
	if r, ok := extra["role"]; ok && r != "" {
		role = r
		extra = cloneWithout(extra, "role")
	}

	now := time.Now()
	address = strings.ToLower(address)
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   core.DeriveUserID(address),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{AudienceSession},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Address: address,
		Role:    role,
		Wallet:  string(wallet),
		Extra:   extra,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(j.signKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return credentialFromClaims(signed, &claims), nil
}

// Verify parses a credential string and returns its claims.
func (j *JWTTokenizer) Verify(tokenStr string) (*core.SessionCredential, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, core.ErrInvalidToken
	}
	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, core.ErrInvalidToken
	}

	return credentialFromClaims(tokenStr, claims), nil
}

func credentialFromClaims(token string, claims *SessionClaims) *core.SessionCredential {
	iat := claims.IssuedAt.Time
	exp := claims.ExpiresAt.Time
	return &core.SessionCredential{
		Token:     token,
		Subject:   claims.Subject,
		Address:   claims.Address,
		Role:      claims.Role,
		Wallet:    core.WalletType(claims.Wallet),
		IssuedAt:  iat,
		ExpiresAt: exp,
		ExpiresIn: exp.Sub(iat),
	}
}

func cloneWithout(m map[string]string, key string) map[string]string {
	if len(m) <= 1 {
		return nil
	}
	out := make(map[string]string, len(m)-1)
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}
