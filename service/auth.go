// Package service sequences wallet-signature verification into the
// end-to-end verify-and-issue pipeline.
package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/internal/ratelimit"
	"github.com/layer-3/rangda/ports"
)

// WalletCapability tells the pipeline how to verify signatures for one
// wallet type: which scheme to run and whether a failed directory lookup
// may degrade to the default key index. The fallback selects which key to
// attempt verification against; it never bypasses a failed check.
type WalletCapability struct {
	Scheme             ports.SignatureScheme
	DefaultKeyFallback bool
}

// AuthService owns the verification state machine. All collaborators are
// constructor-injected; the service keeps no per-request state of its
// own, so concurrent attempts only meet inside the nonce store.
type AuthService struct {
	nonces    ports.NonceStore
	tokenizer ports.Tokenizer
	events    ports.EventPublisher
	resolver  *KeyResolver
	validator *Validator
	wallets   map[core.WalletType]WalletCapability
	limiter   *ratelimit.Keyed
	log       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	nonces ports.NonceStore,
	directory ports.KeyDirectory,
	tokenizer ports.Tokenizer,
	events ports.EventPublisher,
	wallets map[core.WalletType]WalletCapability,
	log *slog.Logger,
) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		nonces:    nonces,
		tokenizer: tokenizer,
		events:    events,
		resolver:  NewKeyResolver(directory, log),
		validator: NewValidator(),
		wallets:   wallets,
		limiter:   ratelimit.NewKeyed(1, 5, 10*time.Minute),
		log:       log,
	}
}

// GenerateNonce issues a fresh challenge for the caller to sign. The
// address is optional; when given it is validated, rate limited and bound
// to the nonce.
func (s *AuthService) GenerateNonce(ctx context.Context, address string) (*core.NonceChallenge, error) {
	if address != "" {
		if err := s.validator.Address(address); err != nil {
			return nil, err
		}
		if !s.limiter.Allow(strings.ToLower(address), time.Now()) {
			return nil, core.ErrRateLimited
		}
	}

	nonce, err := s.nonces.Generate(ctx, address)
	if err != nil {
		s.log.Error("nonce generation failed", "error", err)
		return nil, fmt.Errorf("%w: nonce store unavailable", core.ErrInfrastructure)
	}
	noncesIssued.Inc()

	return &core.NonceChallenge{
		Nonce:     nonce.Value,
		Message:   core.ChallengeMessage(nonce.Value),
		Timestamp: nonce.CreatedAt.UnixMilli(),
	}, nil
}

// Verify runs a signed-challenge attempt through the pipeline and, on
// success, returns an issued session credential.
func (s *AuthService) Verify(ctx context.Context, attempt *core.AuthAttempt) (*core.AuthResult, error) {
	result, err := s.verify(ctx, attempt)
	authAttempts.WithLabelValues(outcomeLabel(err)).Inc()
	return result, err
}

// verify is the state machine: structure -> timestamp -> nonce ->
// address -> normalize -> resolve keys -> candidate loop -> consume ->
// issue. Transitions are strictly sequential; any failure short-circuits.
func (s *AuthService) verify(ctx context.Context, attempt *core.AuthAttempt) (*core.AuthResult, error) {
	now := time.Now()

	if err := s.validator.Structure(attempt); err != nil {
		return nil, err
	}
	if err := s.validator.Timestamp(attempt, now); err != nil {
		return nil, err
	}

	// Advisory nonce check: cheap rejection before any signature work.
	// Single-use is enforced by Consume below, not here.
	valid, err := s.nonces.Validate(ctx, attempt.Nonce, now)
	if err != nil {
		s.log.Error("nonce validation failed", "error", err)
		return nil, fmt.Errorf("%w: nonce store unavailable", core.ErrInfrastructure)
	}
	if !valid {
		return nil, core.ErrInvalidNonce
	}

	bound, err := s.nonces.Bound(ctx, attempt.Nonce)
	if err != nil {
		s.log.Error("nonce binding lookup failed", "error", err)
		return nil, fmt.Errorf("%w: nonce store unavailable", core.ErrInfrastructure)
	}
	if bound != "" && !strings.EqualFold(bound, attempt.Address) {
		return nil, core.ErrInvalidNonce
	}

	if err := s.validator.Address(attempt.Address); err != nil {
		return nil, err
	}

	sigHex, ok := core.NormalizeSignature(attempt.Signature)
	if !ok {
		return nil, core.ErrInvalidSignature
	}
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return nil, core.ErrInvalidSignature
	}

	// The message must quote the nonce, otherwise the signature was
	// produced over some unrelated text.
	message := core.DecodeMessage(attempt.Message)
	if !strings.Contains(message, attempt.Nonce) {
		return nil, core.ErrInvalidNonce
	}

	wallet := attempt.WalletType
	if wallet == "" {
		wallet = core.DefaultWalletType
	}
	capability, ok := s.wallets[wallet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedWallet, wallet)
	}

	candidates, lookupErr := s.candidates(ctx, attempt.Address, capability.DefaultKeyFallback)
	if len(candidates) == 0 {
		if lookupErr != nil {
			// No fallback could produce a candidate either; only now
			// does the directory fault surface.
			return nil, fmt.Errorf("%w: key directory unavailable", core.ErrInfrastructure)
		}
		return nil, core.ErrInvalidSignature
	}

	verified := false
	var primitiveErr error
	for _, key := range candidates {
		ok, err := capability.Scheme.Verify(ctx, []byte(message), sig, attempt.Address, key)
		if err != nil {
			s.log.Warn("verification primitive failed", "key_index", key.Index, "error", err)
			primitiveErr = err
			continue
		}
		if ok {
			verified = true
			break
		}
	}
	if !verified {
		if primitiveErr != nil {
			return nil, fmt.Errorf("%w: verification unavailable", core.ErrInfrastructure)
		}
		return nil, core.ErrInvalidSignature
	}

	// Consume only after cryptographic success; consuming earlier would
	// burn a nonce the user could legitimately retry with after a
	// transient verification fault.
	consumed, err := s.nonces.Consume(ctx, attempt.Nonce, now)
	if err != nil {
		s.log.Error("nonce consume failed", "error", err)
		return nil, fmt.Errorf("%w: nonce store unavailable", core.ErrInfrastructure)
	}
	if !consumed {
		// Lost a race with a concurrent attempt on the same nonce.
		return nil, core.ErrInvalidNonce
	}

	// The caller already proved key possession, so a failure past this
	// point is an internal fault, not an authentication failure. The
	// nonce stays consumed.
	credential, err := s.tokenizer.Issue(attempt.Address, wallet, nil)
	if err != nil {
		s.log.Error("credential issuance failed", "error", err)
		return nil, fmt.Errorf("%w: credential issuance failed", core.ErrInfrastructure)
	}

	result := &core.AuthResult{
		Address:   credential.Address,
		UserID:    credential.Subject,
		Role:      credential.Role,
		Wallet:    credential.Wallet,
		Token:     credential.Token,
		IssuedAt:  credential.IssuedAt,
		ExpiresAt: credential.ExpiresAt,
		ExpiresIn: credential.ExpiresIn,
	}

	if s.events != nil {
		if err := s.events.PublishLogin(ctx, result); err != nil {
			// The login already succeeded; downstream notification is
			// best effort.
			s.log.Warn("failed to publish login event", "error", err)
		}
	}

	return result, nil
}

// ValidateToken verifies an issued credential for the transport layer.
func (s *AuthService) ValidateToken(token string) (*core.SessionCredential, error) {
	return s.tokenizer.Verify(token)
}

// candidates assembles the ordered key list the scheme is attempted
// against: the primary key first, then the remaining active keys once
// each. When resolution failed entirely the order is the default key
// index (if the wallet's capability allows it) followed by whatever the
// all-keys call can still produce. The returned error reports a
// directory fault but never short-circuits candidate assembly.
func (s *AuthService) candidates(ctx context.Context, address string, fallback bool) ([]core.AccountKey, error) {
	primary, ok, primaryErr := s.resolver.PrimaryKey(ctx, address)
	if ok {
		candidates := []core.AccountKey{primary}
		active, _ := s.resolver.ActiveKeys(ctx, address)
		for _, key := range active {
			if key.Index != primary.Index {
				candidates = append(candidates, key)
			}
		}
		return candidates, nil
	}

	var candidates []core.AccountKey
	if fallback {
		candidates = append(candidates, core.AccountKey{Index: core.DefaultKeyIndex})
	}
	active, activeErr := s.resolver.ActiveKeys(ctx, address)
	for _, key := range active {
		if fallback && key.Index == core.DefaultKeyIndex {
			continue
		}
		candidates = append(candidates, key)
	}

	if primaryErr != nil && activeErr != nil {
		return candidates, activeErr
	}
	return candidates, nil
}
