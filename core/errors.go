package core

import "errors"

var (
	// ErrMissingField is returned when a required attempt field is absent.
	// Safe to disclose verbatim; wrap with the field name.
	ErrMissingField = errors.New("missing required field")

	// ErrTimestampOutOfRange is returned when the client timestamp falls
	// outside the tolerance window. Safe to disclose with the tolerance.
	ErrTimestampOutOfRange = errors.New("timestamp outside allowed window")

	// ErrInvalidNonce collapses not-found, already-used and expired into
	// one opaque failure so callers cannot probe nonce existence.
	ErrInvalidNonce = errors.New("invalid or expired nonce")

	// ErrInvalidAddress is returned when the address does not match the
	// chain's address grammar. Descriptive; reveals no secret.
	ErrInvalidAddress = errors.New("invalid account address")

	// ErrInvalidSignature collapses normalization failures and exhausted
	// key candidates; it never reveals which key indices were tried.
	ErrInvalidSignature = errors.New("signature verification failed")

	// ErrUnsupportedWallet is returned for a wallet type with no
	// registered capability descriptor.
	ErrUnsupportedWallet = errors.New("unsupported wallet type")

	// ErrTokenExpired is returned when a session credential has expired.
	ErrTokenExpired = errors.New("token has expired")

	// ErrInvalidToken is returned when a session credential cannot be
	// parsed or its claims fail validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInfrastructure marks store, directory or issuance faults. Logged
	// with detail internally, surfaced generically and never as an
	// authentication failure.
	ErrInfrastructure = errors.New("internal error")

	// ErrRateLimited is returned when nonce generation for an address is
	// throttled.
	ErrRateLimited = errors.New("too many requests")
)
