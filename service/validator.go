package service

import (
	"fmt"
	"time"

	"github.com/layer-3/rangda/core"
)

// Validator performs the structural and timestamp preconditions of an
// authentication attempt. Checks run in a fixed order and the first
// failure wins.
type Validator struct {
	Tolerance time.Duration
}

// NewValidator creates a validator with the default clock-skew tolerance.
func NewValidator() *Validator {
	return &Validator{Tolerance: core.TimestampTolerance}
}

// Structure checks that every required field is present. These errors are
// safe to report verbatim.
func (v *Validator) Structure(attempt *core.AuthAttempt) error {
	switch {
	case attempt.Address == "":
		return fmt.Errorf("%w: address", core.ErrMissingField)
	case attempt.Signature == "":
		return fmt.Errorf("%w: signature", core.ErrMissingField)
	case attempt.Message == "":
		return fmt.Errorf("%w: message", core.ErrMissingField)
	case attempt.Timestamp <= 0:
		return fmt.Errorf("%w: timestamp", core.ErrMissingField)
	case attempt.Nonce == "":
		return fmt.Errorf("%w: nonce", core.ErrMissingField)
	}
	return nil
}

// Timestamp enforces the clock-skew window. This bounds the total replay
// window independently of the nonce TTL, so it applies regardless of
// nonce state.
func (v *Validator) Timestamp(attempt *core.AuthAttempt, now time.Time) error {
	drift := now.UnixMilli() - attempt.Timestamp
	if drift < 0 {
		drift = -drift
	}
	if drift > v.Tolerance.Milliseconds() {
		return fmt.Errorf("%w: allowed drift is %s", core.ErrTimestampOutOfRange, v.Tolerance)
	}
	return nil
}

// Address enforces the chain's address grammar. Unlike the nonce check
// this error is descriptive; it reveals no secret.
func (v *Validator) Address(address string) error {
	if !core.ValidAddress(address) {
		return fmt.Errorf("%w: want 0x followed by 40 hex characters", core.ErrInvalidAddress)
	}
	return nil
}
