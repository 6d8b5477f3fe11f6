package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/layer-3/rangda/core"
)

func validAttempt() *core.AuthAttempt {
	return &core.AuthAttempt{
		Address:   "0x1111111111111111111111111111111111111111",
		Signature: "0xdeadbeef",
		Message:   "Sign in to Rangda\n\nNonce: abc",
		Timestamp: time.Now().UnixMilli(),
		Nonce:     "abc",
	}
}

func TestStructureReportsFirstMissingField(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name   string
		mutate func(*core.AuthAttempt)
		field  string
	}{
		{"address", func(a *core.AuthAttempt) { a.Address = "" }, "address"},
		{"signature", func(a *core.AuthAttempt) { a.Signature = "" }, "signature"},
		{"message", func(a *core.AuthAttempt) { a.Message = "" }, "message"},
		{"timestamp", func(a *core.AuthAttempt) { a.Timestamp = 0 }, "timestamp"},
		{"nonce", func(a *core.AuthAttempt) { a.Nonce = "" }, "nonce"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attempt := validAttempt()
			tc.mutate(attempt)
			err := v.Structure(attempt)
			assert.ErrorIs(t, err, core.ErrMissingField)
			assert.Contains(t, err.Error(), tc.field)
		})
	}

	assert.NoError(t, v.Structure(validAttempt()))
}

func TestStructureOrderIsFixed(t *testing.T) {
	v := NewValidator()

	// With everything missing the first check in order must win.
	err := v.Structure(&core.AuthAttempt{})
	assert.ErrorIs(t, err, core.ErrMissingField)
	assert.Contains(t, err.Error(), "address")
}

func TestTimestampWindow(t *testing.T) {
	v := NewValidator()
	now := time.Now()

	inside := []time.Duration{
		0,
		time.Minute,
		-time.Minute,
		core.TimestampTolerance,
		-core.TimestampTolerance,
	}
	for _, drift := range inside {
		attempt := validAttempt()
		attempt.Timestamp = now.Add(drift).UnixMilli()
		assert.NoError(t, v.Timestamp(attempt, now), "drift %s", drift)
	}

	outside := []time.Duration{
		core.TimestampTolerance + time.Second,
		-core.TimestampTolerance - time.Second,
		10 * time.Minute,
	}
	for _, drift := range outside {
		attempt := validAttempt()
		attempt.Timestamp = now.Add(drift).UnixMilli()
		err := v.Timestamp(attempt, now)
		assert.ErrorIs(t, err, core.ErrTimestampOutOfRange, "drift %s", drift)
		assert.Contains(t, err.Error(), v.Tolerance.String(), "tolerance is safe to disclose")
	}
}

func TestAddressGrammar(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Address("0x1111111111111111111111111111111111111111"))
	assert.ErrorIs(t, v.Address("1111111111111111111111111111111111111111"), core.ErrInvalidAddress)
	assert.ErrorIs(t, v.Address("0x1234"), core.ErrInvalidAddress)
}
