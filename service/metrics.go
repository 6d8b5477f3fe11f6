package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/layer-3/rangda/core"
)

var (
	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rangda_auth_attempts_total",
		Help: "Authentication attempts by outcome.",
	}, []string{"outcome"})

	noncesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rangda_nonces_issued_total",
		Help: "Challenge nonces issued.",
	})
)

// outcomeLabel buckets a pipeline error into the taxonomy.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, core.ErrMissingField):
		return "structural"
	case errors.Is(err, core.ErrTimestampOutOfRange):
		return "timestamp"
	case errors.Is(err, core.ErrInvalidNonce):
		return "nonce"
	case errors.Is(err, core.ErrInvalidAddress):
		return "address"
	case errors.Is(err, core.ErrInvalidSignature):
		return "signature"
	case errors.Is(err, core.ErrUnsupportedWallet):
		return "wallet"
	case errors.Is(err, core.ErrRateLimited):
		return "rate_limited"
	default:
		return "infrastructure"
	}
}
