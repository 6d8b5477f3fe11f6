package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints.
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers.
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Nonce handles the challenge nonce request. The address is optional;
// when present the nonce is bound to it.
func (h *AuthHandlers) Nonce(c *gin.Context) {
	var req struct {
		Address string `json:"address"`
	}

	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	challenge, err := h.authService.GenerateNonce(c.Request.Context(), req.Address)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// Verify handles the signed-challenge login request.
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Address    string `json:"address"`
		Signature  string `json:"signature"`
		Message    string `json:"message"`
		Timestamp  int64  `json:"timestamp"`
		Nonce      string `json:"nonce"`
		WalletType string `json:"wallet_type"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	attempt := &core.AuthAttempt{
		Address:    req.Address,
		Signature:  req.Signature,
		Message:    req.Message,
		Timestamp:  req.Timestamp,
		Nonce:      req.Nonce,
		WalletType: core.WalletType(req.WalletType),
	}

	result, err := h.authService.Verify(c.Request.Context(), attempt)
	if err != nil {
		status, msg := statusFor(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      result.Token,
		"token_type": "Bearer",
		"expires_in": int64(result.ExpiresIn.Seconds()),
		"user_id":    result.UserID,
		"address":    result.Address,
		"role":       result.Role,
		"wallet":     string(result.Wallet),
		"issued_at":  result.IssuedAt.UnixMilli(),
		"expires_at": result.ExpiresAt.UnixMilli(),
	})
}

// Me returns information about the authenticated user.
func (h *AuthHandlers) Me(c *gin.Context) {
	credential, exists := c.Get("credential")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "credential not found in context"})
		return
	}
	cred := credential.(*core.SessionCredential)

	c.JSON(http.StatusOK, gin.H{
		"user_id": cred.Subject,
		"address": cred.Address,
		"role":    cred.Role,
		"wallet":  string(cred.Wallet),
	})
}

// statusFor maps a pipeline error onto a response status and a message
// safe to disclose. Infrastructure faults get a distinct status class and
// a generic body; details stay in the logs.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrMissingField),
		errors.Is(err, core.ErrInvalidAddress),
		errors.Is(err, core.ErrUnsupportedWallet):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrTimestampOutOfRange),
		errors.Is(err, core.ErrInvalidNonce),
		errors.Is(err, core.ErrInvalidSignature):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests, core.ErrRateLimited.Error()
	default:
		return http.StatusInternalServerError, core.ErrInfrastructure.Error()
	}
}
