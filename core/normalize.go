package core

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeSignature converts a wallet-supplied signature string into
// canonical lower-case hex without prefix. Accepted encodings, tried in
// order: 0x-prefixed hex, bare hex, base64. Base64 is only accepted when
// re-encoding the decoded bytes reproduces the input, so malformed strings
// that merely happen to parse are rejected. Returns ok=false for anything
// unrecognized; callers treat that as a verification failure.
func NormalizeSignature(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		body := raw[2:]
		if isHex(body) && len(body)%2 == 0 {
			return strings.ToLower(body), true
		}
		return "", false
	}

	if isHex(raw) && len(raw)%2 == 0 {
		return strings.ToLower(raw), true
	}

	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		if base64.StdEncoding.EncodeToString(decoded) == raw {
			return hex.EncodeToString(decoded), true
		}
	}

	return "", false
}

// DecodeMessage returns the UTF-8 form of a challenge message. Wallets may
// submit either the raw text or its hex encoding; hex-looking payloads
// (even length, hex alphabet, optional 0x prefix) are decoded, anything
// else passes through unchanged.
func DecodeMessage(message string) string {
	body := message
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		body = body[2:]
	}
	if body == "" || len(body)%2 != 0 || !isHex(body) {
		return message
	}
	decoded, err := hex.DecodeString(body)
	if err != nil || !utf8.Valid(decoded) {
		return message
	}
	return string(decoded)
}

// ValidAddress reports whether address matches the chain's canonical
// grammar: the 0x prefix followed by exactly 40 hex characters.
func ValidAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
