package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// Canonicalize renders a parameter map in the exact byte form the gateway
// signs: empty values dropped, every key and value form-encoded (spaces
// become '+'), pairs sorted by encoded key and joined with '&'. Any
// divergence from the gateway's rendering invalidates every signature, so
// both the signing and the verifying path must go through this function.
func Canonicalize(params map[string]string) string {
	pairs := make([]string, 0, len(params))
	for key, value := range params {
		if key == "" || value == "" {
			continue
		}
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// Sign computes the gateway signature: HMAC-SHA-512 over the canonical
// rendering, lowercase hex.
func Sign(params map[string]string, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(Canonicalize(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the signature for params and compares it to
// the received one in constant time. Comparison is case-insensitive on the
// hex digits only.
func VerifySignature(params map[string]string, secret, received string) bool {
	received = strings.ToLower(strings.TrimSpace(received))
	if received == "" {
		return false
	}
	expected := Sign(params, secret)
	return hmac.Equal([]byte(expected), []byte(received))
}
