package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/m-mizutani/pullhook/pkg/domain/types"
)

// Verification is the result of a signature check
type Verification int

const (
	VerificationInvalid Verification = iota
	VerificationValid
	VerificationSkipped
)

func (v Verification) String() string {
	switch v {
	case VerificationValid:
		return "valid"
	case VerificationSkipped:
		return "skipped"
	default:
		return "invalid"
	}
}

// Sign returns "sha256=" followed by the hex encoded HMAC-SHA256 of body keyed with secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return types.SignaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against body.
// An empty secret skips verification entirely; callers only get there in insecure mode.
func VerifySignature(secret string, body []byte, signature string) Verification {
	if secret == "" {
		return VerificationSkipped
	}
	if signature == "" {
		return VerificationInvalid
	}

	// hmac.Equal runs in constant time for equal length inputs
	if !hmac.Equal([]byte(signature), []byte(Sign(secret, body))) {
		return VerificationInvalid
	}
	return VerificationValid
}
