package qrtoken

import (
	"crypto/subtle"
	"time"
)

// Reason classifies a rejected scan.
type Reason string

const (
	ReasonSecretMismatch Reason = "secret_mismatch"
	ReasonExpired        Reason = "expired"
)

// Result of validating a decoded token against the current clock.
type Result struct {
	OK           bool
	Reason       Reason
	SessionLabel string
}

// Validate checks the shared secret and the window distance. Secret mismatch
// is checked first and reported regardless of epoch. The token is accepted
// for its own window plus `tolerance` neighbors on either side, absorbing
// clock skew and scan-queue delay.
func Validate(tok Token, now time.Time, expectedSecret string, window time.Duration, tolerance int64) Result {
	if subtle.ConstantTimeCompare([]byte(tok.Secret), []byte(expectedSecret)) != 1 {
		return Result{Reason: ReasonSecretMismatch}
	}
	current := WindowIndex(now, window)
	delta := current - tok.Epoch
	if delta < 0 {
		delta = -delta
	}
	if delta > tolerance {
		return Result{Reason: ReasonExpired}
	}
	return Result{OK: true, SessionLabel: tok.SessionLabel}
}
