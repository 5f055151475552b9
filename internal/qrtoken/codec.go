package qrtoken

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	prefixApp     = "HADIR"
	prefixKind    = "SESSION"
	delimiter     = "_"
	DefaultLabel  = "DEFAULT"
	minimumFields = 4
)

// ErrDecode marks a malformed token. Scanner clients re-scan; there is no
// point in retrying the same payload.
var ErrDecode = errors.New("token tidak valid")

// Token is the decoded form of a rotating QR payload. Never persisted.
type Token struct {
	Epoch        int64
	Secret       string
	SessionLabel string
}

// Encode renders HADIR_SESSION_{epoch}_{secret}_{label}. The secret occupies
// exactly one segment, so it must not contain the delimiter; configuration
// rejects such secrets before they reach this package.
func Encode(epoch int64, secret, sessionLabel string) string {
	if sessionLabel == "" {
		sessionLabel = DefaultLabel
	}
	return strings.Join([]string{prefixApp, prefixKind, strconv.FormatInt(epoch, 10), secret, sessionLabel}, delimiter)
}

// Decode parses a scanned payload. The session label may itself contain the
// delimiter, so everything after the secret is re-joined rather than split
// into a fixed number of parts.
func Decode(raw string) (Token, error) {
	parts := strings.Split(raw, delimiter)
	if len(parts) < minimumFields || parts[0] != prefixApp || parts[1] != prefixKind {
		return Token{}, fmt.Errorf("%w: format salah", ErrDecode)
	}
	epoch, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Token{}, fmt.Errorf("%w: epoch %q", ErrDecode, parts[2])
	}
	label := DefaultLabel
	if len(parts) >= 5 {
		label = strings.Join(parts[4:], delimiter)
	}
	return Token{Epoch: epoch, Secret: parts[3], SessionLabel: label}, nil
}
