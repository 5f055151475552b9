// Package otp implements the one-time-code issuance and redemption state
// machine shared by password reset and WhatsApp channel binding.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/metrics"
	"github.com/hadirmu/hadirmu-server/internal/models"
	"go.uber.org/zap"
)

// verifyTag prefixes channel-binding codes inside the shared storage field,
// so a binding code can never pass as a reset code and vice versa.
const verifyTag = "VERIFY_"

// ErrDispatch means the code was persisted but the message did not go out.
// The caller must tell the user to request a new code, never report success.
var ErrDispatch = errors.New("gagal mengirim pesan WhatsApp")

// Store is the slice of the identity store the OTP machine needs. Consume
// must be a single conditional write: it clears the code only when the
// stored value equals tagged and has not expired, and reports whether it did.
type Store interface {
	SetCode(ctx context.Context, pool models.Pool, id, tagged string, expires time.Time) error
	ConsumeCode(ctx context.Context, pool models.Pool, id, tagged string, now time.Time) (bool, error)
	CodeState(ctx context.Context, pool models.Pool, id string) (code *string, expires *time.Time, err error)
}

// Messenger delivers a rendered message to a channel address.
type Messenger interface {
	Send(ctx context.Context, target, message string) error
}

type VerifyResult int

const (
	// resultNone is the zero value; it accompanies a non-nil error and
	// carries no verdict.
	resultNone VerifyResult = iota
	Valid
	CodeNotFound
	CodeExpired
	CodeMismatch
)

func (r VerifyResult) String() string {
	switch r {
	case Valid:
		return "valid"
	case CodeNotFound:
		return "not_found"
	case CodeExpired:
		return "expired"
	case CodeMismatch:
		return "mismatch"
	default:
		return "none"
	}
}

type Service struct {
	store   Store
	wa      Messenger
	codeLen int
	ttls    map[models.Purpose]time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewService(store Store, wa Messenger, codeLen int, resetTTL, verifyTTL time.Duration, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		wa:      wa,
		codeLen: codeLen,
		ttls: map[models.Purpose]time.Duration{
			models.PurposeReset:  resetTTL,
			models.PurposeVerify: verifyTTL,
		},
		log: log,
		now: time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue mints a fresh code for (identity, purpose), persists it before any
// dispatch is attempted, then sends it over WhatsApp. A prior outstanding
// code is overwritten and thereby invalidated. On dispatch failure the
// persisted code stays put and ErrDispatch is returned.
func (s *Service) Issue(ctx context.Context, pool models.Pool, id, target, displayName string, purpose models.Purpose) error {
	ttl, ok := s.ttls[purpose]
	if !ok {
		return fmt.Errorf("unknown purpose %q", purpose)
	}
	code, err := s.generate()
	if err != nil {
		return err
	}
	expires := s.now().Add(ttl)

	if err := s.store.SetCode(ctx, pool, id, tag(purpose, code), expires); err != nil {
		return fmt.Errorf("persist code: %w", err)
	}
	metrics.OTPIssued.WithLabelValues(string(purpose)).Inc()

	if err := s.wa.Send(ctx, target, renderMessage(purpose, displayName, code, ttl)); err != nil {
		metrics.DispatchFailures.WithLabelValues("whatsapp").Inc()
		s.log.Warn("otp dispatch failed", zap.String("purpose", string(purpose)), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	return nil
}

// Verify redeems a presented code. Redemption and invalidation happen in one
// conditional write; only when nothing was cleared is the stored state read
// back to name the reason.
func (s *Service) Verify(ctx context.Context, pool models.Pool, id string, purpose models.Purpose, presented string) (VerifyResult, error) {
	now := s.now()
	consumed, err := s.store.ConsumeCode(ctx, pool, id, tag(purpose, presented), now)
	if err != nil {
		return resultNone, err
	}
	res := Valid
	if !consumed {
		res, err = s.diagnose(ctx, pool, id, now)
		if err != nil {
			return resultNone, err
		}
	}
	metrics.OTPVerified.WithLabelValues(string(purpose), res.String()).Inc()
	return res, nil
}

func (s *Service) diagnose(ctx context.Context, pool models.Pool, id string, now time.Time) (VerifyResult, error) {
	code, expires, err := s.store.CodeState(ctx, pool, id)
	if err != nil {
		return resultNone, err
	}
	switch {
	case code == nil || expires == nil:
		return CodeNotFound, nil
	case now.After(*expires):
		return CodeExpired, nil
	default:
		return CodeMismatch, nil
	}
}

func (s *Service) generate() (string, error) {
	var b strings.Builder
	for i := 0; i < s.codeLen; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

func tag(purpose models.Purpose, code string) string {
	if purpose == models.PurposeVerify {
		return verifyTag + code
	}
	return code
}
