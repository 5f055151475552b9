// Package attendance coordinates the scan path: decode, validate, record.
package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hadirmu/hadirmu-server/internal/config"
	"github.com/hadirmu/hadirmu-server/internal/db"
	"github.com/hadirmu/hadirmu-server/internal/metrics"
	"github.com/hadirmu/hadirmu-server/internal/models"
	"github.com/hadirmu/hadirmu-server/internal/qrtoken"
	"go.uber.org/zap"
)

type Outcome string

const (
	Accepted        Outcome = "accepted"
	AlreadyRecorded Outcome = "already_recorded"
	BadToken        Outcome = "bad_token"
	WrongSecret     Outcome = "wrong_secret"
	Expired         Outcome = "expired"
)

type ScanResult struct {
	Outcome      Outcome
	SessionLabel string
}

// Ledger is the dedup-enforcing slice of storage the scan path writes through.
type Ledger interface {
	RecordIfAbsent(ctx context.Context, studentID, sessionLabel string, day time.Time, status models.AttendanceStatus) (bool, error)
}

// DBLedger backs Ledger with the attendance table and its unique index.
type DBLedger struct{ DB *sql.DB }

func (l DBLedger) RecordIfAbsent(ctx context.Context, studentID, sessionLabel string, day time.Time, status models.AttendanceStatus) (bool, error) {
	return db.RecordIfAbsent(ctx, l.DB, studentID, sessionLabel, day, status)
}

// Service holds the scan-side view of the shared QR configuration. Presenter
// and validator both read the window width from the same Config, so they
// cannot drift apart.
type Service struct {
	ledger       Ledger
	secret       string
	window       time.Duration
	tolerance    int64
	sessionLabel string
	loc          *time.Location
	log          *zap.Logger
	now          func() time.Time
}

func NewService(ledger Ledger, cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		ledger:       ledger,
		secret:       cfg.QRSecret,
		window:       cfg.QRWindow,
		tolerance:    cfg.QRTolerance,
		sessionLabel: cfg.SessionLabel,
		loc:          cfg.Location,
		log:          log,
		now:          time.Now,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Scan redeems a raw QR payload for a student. The dedup day is the calendar
// day in the school's timezone, not UTC.
func (s *Service) Scan(ctx context.Context, studentID, raw string) (ScanResult, error) {
	now := s.now()

	tok, err := qrtoken.Decode(raw)
	if err != nil {
		if errors.Is(err, qrtoken.ErrDecode) {
			metrics.ScanResults.WithLabelValues(string(BadToken)).Inc()
			return ScanResult{Outcome: BadToken}, nil
		}
		return ScanResult{}, err
	}

	res := qrtoken.Validate(tok, now, s.secret, s.window, s.tolerance)
	if !res.OK {
		outcome := Expired
		if res.Reason == qrtoken.ReasonSecretMismatch {
			outcome = WrongSecret
		}
		metrics.ScanResults.WithLabelValues(string(outcome)).Inc()
		return ScanResult{Outcome: outcome}, nil
	}

	day := now.In(s.loc)
	recorded, err := s.ledger.RecordIfAbsent(ctx, studentID, res.SessionLabel, day, models.StatusPresent)
	if err != nil {
		return ScanResult{}, err
	}
	outcome := Accepted
	if !recorded {
		outcome = AlreadyRecorded
	}
	metrics.ScanResults.WithLabelValues(string(outcome)).Inc()
	s.log.Info("scan processed",
		zap.String("student_id", studentID),
		zap.String("session", res.SessionLabel),
		zap.String("outcome", string(outcome)))
	return ScanResult{Outcome: outcome, SessionLabel: res.SessionLabel}, nil
}

// DisplayToken is what a presenter shows: the encoded value and how long the
// current window remains valid.
type DisplayToken struct {
	Value        string
	SessionLabel string
	SecondsLeft  int64
}

// Display renders the current rotating token for a session label (empty
// label falls back to the configured default).
func (s *Service) Display(sessionLabel string) DisplayToken {
	if sessionLabel == "" {
		sessionLabel = s.sessionLabel
	}
	now := s.now()
	return DisplayToken{
		Value:        qrtoken.Encode(qrtoken.WindowIndex(now, s.window), s.secret, sessionLabel),
		SessionLabel: sessionLabel,
		SecondsLeft:  qrtoken.SecondsLeft(now, s.window),
	}
}
