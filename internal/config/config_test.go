package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/hadirmu?sslmode=disable")
	t.Setenv("JWT_KEY", "k")
	t.Setenv("QR_SECRET", "HADIRMU-SECRET")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TZ", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.QRWindow != 30*time.Second || cfg.QRTolerance != 1 {
		t.Fatalf("window defaults: %v / %d", cfg.QRWindow, cfg.QRTolerance)
	}
	if cfg.OTPLength != 6 || cfg.ResetTTL != time.Hour || cfg.VerifyTTL != 10*time.Minute {
		t.Fatalf("otp defaults: %d / %v / %v", cfg.OTPLength, cfg.ResetTTL, cfg.VerifyTTL)
	}
	if cfg.Location.String() != "Asia/Jakarta" {
		t.Fatalf("timezone default: %s", cfg.Location)
	}
}

func TestLoadRejectsDelimiterInSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QR_SECRET", "HADIRMU_SECRET_123")

	if _, err := Load(); err == nil {
		t.Fatal("secret containing the token delimiter must be rejected")
	}
}

func TestLoadRejectsBadWindow(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QR_WINDOW", "500ms")

	if _, err := Load(); err == nil {
		t.Fatal("sub-second window must be rejected")
	}
}
