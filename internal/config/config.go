package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the single source of truth for every tunable. The QR window width
// lives here and only here: presenter and validator both read the same value.
type Config struct {
	DatabaseURL string
	RedisAddr   string
	HTTPAddr    string
	Location    *time.Location

	BotToken    string
	BotUsername string
	AdminChatID int64
	FonnteToken string
	FonnteURL   string

	QRSecret     string
	QRWindow     time.Duration
	QRTolerance  int64
	SessionLabel string

	OTPLength int
	ResetTTL  time.Duration
	VerifyTTL time.Duration

	JWTKey    string
	JWTIssuer string
	JWTTTL    time.Duration

	RatePerMinute int

	LogLevel  string
	Env       string // dev|prod
	SentryDSN string
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	adminChatID, err := parseInt64(os.Getenv("ADMIN_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_ID: %w", err)
	}

	cfg := &Config{
		DatabaseURL: mustEnv("DATABASE_URL"),
		RedisAddr:   getenv("REDIS_ADDR", "localhost:6379"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Location:    loc,

		BotToken:    os.Getenv("BOT_TOKEN"),
		BotUsername: getenv("BOT_USERNAME", "HadirMu_Bot"),
		AdminChatID: adminChatID,
		FonnteToken: os.Getenv("FONNTE_TOKEN"),
		FonnteURL:   getenv("FONNTE_URL", "https://api.fonnte.com/send"),

		QRSecret:     mustEnv("QR_SECRET"),
		QRWindow:     durationEnv("QR_WINDOW", 30*time.Second),
		QRTolerance:  int64(intEnv("QR_TOLERANCE_WINDOWS", 1)),
		SessionLabel: getenv("QR_SESSION_LABEL", "DEFAULT"),

		OTPLength: intEnv("OTP_LENGTH", 6),
		ResetTTL:  durationEnv("RESET_TTL", time.Hour),
		VerifyTTL: durationEnv("VERIFY_TTL", 10*time.Minute),

		JWTKey:    mustEnv("JWT_KEY"),
		JWTIssuer: getenv("JWT_ISSUER", "hadirmu"),
		JWTTTL:    durationEnv("JWT_TTL", 7*24*time.Hour),

		RatePerMinute: intEnv("RATE_LIMIT_PER_MIN", 10),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		Env:       getenv("ENV", "dev"),
		SentryDSN: os.Getenv("SENTRY_DSN"),
	}
	if cfg.QRWindow < time.Second {
		return nil, fmt.Errorf("QR_WINDOW too small: %s", cfg.QRWindow)
	}
	// "_" is the token delimiter; a secret containing it cannot be decoded
	// back out of the token unambiguously.
	if strings.Contains(cfg.QRSecret, "_") {
		return nil, fmt.Errorf("QR_SECRET must not contain %q", "_")
	}
	if cfg.OTPLength < 4 || cfg.OTPLength > 10 {
		return nil, fmt.Errorf("OTP_LENGTH out of range: %d", cfg.OTPLength)
	}
	return cfg, nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func intEnv(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durationEnv(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseInt64(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
