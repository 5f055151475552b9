package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hadirmu/hadirmu-server/internal/attendance"
	"github.com/hadirmu/hadirmu-server/internal/config"
	"github.com/hadirmu/hadirmu-server/internal/db"
	"github.com/hadirmu/hadirmu-server/internal/httpapi"
	"github.com/hadirmu/hadirmu-server/internal/identity"
	"github.com/hadirmu/hadirmu-server/internal/jobs"
	"github.com/hadirmu/hadirmu-server/internal/logging"
	"github.com/hadirmu/hadirmu-server/internal/observability"
	"github.com/hadirmu/hadirmu-server/internal/otp"
	"github.com/hadirmu/hadirmu-server/internal/ratelimit"
	"github.com/hadirmu/hadirmu-server/internal/tg"
	"github.com/hadirmu/hadirmu-server/internal/wa"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer lg.Closer()

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, "hadirmu-server")
	if err != nil {
		lg.Sugar.Warnw("sentry init failed", "err", err)
	}
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Sugar.Fatalw("db open", "err", err)
	}
	defer func() { _ = database.Close() }()

	if err := db.Migrate(database); err != nil {
		lg.Sugar.Fatalw("migrate", "err", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})
	defer func() { _ = rdb.Close() }()

	resolver := identity.NewResolver(
		identity.DBTeacherStore{DB: database},
		identity.DBStudentStore{DB: database},
		lg.Base,
	)

	waClient := wa.NewClient(cfg.FonnteToken, cfg.FonnteURL)
	otpSvc := otp.NewService(db.OTPStore{DB: database}, waClient, cfg.OTPLength, cfg.ResetTTL, cfg.VerifyTTL, lg.Base)
	attSvc := attendance.NewService(attendance.DBLedger{DB: database}, cfg, lg.Base)
	limiter := ratelimit.New(rdb, cfg.RatePerMinute, lg.Base)

	var linker *tg.Linker
	if cfg.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			lg.Sugar.Fatalw("telegram bot", "err", err)
		}
		lg.Sugar.Infow("bot started", "username", bot.Self.UserName)
		linker = tg.NewLinker(bot, database, cfg.AdminChatID, lg.Base)
		go linker.Run(ctx)
	} else {
		lg.Sugar.Warn("BOT_TOKEN empty, telegram linking disabled")
	}

	runner := jobs.New(ctx)
	runner.Every(30*time.Second, "db_ping", jobs.DBPing(database))
	runner.Every(5*time.Minute, "stale_codes", jobs.StaleCodeGauge(database))

	srv := httpapi.NewServer(cfg, database, resolver, attSvc, otpSvc, linker, limiter, lg.Base)
	lg.Sugar.Infow("http listening", "addr", cfg.HTTPAddr)
	if err := srv.Run(ctx); err != nil {
		lg.Sugar.Errorw("http server", "err", err)
	}
}
