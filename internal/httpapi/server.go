// Package httpapi exposes the attendance and account-recovery boundaries.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hadirmu/hadirmu-server/internal/attendance"
	"github.com/hadirmu/hadirmu-server/internal/auth"
	"github.com/hadirmu/hadirmu-server/internal/config"
	"github.com/hadirmu/hadirmu-server/internal/identity"
	"github.com/hadirmu/hadirmu-server/internal/metrics"
	"github.com/hadirmu/hadirmu-server/internal/otp"
	"github.com/hadirmu/hadirmu-server/internal/ratelimit"
	"github.com/hadirmu/hadirmu-server/internal/tg"
	"go.uber.org/zap"
)

type Server struct {
	cfg      *config.Config
	db       *sql.DB
	resolver *identity.Resolver
	att      *attendance.Service
	otp      *otp.Service
	linker   *tg.Linker // nil when the bot is not configured
	limiter  *ratelimit.Limiter
	log      *zap.Logger
}

func NewServer(cfg *config.Config, db *sql.DB, resolver *identity.Resolver, att *attendance.Service, otpSvc *otp.Service, linker *tg.Linker, limiter *ratelimit.Limiter, log *zap.Logger) *Server {
	return &Server{
		cfg:      cfg,
		db:       db,
		resolver: resolver,
		att:      att,
		otp:      otpSvc,
		linker:   linker,
		limiter:  limiter,
		log:      log,
	}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipPaths: []string{"/healthz", "/metrics"}}))

	r.GET("/healthz", s.healthz)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	if s.limiter != nil {
		authGroup.Use(s.limiter.Middleware("auth"))
	}
	authGroup.POST("/login", s.login)
	authGroup.POST("/request-reset", s.requestReset)
	authGroup.POST("/verify-reset", s.verifyReset)
	authGroup.POST("/verify-wa-send", s.verifyWASend)
	authGroup.POST("/verify-wa-confirm", s.verifyWAConfirm)

	student := api.Group("/student")
	student.POST("/verify-token", s.issueLinkToken)
	student.GET("/verify-token", s.pollLinkStatus)

	att := api.Group("/attendance")
	att.Use(auth.Middleware(s.cfg.JWTKey, s.cfg.JWTIssuer))
	att.POST("/scan", auth.RequireRole("student"), s.scan)
	att.GET("/qr", auth.RequireRole("teacher", "admin"), s.displayQR)
	att.GET("", auth.RequireRole("teacher", "admin"), s.listAttendance)
	att.PUT("", auth.RequireRole("teacher", "admin"), s.setAttendance)
	att.DELETE("", auth.RequireRole("teacher", "admin"), s.deleteAttendance)
	att.GET("/export", auth.RequireRole("teacher", "admin"), s.exportAttendance)

	api.POST("/telegram/webhook", s.telegramWebhook)

	return r
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		c.String(http.StatusServiceUnavailable, "db not ok: %s", err.Error())
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	c.String(http.StatusOK, "ok")
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.HTTPAddr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	}
}
