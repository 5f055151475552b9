// Package ratelimit throttles the OTP and login routes per client IP using
// a redis fixed window. These routes trigger outbound WhatsApp sends, so
// unthrottled they are both an abuse vector and a paid-API cost.
package ratelimit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Limiter struct {
	rdb       *redis.Client
	perMinute int
	log       *zap.Logger
}

func New(rdb *redis.Client, perMinute int, log *zap.Logger) *Limiter {
	return &Limiter{rdb: rdb, perMinute: perMinute, log: log}
}

// Middleware counts requests per (route, IP, minute). When redis is
// unreachable the limiter fails open: attendance beats strictness here.
func (l *Limiter) Middleware(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		key := fmt.Sprintf("rl:%s:%s:%d", route, ip, time.Now().Unix()/60)

		ctx := c.Request.Context()
		n, err := l.rdb.Incr(ctx, key).Result()
		if err != nil {
			l.log.Warn("rate limiter unavailable, failing open", zap.Error(err))
			c.Next()
			return
		}
		if n == 1 {
			l.rdb.Expire(ctx, key, 2*time.Minute)
		}
		if n > int64(l.perMinute) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Terlalu banyak percobaan. Coba lagi sebentar lagi."})
			return
		}
		c.Next()
	}
}
