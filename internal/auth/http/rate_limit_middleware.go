package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/registry/internal/errors"
	"github.com/allisson/registry/internal/httputil"
)

// limiterStore holds per-key token-bucket limiters with periodic cleanup of
// stale entries so memory stays bounded.
type limiterStore struct {
	limiters sync.Map // map[string]*limiterEntry
	rps      float64
	burst    int
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	store := &limiterStore{rps: rps, burst: burst}
	go store.cleanupStale(context.Background(), 5*time.Minute)
	return store
}

// getLimiter retrieves or creates the rate limiter for a key.
func (s *limiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(s.rps), s.burst),
		lastAccess: time.Now(),
	}
	s.limiters.Store(key, entry)
	return entry.limiter
}

// cleanupStale removes limiters not accessed in the last hour.
func (s *limiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value any) bool {
				entry := value.(*limiterEntry)
				entry.mu.Lock()
				stale := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()
				if stale {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

func rejectRateLimited(c *gin.Context, limiter *rate.Limiter) {
	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()

	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limit_exceeded",
		"message": "Too many requests. Please retry after the specified delay.",
	})
	c.Abort()
}

// RateLimitMiddleware enforces per-token rate limiting on authenticated
// requests. Each principal gets an independent token bucket keyed by its
// token ID.
//
// MUST be used after AuthenticationMiddleware.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c.Request.Context())
		if !ok || principal == nil {
			logger.Error("rate limit middleware: no authenticated principal in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		limiter := store.getLimiter(principal.TokenID.String())
		if !limiter.Allow() {
			logger.Debug("rate limit exceeded",
				slog.String("token_id", principal.TokenID.String()),
				slog.String("subject", principal.Subject))
			rejectRateLimited(c, limiter)
			return
		}

		c.Next()
	}
}

// IssueRateLimitMiddleware enforces per-IP rate limiting on the token
// issuance endpoint, which accepts anonymous requests. An independent token
// bucket per client IP slows down brute-forcing of the bootstrap secret.
// c.ClientIP() honors X-Forwarded-For and X-Real-IP.
func IssueRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		limiter := store.getLimiter(clientIP)
		if !limiter.Allow() {
			logger.Debug("issue rate limit exceeded", slog.String("client_ip", clientIP))
			rejectRateLimited(c, limiter)
			return
		}

		c.Next()
	}
}
