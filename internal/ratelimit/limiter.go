package ratelimit

import (
	"context"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/climabridge/climabridge/internal/config"
)

// keyPrefix namespaces the daily counters in the shared counter store.
const keyPrefix = "rate_limit:ip:"

// counterWindow is how long a daily counter lives after its first increment.
const counterWindow = 24 * time.Hour

// Counter is the per-identity daily counter store. Incr atomically increments
// the counter for key and returns the post-increment value; the first
// increment for a key arms the expiry window.
type Counter interface {
	Incr(ctx context.Context, key string, expiry time.Duration) (int64, error)
}

// Limiter gates requests on a per-client daily quota. The counter store
// provides the increment-and-expire atomicity; the limiter holds no in-process
// state.
type Limiter struct {
	cfg     config.RateLimitConfig
	counter Counter
	now     func() time.Time
}

func New(cfg config.RateLimitConfig, counter Counter) *Limiter {
	return &Limiter{
		cfg:     cfg,
		counter: counter,
		now:     time.Now,
	}
}

// Middleware applies the daily quota to the configured paths. Requests
// outside that set pass through untouched. The limiter fails open: an
// underivable client identity or an unreachable counter store allows the
// request, because gateway availability outranks strict enforcement.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.cfg.Enabled || !slices.Contains(l.cfg.Paths, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		identity := ClientIP(r)
		if identity == "" {
			log.Warn().Str("path", r.URL.Path).
				Msg("client identity could not be derived, skipping rate limit")
			next.ServeHTTP(w, r)
			return
		}

		key := keyPrefix + identity + ":" + l.now().Format("2006-01-02")

		count, err := l.counter.Incr(r.Context(), key, counterWindow)
		if err != nil {
			log.Error().Err(err).Str("identity", identity).
				Msg("rate limit counter unavailable, failing open")
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(l.cfg.MaxRequestsPerDay) {
			log.Warn().Str("identity", identity).Str("key", key).
				Int64("count", count).Int("limit", l.cfg.MaxRequestsPerDay).
				Msg("daily request limit reached")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		log.Debug().Str("identity", identity).
			Int64("count", count).Int("limit", l.cfg.MaxRequestsPerDay).
			Msg("rate limit check passed")
		next.ServeHTTP(w, r)
	})
}

// ClientIP derives the client-attributable identity for a request: the first
// non-empty, non-"unknown" entry of the X-Forwarded-For chain, then
// X-Real-IP, then the transport-level peer address. Returns "" when no
// identity can be derived; callers treat that as unlimitable traffic rather
// than blocking ambiguous proxy configurations.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			ip := strings.TrimSpace(part)
			if ip != "" && !strings.EqualFold(ip, "unknown") {
				return ip
			}
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" && !strings.EqualFold(realIP, "unknown") {
		return realIP
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			return host
		}
		return r.RemoteAddr
	}

	return ""
}
