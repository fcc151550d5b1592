package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climabridge/climabridge/internal/config"
)

func enabledConfig(limit int) config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:           true,
		MaxRequestsPerDay: limit,
		Paths:             []string{"/weather/get", "/geo/lookup"},
	}
}

func newTestRequest(path, remoteAddr string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = remoteAddr
	return r
}

func serve(t *testing.T, limiter *Limiter, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)
	return rec
}

func TestMiddleware_EnforcesDailyQuota(t *testing.T) {
	limiter := New(enabledConfig(3), NewMemoryCounter())

	for i := 0; i < 3; i++ {
		rec := serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
		assert.Equal(t, http.StatusOK, rec.Code, "request %d within quota", i+1)
	}

	rec := serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMiddleware_QuotaIsPerClient(t *testing.T) {
	limiter := New(enabledConfig(1), NewMemoryCounter())

	rec := serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// a different client is unaffected
	rec = serve(t, limiter, newTestRequest("/weather/get", "192.0.2.2:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_QuotaResetsNextDay(t *testing.T) {
	counter := NewMemoryCounter()
	limiter := New(enabledConfig(1), counter)

	day1 := time.Date(2025, 7, 15, 23, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return day1 }
	counter.now = limiter.now

	rec := serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// the next calendar day keys a fresh counter
	day2 := day1.Add(2 * time.Hour)
	limiter.now = func() time.Time { return day2 }
	counter.now = limiter.now

	rec = serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_BypassesUnconfiguredPaths(t *testing.T) {
	limiter := New(enabledConfig(1), NewMemoryCounter())

	for i := 0; i < 5; i++ {
		rec := serve(t, limiter, newTestRequest("/healthcheck", "192.0.2.1:1234"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMiddleware_DisabledPassesEverything(t *testing.T) {
	cfg := enabledConfig(1)
	cfg.Enabled = false
	limiter := New(cfg, NewMemoryCounter())

	for i := 0; i < 5; i++ {
		rec := serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

type failingCounter struct{}

func (failingCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	return 0, errors.New("counter store unavailable")
}

func TestMiddleware_FailsOpenOnCounterError(t *testing.T) {
	limiter := New(enabledConfig(1), failingCounter{})

	for i := 0; i < 3; i++ {
		rec := serve(t, limiter, newTestRequest("/weather/get", "192.0.2.1:1234"))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMiddleware_FailsOpenWithoutIdentity(t *testing.T) {
	limiter := New(enabledConfig(1), NewMemoryCounter())

	for i := 0; i < 3; i++ {
		rec := serve(t, limiter, newTestRequest("/weather/get", ""))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		expected   string
	}{
		{
			name:       "forwarded chain first entry",
			xff:        "203.0.113.5, 10.0.0.1",
			remoteAddr: "10.0.0.2:8080",
			expected:   "203.0.113.5",
		},
		{
			name:       "skips unknown entries",
			xff:        "unknown, 203.0.113.5",
			remoteAddr: "10.0.0.2:8080",
			expected:   "203.0.113.5",
		},
		{
			name:       "real IP when chain is unusable",
			xff:        "unknown",
			realIP:     "203.0.113.9",
			remoteAddr: "10.0.0.2:8080",
			expected:   "203.0.113.9",
		},
		{
			name:       "remote address fallback",
			remoteAddr: "192.0.2.7:1234",
			expected:   "192.0.2.7",
		},
		{
			name:       "remote address without port",
			remoteAddr: "192.0.2.7",
			expected:   "192.0.2.7",
		},
		{
			name:     "no identity derivable",
			expected: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRequest("/weather/get", tc.remoteAddr)
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				r.Header.Set("X-Real-IP", tc.realIP)
			}

			assert.Equal(t, tc.expected, ClientIP(r))
		})
	}
}

func TestMemoryCounter_IncrementsAndExpires(t *testing.T) {
	counter := NewMemoryCounter()

	start := time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)
	counter.now = func() time.Time { return start }

	ctx := context.Background()

	count, err := counter.Incr(ctx, "key", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = counter.Incr(ctx, "key", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// past the expiry window the count resets
	counter.now = func() time.Time { return start.Add(2 * time.Hour) }

	count, err = counter.Incr(ctx, "key", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
