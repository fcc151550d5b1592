package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/justinas/alice"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/climabridge/climabridge/internal/auth"
	"github.com/climabridge/climabridge/internal/cache"
	"github.com/climabridge/climabridge/internal/citydata"
	"github.com/climabridge/climabridge/internal/config"
	"github.com/climabridge/climabridge/internal/observe"
	"github.com/climabridge/climabridge/internal/qweather"
	"github.com/climabridge/climabridge/internal/ratelimit"
	"github.com/climabridge/climabridge/internal/server"
	"github.com/climabridge/climabridge/internal/weather"
)

func configureServerRoutes(cfg config.Config, backend *cache.Backend) (http.Handler, error) {
	// wrap a mux such that HTTP telemetry is configured by default
	muxWithoutTelemetry := http.NewServeMux()
	mux := observe.NewMux(muxWithoutTelemetry)

	// The request body size is limited: all routes are GET with query
	// parameters, so any substantial body is accidental or abusive.
	requestLimitBytes := int64(20 << 10) // 20 KB
	requestLimiter := maxRequestSize(requestLimitBytes)

	// the rate limiter gates only its configured paths; other routes pass
	// through untouched
	limiter := ratelimit.New(cfg.RateLimit, newRateCounter(backend))

	standardRouteMiddleware := alice.New(requestLimiter, recoverPanics)
	gatedRouteMiddleware := standardRouteMiddleware.Append(limiter.Middleware)

	// setup the upstream client and its collaborators
	tokenStore, err := cache.NewStore[auth.Credential](backend, cache.TTLToken, 10)
	if err != nil {
		return nil, fmt.Errorf("token cache configuration failed: %w", err)
	}

	issuer, err := auth.NewIssuer(cfg.QWeather, tokenStore)
	if err != nil {
		return nil, fmt.Errorf("credential issuer configuration failed: %w", err)
	}

	api, err := qweather.New(cfg.QWeather, issuer, backend)
	if err != nil {
		return nil, fmt.Errorf("upstream client configuration failed: %w", err)
	}

	svc, err := weather.NewService(api, cfg.QWeather)
	if err != nil {
		return nil, fmt.Errorf("weather service configuration failed: %w", err)
	}

	cities, err := citydata.Load()
	if err != nil {
		return nil, fmt.Errorf("gazetteer load failed: %w", err)
	}

	mux.Handle("GET /weather/get", gatedRouteMiddleware.Then(handleGetWeather(svc)))
	mux.Handle("GET /geo/lookup", gatedRouteMiddleware.Then(handleGeoLookup(api, cities)))
	mux.Handle("GET /weather/indices/daily", gatedRouteMiddleware.Then(handleIndices(api)))

	mux.Handle("GET /weather/now", gatedRouteMiddleware.Then(handleWeatherNow(api)))
	mux.Handle("GET /weather/daily", gatedRouteMiddleware.Then(handleWeatherDaily(api)))
	mux.Handle("GET /weather/hourly", gatedRouteMiddleware.Then(handleWeatherHourly(api)))
	mux.Handle("GET /weather/city/search", gatedRouteMiddleware.Then(handleCitySearch(cities)))
	mux.Handle("GET /weather/city/top", gatedRouteMiddleware.Then(handleTopCities(api)))

	// healthchecks are not included in telemetry or rate limiting
	muxWithoutTelemetry.Handle("GET /healthcheck", standardRouteMiddleware.Then(handleHealthCheck()))

	return mux, nil
}

func main() {
	configureLogging()

	logBuildInfo()

	err := launchServer()
	if err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

func launchServer() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	// configure telemetry, including wrapping default HTTP client
	shutdownTelemetry, err := observe.Configure(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("telemetry bootstrap failed: %w", err)
	}

	http.DefaultTransport = observe.HTTPTransport(
		configureHTTPTransport(cfg.Server),
		cfg.Observe,
	)
	http.DefaultClient = &http.Client{
		Transport: http.DefaultTransport,
	}

	// the cache backend is shared by every namespace and the rate counter
	backend, err := cache.NewBackend(ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache backend configuration failed: %w", err)
	}

	handler, err := configureServerRoutes(cfg, backend)
	if err != nil {
		backend.Close()
		return fmt.Errorf("server routing configuration failed: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		MaxHeaderBytes:    20 << 10,         // 20 KB
		ReadHeaderTimeout: 20 * time.Second, // Prevent Slowloris attacks
	}

	var hooks server.ShutdownHooks
	hooks.AddClose("cache backend", backend)
	hooks.AddContext("telemetry", shutdownTelemetry)

	err = server.Serve(cfg.Server, srv, &hooks)
	if err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// newRateCounter selects the rate counter store to match the cache backend:
// the shared valkey client when distributed, an in-process counter otherwise.
func newRateCounter(backend *cache.Backend) ratelimit.Counter {
	if client := backend.Valkey(); client != nil {
		return ratelimit.NewValkeyCounter(client)
	}
	return ratelimit.NewMemoryCounter()
}

func configureLogging() {
	// Set global level to the minimum: allows per-logger levels to take
	// effect without the global level suppressing them.
	zerolog.SetGlobalLevel(zerolog.Level(-128))

	// default level is Info
	log.Logger = log.Level(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.
			Output(zerolog.ConsoleWriter{Out: os.Stdout}).
			Level(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	ev := log.Info()
	for _, v := range buildInfo.Settings {
		if strings.HasPrefix(v.Key, "vcs.") ||
			strings.HasPrefix(v.Key, "GO") ||
			v.Key == "CGO_ENABLED" {
			ev = ev.Str(v.Key, v.Value)
		}
	}

	ev.Msg("build information")
}

func configureHTTPTransport(cfg config.ServerConfig) *http.Transport {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	transport.MaxIdleConns = cfg.OutgoingHTTPMaxIdleConns
	transport.MaxConnsPerHost = cfg.OutgoingHTTPMaxConnsPerHost

	return transport
}
