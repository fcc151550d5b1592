package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Cache     CacheConfig
	Observe   ObserveConfig
	QWeather  QWeatherConfig
	RateLimit RateLimitConfig
	Server    ServerConfig
}

type ServerConfig struct {
	Port                   int `env:"SERVER_PORT, default=8080"`
	ShutdownTimeoutSeconds int `env:"SERVER_SHUTDOWN_TIMEOUT_SECS, default=25"`

	OutgoingHTTPMaxIdleConns    int `env:"SERVER_OUTGOING_MAX_IDLE_CONNS, default=100"`
	OutgoingHTTPMaxConnsPerHost int `env:"SERVER_OUTGOING_MAX_CONNS_PER_HOST, default=20"`
}

// QWeatherConfig holds the upstream provider settings, including the signing
// key material used to mint the provider credential.
type QWeatherConfig struct {
	// APIHost is the base URL for the weather endpoints.
	APIHost string `env:"QWEATHER_API_HOST, default=https://api.qweather.com"`

	// GeoAPIHost is the base URL for the geo (city lookup) endpoints.
	GeoAPIHost string `env:"QWEATHER_GEO_API_HOST, default=https://geoapi.qweather.com"`

	// ProjectID is the provider project identifier, used as the JWT subject.
	ProjectID string `env:"QWEATHER_PROJECT_ID, required"`

	// KeyID is the provider credential key identifier, emitted in the JWT
	// header.
	KeyID string `env:"QWEATHER_KEY_ID, required"`

	// PrivateKey is the Ed25519 signing key in PKCS#8 form: either PEM or the
	// bare base64 body with the armour lines stripped.
	PrivateKey string `env:"QWEATHER_PRIVATE_KEY, required"`

	// RequestTimeoutSeconds bounds every upstream HTTP call.
	RequestTimeoutSeconds int `env:"QWEATHER_REQUEST_TIMEOUT_SECS, default=10"`

	// IndicesTypes is the comma-separated set of life index types requested
	// for the composite weather view.
	IndicesTypes string `env:"QWEATHER_INDICES_TYPES, default=1,2,3,5"`

	// TimeZone is the zone used when deriving display dates and weekday
	// labels from upstream timestamps.
	TimeZone string `env:"QWEATHER_TIMEZONE, default=Asia/Shanghai"`
}

// CacheConfig specifies cache configuration.
type CacheConfig struct {
	// Type selects the cache implementation: "memory" (default) or "valkey"
	Type string `env:"CACHE_TYPE, default=memory"`

	// Valkey holds distributed cache settings.
	Valkey ValkeyConfig
}

// ValkeyConfig specifies distributed cache configuration.
type ValkeyConfig struct {
	// Address is the Valkey server address (host:port).
	Address string `env:"VALKEY_ADDRESS"`

	// TLS enables TLS connection to Valkey. Defaults to true so the secure
	// option is the default.
	TLS bool `env:"VALKEY_TLS, default=true"`

	// Username for Valkey authentication.
	Username string `env:"VALKEY_USERNAME"`

	// Password for Valkey authentication.
	Password string `env:"VALKEY_PASSWORD"`
}

// RateLimitConfig configures the per-client daily request gate.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED, default=false"`

	// MaxRequestsPerDay caps gated requests per client identity per calendar
	// day.
	MaxRequestsPerDay int `env:"RATE_LIMIT_MAX_REQUESTS_PER_DAY, default=200"`

	// Paths enumerates the route paths the limiter applies to. Requests to
	// any other path bypass the limiter entirely.
	Paths []string `env:"RATE_LIMIT_PATHS, default=/weather/get,/geo/lookup"`
}

type ObserveConfig struct {
	SDKLogLevel                string `env:"OBSERVE_OTEL_LOG_LEVEL, default=info"`
	Enabled                    bool   `env:"OBSERVE_ENABLED, default=false"`
	MetricsEnabled             bool   `env:"OBSERVE_METRICS_ENABLED, default=true"`
	ServiceName                string `env:"OBSERVE_SERVICE_NAME, default=climabridge"`
	TraceBatchTimeoutSeconds   int    `env:"OBSERVE_TRACE_BATCH_TIMEOUT_SECS, default=20"`
	MetricReadIntervalSeconds  int    `env:"OBSERVE_METRIC_READ_INTERVAL_SECS, default=60"`
	HTTPTransportEnabled       bool   `env:"OBSERVE_HTTP_TRANSPORT_ENABLED, default=true"`
	HTTPConnectionTraceEnabled bool   `env:"OBSERVE_CONNECTION_TRACE_ENABLED, default=true"`
}

func Load(ctx context.Context) (Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookup envconfig.Lookuper) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookup,
	})
	if err != nil {
		return cfg, err
	}

	err = cfg.Cache.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid cache configuration: %w", err)
	}

	err = cfg.RateLimit.Validate()
	if err != nil {
		return cfg, fmt.Errorf("invalid rate limit configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the cache configuration is valid.
func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "memory":
	case "valkey":
		if c.Valkey.Address == "" {
			return fmt.Errorf("VALKEY_ADDRESS required when CACHE_TYPE=valkey")
		}
	default:
		return fmt.Errorf("unknown cache type %q", c.Type)
	}

	return nil
}

// Validate checks that the rate limit configuration is valid.
func (c *RateLimitConfig) Validate() error {
	if c.Enabled && c.MaxRequestsPerDay <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_REQUESTS_PER_DAY must be positive when rate limiting is enabled")
	}

	return nil
}
