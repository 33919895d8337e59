package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Upstream      UpstreamConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	Checkout      CheckoutConfig
	Tracking      TrackingConfig
	Catalog       CatalogConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KAIZERHAUS_APP_ENV" required:"true"`
	Port         string `envconfig:"KAIZERHAUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KAIZERHAUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KAIZERHAUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// UpstreamConfig points at the restaurant backend that owns all business
// state. This service never persists orders, products, or payments itself.
type UpstreamConfig struct {
	BaseURL string        `envconfig:"KAIZERHAUS_UPSTREAM_BASE_URL" default:"http://localhost:8001"`
	Timeout time.Duration `envconfig:"KAIZERHAUS_UPSTREAM_TIMEOUT" default:"15s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KAIZERHAUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KAIZERHAUS_REDIS_ADDR"`
	Password     string        `envconfig:"KAIZERHAUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"KAIZERHAUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KAIZERHAUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KAIZERHAUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KAIZERHAUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KAIZERHAUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KAIZERHAUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KAIZERHAUS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KAIZERHAUS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KAIZERHAUS_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"KAIZERHAUS_SESSION_TTL_MINUTES" default:"1440"`
}

// SessionTTL returns the session lifetime configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"KAIZERHAUS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"KAIZERHAUS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"KAIZERHAUS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"KAIZERHAUS_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"KAIZERHAUS_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"KAIZERHAUS_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CheckoutConfig struct {
	// EntregaTTL bounds how long a delivery selection survives between
	// checkout steps before the funnel has to be restarted.
	EntregaTTL    time.Duration `envconfig:"KAIZERHAUS_CHECKOUT_ENTREGA_TTL" default:"2h"`
	PixTTL        time.Duration `envconfig:"KAIZERHAUS_CHECKOUT_PIX_TTL" default:"2h"`
	PedidoRefTTL  time.Duration `envconfig:"KAIZERHAUS_CHECKOUT_PEDIDO_REF_TTL" default:"24h"`
	SubmitIdemTTL time.Duration `envconfig:"KAIZERHAUS_CHECKOUT_SUBMIT_IDEM_TTL" default:"24h"`
}

type TrackingConfig struct {
	PollInterval time.Duration `envconfig:"KAIZERHAUS_TRACKING_POLL_INTERVAL" default:"30s"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"KAIZERHAUS_CATALOG_CACHE_TTL" default:"60s"`
}
