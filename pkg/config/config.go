package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BEATSTORE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "BEATSTORE_APP_ENV"
	EnvDBDSN  = "BEATSTORE_DB_DSN"
	EnvDBHost = "BEATSTORE_DB_HOST"
	EnvDBUser = "BEATSTORE_DB_USER"
	EnvDBName = "BEATSTORE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
	Assets        AssetsConfig
	Stripe        StripeConfig
	Sendgrid      SendgridConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BEATSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"BEATSTORE_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"BEATSTORE_APP_BASE_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"BEATSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BEATSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BEATSTORE_DB_DSN"`
	Driver string `envconfig:"BEATSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BEATSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"BEATSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BEATSTORE_DB_USER"`
	LegacyPassword string `envconfig:"BEATSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"BEATSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"BEATSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BEATSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BEATSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BEATSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BEATSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BEATSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BEATSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"BEATSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"BEATSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BEATSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BEATSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BEATSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BEATSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BEATSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BEATSTORE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BEATSTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BEATSTORE_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BEATSTORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BEATSTORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BEATSTORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BEATSTORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BEATSTORE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BEATSTORE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"BEATSTORE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"BEATSTORE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BEATSTORE_AUTO_MIGRATE" default:"false"`
}

type CheckoutConfig struct {
	Currency        string        `envconfig:"BEATSTORE_CHECKOUT_CURRENCY" default:"pln"`
	SuccessPath     string        `envconfig:"BEATSTORE_CHECKOUT_SUCCESS_PATH" default:"/checkout/success"`
	CancelPath      string        `envconfig:"BEATSTORE_CHECKOUT_CANCEL_PATH" default:"/cart"`
	WebhookEventTTL time.Duration `envconfig:"BEATSTORE_CHECKOUT_WEBHOOK_EVENT_TTL" default:"720h"`
}

type AssetsConfig struct {
	Root string `envconfig:"BEATSTORE_ASSETS_ROOT" default:"./assets"`
}

type StripeConfig struct {
	APIKey string `envconfig:"BEATSTORE_STRIPE_API_KEY"`
	Secret string `envconfig:"BEATSTORE_STRIPE_WEBHOOK_SECRET"`
	Env    string `envconfig:"BEATSTORE_STRIPE_ENV" default:"test"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"BEATSTORE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"BEATSTORE_SENDGRID_FROM_EMAIL" default:"noreply@osinbeats.com"`
	FromName    string `envconfig:"BEATSTORE_SENDGRID_FROM_NAME" default:"Osin Beats"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// SuccessURL renders the success-page redirect with Stripe's session template.
func (c CheckoutConfig) SuccessURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + c.SuccessPath + "?session={CHECKOUT_SESSION_ID}"
}

// CancelURL renders the cart page the customer lands on when abandoning.
func (c CheckoutConfig) CancelURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + c.CancelPath
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
