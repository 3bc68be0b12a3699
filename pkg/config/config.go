package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "nova"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "NOVA_DB_DSN"
	EnvDBHost = "NOVA_DB_HOST"
	EnvDBUser = "NOVA_DB_USER"
	EnvDBName = "NOVA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Checkout  CheckoutConfig
	Concierge ConciergeConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
	Outbox    OutboxConfig
	Flags     FeatureFlagsConfig
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
	Env          string `envconfig:"NOVA_APP_ENV" required:"true"`
	Port         string `envconfig:"NOVA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NOVA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NOVA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"NOVA_DB_DSN"`
	Driver string `envconfig:"NOVA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"NOVA_DB_HOST"`
	LegacyPort     int    `envconfig:"NOVA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"NOVA_DB_USER"`
	LegacyPassword string `envconfig:"NOVA_DB_PASSWORD"`
	LegacyName     string `envconfig:"NOVA_DB_NAME"`
	LegacySSLMode  string `envconfig:"NOVA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NOVA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NOVA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NOVA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NOVA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NOVA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NOVA_REDIS_ADDR"`
	Password     string        `envconfig:"NOVA_REDIS_PASSWORD"`
	DB           int           `envconfig:"NOVA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NOVA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NOVA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NOVA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NOVA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NOVA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CheckoutConfig tunes the wizard runtime.
type CheckoutConfig struct {
	// TaxRatePercent is a flat estimate applied to the subtotal. It is a
	// placeholder, not a tax-authority computation.
	TaxRatePercent  string        `envconfig:"NOVA_CHECKOUT_TAX_RATE_PERCENT" default:"8"`
	SessionTTL      time.Duration `envconfig:"NOVA_CHECKOUT_SESSION_TTL" default:"24h"`
	SubmitTimeout   time.Duration `envconfig:"NOVA_CHECKOUT_SUBMIT_TIMEOUT" default:"30s"`
	SubmitLockTTL   time.Duration `envconfig:"NOVA_CHECKOUT_SUBMIT_LOCK_TTL" default:"45s"`
	PayURLBase      string        `envconfig:"NOVA_CHECKOUT_PAY_URL_BASE" default:"/checkout/pay"`
	ReceivedURLBase string        `envconfig:"NOVA_CHECKOUT_RECEIVED_URL_BASE" default:"/checkout/order-received"`
	Currency        string        `envconfig:"NOVA_CHECKOUT_CURRENCY" default:"USD"`
}

type ConciergeConfig struct {
	APIKey  string        `envconfig:"NOVA_CONCIERGE_API_KEY"`
	Model   string        `envconfig:"NOVA_CONCIERGE_MODEL" default:"gemini-2.0-flash"`
	BaseURL string        `envconfig:"NOVA_CONCIERGE_BASE_URL"`
	Timeout time.Duration `envconfig:"NOVA_CONCIERGE_TIMEOUT" default:"10s"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"NOVA_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"NOVA_PUBSUB_ORDERS_TOPIC" default:"nova-order-events"`
	OrdersSubscription string `envconfig:"NOVA_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"NOVA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"NOVA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"NOVA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"NOVA_AUTO_MIGRATE" default:"false"`
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
