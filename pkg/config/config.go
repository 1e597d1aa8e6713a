// Package config loads storefront configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	EventsNone  = "none"
	EventsLog   = "log"
	EventsKafka = "kafka"
	EventsNATS  = "nats"
)

type Config struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`

	GRPCPort int `yaml:"grpc_port"`
	HTTPPort int `yaml:"http_port"`

	Store    StoreConfig    `yaml:"store"`
	Events   EventsConfig   `yaml:"events"`
	Payment  PaymentConfig  `yaml:"payment"`
	Auth     AuthConfig     `yaml:"auth"`
	Relay    RelayConfig    `yaml:"relay"`
	Checkout CheckoutConfig `yaml:"checkout"`
}

type StoreConfig struct {
	// Driver is "postgres" or "memory".
	Driver      string         `yaml:"driver"`
	DatabaseURL string         `yaml:"database_url"`
	Postgres    PostgresConfig `yaml:"postgres"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DB       string `yaml:"db"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type EventsConfig struct {
	// Driver is one of none, log, kafka, nats.
	Driver       string `yaml:"driver"`
	KafkaBrokers string `yaml:"kafka_brokers"`
	KafkaTopic   string `yaml:"kafka_topic"`
	NATSURL      string `yaml:"nats_url"`
	NATSSubject  string `yaml:"nats_subject"`
}

type PaymentConfig struct {
	// ProcessorURL empty means the built-in static processor is used.
	ProcessorURL string        `yaml:"processor_url"`
	Timeout      time.Duration `yaml:"timeout"`
	AutoApprove  bool          `yaml:"auto_approve"`
}

// AuthConfig names the identity headers set by the session gateway. The
// service trusts them as sent, so the HTTP port must only be reachable
// through that gateway. The role header is honoured only with TrustGateway.
type AuthConfig struct {
	TrustGateway bool   `yaml:"trust_gateway"`
	UserHeader   string `yaml:"user_header"`
	RoleHeader   string `yaml:"role_header"`
	GuestCookie  string `yaml:"guest_cookie"`
	GuestHeader  string `yaml:"guest_header"`
}

type RelayConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

type CheckoutConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

func Default() Config {
	return Config{
		AppEnv:   "dev",
		LogLevel: "info",
		HTTPPort: 8080,
		GRPCPort: 8081,
		Store: StoreConfig{
			Driver: StorePostgres,
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "shopping",
				Password: "shoppingpassword",
				DB:       "shopping_db",
				SSLMode:  "disable",
				MaxConns: 10,
			},
		},
		Events: EventsConfig{
			Driver:      EventsLog,
			KafkaTopic:  "storefront.events",
			NATSSubject: "storefront.events",
		},
		Payment: PaymentConfig{
			Timeout:     10 * time.Second,
			AutoApprove: true,
		},
		Auth: AuthConfig{
			UserHeader:  "X-User-ID",
			RoleHeader:  "X-User-Role",
			GuestCookie: "guest_session",
			GuestHeader: "X-Guest-Session",
		},
		Relay: RelayConfig{
			Interval:  time.Second,
			BatchSize: 100,
		},
		Checkout: CheckoutConfig{MaxConcurrent: 10},
	}
}

// Load builds the configuration. path may be empty, in which case CONFIG_FILE
// is consulted; a missing file is only an error when explicitly requested.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.AppEnv = getEnv("APP_ENV", c.AppEnv)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.GRPCPort = getEnvInt("GRPC_PORT", c.GRPCPort)

	c.Store.Driver = getEnv("STORE_DRIVER", c.Store.Driver)
	c.Store.DatabaseURL = getEnv("DATABASE_URL", c.Store.DatabaseURL)
	c.Store.Postgres.Host = getEnv("POSTGRES_HOST", c.Store.Postgres.Host)
	c.Store.Postgres.Port = getEnvInt("POSTGRES_PORT", c.Store.Postgres.Port)
	c.Store.Postgres.User = getEnv("POSTGRES_USER", c.Store.Postgres.User)
	c.Store.Postgres.Password = getEnv("POSTGRES_PASSWORD", c.Store.Postgres.Password)
	c.Store.Postgres.DB = getEnv("POSTGRES_DB", c.Store.Postgres.DB)

	c.Events.Driver = getEnv("EVENTS_DRIVER", c.Events.Driver)
	c.Events.KafkaBrokers = getEnv("KAFKA_BROKERS", c.Events.KafkaBrokers)
	c.Events.KafkaTopic = getEnv("KAFKA_TOPIC", c.Events.KafkaTopic)
	c.Events.NATSURL = getEnv("NATS_URL", c.Events.NATSURL)
	c.Events.NATSSubject = getEnv("NATS_SUBJECT", c.Events.NATSSubject)

	c.Payment.ProcessorURL = getEnv("PAYMENT_PROCESSOR_URL", c.Payment.ProcessorURL)
	c.Payment.Timeout = getEnvDuration("PAYMENT_TIMEOUT", c.Payment.Timeout)
	c.Payment.AutoApprove = getEnvBool("PAYMENT_AUTO_APPROVE", c.Payment.AutoApprove)

	c.Auth.TrustGateway = getEnvBool("AUTH_TRUST_GATEWAY", c.Auth.TrustGateway)

	c.Relay.Interval = getEnvDuration("RELAY_INTERVAL", c.Relay.Interval)
	c.Relay.BatchSize = getEnvInt("RELAY_BATCH_SIZE", c.Relay.BatchSize)
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreMemory, StorePostgres:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store.Driver)
	}

	switch c.Events.Driver {
	case EventsNone, EventsLog:
	case EventsKafka:
		if strings.TrimSpace(c.Events.KafkaBrokers) == "" {
			return fmt.Errorf("events.kafka_brokers is required for the kafka driver")
		}
	case EventsNATS:
		if strings.TrimSpace(c.Events.NATSURL) == "" {
			return fmt.Errorf("events.nats_url is required for the nats driver")
		}
	default:
		return fmt.Errorf("unknown events.driver %q", c.Events.Driver)
	}

	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		return fmt.Errorf("http_port and grpc_port must be positive")
	}
	if c.Payment.Timeout <= 0 {
		return fmt.Errorf("payment.timeout must be positive")
	}
	if c.Relay.BatchSize <= 0 {
		return fmt.Errorf("relay.batch_size must be positive")
	}
	return nil
}

// DSN returns DatabaseURL when set, otherwise a URL built from the postgres section.
func (s StoreConfig) DSN() string {
	if s.DatabaseURL != "" {
		return s.DatabaseURL
	}
	p := s.Postgres
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:     "/" + p.DB,
		RawQuery: "sslmode=" + p.SSLMode,
	}
	return u.String()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
