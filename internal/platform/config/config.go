package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"landregistry/pkg/domain"
	strutil "landregistry/pkg/platform/strings"
)

// Server captures process-wide configuration.
type Server struct {
	Addr   string
	Logger LoggerConfig
	Auth   AuthConfig
	Chain  ChainConfig
	Market MarketConfig

	DatabaseURL        string
	Redis              RedisConfig
	Kafka              KafkaConfig
	CORSAllowedOrigins []string
}

type LoggerConfig struct {
	Level  string
	Format string // json, text or tint
}

type AuthConfig struct {
	JWTSigningKey string
	Issuer        string
	TokenTTL      time.Duration
	Lockout       LockoutConfig
}

// LockoutConfig throttles failed wallet connections per address and client.
type LockoutConfig struct {
	MaxFailures  int
	Window       time.Duration
	LockDuration time.Duration
}

// ChainConfig describes the ledger the wallet adapter reports on.
type ChainConfig struct {
	ChainID        int64
	MainAdmin      domain.Address
	InitialBalance int64
	FaucetEnabled  bool
}

// MarketConfig tunes the sale lifecycle.
type MarketConfig struct {
	PaymentWindow       time.Duration
	ExpirySweepInterval time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers        []string
	AuditTopic     string
	OutboxInterval time.Duration
	OutboxBatch    int
}

const devSigningKey = "dev-secret-key-change-in-production"

// Load reads an optional .env file and then builds the config from the
// environment. A missing .env is not an error; malformed values are.
func Load(envFiles ...string) (Server, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Server{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	p := &parser{}

	cfg := Server{
		Addr: envOr("LAND_ADDR", ":8080"),
		Logger: LoggerConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			JWTSigningKey: envOr("JWT_SIGNING_KEY", devSigningKey),
			Issuer:        envOr("JWT_ISSUER", "landregistry"),
			TokenTTL:      p.duration("TOKEN_TTL", 12*time.Hour),
			Lockout: LockoutConfig{
				MaxFailures:  p.int("CONNECT_MAX_FAILURES", 5),
				Window:       p.duration("CONNECT_FAILURE_WINDOW", 15*time.Minute),
				LockDuration: p.duration("CONNECT_LOCK_DURATION", 15*time.Minute),
			},
		},
		Chain: ChainConfig{
			ChainID:        p.int64("CHAIN_ID", 1337),
			InitialBalance: p.int64("WALLET_INITIAL_BALANCE", 0),
			FaucetEnabled:  p.bool("WALLET_FAUCET_ENABLED", false),
		},
		Market: MarketConfig{
			PaymentWindow:       p.duration("PAYMENT_WINDOW", 72*time.Hour),
			ExpirySweepInterval: p.duration("EXPIRY_SWEEP_INTERVAL", time.Minute),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     p.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:        strutil.SplitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:     envOr("AUDIT_TOPIC", "landregistry.audit"),
			OutboxInterval: p.duration("OUTBOX_INTERVAL", 2*time.Second),
			OutboxBatch:    p.int("OUTBOX_BATCH", 100),
		},
		CORSAllowedOrigins: strutil.SplitOrigins(envOr("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
	}

	if raw := os.Getenv("MAIN_ADMIN_ADDRESS"); raw != "" {
		addr, err := domain.ParseAddress(raw)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("MAIN_ADMIN_ADDRESS: %w", err))
		}
		cfg.Chain.MainAdmin = addr
	}

	if err := errors.Join(p.errs...); err != nil {
		return Server{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Server) Validate() error {
	if c.Chain.MainAdmin.IsZero() {
		return errors.New("MAIN_ADMIN_ADDRESS is required")
	}
	if c.Chain.MainAdmin.IsEscrow() {
		return errors.New("MAIN_ADMIN_ADDRESS cannot be the escrow address")
	}
	if c.Market.PaymentWindow <= 0 {
		return errors.New("PAYMENT_WINDOW must be positive")
	}
	if c.Market.ExpirySweepInterval <= 0 {
		return errors.New("EXPIRY_SWEEP_INTERVAL must be positive")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if l := c.Auth.Lockout; l.MaxFailures <= 0 || l.Window <= 0 || l.LockDuration <= 0 {
		return errors.New("CONNECT_MAX_FAILURES, CONNECT_FAILURE_WINDOW and CONNECT_LOCK_DURATION must be positive")
	}
	if c.Chain.InitialBalance < 0 {
		return errors.New("WALLET_INITIAL_BALANCE cannot be negative")
	}
	switch c.Logger.Format {
	case "json", "text", "tint":
	default:
		return fmt.Errorf("LOG_FORMAT %q is not one of json, text, tint", c.Logger.Format)
	}
	return nil
}

// UsesDevSigningKey reports whether the insecure default key is active.
func (c Server) UsesDevSigningKey() bool {
	return c.Auth.JWTSigningKey == devSigningKey
}

type parser struct {
	errs []error
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func (p *parser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) int64(key string, def int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) bool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return b
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
