// Package config loads the booking service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "github.com/md-rashed-zaman/salonbook/libs/config"
	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/availability"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"booking-service"`
	Port        string `env:"PORT" envDefault:"8083" validate:"required,numeric"`
	GRPCPort    string `env:"GRPC_PORT" envDefault:"9093" validate:"omitempty,numeric"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL   string        `env:"DATABASE_URL,required" validate:"required"`
	DBAutoMigrate bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	DBMaxConns    int32         `env:"DB_MAX_CONNS" envDefault:"10" validate:"gte=1"`
	DBMaxConnIdle time.Duration `env:"DB_MAX_CONN_IDLE" envDefault:"5m"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`

	KafkaBrokers      string        `env:"KAFKA_BROKERS"`
	OutboxPollEvery   time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize   int           `env:"OUTBOX_BATCH_SIZE" envDefault:"50" validate:"gte=1"`
	OutboxRetention   time.Duration `env:"OUTBOX_RETENTION" envDefault:"168h"`
	JWTSecret         string        `env:"JWT_SECRET"`
	JWKSURL           string        `env:"JWKS_URL" validate:"omitempty,url"`
	JWKSCacheSeconds  int           `env:"JWKS_CACHE_SECONDS" envDefault:"300" validate:"gte=0"`
	JWTIssuer         string        `env:"JWT_ISSUER"`
	JWTAudience       string        `env:"JWT_AUDIENCE"`
	JWTLeewaySeconds  int           `env:"JWT_LEEWAY_SECONDS" envDefault:"30" validate:"gte=0"`
	SalonTimezone     string        `env:"SALON_TIMEZONE" envDefault:"UTC"`
	BusinessOpen      string        `env:"BUSINESS_OPEN" envDefault:"09:00"`
	BusinessClose     string        `env:"BUSINESS_CLOSE" envDefault:"21:00"`
	SlotStepMinutes   int           `env:"SLOT_STEP_MINUTES" envDefault:"60" validate:"gte=5,lte=240"`
	CancelLeadTime    time.Duration `env:"CANCEL_LEAD_TIME" envDefault:"2h"`
	SlotCacheTTL      time.Duration `env:"SLOT_CACHE_TTL" envDefault:"60s"`
	SlotCacheSize     int           `env:"SLOT_CACHE_SIZE" envDefault:"1024" validate:"gte=1"`
	TaxonomyFile      string        `env:"CATEGORY_TAXONOMY_FILE"`
	RateLimitPerMin   int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120" validate:"gte=0"`
	CORSOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeoutSec int           `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"15" validate:"gte=1"`
	RequestBodyLimit  int64         `env:"REQUEST_BODY_LIMIT_BYTES" envDefault:"1048576" validate:"gte=1024"`
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := libconfig.LoadDotEnv(); err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := libconfig.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) check() error {
	if strings.TrimSpace(c.JWTSecret) == "" && strings.TrimSpace(c.JWKSURL) == "" {
		return errors.New("invalid config: JWT_SECRET or JWKS_URL is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.BusinessHours(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.SalonTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid config: SALON_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c Config) BusinessHours() (availability.BusinessHours, error) {
	return availability.NewBusinessHours(c.BusinessOpen, c.BusinessClose, c.SlotStepMinutes)
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}
