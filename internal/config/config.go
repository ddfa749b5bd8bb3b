package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Config captures everything the service reads from the environment.
// main loads .env first (godotenv), then this struct parses the result.
type Config struct {
	Port string `env:"PORT" envDefault:"3000"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"leavechat"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	KafkaBroker string `env:"KAFKA_BROKER"`

	// Business rules.
	WeekendCounts      bool   `env:"WEEKEND_COUNTS" envDefault:"false"`
	MinLeaveBalance    string `env:"MIN_LEAVE_BALANCE" envDefault:"0"`
	MaxConsecutiveDays int    `env:"MAX_CONSECUTIVE_DAYS" envDefault:"30"`

	// NLP.
	ConfidenceThreshold float64       `env:"CONFIDENCE_THRESHOLD" envDefault:"0.6"`
	PendingTTL          time.Duration `env:"PENDING_TTL" envDefault:"15m"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if _, err := decimal.NewFromString(cfg.MinLeaveBalance); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MinBalance returns the configured balance floor as a decimal. Load
// already validated the string, so parsing here cannot fail.
func (c Config) MinBalance() decimal.Decimal {
	d, _ := decimal.NewFromString(c.MinLeaveBalance)
	return d
}
