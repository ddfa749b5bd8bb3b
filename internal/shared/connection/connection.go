package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const retryDelay = 5 * time.Second

// PostgresConfig carries what the DSN needs; main maps the env config
// onto it so this package stays free of the config dependency.
type PostgresConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

func (c PostgresConfig) dsn() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// ConnectGORMWithRetry opens and pings postgres, retrying on a fixed
// delay so the service survives the database coming up after it.
func ConnectGORMWithRetry(cfg PostgresConfig, maxRetries int) (*gorm.DB, error) {
	logger := zap.L().Named("connection.postgres")
	dsn := cfg.dsn()

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			lastErr = err
			logger.Warn("open failed",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		sqlDB, err := db.DB()
		if err != nil {
			lastErr = err
			logger.Warn("unwrap sql.DB failed", zap.Int("attempt", attempt), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		if err := sqlDB.Ping(); err != nil {
			lastErr = err
			logger.Warn("ping failed", zap.Int("attempt", attempt), zap.Error(err))
			time.Sleep(retryDelay)
			continue
		}

		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)

		logger.Info("connected",
			zap.String("host", cfg.Host),
			zap.String("database", cfg.Name),
		)
		return db, nil
	}

	return nil, fmt.Errorf("database connection failed after %d retries: %w", maxRetries, lastErr)
}

// ConnectRedisWithRetry pings redis until it answers or retries run out.
func ConnectRedisWithRetry(addr string, maxRetries int) (*redis.Client, error) {
	logger := zap.L().Named("connection.redis")
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := rdb.Ping(context.Background()).Err()
		if err == nil {
			logger.Info("connected", zap.String("addr", addr))
			return rdb, nil
		}
		lastErr = err

		logger.Warn("ping failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(lastErr),
		)
		time.Sleep(retryDelay)
	}

	return nil, fmt.Errorf("redis connection failed after %d retries: %w", maxRetries, lastErr)
}
