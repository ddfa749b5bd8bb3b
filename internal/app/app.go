package app

import (
	"go-leavechat/internal/config"
	"go-leavechat/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure and registers every module on the
// router. The returned cleanup closes connections on shutdown.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	db, err := connection.ConnectGORMWithRetry(connection.PostgresConfig{
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		SSLMode:  cfg.DBSSLMode,
	}, 5)
	if err != nil {
		return nil, err
	}
	zap.L().Info("database connection established")

	rdb, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return nil, err
	}
	zap.L().Info("redis connection established")

	if err := registerModules(router, db, rdb, cfg); err != nil {
		return nil, err
	}

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = rdb.Close()
	}
	return cleanup, nil
}
