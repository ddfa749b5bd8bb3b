package main

import (
	"time"

	"go-leavechat/internal/app"
	"go-leavechat/internal/bootstrap"
	"go-leavechat/internal/config"
	"go-leavechat/internal/middleware"
	"go-leavechat/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config failed", zap.Error(err))
	}

	r := gin.Default()
	r.Use(middleware.RequestID())

	cleanup, err := app.BuildApp(r, cfg)
	if err != nil {
		logger.Fatal("build app failed", zap.Error(err))
	}
	defer cleanup()

	auditLogger := bootstrap.NewStdoutAuditLogger()
	bootstrap.StartHTTPServer(
		r,
		bootstrap.ServerConfig{
			Port:            cfg.Port,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		auditLogger,
	)
}
