package app

import (
	"go-leavechat/internal/bootstrap"
	"go-leavechat/internal/chat"
	"go-leavechat/internal/config"
	"go-leavechat/internal/leave"
	"go-leavechat/internal/nlp/dateparse"
	"go-leavechat/internal/nlp/entity"
	"go-leavechat/internal/nlp/intent"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *gorm.DB,
	rdb *redis.Client,
	cfg config.Config,
) error {
	// --- NLP pipeline ---
	classifier := intent.NewClassifier()
	parser := dateparse.New()
	extractor := entity.NewExtractor(parser, cfg.WeekendCounts)

	// --- Repositories & stores ---
	leaveRepo := leave.NewRepository(db)
	pendingStore := leave.NewRedisPendingStore(rdb, cfg.PendingTTL)

	// --- Event publisher (noop without a broker) ---
	publisher := leave.NewNoopEventPublisher()
	if cfg.KafkaBroker != "" {
		writer := &kafkago.Writer{
			Addr:     kafkago.TCP(cfg.KafkaBroker),
			Balancer: &kafkago.LeastBytes{},
		}
		publisher = leave.NewKafkaEventPublisher(writer)
		zap.L().Info("kafka event publisher enabled", zap.String("broker", cfg.KafkaBroker))
	}

	// --- Services ---
	rules := leave.Rules{
		MinBalance:         cfg.MinBalance(),
		MaxConsecutiveDays: cfg.MaxConsecutiveDays,
		WeekendCounts:      cfg.WeekendCounts,
	}
	auditLogger := bootstrap.NewStdoutAuditLogger()
	leaveService := leave.NewService(db, leaveRepo, pendingStore, publisher, auditLogger, rules)

	// --- Handlers & routes ---
	chatHandler := chat.NewHandler(classifier, extractor, leaveService, cfg.ConfidenceThreshold)

	api := router.Group("/api/v1")
	{
		chat.RegisterRoutes(api, chatHandler)
	}

	return nil
}
