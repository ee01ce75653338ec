package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gopherai-insight/internal/ai"
	"gopherai-insight/internal/config"
	"gopherai-insight/internal/model"
	"gopherai-insight/internal/pkg/logx"
	mysqlClient "gopherai-insight/internal/platform/mysql"
	rabbitmqClient "gopherai-insight/internal/platform/rabbitmq"
	redisClient "gopherai-insight/internal/platform/redis"
	"gopherai-insight/internal/repository"
	"gopherai-insight/internal/storage"
	"gopherai-insight/internal/worker"
)

type App struct {
	Config        *config.Config
	Logger        *zap.Logger
	MySQL         *gorm.DB
	Redis         *redis.Client
	MQConn        *amqp.Connection
	Blobs         storage.BlobStore
	Completer     ai.Completer
	MessageWorker *worker.MessagePersistWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger, err := logx.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("build logger failed: %w", err)
	}

	app := &App{Config: cfg, Logger: logger, StartedAt: time.Now()}
	if err := app.connect(ctx); err != nil {
		logger.Error("bootstrap failed", zap.Error(err))
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Config

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN(), cfg.App.GinMode == "debug")
	if err != nil {
		return err
	}
	a.MySQL = mysqlDB
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Dataset{}, &model.ChatMessage{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	a.Redis = redisCli

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open blob store failed: %w", err)
	}
	a.Blobs = blobs

	completer, err := ai.NewCompleter(cfg.LLM.Provider, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)
	if err != nil {
		return err
	}
	a.Completer = completer
	if cfg.LLM.APIKey == "" {
		a.Logger.Warn("llm api key is empty; chat replies will ask for one")
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return err
	}
	if mqConn == nil {
		a.Logger.Info("rabbitmq disabled; chat messages are written synchronously")
		return nil
	}
	a.MQConn = mqConn

	messageRepo := repository.NewMessageRepository(mysqlDB)
	messageWorker := worker.NewMessagePersistWorker(mqConn, messageRepo, cfg.RabbitMQ.MessagePersistQueue, a.Logger)
	if err := messageWorker.Start(ctx); err != nil {
		return fmt.Errorf("start message worker failed: %w", err)
	}
	a.MessageWorker = messageWorker
	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MessageWorker != nil {
		a.MessageWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
