package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"loan-ledger/internal/app/router"
	"loan-ledger/internal/pkg/cleanup"
	"loan-ledger/internal/pkg/config"
	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/db/mongo"
	"loan-ledger/internal/pkg/db/redis"
	"loan-ledger/internal/pkg/gcs"
	"loan-ledger/internal/pkg/kafka"
	"loan-ledger/internal/pkg/lock"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/pkg/otel"
	"loan-ledger/internal/pkg/pubsub"
	"loan-ledger/internal/pkg/store/impl/families"
	"loan-ledger/internal/pkg/store/impl/loans"
	"loan-ledger/internal/pkg/store/impl/transactions"
	"loan-ledger/internal/pkg/store/impl/users"
	"loan-ledger/internal/pkg/store/repository"
	"loan-ledger/internal/service"
)

var (
	loadConfig     = config.LoadFromConfig
	setupTracing   = otel.Setup
	connectMongoDB = mongo.ConnectToMongoDB
	connectRedisDB = func(ctx context.Context, cfg config.RedisConfig) (*redis.RedisClient, error) {
		return redis.ConnectToRedis(ctx, cfg, nil)
	}
	newKafkaProducer   = kafka.NewKafkaProducer
	newPubSubPublisher = pubsub.NewPubSubPublisher
	newAttachmentStore = func(ctx context.Context, cfg config.GCSConfig) (*gcs.AttachmentStore, error) {
		return gcs.NewAttachmentStore(ctx, cfg)
	}
)

// App encapsulates application resources and lifecycle.
type App struct {
	Cfg             *config.AppConfig
	MongoClient     *mongo.MongoClient
	RedisClient     *redis.RedisClient
	KafkaProducer   *kafka.KafkaProducer
	PubSubPublisher *pubsub.PubSubPublisher
	Attachments     *gcs.AttachmentStore
	Loans           *loans.LoanRepository
	Service         *service.LoanLedgerService
	Dispatcher      *service.OutboxDispatcher
	HTTPServer      *http.Server
	TracerShutdown  func(context.Context) error
}

// New loads configuration and connects every backing service. Kafka and
// Pub/Sub are only built when enabled; a missing attachment store disables
// uploads instead of failing startup.
func New(ctx context.Context) (*App, error) {
	cfg, err := loadConfig()
	if err != nil {
		logger.CtxError(ctx, log_messages.FailedLoadingConfiguration, err)
		return nil, err
	}
	logger.Init(cfg.Logging.LogLevel, cfg.Logging.ServiceName)

	app := &App{Cfg: cfg}
	if err := app.connect(ctx); err != nil {
		app.Shutdown(ctx)
		return nil, err
	}
	app.wire()
	return app, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg := a.Cfg

	shutdown, err := setupTracing(ctx, cfg.Logging.ServiceName, cfg.Otel)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorSettingUpTracing, err)
		return err
	}
	a.TracerShutdown = shutdown

	if a.MongoClient, err = connectMongoDB(ctx, cfg.Mongo); err != nil {
		logger.CtxError(ctx, log_messages.ErrorConnectingMongo, err)
		return err
	}
	if a.RedisClient, err = connectRedisDB(ctx, cfg.Redis); err != nil {
		logger.CtxError(ctx, log_messages.ErrorConnectingRedis, err)
		return err
	}

	if cfg.Kafka.Enabled {
		if a.KafkaProducer, err = newKafkaProducer(cfg.Kafka); err != nil {
			logger.CtxError(ctx, log_messages.ErrorCreatingKafkaProducer, err)
			return err
		}
	}
	if cfg.PubSub.Enabled {
		if a.PubSubPublisher, err = newPubSubPublisher(ctx, cfg.PubSub.ProjectID); err != nil {
			logger.CtxError(ctx, log_messages.ErrorCreatingPublisher, err)
			return err
		}
	}

	if cfg.GCS.BucketName != "" {
		store, err := newAttachmentStore(ctx, cfg.GCS)
		if err != nil {
			logger.CtxWarn(ctx, log_messages.AttachmentStoreDisabled, zap.Error(err))
		} else {
			a.Attachments = store
		}
	}

	a.Loans = loans.NewLoansRepository(a.MongoClient)
	if err := a.Loans.EnsureIndexes(ctx); err != nil {
		logger.CtxError(ctx, log_messages.ErrorEnsuringIndexes, err)
		return err
	}
	return nil
}

func (a *App) wire() {
	cfg := a.Cfg
	transactionRepo := transactions.NewTransactionsRepository(a.MongoClient)
	userCache := repository.NewRedisProfileCache(a.RedisClient.Client)

	deps := service.Dependencies{
		Loans:        a.Loans,
		Transactions: transactionRepo,
		Users:        users.NewUsersRepository(a.MongoClient, userCache, cfg.Ledger.UserCacheTTL),
		Families:     families.NewFamiliesRepository(a.MongoClient),
		Locker: &lock.FallbackLocker{
			Primary:   lock.NewRedisLocker(a.RedisClient.Client, consts.LockKeyPrefix, cfg.Ledger.LockTTL, cfg.Ledger.LockTTL),
			Secondary: lock.NewKeyedMutex(cfg.Ledger.LockTTL),
		},
		DirectoryTimeout: cfg.Ledger.DirectoryTimeout,
	}
	// typed nils must not reach the interface fields
	if a.Attachments != nil {
		deps.Attachments = a.Attachments
	}
	if a.KafkaProducer != nil {
		deps.Events = service.NewLoanEventPublisher(a.KafkaProducer)
	}
	if a.PubSubPublisher != nil {
		deps.Notifier = service.NewPubSubNotifier(a.PubSubPublisher, cfg.PubSub.NotificationTopic)
	}

	a.Service = service.NewLoanLedgerService(deps)
	a.Dispatcher = service.NewOutboxDispatcher(a.Loans, transactionRepo, service.OutboxConfig{
		Interval:  cfg.Ledger.OutboxInterval,
		Workers:   cfg.Ledger.OutboxWorkers,
		BatchSize: cfg.Ledger.OutboxBatchSize,
	})
}

// Start begins the outbox dispatcher and serves HTTP in the background.
func (a *App) Start(ctx context.Context) {
	a.Dispatcher.Start(ctx)

	engine := router.SetupRouter(a.Service, a.Dispatcher, router.Options{
		ServiceName:  a.Cfg.Logging.ServiceName,
		MaxFileBytes: a.Cfg.GCS.MaxFileBytes,
	})
	a.HTTPServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.CtxInfo(ctx, log_messages.ServerStarting, zap.String("addr", a.HTTPServer.Addr))
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.CtxError(ctx, log_messages.ServerStartFailure, err)
		}
	}()
}

// Run starts the app, then blocks until SIGINT or SIGTERM or ctx is done.
func (a *App) Run(ctx context.Context) error {
	a.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.CtxInfo(ctx, log_messages.ServerShutdown)
	a.Shutdown(context.WithoutCancel(ctx))
	logger.CtxInfo(ctx, log_messages.ServerExiting)
	return nil
}

// Shutdown gracefully closes all resources with bounded timeouts.
func (a *App) Shutdown(ctx context.Context) {
	res := cleanup.Resources{
		Server:         a.HTTPServer,
		KafkaProducer:  a.KafkaProducer,
		MongoClient:    a.MongoClient,
		RedisClient:    a.RedisClient,
		Attachments:    a.Attachments,
		TracerShutdown: a.TracerShutdown,
	}
	if a.Dispatcher != nil {
		res.Dispatcher = a.Dispatcher
	}
	if a.PubSubPublisher != nil {
		res.PubSubPublisher = a.PubSubPublisher
	}
	cleanup.CleanupResources(ctx, res)
	logger.Sync()
}
