package mongo

import (
	"context"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/config"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
)

const (
	defaultConnectTimeout = 10 * time.Second
	heartbeatInterval     = 10 * time.Second
	disconnectTimeout     = 10 * time.Second
)

type MongoConnector interface {
	Connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error)
	Ping(ctx context.Context, client *mongo.Client) error
}

type DefaultMongoConnector struct{}

func (DefaultMongoConnector) Connect(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	return mongo.Connect(ctx, opts)
}

func (DefaultMongoConnector) Ping(ctx context.Context, client *mongo.Client) error {
	return client.Ping(ctx, nil)
}

// MongoClient is the connected client plus the ledger database.
type MongoClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func ConnectToMongoDB(ctx context.Context, cfg config.MongoConfig) (*MongoClient, error) {
	return connectWithConnector(ctx, cfg, DefaultMongoConnector{})
}

func connectWithConnector(ctx context.Context, cfg config.MongoConfig, connector MongoConnector) (*MongoClient, error) {
	fields := []zap.Field{
		zap.String("uri", redactMongoURI(cfg.URI)),
		zap.String("database", cfg.DBName),
	}
	logger.CtxInfo(ctx, log_messages.MongoConnecting, fields...)

	client, err := connector.Connect(ctx, clientOptions(cfg))
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorConnectingMongo, err, fields...)
		return nil, err
	}
	if err := connector.Ping(ctx, client); err != nil {
		logger.CtxError(ctx, log_messages.ErrorPingingMongo, err, fields...)
		return nil, err
	}

	logger.CtxInfo(ctx, log_messages.MongoConnected, fields...)
	return &MongoClient{Client: client, Database: client.Database(cfg.DBName)}, nil
}

// clientOptions derives server selection and socket timeouts from the
// connect timeout so one setting bounds a slow cluster at startup.
func clientOptions(cfg config.MongoConfig) *options.ClientOptions {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(2 * timeout).
		SetSocketTimeout(3 * timeout).
		SetHeartbeatInterval(heartbeatInterval).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)

	// config credentials override userinfo in the URI
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}
	return opts
}

func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

func redactMongoURI(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.User == nil {
		return uri
	}
	redacted := parsed.Scheme + "://***:***@" + parsed.Host + parsed.Path
	if parsed.RawQuery != "" {
		redacted += "?" + parsed.RawQuery
	}
	return redacted
}
