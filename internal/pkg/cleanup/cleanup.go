package cleanup

import (
	"context"
	"net/http"
	"time"

	"loan-ledger/internal/pkg/db/mongo"
	"loan-ledger/internal/pkg/db/redis"
	"loan-ledger/internal/pkg/gcs"
	"loan-ledger/internal/pkg/kafka"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
)

// Resources is everything the service holds open. Nil fields are skipped.
type Resources struct {
	Server          *http.Server
	Dispatcher      interface{ Stop() }
	KafkaProducer   *kafka.KafkaProducer
	PubSubPublisher interface{ Close() error }
	MongoClient     *mongo.MongoClient
	RedisClient     *redis.RedisClient
	Attachments     *gcs.AttachmentStore
	TracerShutdown  func(context.Context) error
}

// CleanupResources stops intake first, then the background dispatcher,
// then the publishers, and finally the stores they depend on.
func CleanupResources(ctx context.Context, r Resources) {
	logger.CtxInfo(ctx, log_messages.CleanupStarted)

	cleanupHTTPServer(ctx, r.Server)
	if r.Dispatcher != nil {
		r.Dispatcher.Stop()
	}

	cleanupKafkaResource(ctx, r.KafkaProducer)
	cleanupPubSubResource(ctx, r.PubSubPublisher)

	cleanupMongoResource(ctx, r.MongoClient)
	cleanupRedisResource(ctx, r.RedisClient)
	cleanupGCSResource(ctx, r.Attachments)
	cleanupTracer(ctx, r.TracerShutdown)

	logger.CtxInfo(ctx, log_messages.CleanupCompleted)
}

func cleanupHTTPServer(ctx context.Context, server *http.Server) {
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.CtxError(ctx, "Failed to shutdown HTTP server", err)
	} else {
		logger.CtxInfo(ctx, "HTTP server shutdown successfully")
	}
}

func cleanupKafkaResource(ctx context.Context, producer *kafka.KafkaProducer) {
	if producer == nil {
		return
	}
	if err := producer.Close(); err != nil {
		logger.CtxError(ctx, "Failed to close Kafka producer", err)
	} else {
		logger.CtxInfo(ctx, "Kafka producer closed successfully")
	}
}

func cleanupPubSubResource(ctx context.Context, publisher interface{ Close() error }) {
	if publisher == nil {
		return
	}
	if err := publisher.Close(); err != nil {
		logger.CtxError(ctx, "Failed to close PubSub publisher", err)
	} else {
		logger.CtxInfo(ctx, "PubSub publisher closed successfully")
	}
}

func cleanupMongoResource(ctx context.Context, mongoClient *mongo.MongoClient) {
	if mongoClient == nil || mongoClient.Client == nil {
		return
	}
	if err := mongo.Disconnect(mongoClient.Client); err != nil {
		logger.CtxError(ctx, "Failed to disconnect MongoDB client", err)
	} else {
		logger.CtxInfo(ctx, "MongoDB client disconnected successfully")
	}
}

func cleanupRedisResource(ctx context.Context, redisClient *redis.RedisClient) {
	if redisClient == nil || redisClient.Client == nil {
		return
	}
	if err := redis.Disconnect(redisClient.Client); err != nil {
		logger.CtxError(ctx, "Failed to close Redis client", err)
	} else {
		logger.CtxInfo(ctx, "Redis client closed successfully")
	}
}

func cleanupGCSResource(ctx context.Context, store *gcs.AttachmentStore) {
	if store == nil {
		return
	}
	store.Close(ctx)
}

func cleanupTracer(ctx context.Context, shutdown func(context.Context) error) {
	if shutdown == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(shutdownCtx); err != nil {
		logger.CtxError(ctx, "Failed to shutdown tracer provider", err)
	}
}
