package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"loan-ledger/internal/pkg/config"
	mongopkg "loan-ledger/internal/pkg/db/mongo"
	"loan-ledger/internal/pkg/gcs"
	"loan-ledger/internal/pkg/kafka"
	"loan-ledger/internal/pkg/pubsub"
)

func testConfig(redisAddr string) *config.AppConfig {
	return &config.AppConfig{
		Server:  config.ServerConfig{Port: 0},
		Logging: config.LogConfig{LogLevel: "error", ServiceName: "loan-ledger-test"},
		Redis:   config.RedisConfig{Addr: redisAddr, ConnectTimeout: time.Second},
		Ledger: config.LedgerConfig{
			LockTTL:          2 * time.Second,
			OutboxWorkers:    2,
			OutboxBatchSize:  10,
			UserCacheTTL:     time.Minute,
			DirectoryTimeout: time.Second,
		},
	}
}

// stubRuntime swaps the package constructors for the duration of a test.
func stubRuntime(t *testing.T, cfg *config.AppConfig, mongoClient *mongopkg.MongoClient, mongoErr error) {
	t.Helper()
	origLoad, origMongo := loadConfig, connectMongoDB
	origKafka, origPubSub, origGCS := newKafkaProducer, newPubSubPublisher, newAttachmentStore
	t.Cleanup(func() {
		loadConfig, connectMongoDB = origLoad, origMongo
		newKafkaProducer, newPubSubPublisher, newAttachmentStore = origKafka, origPubSub, origGCS
	})

	loadConfig = func() (*config.AppConfig, error) { return cfg, nil }
	connectMongoDB = func(context.Context, config.MongoConfig) (*mongopkg.MongoClient, error) {
		return mongoClient, mongoErr
	}
}

// mockMongo leaves Client unset so shutdown does not disconnect the client mtest owns.
func mockMongo(mt *mtest.T) *mongopkg.MongoClient {
	return &mongopkg.MongoClient{Database: mt.DB}
}

func TestNew(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("wires the service without optional publishers", func(mt *mtest.T) {
		mr := miniredis.RunT(mt.T)
		cfg := testConfig(mr.Addr())
		stubRuntime(mt.T, cfg, mockMongo(mt), nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		app, err := New(context.Background())
		require.NoError(mt, err)

		assert.NotNil(mt, app.Service)
		assert.NotNil(mt, app.Dispatcher)
		assert.NotNil(mt, app.TracerShutdown)
		assert.Nil(mt, app.KafkaProducer)
		assert.Nil(mt, app.PubSubPublisher)
		assert.Nil(mt, app.Attachments)

		app.Shutdown(context.Background())
		assert.Error(mt, app.RedisClient.Client.Ping(context.Background()).Err())
	})

	mt.Run("attachment store failure disables uploads", func(mt *mtest.T) {
		mr := miniredis.RunT(mt.T)
		cfg := testConfig(mr.Addr())
		cfg.GCS.BucketName = "receipts"
		stubRuntime(mt.T, cfg, mockMongo(mt), nil)
		newAttachmentStore = func(context.Context, config.GCSConfig) (*gcs.AttachmentStore, error) {
			return nil, errors.New("no credentials")
		}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		app, err := New(context.Background())
		require.NoError(mt, err)
		assert.Nil(mt, app.Attachments)

		app.Shutdown(context.Background())
	})

	mt.Run("index creation failure aborts startup", func(mt *mtest.T) {
		mr := miniredis.RunT(mt.T)
		stubRuntime(mt.T, testConfig(mr.Addr()), mockMongo(mt), nil)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad index"}))

		_, err := New(context.Background())
		assert.Error(mt, err)
	})
}

func TestNew_DependencyFailures(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		orig := loadConfig
		t.Cleanup(func() { loadConfig = orig })
		loadConfig = func() (*config.AppConfig, error) { return nil, errors.New("no config") }

		_, err := New(context.Background())
		assert.EqualError(t, err, "no config")
	})

	t.Run("mongo", func(t *testing.T) {
		stubRuntime(t, testConfig("127.0.0.1:0"), nil, errors.New("mongo down"))

		_, err := New(context.Background())
		assert.EqualError(t, err, "mongo down")
	})

	t.Run("kafka", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(mr.Addr())
		cfg.Kafka.Enabled = true
		stubRuntime(t, cfg, &mongopkg.MongoClient{}, nil)
		newKafkaProducer = func(config.KafkaConfig) (*kafka.KafkaProducer, error) {
			return nil, errors.New("broker down")
		}

		_, err := New(context.Background())
		assert.EqualError(t, err, "broker down")
	})

	t.Run("pubsub", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig(mr.Addr())
		cfg.PubSub = config.PubSubConfig{Enabled: true, ProjectID: "p"}
		stubRuntime(t, cfg, &mongopkg.MongoClient{}, nil)
		newPubSubPublisher = func(context.Context, string) (*pubsub.PubSubPublisher, error) {
			return nil, errors.New("no project")
		}

		_, err := New(context.Background())
		assert.EqualError(t, err, "no project")
	})
}

func TestRun_StopsWhenContextEnds(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("run", func(mt *mtest.T) {
		mr := miniredis.RunT(mt.T)
		stubRuntime(mt.T, testConfig(mr.Addr()), mockMongo(mt), nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		app, err := New(context.Background())
		require.NoError(mt, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		done := make(chan error, 1)
		go func() { done <- app.Run(ctx) }()

		select {
		case err := <-done:
			assert.NoError(mt, err)
		case <-time.After(10 * time.Second):
			mt.Fatal("Run did not return after the context ended")
		}
	})
}
