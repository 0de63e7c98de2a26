package cleanup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	mongopkg "loan-ledger/internal/pkg/db/mongo"
	redispkg "loan-ledger/internal/pkg/db/redis"
	"loan-ledger/internal/pkg/gcs"
)

type stubDispatcher struct{ stopped int32 }

func (s *stubDispatcher) Stop() { atomic.AddInt32(&s.stopped, 1) }

type stubPublisher struct {
	err    error
	closed bool
}

func (s *stubPublisher) Close() error {
	s.closed = true
	return s.err
}

func TestCleanupResources_AllNil(t *testing.T) {
	assert.NotPanics(t, func() {
		CleanupResources(context.Background(), Resources{})
	})
}

func TestCleanupResources_StopsEverything(t *testing.T) {
	mr := miniredis.RunT(t)
	rClient := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})

	mClient, err := mongodriver.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)

	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	dispatcher := &stubDispatcher{}
	publisher := &stubPublisher{}
	tracerCalled := false

	CleanupResources(context.Background(), Resources{
		Server:          &http.Server{Addr: ":0"},
		Dispatcher:      dispatcher,
		PubSubPublisher: publisher,
		MongoClient:     &mongopkg.MongoClient{Client: mClient},
		RedisClient:     &redispkg.RedisClient{Client: rClient},
		Attachments:     &gcs.AttachmentStore{},
		TracerShutdown: func(context.Context) error {
			tracerCalled = true
			return nil
		},
	})

	assert.Equal(t, int32(1), atomic.LoadInt32(&dispatcher.stopped))
	assert.True(t, publisher.closed)
	assert.True(t, tracerCalled)
	assert.Error(t, rClient.Ping(context.Background()).Err())
}

func TestCleanupResources_ErrorsAreLoggedNotReturned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	publisher := &stubPublisher{err: errors.New("close failed")}
	assert.NotPanics(t, func() {
		CleanupResources(ctx, Resources{
			Server:          &http.Server{Addr: ":0"},
			PubSubPublisher: publisher,
			TracerShutdown:  func(context.Context) error { return errors.New("exporter gone") },
		})
	})
	assert.True(t, publisher.closed)
}
