package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validYAML = `
server:
  port: 9090
logging:
  level: debug
mongo:
  uri: mongodb://localhost:27017
  db_name: LoanLedgerTest
  max_pool_size: 20
  min_pool_size: 5
kafka:
  enabled: false
ledger:
  lock_ttl_seconds: 5
  outbox_workers: 2
  outbox_batch_size: 50
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromConfigFilePath(t *testing.T) {
	t.Run("loads yaml and applies defaults", func(t *testing.T) {
		cfg, err := LoadFromConfigFilePath(writeConfig(t, validYAML))
		require.NoError(t, err)

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Logging.LogLevel)
		assert.Equal(t, "loan-ledger", cfg.Logging.ServiceName)
		assert.Equal(t, "LoanLedgerTest", cfg.Mongo.DBName)
		assert.Equal(t, 30*time.Minute, cfg.Mongo.MaxConnIdleTime)
		assert.Equal(t, 5*time.Second, cfg.Ledger.LockTTL)
		assert.Equal(t, 60*time.Second, cfg.Ledger.OutboxInterval)
		assert.Equal(t, 2, cfg.Ledger.OutboxWorkers)
		assert.Equal(t, int64(50), cfg.Ledger.OutboxBatchSize)
		assert.Equal(t, 15*time.Minute, cfg.Ledger.UserCacheTTL)
		assert.Equal(t, "attachments", cfg.GCS.FolderName)
	})

	t.Run("env overrides yaml", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "7070")
		t.Setenv("MONGO_DB_NAME", "FromEnv")
		t.Setenv("LEDGER_OUTBOX_WORKERS", "8")

		cfg, err := LoadFromConfigFilePath(writeConfig(t, validYAML))
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, "FromEnv", cfg.Mongo.DBName)
		assert.Equal(t, 8, cfg.Ledger.OutboxWorkers)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFromConfigFilePath(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := LoadFromConfigFilePath(writeConfig(t, "server: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("missing mongo uri fails validation", func(t *testing.T) {
		_, err := LoadFromConfigFilePath(writeConfig(t, "mongo:\n  db_name: x\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mongo.uri")
	})
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := LoadFromConfigFilePath(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Mongo.MaxConnIdleTime)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.Redis.ConnectTimeout)
	assert.Equal(t, 10*time.Second, cfg.Ledger.LockTTL)
	assert.Equal(t, time.Minute, cfg.Ledger.OutboxInterval)
	assert.Equal(t, 15*time.Minute, cfg.Ledger.UserCacheTTL)
	assert.Equal(t, 3*time.Second, cfg.Ledger.DirectoryTimeout)
	assert.Equal(t, 100, cfg.Otel.SamplePercent)
}

func TestDurationsFromEnv(t *testing.T) {
	t.Setenv("LEDGER_LOCK_TTL_SECONDS", "7")
	t.Setenv("MONGO_MAX_CONN_IDLE_MINUTES", "2")

	cfg, err := LoadFromConfigFilePath(writeConfig(t, validYAML))
	require.NoError(t, err)
	assert.Equal(t, 7*time.Second, cfg.Ledger.LockTTL)
	assert.Equal(t, 7, cfg.Ledger.LockTTLSeconds)
	assert.Equal(t, 2*time.Minute, cfg.Mongo.MaxConnIdleTime)
}

func TestValidateConfig(t *testing.T) {
	base := func() *AppConfig {
		return &AppConfig{
			Mongo: MongoConfig{URI: "mongodb://x", DBName: "db", MinPoolSize: 5, MaxPoolSize: 10},
			Ledger: LedgerConfig{
				LockTTL:         10 * time.Second,
				OutboxWorkers:   4,
				OutboxBatchSize: 100,
			},
		}
	}

	assert.NoError(t, validateConfig(base()))

	cfg := base()
	cfg.Mongo.MinPoolSize = 50
	assert.Error(t, validateConfig(cfg))

	cfg = base()
	cfg.Kafka = KafkaConfig{Enabled: true, SessionTimeoutMs: 15000}
	assert.ErrorContains(t, validateConfig(cfg), "kafka.server")

	cfg = base()
	cfg.Kafka = KafkaConfig{Enabled: true, Server: "broker:9092", SessionTimeoutMs: 100}
	assert.ErrorContains(t, validateConfig(cfg), "session_timeout_ms")

	cfg = base()
	cfg.PubSub = PubSubConfig{Enabled: true}
	assert.Error(t, validateConfig(cfg))

	cfg = base()
	cfg.Otel = OtelConfig{CollectorURL: "collector:4318", SamplePercent: 150}
	assert.ErrorContains(t, validateConfig(cfg), "sample_percent")

	cfg = base()
	cfg.Ledger.LockTTL = 2 * time.Minute
	assert.ErrorContains(t, validateConfig(cfg), "lock_ttl_seconds")

	cfg = base()
	cfg.Ledger.OutboxWorkers = 0
	assert.ErrorContains(t, validateConfig(cfg), "outbox_workers")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "42")
	t.Setenv("CFG_TEST_BAD_INT", "x")
	t.Setenv("CFG_TEST_BOOL", "true")
	t.Setenv("CFG_TEST_EMPTY", "")
	t.Setenv("CFG_TEST_UINT", "7")

	assert.Equal(t, 42, GetEnvOrDefaultAsInt("CFG_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvOrDefaultAsInt("CFG_TEST_BAD_INT", 1))
	assert.Equal(t, 3, GetEnvOrDefaultAsInt("CFG_TEST_UNSET", 3))
	assert.True(t, GetEnvOrDefaultAsBool("CFG_TEST_BOOL", false))
	assert.Equal(t, "def", GetEnvOrDefaultAsString("CFG_TEST_EMPTY", "def"))
	assert.Equal(t, uint64(7), GetEnvOrDefaultAsUint64("CFG_TEST_UINT", 1))
}
