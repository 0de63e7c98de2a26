package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-level config
type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	LogLevel    string `yaml:"level"`
	ServiceName string `yaml:"service_name"`
}

// MongoDB connection config
type MongoConfig struct {
	Username        string        `yaml:"username"`
	Password        string        `yaml:"password"`
	URI             string        `yaml:"uri"`
	DBName          string        `yaml:"db_name"`
	MaxPoolSize     uint64        `yaml:"max_pool_size"`
	MinPoolSize     uint64        `yaml:"min_pool_size"`
	MaxConnIdleMinutes    int `yaml:"max_conn_idle_minutes"`
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`

	MaxConnIdleTime time.Duration `yaml:"-"`
	ConnectTimeout  time.Duration `yaml:"-"`
}

// Redis connection config
type RedisConfig struct {
	Addr           string        `yaml:"addr"`
	Password       string        `yaml:"password"`
	DB             int           `yaml:"db"`
	EnableTLS      bool          `yaml:"enable_tls"`
	CertContent    string        `yaml:"cert_content"`

	ConnectTimeoutSeconds int           `yaml:"connect_timeout_seconds"`
	ConnectTimeout        time.Duration `yaml:"-"`
}

// Kafka connection config
type KafkaConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Server           string `yaml:"server"`
	LoanEventsTopic  string `yaml:"loan_events_topic"`
	SecurityProtocol string `yaml:"security_protocol"`
	SASLMechanism    string `yaml:"sasl_mechanism"`
	SASLUsername     string `yaml:"sasl_username"`
	SASLPassword     string `yaml:"sasl_password"`
	SessionTimeoutMs int    `yaml:"session_timeout_ms"`
	ClientID         string `yaml:"client_id"`
}

type PubSubConfig struct {
	Enabled           bool   `yaml:"enabled"`
	ProjectID         string `yaml:"project_id"`
	NotificationTopic string `yaml:"notification_topic"`
}

type GCSConfig struct {
	BucketName   string `yaml:"bucket_name"`
	FolderName   string `yaml:"folder_name"`
	PublicURL    string `yaml:"public_url"`
	MaxFileBytes int64  `yaml:"max_file_bytes"`
}

type OtelConfig struct {
	CollectorURL  string `yaml:"collector_url"`
	Environment   string `yaml:"environment"`
	SamplePercent int    `yaml:"sample_percent"`
}

// LedgerConfig tunes the loan transition pipeline.
type LedgerConfig struct {
	LockTTLSeconds          int   `yaml:"lock_ttl_seconds"`
	OutboxIntervalSeconds   int   `yaml:"outbox_interval_seconds"`
	OutboxWorkers           int   `yaml:"outbox_workers"`
	OutboxBatchSize         int64 `yaml:"outbox_batch_size"`
	UserCacheTTLMinutes     int   `yaml:"user_cache_ttl_minutes"`
	DirectoryTimeoutSeconds int   `yaml:"directory_timeout_seconds"`

	LockTTL          time.Duration `yaml:"-"`
	OutboxInterval   time.Duration `yaml:"-"`
	UserCacheTTL     time.Duration `yaml:"-"`
	DirectoryTimeout time.Duration `yaml:"-"`
}

// AppConfig is the main config struct that holds all configs
type AppConfig struct {
	Server  ServerConfig `yaml:"server"`
	Logging LogConfig    `yaml:"logging"`
	Mongo   MongoConfig  `yaml:"mongo"`
	Redis   RedisConfig  `yaml:"redis"`
	Kafka   KafkaConfig  `yaml:"kafka"`
	PubSub  PubSubConfig `yaml:"pubsub"`
	GCS     GCSConfig    `yaml:"gcs"`
	Otel    OtelConfig   `yaml:"otel"`
	Ledger  LedgerConfig `yaml:"ledger"`
}

// The yaml file and the env carry whole seconds or minutes; the matching
// time.Duration fields are derived here.
// nolint: funlen
func assignDefaultConfigValues(cfg *AppConfig) *AppConfig {

	cfg.Server.Port = GetEnvOrDefaultAsInt("SERVER_PORT", orInt(cfg.Server.Port, 8080))

	cfg.Logging.LogLevel = GetEnvOrDefaultAsString("LOGGING_LEVEL", orString(cfg.Logging.LogLevel, "info"))
	cfg.Logging.ServiceName = GetEnvOrDefaultAsString("SERVICE_NAME", orString(cfg.Logging.ServiceName, "loan-ledger"))

	cfg.Mongo.URI = GetEnvOrDefaultAsString("MONGO_URI", cfg.Mongo.URI)
	cfg.Mongo.DBName = GetEnvOrDefaultAsString("MONGO_DB_NAME", cfg.Mongo.DBName)
	cfg.Mongo.Username = GetEnvOrDefaultAsString("MONGO_USERNAME", cfg.Mongo.Username)
	cfg.Mongo.Password = GetEnvOrDefaultAsString("MONGO_PASSWORD", cfg.Mongo.Password)
	cfg.Mongo.MaxPoolSize = GetEnvOrDefaultAsUint64("MONGO_MAX_POOL_SIZE", orUint64(cfg.Mongo.MaxPoolSize, 20))
	cfg.Mongo.MinPoolSize = GetEnvOrDefaultAsUint64("MONGO_MIN_POOL_SIZE", orUint64(cfg.Mongo.MinPoolSize, 5))
	cfg.Mongo.MaxConnIdleMinutes = GetEnvOrDefaultAsInt("MONGO_MAX_CONN_IDLE_MINUTES", orInt(cfg.Mongo.MaxConnIdleMinutes, 30))
	cfg.Mongo.MaxConnIdleTime = time.Duration(cfg.Mongo.MaxConnIdleMinutes) * time.Minute
	cfg.Mongo.ConnectTimeoutSeconds = GetEnvOrDefaultAsInt("MONGO_CONNECT_TIMEOUT_SECONDS", orInt(cfg.Mongo.ConnectTimeoutSeconds, 10))
	cfg.Mongo.ConnectTimeout = time.Duration(cfg.Mongo.ConnectTimeoutSeconds) * time.Second

	cfg.Redis.Addr = GetEnvOrDefaultAsString("REDIS_ADDR", orString(cfg.Redis.Addr, "localhost:6379"))
	cfg.Redis.Password = GetEnvOrDefaultAsString("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = GetEnvOrDefaultAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.EnableTLS = GetEnvOrDefaultAsBool("REDIS_ENABLE_TLS", cfg.Redis.EnableTLS)
	cfg.Redis.ConnectTimeoutSeconds = GetEnvOrDefaultAsInt("REDIS_CONNECT_TIMEOUT_SECONDS", orInt(cfg.Redis.ConnectTimeoutSeconds, 10))
	cfg.Redis.ConnectTimeout = time.Duration(cfg.Redis.ConnectTimeoutSeconds) * time.Second
	cfg.Redis.CertContent = GetEnvOrDefaultAsString("REDIS_TLS_CERT", cfg.Redis.CertContent)

	cfg.Kafka.Enabled = GetEnvOrDefaultAsBool("KAFKA_ENABLED", cfg.Kafka.Enabled)
	cfg.Kafka.Server = GetEnvOrDefaultAsString("KAFKA_SERVER", cfg.Kafka.Server)
	cfg.Kafka.LoanEventsTopic = GetEnvOrDefaultAsString("KAFKA_LOAN_EVENTS_TOPIC",
		orString(cfg.Kafka.LoanEventsTopic, "loan-ledger.loan-events"))
	cfg.Kafka.SecurityProtocol = GetEnvOrDefaultAsString("KAFKA_SECURITY_PROTOCOL", cfg.Kafka.SecurityProtocol)
	cfg.Kafka.SASLMechanism = GetEnvOrDefaultAsString("KAFKA_SASL_MECHANISM", cfg.Kafka.SASLMechanism)
	cfg.Kafka.SASLUsername = GetEnvOrDefaultAsString("KAFKA_SASL_USERNAME", cfg.Kafka.SASLUsername)
	cfg.Kafka.SASLPassword = GetEnvOrDefaultAsString("KAFKA_SASL_PASSWORD", cfg.Kafka.SASLPassword)
	cfg.Kafka.SessionTimeoutMs = GetEnvOrDefaultAsInt("KAFKA_SESSION_TIMEOUT_MS", orInt(cfg.Kafka.SessionTimeoutMs, 15000))
	cfg.Kafka.ClientID = GetEnvOrDefaultAsString("KAFKA_CLIENT_ID", orString(cfg.Kafka.ClientID, "loan-ledger"))

	cfg.PubSub.Enabled = GetEnvOrDefaultAsBool("PUBSUB_ENABLED", cfg.PubSub.Enabled)
	cfg.PubSub.ProjectID = GetEnvOrDefaultAsString("PROJECT_ID", cfg.PubSub.ProjectID)
	cfg.PubSub.NotificationTopic = GetEnvOrDefaultAsString("PUBSUB_NOTIFICATION_TOPIC", cfg.PubSub.NotificationTopic)

	cfg.GCS.BucketName = GetEnvOrDefaultAsString("GCS_BUCKET_NAME", cfg.GCS.BucketName)
	cfg.GCS.FolderName = GetEnvOrDefaultAsString("GCS_FOLDER_NAME", orString(cfg.GCS.FolderName, "attachments"))
	cfg.GCS.PublicURL = GetEnvOrDefaultAsString("GCS_PUBLIC_URL", orString(cfg.GCS.PublicURL, "https://storage.googleapis.com"))
	cfg.GCS.MaxFileBytes = int64(GetEnvOrDefaultAsInt("GCS_MAX_FILE_BYTES", orInt(int(cfg.GCS.MaxFileBytes), 10<<20)))

	cfg.Otel.CollectorURL = GetEnvOrDefaultAsString("OTEL_URL", cfg.Otel.CollectorURL)
	cfg.Otel.Environment = GetEnvOrDefaultAsString("OTEL_ENVIRONMENT", orString(cfg.Otel.Environment, "local"))
	cfg.Otel.SamplePercent = GetEnvOrDefaultAsInt("OTEL_SAMPLE_PERCENT", orInt(cfg.Otel.SamplePercent, 100))

	cfg.Ledger.LockTTLSeconds = GetEnvOrDefaultAsInt("LEDGER_LOCK_TTL_SECONDS", orInt(cfg.Ledger.LockTTLSeconds, 10))
	cfg.Ledger.LockTTL = time.Duration(cfg.Ledger.LockTTLSeconds) * time.Second
	cfg.Ledger.OutboxIntervalSeconds = GetEnvOrDefaultAsInt("LEDGER_OUTBOX_INTERVAL_SECONDS", orInt(cfg.Ledger.OutboxIntervalSeconds, 60))
	cfg.Ledger.OutboxInterval = time.Duration(cfg.Ledger.OutboxIntervalSeconds) * time.Second
	cfg.Ledger.OutboxWorkers = GetEnvOrDefaultAsInt("LEDGER_OUTBOX_WORKERS", orInt(cfg.Ledger.OutboxWorkers, 4))
	cfg.Ledger.OutboxBatchSize = int64(GetEnvOrDefaultAsInt("LEDGER_OUTBOX_BATCH_SIZE",
		orInt(int(cfg.Ledger.OutboxBatchSize), 100)))
	cfg.Ledger.UserCacheTTLMinutes = GetEnvOrDefaultAsInt("LEDGER_USER_CACHE_TTL_MINUTES", orInt(cfg.Ledger.UserCacheTTLMinutes, 15))
	cfg.Ledger.UserCacheTTL = time.Duration(cfg.Ledger.UserCacheTTLMinutes) * time.Minute
	cfg.Ledger.DirectoryTimeoutSeconds = GetEnvOrDefaultAsInt("LEDGER_DIRECTORY_TIMEOUT_SECONDS",
		orInt(cfg.Ledger.DirectoryTimeoutSeconds, 3))
	cfg.Ledger.DirectoryTimeout = time.Duration(cfg.Ledger.DirectoryTimeoutSeconds) * time.Second

	return cfg
}

// LoadFromConfigFilePath loads and parses config file into AppConfig
func LoadFromConfigFilePath(configPath string) (*AppConfig, error) {

	// #nosec G304: path comes from operator-controlled env
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	defaultCfg := assignDefaultConfigValues(&cfg)

	if err := validateConfig(defaultCfg); err != nil {
		return nil, err
	}

	return defaultCfg, nil
}

// LoadFromConfig loads environment variables from a .env file and then the config file.
func LoadFromConfig() (*AppConfig, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	configPath := GetEnvOrDefaultAsString("CONFIG_PATH", "configs/config.yaml")

	cfg, err := LoadFromConfigFilePath(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	return cfg, nil
}

func validateConfig(cfg *AppConfig) error {
	if err := validateMongoConfig(cfg.Mongo); err != nil {
		return err
	}
	if err := validateKafkaConfig(cfg.Kafka); err != nil {
		return err
	}
	if err := validatePubSubConfig(cfg.PubSub); err != nil {
		return err
	}
	if err := validateOtelConfig(cfg.Otel); err != nil {
		return err
	}
	return validateLedgerConfig(cfg.Ledger)
}

func validateMongoConfig(mongo MongoConfig) error {
	if strings.TrimSpace(mongo.URI) == "" {
		return fmt.Errorf("mongo.uri is required")
	}
	if strings.TrimSpace(mongo.DBName) == "" {
		return fmt.Errorf("mongo.db_name is required")
	}
	if mongo.MinPoolSize > mongo.MaxPoolSize {
		return fmt.Errorf(
			"mongo.min_pool_size (%d) must not exceed mongo.max_pool_size (%d)",
			mongo.MinPoolSize,
			mongo.MaxPoolSize,
		)
	}
	return nil
}

func validateKafkaConfig(kafka KafkaConfig) error {
	if !kafka.Enabled {
		return nil
	}
	if kafka.Server == "" {
		return fmt.Errorf("kafka.server is required when kafka is enabled")
	}
	if kafka.SessionTimeoutMs < 6000 || kafka.SessionTimeoutMs > 45000 {
		return fmt.Errorf(
			"kafka.session_timeout_ms must be between 6000 and 45000 ms, got %d",
			kafka.SessionTimeoutMs,
		)
	}
	return nil
}

func validatePubSubConfig(pubsub PubSubConfig) error {
	if !pubsub.Enabled {
		return nil
	}
	if pubsub.ProjectID == "" || pubsub.NotificationTopic == "" {
		return fmt.Errorf("pubsub.project_id and pubsub.notification_topic are required when pubsub is enabled")
	}
	return nil
}

func validateOtelConfig(otel OtelConfig) error {
	if otel.CollectorURL == "" {
		return nil
	}
	if otel.SamplePercent < 1 || otel.SamplePercent > 100 {
		return fmt.Errorf("otel.sample_percent must be between 1 and 100, got %d", otel.SamplePercent)
	}
	return nil
}

func validateLedgerConfig(ledger LedgerConfig) error {
	if ledger.LockTTL < time.Second || ledger.LockTTL > time.Minute {
		return fmt.Errorf("ledger.lock_ttl_seconds must be between 1 and 60 seconds, got %v", ledger.LockTTL)
	}
	if ledger.OutboxWorkers < 1 || ledger.OutboxWorkers > 32 {
		return fmt.Errorf("ledger.outbox_workers must be between 1 and 32, got %d", ledger.OutboxWorkers)
	}
	if ledger.OutboxBatchSize < 1 {
		return fmt.Errorf("ledger.outbox_batch_size must be positive, got %d", ledger.OutboxBatchSize)
	}
	return nil
}

// GetEnvOrDefaultAsInt returns the value of the given env variable
// as an int or the default value if not set or invalid.
func GetEnvOrDefaultAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return int(value)
}

// GetEnvOrDefaultAsString returns the value of the given env variable or the default value if not set.
func GetEnvOrDefaultAsString(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		if val != "" {
			return val
		}
	}
	return defaultVal
}

func GetEnvOrDefaultAsUint64(key string, defaultValue uint64) uint64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvOrDefaultAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orUint64(v, def uint64) uint64 {
	if v == 0 {
		return def
	}
	return v
}

func orString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
