package redis

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/config"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
)

var errUnusablePEM = errors.New("PEM content holds neither a CA certificate nor a client key pair")

type RedisClientConstructor func(opt *redis.Options) *redis.Client

// RedisClient backs the per-loan locks and the user profile cache.
type RedisClient struct {
	Client *redis.Client
}

func ConnectToRedis(ctx context.Context, cfg config.RedisConfig, newClient RedisClientConstructor) (*RedisClient, error) {
	fields := []zap.Field{zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB), zap.Bool("tls", cfg.EnableTLS)}
	logger.CtxInfo(ctx, log_messages.RedisConnecting, fields...)

	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorBuildingRedisTLS, err, fields...)
		return nil, err
	}
	if newClient == nil {
		newClient = redis.NewClient
	}

	client := newClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.CtxError(ctx, log_messages.ErrorPingingRedis, err, fields...)
		_ = client.Close()
		return nil, err
	}

	logger.CtxInfo(ctx, log_messages.RedisConnected, fields...)
	return &RedisClient{Client: client}, nil
}

func clientOptions(ctx context.Context, cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.ConnectTimeout,
	}
	if !cfg.EnableTLS {
		return opts, nil
	}
	tlsConfig, err := buildTLSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build TLS config: %w", err)
	}
	opts.TLSConfig = tlsConfig
	return opts, nil
}

// buildTLSConfig reads CertContent as a CA bundle, a client key pair, or both.
func buildTLSConfig(ctx context.Context, cfg config.RedisConfig) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CertContent == "" {
		return tlsConfig, nil
	}

	pem := []byte(cfg.CertContent)
	if cert, err := tls.X509KeyPair(pem, pem); err == nil {
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	if pool := x509.NewCertPool(); pool.AppendCertsFromPEM(pem) {
		tlsConfig.RootCAs = pool
	}
	if tlsConfig.RootCAs == nil && len(tlsConfig.Certificates) == 0 {
		return nil, errUnusablePEM
	}

	logger.CtxInfo(ctx, "Loaded Redis TLS material",
		zap.Bool("client_certificate", len(tlsConfig.Certificates) > 0),
		zap.Bool("root_cas", tlsConfig.RootCAs != nil),
	)
	return tlsConfig, nil
}

func Disconnect(client *redis.Client) error {
	return client.Close()
}
