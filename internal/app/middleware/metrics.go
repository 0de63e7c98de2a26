package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
)

type httpInstruments struct {
	latency      metric.Int64Histogram
	requests     metric.Int64Counter
	errors       metric.Int64Counter
	requestSize  metric.Int64Histogram
	responseSize metric.Int64Histogram
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if in.latency, err = meter.Int64Histogram("http.server.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("The latency of HTTP requests.")); err != nil {
		return nil, err
	}
	if in.requests, err = meter.Int64Counter("http.server.requests_total",
		metric.WithDescription("The total number of HTTP requests.")); err != nil {
		return nil, err
	}
	if in.errors, err = meter.Int64Counter("http.server.error_requests_total",
		metric.WithDescription("The total number of HTTP requests answered with 4xx or 5xx.")); err != nil {
		return nil, err
	}
	if in.requestSize, err = meter.Int64Histogram("http.server.request_size_bytes",
		metric.WithUnit("bytes"),
		metric.WithDescription("The size of HTTP requests in bytes.")); err != nil {
		return nil, err
	}
	if in.responseSize, err = meter.Int64Histogram("http.server.response_size_bytes",
		metric.WithUnit("bytes"),
		metric.WithDescription("The size of HTTP responses in bytes.")); err != nil {
		return nil, err
	}
	return &in, nil
}

// NewMetricMiddleware records latency, counts and sizes per route. If the
// instruments cannot be registered, requests pass through unmeasured.
func NewMetricMiddleware(meter metric.Meter) gin.HandlerFunc {
	in, err := newHTTPInstruments(meter)
	if err != nil {
		logger.Error(log_messages.ErrorRegisteringMetric, err)
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		start := time.Now()
		requestSize := c.Request.ContentLength

		c.Next()

		status := c.Writer.Status()
		attrs := metric.WithAttributes(
			semconv.HTTPRouteKey.String(c.FullPath()),
			semconv.HTTPMethodKey.String(c.Request.Method),
			semconv.HTTPStatusCodeKey.Int(status),
			attribute.Bool("http.error", status >= 400),
		)
		ctx := c.Request.Context()

		in.latency.Record(ctx, time.Since(start).Milliseconds(), attrs)
		in.requests.Add(ctx, 1, attrs)
		if requestSize > 0 {
			in.requestSize.Record(ctx, requestSize, attrs)
		}
		in.responseSize.Record(ctx, int64(max(c.Writer.Size(), 0)), attrs)
		if status >= 400 {
			in.errors.Add(ctx, 1, attrs)
		}
	}
}
