package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/log_messages"
	"loan-ledger/internal/pkg/logger"
)

const maskedValue = "*****"

// AttachRequestDetails tags the request context with a request id and logs
// the request once the handler chain completes.
func AttachRequestDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()

		requestID := c.GetHeader(consts.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(consts.HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		logger.CtxInfo(c.Request.Context(), log_messages.RequestCompleted,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Any("headers", extractHeaders(c.Request.Header)),
			zap.Any("query", c.Request.URL.Query()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func extractHeaders(headers map[string][]string) map[string]string {
	result := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		if isSensitive(key) {
			result[key] = maskedValue
			continue
		}
		result[key] = values[0]
	}
	return result
}

func isSensitive(header string) bool {
	for _, key := range consts.SensitiveHeaders {
		if strings.EqualFold(key, header) {
			return true
		}
	}
	return false
}
