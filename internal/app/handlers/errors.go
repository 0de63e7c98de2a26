package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"loan-ledger/internal/pkg/logger"
	"loan-ledger/internal/pkg/models"
	"loan-ledger/internal/pkg/utils"
)

var statusByKind = map[models.ErrorKind]int{
	models.KindInvalidRequest:     http.StatusBadRequest,
	models.KindUnauthorized:       http.StatusForbidden,
	models.KindNotFound:           http.StatusNotFound,
	models.KindInvalidState:       http.StatusConflict,
	models.KindAlreadyPending:     http.StatusConflict,
	models.KindNoPendingRepayment: http.StatusConflict,
	models.KindConcurrentUpdate:   http.StatusConflict,
	models.KindInvalidAmount:      http.StatusUnprocessableEntity,
	models.KindDependencyFailure:  http.StatusBadGateway,
}

// StatusFor maps an error to its HTTP status. Errors without a kind are 500.
func StatusFor(err error) int {
	if status, ok := statusByKind[utils.GetErrorKind(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.CtxError(c.Request.Context(), "Unhandled error", err, zap.String("path", c.FullPath()))
	}
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Code:    utils.GetErrorCode(err),
		Message: utils.GetErrorMessage(err),
	})
}
