package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/models"
)

func TestGetErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("%w: balance is 10.00", consts.ErrorInvalidAmount)

	assert.Equal(t, consts.ErrorInvalidAmount.Code, GetErrorCode(wrapped))
	assert.Equal(t, models.KindInvalidAmount, GetErrorKind(wrapped))
	assert.Equal(t, consts.ErrorInvalidAmount.Message+": balance is 10.00", GetErrorMessage(wrapped))
}

func TestGetErrorCode_PlainError(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, InternalErrorCode, GetErrorCode(err))
	assert.Equal(t, models.ErrorKind(""), GetErrorKind(err))
	assert.Equal(t, "Internal server error", GetErrorMessage(err))
	assert.Empty(t, GetErrorMessage(nil))
}
