package utils

import (
	"errors"

	"loan-ledger/internal/pkg/models"
)

const InternalErrorCode = "LOAN_LEDGER_INTERNAL_ERROR"

// GetErrorCode returns the code of the first CustomError in err's chain.
func GetErrorCode(err error) string {
	var customErr *models.CustomError
	if errors.As(err, &customErr) {
		return customErr.ErrorCode()
	}
	return InternalErrorCode
}

// GetErrorKind returns the kind of the first CustomError in err's chain, or "".
func GetErrorKind(err error) models.ErrorKind {
	var customErr *models.CustomError
	if errors.As(err, &customErr) {
		return customErr.ErrorKind()
	}
	return ""
}

// GetErrorMessage returns the full message of a CustomError chain, wrapped
// detail included. Other errors are not exposed.
func GetErrorMessage(err error) string {
	var customErr *models.CustomError
	if errors.As(err, &customErr) {
		return err.Error()
	}
	if err == nil {
		return ""
	}
	return "Internal server error"
}
