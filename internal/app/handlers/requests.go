package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"loan-ledger/internal/pkg/consts"
)

var validate = validator.New()

type CreateLoanBody struct {
	DebtorID             string          `json:"debtorId" validate:"omitempty,max=64"`
	DebtorName           string          `json:"debtorName" validate:"omitempty,max=120"`
	FamilyID             string          `json:"familyId" validate:"omitempty,max=64"`
	Description          string          `json:"description" validate:"max=500"`
	PrincipalAmount      decimal.Decimal `json:"principalAmount"`
	Deadline             *time.Time      `json:"deadline"`
	AttachmentURL        string          `json:"attachmentUrl" validate:"omitempty,url"`
	RequiresConfirmation bool            `json:"requiresConfirmation"`
}

type RepaymentBody struct {
	Amount     decimal.Decimal `json:"amount"`
	ReceiptURL string          `json:"receiptUrl" validate:"omitempty,url"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

func invalidRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", consts.ErrorInvalidRequest, fmt.Sprintf(format, args...))
}

// bindCreateLoan reads a JSON body, or form fields plus an optional file.
func bindCreateLoan(c *gin.Context) (CreateLoanBody, *multipart.FileHeader, error) {
	var body CreateLoanBody
	var file *multipart.FileHeader

	if isMultipart(c) {
		amount, err := parseAmount(c.PostForm("principalAmount"))
		if err != nil {
			return body, nil, err
		}
		deadline, err := parseDeadline(c.PostForm("deadline"))
		if err != nil {
			return body, nil, err
		}
		confirm, err := parseBool(c.PostForm("requiresConfirmation"))
		if err != nil {
			return body, nil, err
		}
		body = CreateLoanBody{
			DebtorID:             c.PostForm("debtorId"),
			DebtorName:           c.PostForm("debtorName"),
			FamilyID:             c.PostForm("familyId"),
			Description:          c.PostForm("description"),
			PrincipalAmount:      amount,
			Deadline:             deadline,
			AttachmentURL:        c.PostForm("attachmentUrl"),
			RequiresConfirmation: confirm,
		}
		if file, err = formFile(c); err != nil {
			return body, nil, err
		}
	} else if err := c.ShouldBindJSON(&body); err != nil {
		return body, nil, invalidRequest("malformed JSON body: %v", err)
	}

	if err := validate.Struct(body); err != nil {
		return body, nil, invalidRequest("%v", err)
	}
	return body, file, nil
}

func bindRepayment(c *gin.Context) (RepaymentBody, *multipart.FileHeader, error) {
	var body RepaymentBody
	var file *multipart.FileHeader

	if isMultipart(c) {
		amount, err := parseAmount(c.PostForm("amount"))
		if err != nil {
			return body, nil, err
		}
		body = RepaymentBody{Amount: amount, ReceiptURL: c.PostForm("receiptUrl")}
		if file, err = formFile(c); err != nil {
			return body, nil, err
		}
	} else if err := c.ShouldBindJSON(&body); err != nil {
		return body, nil, invalidRequest("malformed JSON body: %v", err)
	}

	if err := validate.Struct(body); err != nil {
		return body, nil, invalidRequest("%v", err)
	}
	return body, file, nil
}

func formFile(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile(consts.AttachmentFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, invalidRequest("unreadable file: %v", err)
	}
	return file, nil
}

// parseAmount leaves an empty value at zero; the ledger rejects it as an amount.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, invalidRequest("amount %q is not a number", raw)
	}
	return amount, nil
}

// parseDeadline accepts RFC 3339 timestamps and plain dates.
func parseDeadline(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, invalidRequest("deadline %q is not a date", raw)
}

func parseBool(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidRequest("%q is not a boolean", raw)
	}
	return v, nil
}
