package handlers

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-ledger/internal/app/middleware"
	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/ledger"
	"loan-ledger/internal/pkg/models"
	"loan-ledger/internal/service"
)

type LoanHandler struct {
	service      service.LoanLedgerServiceInterface
	maxFileBytes int64
}

func NewLoanHandler(service service.LoanLedgerServiceInterface, maxFileBytes int64) *LoanHandler {
	return &LoanHandler{service: service, maxFileBytes: maxFileBytes}
}

func (h *LoanHandler) CreateLoan(c *gin.Context) {
	body, file, err := bindCreateLoan(c)
	if err != nil {
		respondError(c, err)
		return
	}
	attachment, closeFn, err := openAttachment(file, h.maxFileBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFn()

	loan, err := h.service.CreateLoan(c.Request.Context(), service.CreateLoanRequest{
		CreateLoanInput: ledger.CreateLoanInput{
			CreditorID:           middleware.ActingUserID(c),
			DebtorID:             body.DebtorID,
			DebtorName:           body.DebtorName,
			FamilyID:             body.FamilyID,
			Description:          body.Description,
			PrincipalAmount:      body.PrincipalAmount,
			Deadline:             body.Deadline,
			AttachmentURL:        body.AttachmentURL,
			RequiresConfirmation: body.RequiresConfirmation,
		},
		Attachment: attachment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toLoanResponse(loan))
}

func (h *LoanHandler) ListLoans(c *gin.Context) {
	viewerID, err := viewer(c)
	if err != nil {
		respondError(c, err)
		return
	}
	views, err := h.service.ListLoans(c.Request.Context(), viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLoanViewResponses(views))
}

func (h *LoanHandler) CategorizeLoans(c *gin.Context) {
	viewerID, err := viewer(c)
	if err != nil {
		respondError(c, err)
		return
	}
	view, err := h.service.CategorizeLoans(c.Request.Context(), viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CategorizedLoansResponse{
		ActionRequired: toLoanViewResponses(view.ActionRequired),
		Lent:           toLoanViewResponses(view.Lent),
		Borrowed:       toLoanViewResponses(view.Borrowed),
		Repaid:         toLoanViewResponses(view.Repaid),
	})
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	view, err := h.service.GetLoan(c.Request.Context(), c.Param("id"), middleware.ActingUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLoanViewResponse(view))
}

func (h *LoanHandler) ConfirmReceipt(c *gin.Context) {
	loan, err := h.service.ConfirmReceipt(c.Request.Context(), c.Param("id"), middleware.ActingUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLoanResponse(loan))
}

func (h *LoanHandler) ConfirmRepayment(c *gin.Context) {
	loan, err := h.service.ConfirmRepayment(c.Request.Context(), c.Param("id"), middleware.ActingUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLoanResponse(loan))
}

func (h *LoanHandler) SubmitRepayment(c *gin.Context) {
	h.repayment(c, h.service.SubmitRepayment)
}

func (h *LoanHandler) RecordRepaymentDirectly(c *gin.Context) {
	h.repayment(c, h.service.RecordRepaymentDirectly)
}

type repaymentFunc func(ctx context.Context, req service.RepaymentRequest) (ledger.Loan, error)

func (h *LoanHandler) repayment(c *gin.Context, apply repaymentFunc) {
	body, file, err := bindRepayment(c)
	if err != nil {
		respondError(c, err)
		return
	}
	receipt, closeFn, err := openAttachment(file, h.maxFileBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFn()

	loan, err := apply(c.Request.Context(), service.RepaymentRequest{
		LoanID:       c.Param("id"),
		ActingUserID: middleware.ActingUserID(c),
		Amount:       body.Amount,
		ReceiptURL:   body.ReceiptURL,
		Receipt:      receipt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLoanResponse(loan))
}

// viewer resolves whose loans are listed. A user_id that differs from the
// acting user is refused.
func viewer(c *gin.Context) (string, error) {
	actingUserID := middleware.ActingUserID(c)
	if requested := c.Query("user_id"); requested != "" && requested != actingUserID {
		return "", fmt.Errorf("%w: cannot list loans of another user", consts.ErrorUnauthorized)
	}
	return actingUserID, nil
}

// openAttachment opens an uploaded file. The returned close func is always safe to call.
func openAttachment(file *multipart.FileHeader, maxBytes int64) (*service.Attachment, func(), error) {
	noop := func() {}
	if file == nil {
		return nil, noop, nil
	}
	if maxBytes > 0 && file.Size > maxBytes {
		return nil, noop, invalidRequest("file %s exceeds %d bytes", file.Filename, maxBytes)
	}
	f, err := file.Open()
	if err != nil {
		return nil, noop, invalidRequest("unreadable file: %v", err)
	}
	return &service.Attachment{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
