package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-ledger/internal/pkg/consts"
	"loan-ledger/internal/pkg/models"
	"loan-ledger/internal/service"
)

type AttachmentHandler struct {
	service      service.LoanLedgerServiceInterface
	maxFileBytes int64
}

func NewAttachmentHandler(service service.LoanLedgerServiceInterface, maxFileBytes int64) *AttachmentHandler {
	return &AttachmentHandler{service: service, maxFileBytes: maxFileBytes}
}

func (h *AttachmentHandler) Upload(c *gin.Context) {
	file, err := formFile(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if file == nil {
		respondError(c, invalidRequest("form field %q is required", consts.AttachmentFormField))
		return
	}
	attachment, closeFn, err := openAttachment(file, h.maxFileBytes)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFn()

	url, err := h.service.UploadAttachment(c.Request.Context(), *attachment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.AttachmentResponse{SecureURL: url})
}
