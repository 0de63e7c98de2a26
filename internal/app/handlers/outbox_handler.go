package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loan-ledger/internal/pkg/models"
	"loan-ledger/internal/service"
)

// OutboxHandler replays derived transactions that were not delivered inline.
type OutboxHandler struct {
	drainer service.OutboxDrainerInterface
}

func NewOutboxHandler(drainer service.OutboxDrainerInterface) *OutboxHandler {
	return &OutboxHandler{drainer: drainer}
}

func (h *OutboxHandler) Drain(c *gin.Context) {
	result, err := h.drainer.Drain(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OutboxDrainResponse{
		Loans:     result.Loans,
		Delivered: result.Delivered,
		Failed:    result.Failed,
	})
}
