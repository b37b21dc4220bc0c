package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace-escrow/internal/models"
	"marketplace-escrow/internal/services"
)

// TransactionHandler handles post-sale transaction endpoints
type TransactionHandler struct {
	txService   *services.TransactionService
	authService *services.AuthService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(txService *services.TransactionService, authService *services.AuthService) *TransactionHandler {
	return &TransactionHandler{
		txService:   txService,
		authService: authService,
	}
}

func parseTransactionID(c *gin.Context) (uuid.UUID, bool) {
	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return uuid.Nil, false
	}
	return txID, true
}

// GetTransaction returns a sale transaction with its checklist
// GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	txID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	saleTx, items, err := h.txService.GetTransaction(c.Request.Context(), txID)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transaction": saleTx,
		"checklist":   items,
	})
}

// GetMyTransactions lists sales the caller is party to
// GET /transactions
func (h *TransactionHandler) GetMyTransactions(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	limit, offset := paginationParams(c)

	txs, err := h.txService.GetUserTransactions(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// ConfirmTransfer records the seller's hand-off of one checklist item
// POST /transactions/:id/confirm-transfer
func (h *TransactionHandler) ConfirmTransfer(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	txID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	var req models.ConfirmTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.txService.SellerConfirmTransfer(c.Request.Context(), user, txID, &req)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// ConfirmReceipt records the buyer's acknowledgement of one checklist item,
// finalizing the sale when the checklist completes
// POST /transactions/:id/confirm-receipt
func (h *TransactionHandler) ConfirmReceipt(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	txID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	var req models.ConfirmReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saleTx, err := h.txService.ConfirmReceipt(c.Request.Context(), user, txID, &req)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": saleTx})
}

// Finalize releases escrowed funds once the checklist is complete
// POST /transactions/:id/finalize
func (h *TransactionHandler) Finalize(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	txID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	saleTx, err := h.txService.FinalizeTransaction(c.Request.Context(), user, txID)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": saleTx})
}

// EmergencyRefund refunds the buyer after a lapsed transfer deadline
// POST /transactions/:id/emergency-refund
func (h *TransactionHandler) EmergencyRefund(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	txID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	saleTx, err := h.txService.EmergencyRefund(c.Request.Context(), user, txID)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": saleTx})
}
