package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace-escrow/internal/auth"
	"marketplace-escrow/internal/models"
	"marketplace-escrow/internal/services"
)

// DisputeHandler handles dispute endpoints
type DisputeHandler struct {
	disputeService *services.DisputeService
	authService    *services.AuthService
}

// NewDisputeHandler creates a new DisputeHandler
func NewDisputeHandler(disputeService *services.DisputeService, authService *services.AuthService) *DisputeHandler {
	return &DisputeHandler{
		disputeService: disputeService,
		authService:    authService,
	}
}

// OpenDispute contests an in-escrow transaction
// POST /transactions/:id/dispute
func (h *DisputeHandler) OpenDispute(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	txID, ok := parseTransactionID(c)
	if !ok {
		return
	}

	var req models.OpenDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dispute, err := h.disputeService.OpenDispute(c.Request.Context(), user, txID, &req)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"dispute": dispute})
}

// GetDispute returns one dispute
// GET /disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispute id"})
		return
	}

	dispute, err := h.disputeService.GetDispute(c.Request.Context(), disputeID)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dispute": dispute})
}

// GetOpenDisputes lists disputes awaiting arbitration
// GET /disputes
func (h *DisputeHandler) GetOpenDisputes(c *gin.Context) {
	limit, offset := paginationParams(c)

	disputes, err := h.disputeService.GetOpenDisputes(c.Request.Context(), limit, offset)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"disputes": disputes})
}

// ResolveDispute applies the admin's arbitration verdict
// POST /admin/disputes/:id/resolve
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dispute id"})
		return
	}

	var req models.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dispute, err := h.disputeService.ResolveDispute(c.Request.Context(), wallet, disputeID, &req)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dispute": dispute})
}
