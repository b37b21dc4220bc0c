package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-escrow/internal/auth"
	"marketplace-escrow/internal/services"
)

// AdminHandler handles marketplace governance endpoints. Authorization is
// enforced in the service layer against the config row's admin wallet, not
// here; the handler only extracts the caller identity.
type AdminHandler struct {
	adminService *services.AdminService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func callerWallet(c *gin.Context) (string, bool) {
	wallet, exists := auth.GetWalletAddress(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return wallet, true
}

// GetConfig returns the live marketplace configuration
// GET /admin/config
func (h *AdminHandler) GetConfig(c *gin.Context) {
	cfg, err := h.adminService.GetConfig(c.Request.Context())
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// ProposeAdminChange stages a new admin wallet behind the timelock
// POST /admin/propose-admin
func (h *AdminHandler) ProposeAdminChange(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	var req struct {
		NewAdmin string `json:"new_admin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.adminService.ProposeAdminChange(c.Request.Context(), wallet, req.NewAdmin)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// ExecuteAdminChange promotes the pending admin after the timelock
// POST /admin/execute-admin
func (h *AdminHandler) ExecuteAdminChange(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	cfg, err := h.adminService.ExecuteAdminChange(c.Request.Context(), wallet)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// ProposeTreasuryChange stages a new treasury wallet behind the timelock
// POST /admin/propose-treasury
func (h *AdminHandler) ProposeTreasuryChange(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	var req struct {
		NewTreasury string `json:"new_treasury" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.adminService.ProposeTreasuryChange(c.Request.Context(), wallet, req.NewTreasury)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// ExecuteTreasuryChange promotes the pending treasury after the timelock
// POST /admin/execute-treasury
func (h *AdminHandler) ExecuteTreasuryChange(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	cfg, err := h.adminService.ExecuteTreasuryChange(c.Request.Context(), wallet)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// SetPaused toggles the marketplace circuit breaker
// POST /admin/pause
func (h *AdminHandler) SetPaused(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	var req struct {
		Paused *bool `json:"paused" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.adminService.SetPaused(c.Request.Context(), wallet, *req.Paused)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// SetPlatformFee updates the platform fee rate for future listings
// POST /admin/platform-fee
func (h *AdminHandler) SetPlatformFee(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	var req struct {
		FeeBps *int64 `json:"fee_bps" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.adminService.SetPlatformFee(c.Request.Context(), wallet, *req.FeeBps)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}

// SetDisputeFee updates the dispute fee rate
// POST /admin/dispute-fee
func (h *AdminHandler) SetDisputeFee(c *gin.Context) {
	wallet, ok := callerWallet(c)
	if !ok {
		return
	}

	var req struct {
		FeeBps *int64 `json:"fee_bps" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := h.adminService.SetDisputeFee(c.Request.Context(), wallet, *req.FeeBps)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"config": cfg})
}
