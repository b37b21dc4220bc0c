package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"marketplace-escrow/internal/auth"
	"marketplace-escrow/internal/models"
	"marketplace-escrow/internal/services"
)

// ListingHandler handles listing and auction endpoints
type ListingHandler struct {
	listingService *services.ListingService
	escrowService  *services.EscrowService
	authService    *services.AuthService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(
	listingService *services.ListingService,
	escrowService *services.EscrowService,
	authService *services.AuthService,
) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		escrowService:  escrowService,
		authService:    authService,
	}
}

// requireUser resolves the authenticated user or writes a 401.
func requireUser(c *gin.Context, authService *services.AuthService) (*models.User, bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}

	user, err := authService.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}

	return user, true
}

// parseListingID reads the :id path segment as the numeric listing id.
func parseListingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return 0, false
	}
	return id, true
}

func paginationParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// CreateListing creates a new listing with its escrow account
// POST /listings
func (h *ListingHandler) CreateListing(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	var req models.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), user, &req)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// GetListing returns one listing with its escrow state
// GET /listings/:id
func (h *ListingHandler) GetListing(c *gin.Context) {
	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	listing, err := h.listingService.GetListing(c.Request.Context(), listingID)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	escrow, err := h.escrowService.GetEscrow(c.Request.Context(), listingID)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listing":     listing,
		"escrow":      escrow,
		"balance_sol": lamportsToSOL(escrow.Balance),
	})
}

func lamportsToSOL(lamports int64) decimal.Decimal {
	return decimal.NewFromInt(lamports).Div(decimal.NewFromInt(1_000_000_000))
}

// GetActiveListings returns the active listings page
// GET /listings
func (h *ListingHandler) GetActiveListings(c *gin.Context) {
	limit, offset := paginationParams(c)

	listings, total, err := h.listingService.GetActiveListings(c.Request.Context(), limit, offset)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetMyListings returns the caller's listings
// GET /listings/mine
func (h *ListingHandler) GetMyListings(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	limit, offset := paginationParams(c)

	listings, err := h.listingService.GetSellerListings(c.Request.Context(), user.ID, limit, offset)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// PlaceBid places a bid on an active listing
// POST /listings/:id/bids
func (h *ListingHandler) PlaceBid(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	var req models.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listing, err := h.listingService.PlaceBid(c.Request.Context(), user, listingID, &req)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// BuyNow purchases the listing instantly at the buy-now price
// POST /listings/:id/buy-now
func (h *ListingHandler) BuyNow(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	var req models.BuyNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saleTx, err := h.listingService.BuyNow(c.Request.Context(), user, listingID, &req)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": saleTx})
}

// SettleAuction settles an ended auction
// POST /listings/:id/settle
func (h *ListingHandler) SettleAuction(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	saleTx, err := h.listingService.SettleAuction(c.Request.Context(), user, listingID)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	if saleTx == nil {
		c.JSON(http.StatusOK, gin.H{"message": "listing closed with no bids"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": saleTx})
}

// CancelListing cancels an active listing with no bids
// POST /listings/:id/cancel
func (h *ListingHandler) CancelListing(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	listingID, ok := parseListingID(c)
	if !ok {
		return
	}

	if err := h.listingService.CancelListing(c.Request.Context(), user, listingID); err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "listing cancelled"})
}

// WithdrawFunds claims every pending withdrawal credit for the caller
// POST /withdrawals/claim
func (h *ListingHandler) WithdrawFunds(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	result, err := h.escrowService.WithdrawFunds(c.Request.Context(), user)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"withdrawal": result})
}

// GetPendingWithdrawals lists the caller's unclaimed credits
// GET /withdrawals
func (h *ListingHandler) GetPendingWithdrawals(c *gin.Context) {
	user, ok := requireUser(c, h.authService)
	if !ok {
		return
	}

	credits, err := h.escrowService.GetPendingWithdrawals(c.Request.Context(), user.ID)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	var total int64
	for _, credit := range credits {
		total += credit.Amount
	}

	c.JSON(http.StatusOK, gin.H{
		"withdrawals": credits,
		"total":       total,
		"total_sol":   lamportsToSOL(total),
	})
}
