package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-escrow/internal/services"
)

// EventHandler serves the marketplace audit feed
type EventHandler struct {
	listingService *services.ListingService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(listingService *services.ListingService) *EventHandler {
	return &EventHandler{
		listingService: listingService,
	}
}

// GetEvents returns recent marketplace events, optionally filtered by listing
// GET /events?listing_id=...
func (h *EventHandler) GetEvents(c *gin.Context) {
	limit, offset := paginationParams(c)

	var listingID *int64
	if raw := c.Query("listing_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing_id"})
			return
		}
		listingID = &id
	}

	events, err := h.listingService.GetEvents(c.Request.Context(), listingID, limit, offset)
	if err != nil {
		status, msg := statusForError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
