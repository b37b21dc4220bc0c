package jobs

import (
	"context"
	"log"
	"time"

	"marketplace-escrow/internal/services"
)

// ListingReaper closes expired auctions that never received a bid. Expired
// auctions with a standing bid are skipped; settling those is reserved for
// the seller and the high bidder.
type ListingReaper struct {
	listingService *services.ListingService
	interval       time.Duration
	stopChan       chan struct{}
}

// NewListingReaper creates a new listing reaper job
func NewListingReaper(listingService *services.ListingService, interval time.Duration) *ListingReaper {
	return &ListingReaper{
		listingService: listingService,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the reap loop
func (lr *ListingReaper) Start() {
	log.Printf("[ListingReaper] Starting listing reap job (interval: %v)", lr.interval)

	ticker := time.NewTicker(lr.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			lr.reapExpired()
		case <-lr.stopChan:
			log.Println("[ListingReaper] Stopping listing reap job")
			return
		}
	}
}

// Stop stops the reap loop
func (lr *ListingReaper) Stop() {
	close(lr.stopChan)
}

// reapExpired reclaims expired no-bid listings
func (lr *ListingReaper) reapExpired() {
	ctx := context.Background()

	expired, err := lr.listingService.GetExpiredActiveListings(ctx, 100)
	if err != nil {
		log.Printf("[ListingReaper] Error fetching expired listings: %v", err)
		return
	}

	reclaimed := 0

	for _, listing := range expired {
		if listing.BidCount > 0 {
			continue
		}
		if err := lr.listingService.ReclaimExpired(ctx, listing.ListingID); err != nil {
			log.Printf("[ListingReaper] Error reclaiming listing %d: %v", listing.ListingID, err)
			continue
		}
		reclaimed++
	}

	if reclaimed > 0 {
		log.Printf("[ListingReaper] Reclaimed %d expired listings", reclaimed)
	}
}
