package jobs

import (
	"context"
	"log"
	"time"

	"marketplace-escrow/internal/models"
	"marketplace-escrow/internal/services"
)

// DeadlineWatcher automatically refunds buyers on sales whose transfer
// deadline lapsed without completion. The refund path is permissionless and
// always pays the recorded buyer wallet.
type DeadlineWatcher struct {
	txService *services.TransactionService
	interval  time.Duration
	stopChan  chan struct{}
}

// NewDeadlineWatcher creates a new deadline watcher job
func NewDeadlineWatcher(txService *services.TransactionService, interval time.Duration) *DeadlineWatcher {
	return &DeadlineWatcher{
		txService: txService,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the deadline watch loop
func (dw *DeadlineWatcher) Start() {
	log.Printf("[DeadlineWatcher] Starting deadline watch job (interval: %v)", dw.interval)

	ticker := time.NewTicker(dw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			dw.refundOverdue()
		case <-dw.stopChan:
			log.Println("[DeadlineWatcher] Stopping deadline watch job")
			return
		}
	}
}

// Stop stops the deadline watch loop
func (dw *DeadlineWatcher) Stop() {
	close(dw.stopChan)
}

// refundOverdue finds overdue in-escrow sales and fires emergency refunds
func (dw *DeadlineWatcher) refundOverdue() {
	ctx := context.Background()

	overdue, err := dw.txService.GetOverdueTransactions(ctx, 100)
	if err != nil {
		log.Printf("[DeadlineWatcher] Error fetching overdue transactions: %v", err)
		return
	}

	if len(overdue) == 0 {
		return
	}

	log.Printf("[DeadlineWatcher] Found %d overdue transactions", len(overdue))

	system := &models.User{WalletAddress: "system:deadline-watcher"}
	refunded := 0

	for _, saleTx := range overdue {
		if _, err := dw.txService.EmergencyRefund(ctx, system, saleTx.ID); err != nil {
			log.Printf("[DeadlineWatcher] Error refunding transaction %s: %v", saleTx.ID, err)
			continue
		}
		refunded++
	}

	if refunded > 0 {
		log.Printf("[DeadlineWatcher] Refunded %d overdue transactions", refunded)
	}
}
