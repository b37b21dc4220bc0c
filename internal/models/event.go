package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONB for PostgreSQL JSON support
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, &j)
}

type EventType string

const (
	EventListingCreated       EventType = "LISTING_CREATED"
	EventBidPlaced            EventType = "BID_PLACED"
	EventListingSettled       EventType = "LISTING_SETTLED"
	EventListingCancelled     EventType = "LISTING_CANCELLED"
	EventBuyNow               EventType = "BUY_NOW"
	EventDepositReclaimed     EventType = "DEPOSIT_RECLAIMED"
	EventWithdrawalClaimed    EventType = "WITHDRAWAL_CLAIMED"
	EventTransferConfirmed    EventType = "TRANSFER_CONFIRMED"
	EventReceiptConfirmed     EventType = "RECEIPT_CONFIRMED"
	EventTransactionCompleted EventType = "TRANSACTION_COMPLETED"
	EventEmergencyRefund      EventType = "EMERGENCY_REFUND"
	EventDisputeOpened        EventType = "DISPUTE_OPENED"
	EventDisputeResolved      EventType = "DISPUTE_RESOLVED"
	EventConfigChanged        EventType = "CONFIG_CHANGED"
)

// MarketplaceEvent is an append-only feed entry carrying enough identifying
// fields for off-chain indexers to follow a sale without a full table scan.
type MarketplaceEvent struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Type          EventType  `gorm:"size:50;not null;index" json:"type"`
	ListingID     *int64     `gorm:"index" json:"listing_id,omitempty"`
	TransactionID *uuid.UUID `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	ActorWallet   string     `gorm:"size:255" json:"actor_wallet"`
	Amount        int64      `gorm:"not null;default:0" json:"amount"`
	Details       JSONB      `gorm:"type:jsonb" json:"details,omitempty"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
}

func (MarketplaceEvent) TableName() string {
	return "marketplace_events"
}
