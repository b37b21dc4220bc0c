package models

import (
	"time"

	"github.com/google/uuid"
)

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "OPEN"
	DisputeStatusResolved DisputeStatus = "RESOLVED"
)

type ResolutionKind string

const (
	ResolutionFullRefundBuyer  ResolutionKind = "FULL_REFUND_BUYER"
	ResolutionFullRefundSeller ResolutionKind = "FULL_REFUND_SELLER"
	ResolutionPartialRefund    ResolutionKind = "PARTIAL_REFUND"
)

// MaxDisputeReasonLen bounds the free-text reason stored with a dispute.
const MaxDisputeReasonLen = 500

// Dispute is a contested SaleTransaction under arbitration. At most one per
// transaction; immutable once resolved. FeeAmount is the dispute fee charged
// to the initiator up front, held apart from escrow principal and returned
// to the prevailing party on resolution.
type Dispute struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"transaction_id"`
	InitiatorID   uint           `gorm:"not null;index" json:"initiator_id"`
	Reason        string         `gorm:"size:500;not null" json:"reason"`
	FeeAmount     int64          `gorm:"not null" json:"fee_amount"`
	Status        DisputeStatus  `gorm:"size:50;not null;default:OPEN;index" json:"status"`
	Resolution    *ResolutionKind `gorm:"size:50" json:"resolution,omitempty"`
	BuyerAmount   *int64         `json:"buyer_amount,omitempty"`
	SellerAmount  *int64         `json:"seller_amount,omitempty"`
	ResolvedBy    *string        `gorm:"size:255" json:"resolved_by,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	ResolvedAt    *time.Time     `json:"resolved_at,omitempty"`
}

func (Dispute) TableName() string {
	return "disputes"
}

// OpenDisputeRequest represents either party contesting an open transaction
type OpenDisputeRequest struct {
	Reason    string `json:"reason" binding:"required"`
	Signature string `json:"signature" binding:"required"` // dispute fee deposit signature
}

// ResolveDisputeRequest is the admin's arbitration verdict
type ResolveDisputeRequest struct {
	Resolution   string `json:"resolution" binding:"required"` // FULL_REFUND_BUYER, FULL_REFUND_SELLER, PARTIAL_REFUND
	BuyerAmount  *int64 `json:"buyer_amount"`
	SellerAmount *int64 `json:"seller_amount"`
}
