package models

import (
	"time"

	"github.com/google/uuid"
)

type SaleStatus string

const (
	SaleStatusInEscrow  SaleStatus = "IN_ESCROW"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusDisputed  SaleStatus = "DISPUTED"
	SaleStatusRefunded  SaleStatus = "REFUNDED"
)

// SaleTransaction represents a settled sale in progress of asset hand-off.
// PlatformFee + SellerProceeds always equals SalePrice; both are fixed at
// settlement from the listing's snapshotted fee rate.
type SaleTransaction struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID        int64      `gorm:"uniqueIndex;not null" json:"listing_id"`
	BuyerID          uint       `gorm:"not null;index" json:"buyer_id"`
	BuyerWallet      string     `gorm:"size:255;not null" json:"buyer_wallet"`
	SellerID         uint       `gorm:"not null;index" json:"seller_id"`
	SellerWallet     string     `gorm:"size:255;not null" json:"seller_wallet"`
	SalePrice        int64      `gorm:"not null" json:"sale_price"`
	PlatformFee      int64      `gorm:"not null" json:"platform_fee"`
	SellerProceeds   int64      `gorm:"not null" json:"seller_proceeds"`
	TransferDeadline time.Time  `gorm:"not null;index" json:"transfer_deadline"`
	Status           SaleStatus `gorm:"size:50;not null;default:IN_ESCROW;index" json:"status"`
	FeeTxHash        *string    `gorm:"size:255" json:"fee_tx_hash,omitempty"`
	PayoutTxHash     *string    `gorm:"size:255" json:"payout_tx_hash,omitempty"`
	RefundTxHash     *string    `gorm:"size:255" json:"refund_tx_hash,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

func (SaleTransaction) TableName() string {
	return "sale_transactions"
}

// Checklist item keys for the fixed per-asset-type hand-off steps.
const (
	ChecklistItemRepository  = "repository_transfer"
	ChecklistItemDomain      = "domain_transfer"
	ChecklistItemCredentials = "credential_handoff"
)

// ChecklistItem is one named unit of off-ledger asset hand-off requiring
// independent seller and buyer confirmation.
type ChecklistItem struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_checklist_tx_key,unique" json:"transaction_id"`
	ItemKey           string     `gorm:"size:100;not null;index:idx_checklist_tx_key,unique" json:"item_key"`
	Name              string     `gorm:"size:255;not null" json:"name"`
	Required          bool       `gorm:"not null;default:true" json:"required"`
	SellerConfirmed   bool       `gorm:"not null;default:false" json:"seller_confirmed"`
	SellerEvidence    *string    `gorm:"type:text" json:"seller_evidence,omitempty"`
	SellerConfirmedAt *time.Time `json:"seller_confirmed_at,omitempty"`
	BuyerConfirmed    bool       `gorm:"not null;default:false" json:"buyer_confirmed"`
	BuyerConfirmedAt  *time.Time `json:"buyer_confirmed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}

// ConfirmTransferRequest is the seller's evidence submission for one checklist item
type ConfirmTransferRequest struct {
	ItemKey  string `json:"item_key" binding:"required"`
	Evidence string `json:"evidence" binding:"required"`
}

// ConfirmReceiptRequest is the buyer's acknowledgement of one checklist item
type ConfirmReceiptRequest struct {
	ItemKey string `json:"item_key" binding:"required"`
}
