package models

import (
	"time"

	"github.com/google/uuid"
)

type ListingStatus string

const (
	ListingStatusActive    ListingStatus = "ACTIVE"
	ListingStatusSold      ListingStatus = "SOLD"
	ListingStatusCancelled ListingStatus = "CANCELLED"
	ListingStatusReclaimed ListingStatus = "RECLAIMED"
)

type AssetType string

const (
	AssetTypeRepository  AssetType = "REPOSITORY"
	AssetTypeDomain      AssetType = "DOMAIN"
	AssetTypeCredentials AssetType = "CREDENTIALS"
)

// Listing represents one sale offer (auction and/or fixed buy-now).
// All monetary amounts are lamports. FeeBps is snapshotted from the
// marketplace config at creation time and never updated afterwards.
type Listing struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID           int64         `gorm:"uniqueIndex;not null" json:"listing_id"`
	SellerID            uint          `gorm:"not null;index" json:"seller_id"`
	SellerWallet        string        `gorm:"size:255;not null" json:"seller_wallet"`
	Title               string        `gorm:"size:255;not null" json:"title"`
	AssetType           AssetType     `gorm:"size:50;not null;default:REPOSITORY" json:"asset_type"`
	StartingPrice       int64         `gorm:"not null" json:"starting_price"`
	BuyNowPrice         *int64        `json:"buy_now_price,omitempty"`
	CurrentBid          int64         `gorm:"not null;default:0" json:"current_bid"`
	CurrentBidderID     *uint         `gorm:"index" json:"current_bidder_id,omitempty"`
	CurrentBidderWallet *string       `gorm:"size:255" json:"current_bidder_wallet,omitempty"`
	BidCount            int           `gorm:"not null;default:0" json:"bid_count"`
	EndTime             time.Time     `gorm:"not null;index" json:"end_time"`
	Status              ListingStatus `gorm:"size:50;not null;default:ACTIVE;index" json:"status"`
	FeeBps              int64         `gorm:"not null" json:"fee_bps"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (Listing) TableName() string {
	return "listings"
}

// Escrow tracks the custodied funds for one listing. Balance is an explicit
// counted field: every fund-in increments it by the exact transferred amount
// and every fund-out asserts and decrements it first. The raw lamport balance
// of the on-chain account (rent, stray transfers) is never consulted.
type Escrow struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID int64     `gorm:"uniqueIndex;not null" json:"listing_id"`
	Address   string    `gorm:"size:255;not null" json:"address"`
	Bump      uint8     `gorm:"not null" json:"bump"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Escrow) TableName() string {
	return "escrows"
}

// WithdrawalCredit is a pull-refund owed to an outbid bidder. The bidder
// claims it with WithdrawFunds; it is consumed exactly once.
type WithdrawalCredit struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uint       `gorm:"not null;index" json:"owner_id"`
	OwnerWallet string     `gorm:"size:255;not null" json:"owner_wallet"`
	ListingID   int64      `gorm:"not null;index" json:"listing_id"`
	Amount      int64      `gorm:"not null" json:"amount"`
	Claimed     bool       `gorm:"not null;default:false;index" json:"claimed"`
	ClaimTxHash *string    `gorm:"size:255" json:"claim_tx_hash,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
}

func (WithdrawalCredit) TableName() string {
	return "withdrawal_credits"
}

type DepositPurpose string

const (
	DepositPurposeBid        DepositPurpose = "BID"
	DepositPurposeBuyNow     DepositPurpose = "BUY_NOW"
	DepositPurposeDisputeFee DepositPurpose = "DISPUTE_FEE"
	DepositPurposeReclaimed  DepositPurpose = "RECLAIMED"
)

// EscrowDeposit records one consumed on-chain deposit signature. The unique
// index makes a signature spendable exactly once across bids, buy-nows and
// dispute fees, so the counted escrow balance never exceeds real custody.
type EscrowDeposit struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Signature string         `gorm:"size:255;not null;uniqueIndex" json:"signature"`
	ListingID int64          `gorm:"not null;index" json:"listing_id"`
	Sender    string         `gorm:"size:255" json:"sender"`
	Amount    int64          `gorm:"not null" json:"amount"`
	Purpose   DepositPurpose `gorm:"size:50;not null" json:"purpose"`
	CreatedAt time.Time      `json:"created_at"`
}

func (EscrowDeposit) TableName() string {
	return "escrow_deposits"
}

// CreateListingRequest represents a request to create a new listing
type CreateListingRequest struct {
	ListingID       int64  `json:"listing_id" binding:"required"`
	Title           string `json:"title" binding:"required"`
	AssetType       string `json:"asset_type"`
	StartingPrice   int64  `json:"starting_price" binding:"required,gt=0"`
	BuyNowPrice     *int64 `json:"buy_now_price"`
	DurationSeconds int64  `json:"duration_seconds" binding:"required"`
}

// PlaceBidRequest represents a bid on an active listing
type PlaceBidRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Signature string `json:"signature" binding:"required"` // deposit transaction signature
}

// BuyNowRequest represents an instant purchase at the buy-now price
type BuyNowRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Signature string `json:"signature" binding:"required"`
}
