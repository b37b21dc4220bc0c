package models

import (
	"time"
)

// MarketplaceConfig is the singleton row holding global marketplace parameters.
// Admin and treasury identity changes never mutate the live columns directly;
// they land in the pending_* columns first and are promoted by ExecuteAdminChange
// / ExecuteTreasuryChange once the timelock has elapsed.
type MarketplaceConfig struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	AdminWallet        string     `gorm:"size:255;not null" json:"admin_wallet"`
	PendingAdmin       *string    `gorm:"size:255" json:"pending_admin,omitempty"`
	AdminProposedAt    *time.Time `json:"admin_proposed_at,omitempty"`
	TreasuryWallet     string     `gorm:"size:255;not null" json:"treasury_wallet"`
	PendingTreasury    *string    `gorm:"size:255" json:"pending_treasury,omitempty"`
	TreasuryProposedAt *time.Time `json:"treasury_proposed_at,omitempty"`
	PlatformFeeBps     int64      `gorm:"not null;default:250" json:"platform_fee_bps"`
	DisputeFeeBps      int64      `gorm:"not null;default:100" json:"dispute_fee_bps"`
	MaxFeeBps          int64      `gorm:"not null;default:1000" json:"max_fee_bps"`
	Paused             bool       `gorm:"not null;default:false" json:"paused"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (MarketplaceConfig) TableName() string {
	return "marketplace_config"
}
