package repository

import (
	"context"
	"time"

	"marketplace-escrow/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a transaction-scoped repository. Every
// state-changing engine call goes through here so a transition either fully
// applies or fully reverts.
func (r *Repository) Transaction(ctx context.Context, fn func(*Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// DB exposes the underlying handle for maintenance paths
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CreateListing creates a new listing
func (r *Repository) CreateListing(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

// GetListingByID retrieves a listing by its stable listing id
func (r *Repository) GetListingByID(ctx context.Context, listingID int64) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetListingForUpdate retrieves a listing with a row lock held for the
// enclosing transaction, so concurrent mutations of the same listing
// serialize instead of overwriting each other.
func (r *Repository) GetListingForUpdate(ctx context.Context, listingID int64) (*models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("listing_id = ?", listingID).
		First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// ListingExists reports whether a listing with the given id already exists
func (r *Repository) ListingExists(ctx context.Context, listingID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("listing_id = ?", listingID).
		Count(&count).Error
	return count > 0, err
}

// UpdateListing updates a listing
func (r *Repository) UpdateListing(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

// GetActiveListings retrieves active listings with pagination
func (r *Repository) GetActiveListings(ctx context.Context, limit, offset int) ([]*models.Listing, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("status = ?", models.ListingStatusActive).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var listings []*models.Listing
	err = r.db.WithContext(ctx).
		Where("status = ?", models.ListingStatusActive).
		Order("end_time ASC").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// GetSellerListings retrieves all listings for a seller
func (r *Repository) GetSellerListings(ctx context.Context, sellerID uint, limit, offset int) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// GetExpiredActiveListings retrieves active listings whose end time has passed
func (r *Repository) GetExpiredActiveListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	var listings []*models.Listing
	err := r.db.WithContext(ctx).
		Where("status = ? AND end_time < ?", models.ListingStatusActive, time.Now()).
		Order("end_time ASC").
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// CreateEscrow creates the escrow record paired with a listing
func (r *Repository) CreateEscrow(ctx context.Context, escrow *models.Escrow) error {
	return r.db.WithContext(ctx).Create(escrow).Error
}

// GetEscrowByListingID retrieves the escrow for a listing
func (r *Repository) GetEscrowByListingID(ctx context.Context, listingID int64) (*models.Escrow, error) {
	var escrow models.Escrow
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&escrow).Error
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

// GetEscrowForUpdate retrieves the escrow for a listing with a row lock held
// for the enclosing transaction.
func (r *Repository) GetEscrowForUpdate(ctx context.Context, listingID int64) (*models.Escrow, error) {
	var escrow models.Escrow
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("listing_id = ?", listingID).
		First(&escrow).Error
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

// UpdateEscrow updates an escrow record
func (r *Repository) UpdateEscrow(ctx context.Context, escrow *models.Escrow) error {
	return r.db.WithContext(ctx).Save(escrow).Error
}

// DepositSignatureUsed reports whether a deposit signature has been consumed
func (r *Repository) DepositSignatureUsed(ctx context.Context, signature string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.EscrowDeposit{}).
		Where("signature = ?", signature).
		Count(&count).Error
	return count > 0, err
}

// RecordDeposit consumes a deposit signature. The unique index on the
// signature column makes a concurrent double-spend fail at commit.
func (r *Repository) RecordDeposit(ctx context.Context, deposit *models.EscrowDeposit) error {
	return r.db.WithContext(ctx).Create(deposit).Error
}

// CreateWithdrawalCredit records a pull-refund owed to an outbid bidder
func (r *Repository) CreateWithdrawalCredit(ctx context.Context, credit *models.WithdrawalCredit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

// GetPendingWithdrawals retrieves unclaimed credits for an owner
func (r *Repository) GetPendingWithdrawals(ctx context.Context, ownerID uint) ([]*models.WithdrawalCredit, error) {
	var credits []*models.WithdrawalCredit
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND claimed = ?", ownerID, false).
		Order("created_at ASC").
		Find(&credits).Error
	if err != nil {
		return nil, err
	}
	return credits, nil
}

// UpdateWithdrawalCredit updates a withdrawal credit
func (r *Repository) UpdateWithdrawalCredit(ctx context.Context, credit *models.WithdrawalCredit) error {
	return r.db.WithContext(ctx).Save(credit).Error
}

// RecordEvent appends an event to the marketplace feed
func (r *Repository) RecordEvent(ctx context.Context, event *models.MarketplaceEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetEvents retrieves recent events, optionally filtered by listing
func (r *Repository) GetEvents(ctx context.Context, listingID *int64, limit, offset int) ([]*models.MarketplaceEvent, error) {
	query := r.db.WithContext(ctx).Model(&models.MarketplaceEvent{})
	if listingID != nil {
		query = query.Where("listing_id = ?", *listingID)
	}

	var events []*models.MarketplaceEvent
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
