package repository

import (
	"context"
	"time"

	"marketplace-escrow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// CreateSaleTransaction creates a settled sale record
func (r *Repository) CreateSaleTransaction(ctx context.Context, tx *models.SaleTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetSaleTransactionByID retrieves a sale transaction by ID
func (r *Repository) GetSaleTransactionByID(ctx context.Context, txID uuid.UUID) (*models.SaleTransaction, error) {
	var tx models.SaleTransaction
	err := r.db.WithContext(ctx).Where("id = ?", txID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetSaleTransactionForUpdate retrieves a sale transaction with a row lock
// held for the enclosing transaction.
func (r *Repository) GetSaleTransactionForUpdate(ctx context.Context, txID uuid.UUID) (*models.SaleTransaction, error) {
	var tx models.SaleTransaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", txID).
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetSaleTransactionByListingID retrieves the sale transaction for a listing
func (r *Repository) GetSaleTransactionByListingID(ctx context.Context, listingID int64) (*models.SaleTransaction, error) {
	var tx models.SaleTransaction
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateSaleTransaction updates a sale transaction
func (r *Repository) UpdateSaleTransaction(ctx context.Context, tx *models.SaleTransaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// GetUserSaleTransactions retrieves sales where the user is buyer or seller
func (r *Repository) GetUserSaleTransactions(ctx context.Context, userID uint, limit, offset int) ([]*models.SaleTransaction, error) {
	var txs []*models.SaleTransaction
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// GetOverdueTransactions retrieves in-escrow transactions past their deadline
func (r *Repository) GetOverdueTransactions(ctx context.Context, limit int) ([]*models.SaleTransaction, error) {
	var txs []*models.SaleTransaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND transfer_deadline < ?", models.SaleStatusInEscrow, time.Now()).
		Order("transfer_deadline ASC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateChecklistItems creates the fixed hand-off checklist for a transaction
func (r *Repository) CreateChecklistItems(ctx context.Context, items []*models.ChecklistItem) error {
	return r.db.WithContext(ctx).Create(items).Error
}

// GetChecklistItem retrieves one checklist item by transaction and key
func (r *Repository) GetChecklistItem(ctx context.Context, txID uuid.UUID, itemKey string) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("transaction_id = ? AND item_key = ?", txID, itemKey).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetChecklistItems retrieves all checklist items for a transaction
func (r *Repository) GetChecklistItems(ctx context.Context, txID uuid.UUID) ([]*models.ChecklistItem, error) {
	var items []*models.ChecklistItem
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", txID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateChecklistItem updates a checklist item
func (r *Repository) UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
