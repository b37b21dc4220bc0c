package repository

import (
	"context"

	"marketplace-escrow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// CreateDispute creates a dispute against a sale transaction
func (r *Repository) CreateDispute(ctx context.Context, dispute *models.Dispute) error {
	return r.db.WithContext(ctx).Create(dispute).Error
}

// GetDisputeByID retrieves a dispute by ID
func (r *Repository) GetDisputeByID(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.WithContext(ctx).Where("id = ?", disputeID).First(&dispute).Error
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// GetDisputeForUpdate retrieves a dispute with a row lock held for the
// enclosing transaction.
func (r *Repository) GetDisputeForUpdate(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", disputeID).
		First(&dispute).Error
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// GetDisputeByTransactionID retrieves the dispute for a transaction, if any
func (r *Repository) GetDisputeByTransactionID(ctx context.Context, txID uuid.UUID) (*models.Dispute, error) {
	var dispute models.Dispute
	err := r.db.WithContext(ctx).Where("transaction_id = ?", txID).First(&dispute).Error
	if err != nil {
		return nil, err
	}
	return &dispute, nil
}

// DisputeExists reports whether a transaction already has a dispute
func (r *Repository) DisputeExists(ctx context.Context, txID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Dispute{}).
		Where("transaction_id = ?", txID).
		Count(&count).Error
	return count > 0, err
}

// UpdateDispute updates a dispute
func (r *Repository) UpdateDispute(ctx context.Context, dispute *models.Dispute) error {
	return r.db.WithContext(ctx).Save(dispute).Error
}

// GetOpenDisputes retrieves open disputes for the arbitration queue
func (r *Repository) GetOpenDisputes(ctx context.Context, limit, offset int) ([]*models.Dispute, error) {
	var disputes []*models.Dispute
	err := r.db.WithContext(ctx).
		Where("status = ?", models.DisputeStatusOpen).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&disputes).Error
	if err != nil {
		return nil, err
	}
	return disputes, nil
}
