package repository

import (
	"context"

	"marketplace-escrow/internal/models"

	"gorm.io/gorm"
)

// GetConfig retrieves the marketplace configuration singleton
func (r *Repository) GetConfig(ctx context.Context) (*models.MarketplaceConfig, error) {
	var cfg models.MarketplaceConfig
	err := r.db.WithContext(ctx).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateConfig updates the marketplace configuration singleton
func (r *Repository) UpdateConfig(ctx context.Context, cfg *models.MarketplaceConfig) error {
	return r.db.WithContext(ctx).Save(cfg).Error
}

// SeedConfig creates the configuration row if none exists yet
func (r *Repository) SeedConfig(ctx context.Context, cfg *models.MarketplaceConfig) (*models.MarketplaceConfig, error) {
	var existing models.MarketplaceConfig
	err := r.db.WithContext(ctx).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if err := r.db.WithContext(ctx).Create(cfg).Error; err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}
