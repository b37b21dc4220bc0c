package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"marketplace-escrow/internal/models"
	"marketplace-escrow/internal/repository"

	"github.com/google/uuid"
)

type AdminService struct {
	repo   *repository.Repository
	params Params
}

func NewAdminService(repo *repository.Repository, params Params) *AdminService {
	return &AdminService{
		repo:   repo,
		params: params,
	}
}

func (s *AdminService) requireAdmin(ctx context.Context, wallet string) (*models.MarketplaceConfig, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if wallet != cfg.AdminWallet {
		return nil, ErrNotAdmin
	}
	return cfg, nil
}

// GetConfig returns the live marketplace configuration
func (s *AdminService) GetConfig(ctx context.Context) (*models.MarketplaceConfig, error) {
	return s.repo.GetConfig(ctx)
}

// ProposeAdminChange stages a new admin wallet. The change only takes effect
// after ExecuteAdminChange once the timelock window has fully elapsed.
// Re-proposing overwrites the pending value and restarts the clock.
func (s *AdminService) ProposeAdminChange(ctx context.Context, adminWallet, newAdmin string) (*models.MarketplaceConfig, error) {
	cfg, err := s.requireAdmin(ctx, adminWallet)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cfg.PendingAdmin = &newAdmin
	cfg.AdminProposedAt = &now

	if err := s.saveConfigChange(ctx, cfg, adminWallet, "propose_admin", models.JSONB{"pending_admin": newAdmin}); err != nil {
		return nil, err
	}

	log.Printf("Admin change to %s proposed by %s, executable after %s",
		newAdmin, adminWallet, now.Add(s.params.Timelock).Format(time.RFC3339))

	return cfg, nil
}

// ExecuteAdminChange promotes the pending admin after the timelock.
func (s *AdminService) ExecuteAdminChange(ctx context.Context, adminWallet string) (*models.MarketplaceConfig, error) {
	cfg, err := s.requireAdmin(ctx, adminWallet)
	if err != nil {
		return nil, err
	}

	if cfg.PendingAdmin == nil || cfg.AdminProposedAt == nil {
		return nil, ErrNoPendingChange
	}
	if time.Since(*cfg.AdminProposedAt) < s.params.Timelock {
		return nil, ErrTimelockNotElapsed
	}

	newAdmin := *cfg.PendingAdmin
	cfg.AdminWallet = newAdmin
	cfg.PendingAdmin = nil
	cfg.AdminProposedAt = nil

	if err := s.saveConfigChange(ctx, cfg, adminWallet, "execute_admin", models.JSONB{"admin_wallet": newAdmin}); err != nil {
		return nil, err
	}

	log.Printf("Admin changed to %s", newAdmin)

	return cfg, nil
}

// ProposeTreasuryChange stages a new treasury wallet behind the same timelock.
func (s *AdminService) ProposeTreasuryChange(ctx context.Context, adminWallet, newTreasury string) (*models.MarketplaceConfig, error) {
	cfg, err := s.requireAdmin(ctx, adminWallet)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cfg.PendingTreasury = &newTreasury
	cfg.TreasuryProposedAt = &now

	if err := s.saveConfigChange(ctx, cfg, adminWallet, "propose_treasury", models.JSONB{"pending_treasury": newTreasury}); err != nil {
		return nil, err
	}

	log.Printf("Treasury change to %s proposed by %s", newTreasury, adminWallet)

	return cfg, nil
}

// ExecuteTreasuryChange promotes the pending treasury after the timelock.
func (s *AdminService) ExecuteTreasuryChange(ctx context.Context, adminWallet string) (*models.MarketplaceConfig, error) {
	cfg, err := s.requireAdmin(ctx, adminWallet)
	if err != nil {
		return nil, err
	}

	if cfg.PendingTreasury == nil || cfg.TreasuryProposedAt == nil {
		return nil, ErrNoPendingChange
	}
	if time.Since(*cfg.TreasuryProposedAt) < s.params.Timelock {
		return nil, ErrTimelockNotElapsed
	}

	newTreasury := *cfg.PendingTreasury
	cfg.TreasuryWallet = newTreasury
	cfg.PendingTreasury = nil
	cfg.TreasuryProposedAt = nil

	if err := s.saveConfigChange(ctx, cfg, adminWallet, "execute_treasury", models.JSONB{"treasury_wallet": newTreasury}); err != nil {
		return nil, err
	}

	log.Printf("Treasury changed to %s", newTreasury)

	return cfg, nil
}

// SetPaused toggles the circuit breaker. Fund-moving operations are refused
// while paused; emergency refunds and dispute handling stay available.
func (s *AdminService) SetPaused(ctx context.Context, adminWallet string, paused bool) (*models.MarketplaceConfig, error) {
	cfg, err := s.requireAdmin(ctx, adminWallet)
	if err != nil {
		return nil, err
	}

	cfg.Paused = paused

	if err := s.saveConfigChange(ctx, cfg, adminWallet, "set_paused", models.JSONB{"paused": paused}); err != nil {
		return nil, err
	}

	log.Printf("Marketplace paused=%v by %s", paused, adminWallet)

	return cfg, nil
}

// SetPlatformFee updates the platform fee rate, effective for new listings
// only. Existing listings keep the rate snapshotted at their creation.
func (s *AdminService) SetPlatformFee(ctx context.Context, adminWallet string, feeBps int64) (*models.MarketplaceConfig, error) {
	cfg, err := s.requireAdmin(ctx, adminWallet)
	if err != nil {
		return nil, err
	}

	if feeBps < 0 || feeBps > cfg.MaxFeeBps {
		return nil, ErrInvalidFeeRate
	}

	cfg.PlatformFeeBps = feeBps

	if err := s.saveConfigChange(ctx, cfg, adminWallet, "set_platform_fee", models.JSONB{"platform_fee_bps": feeBps}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SetDisputeFee updates the dispute fee rate within the same ceiling.
func (s *AdminService) SetDisputeFee(ctx context.Context, adminWallet string, feeBps int64) (*models.MarketplaceConfig, error) {
	cfg, err := s.requireAdmin(ctx, adminWallet)
	if err != nil {
		return nil, err
	}

	if feeBps < 0 || feeBps > cfg.MaxFeeBps {
		return nil, ErrInvalidFeeRate
	}

	cfg.DisputeFeeBps = feeBps

	if err := s.saveConfigChange(ctx, cfg, adminWallet, "set_dispute_fee", models.JSONB{"dispute_fee_bps": feeBps}); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (s *AdminService) saveConfigChange(
	ctx context.Context,
	cfg *models.MarketplaceConfig,
	actorWallet, action string,
	details models.JSONB,
) error {
	return s.repo.Transaction(ctx, func(r *repository.Repository) error {
		if err := r.UpdateConfig(ctx, cfg); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		details["action"] = action
		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:          uuid.New(),
			Type:        models.EventConfigChanged,
			ActorWallet: actorWallet,
			Details:     details,
		})
	})
}
