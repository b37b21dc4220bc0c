package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-escrow/internal/models"
)

func TestProposeAndExecuteAdminChange(t *testing.T) {
	env := newTestEnv(t)
	newAdmin := "NewAdmin1111111111111111111111111111111111"

	// Only the current admin proposes.
	_, err := env.admin.ProposeAdminChange(context.Background(), "intruder", newAdmin)
	if !errors.Is(err, ErrNotAdmin) {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}

	cfg, err := env.admin.ProposeAdminChange(context.Background(), testAdminWallet, newAdmin)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PendingAdmin == nil || *cfg.PendingAdmin != newAdmin {
		t.Fatal("pending admin not staged")
	}
	if cfg.AdminWallet != testAdminWallet {
		t.Error("live admin must not change at proposal time")
	}

	// Executing before the timelock elapses is refused.
	_, err = env.admin.ExecuteAdminChange(context.Background(), testAdminWallet)
	if !errors.Is(err, ErrTimelockNotElapsed) {
		t.Errorf("expected ErrTimelockNotElapsed, got %v", err)
	}

	// Backdate the proposal past the 48h window.
	backdated := time.Now().Add(-49 * time.Hour)
	if err := env.db.Model(&models.MarketplaceConfig{}).
		Where("id = ?", cfg.ID).
		Update("admin_proposed_at", backdated).Error; err != nil {
		t.Fatal(err)
	}

	cfg, err = env.admin.ExecuteAdminChange(context.Background(), testAdminWallet)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AdminWallet != newAdmin {
		t.Errorf("admin wallet %s, want %s", cfg.AdminWallet, newAdmin)
	}
	if cfg.PendingAdmin != nil {
		t.Error("pending admin should be cleared after execution")
	}

	// The old admin has lost authority.
	_, err = env.admin.SetPaused(context.Background(), testAdminWallet, true)
	if !errors.Is(err, ErrNotAdmin) {
		t.Errorf("old admin should be rejected, got %v", err)
	}
	if _, err := env.admin.SetPaused(context.Background(), newAdmin, true); err != nil {
		t.Errorf("new admin should hold authority: %v", err)
	}
}

func TestExecuteWithoutProposal(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.admin.ExecuteAdminChange(context.Background(), testAdminWallet)
	if !errors.Is(err, ErrNoPendingChange) {
		t.Errorf("expected ErrNoPendingChange, got %v", err)
	}
	_, err = env.admin.ExecuteTreasuryChange(context.Background(), testAdminWallet)
	if !errors.Is(err, ErrNoPendingChange) {
		t.Errorf("expected ErrNoPendingChange, got %v", err)
	}
}

func TestReProposeRestartsClock(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.admin.ProposeAdminChange(context.Background(), testAdminWallet, "first"); err != nil {
		t.Fatal(err)
	}

	// Backdate, then re-propose; the fresh proposal must reset the clock.
	backdated := time.Now().Add(-49 * time.Hour)
	if err := env.db.Model(&models.MarketplaceConfig{}).
		Where("id = ?", 1).
		Update("admin_proposed_at", backdated).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := env.admin.ProposeAdminChange(context.Background(), testAdminWallet, "second"); err != nil {
		t.Fatal(err)
	}

	_, err := env.admin.ExecuteAdminChange(context.Background(), testAdminWallet)
	if !errors.Is(err, ErrTimelockNotElapsed) {
		t.Errorf("re-proposal must restart the timelock, got %v", err)
	}
}

func TestProposeAndExecuteTreasuryChange(t *testing.T) {
	env := newTestEnv(t)
	newTreasury := "NewTreasury11111111111111111111111111111111"

	cfg, err := env.admin.ProposeTreasuryChange(context.Background(), testAdminWallet, newTreasury)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TreasuryWallet != testTreasuryWallet {
		t.Error("live treasury must not change at proposal time")
	}

	_, err = env.admin.ExecuteTreasuryChange(context.Background(), testAdminWallet)
	if !errors.Is(err, ErrTimelockNotElapsed) {
		t.Errorf("expected ErrTimelockNotElapsed, got %v", err)
	}

	backdated := time.Now().Add(-49 * time.Hour)
	if err := env.db.Model(&models.MarketplaceConfig{}).
		Where("id = ?", cfg.ID).
		Update("treasury_proposed_at", backdated).Error; err != nil {
		t.Fatal(err)
	}

	cfg, err = env.admin.ExecuteTreasuryChange(context.Background(), testAdminWallet)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TreasuryWallet != newTreasury {
		t.Errorf("treasury wallet %s, want %s", cfg.TreasuryWallet, newTreasury)
	}
}

func TestFeeBounds(t *testing.T) {
	env := newTestEnv(t)

	// Fee changes take effect immediately but never past the ceiling.
	if _, err := env.admin.SetPlatformFee(context.Background(), testAdminWallet, 1000); err != nil {
		t.Errorf("fee at the ceiling should be accepted: %v", err)
	}

	_, err := env.admin.SetPlatformFee(context.Background(), testAdminWallet, 1001)
	if !errors.Is(err, ErrInvalidFeeRate) {
		t.Errorf("expected ErrInvalidFeeRate, got %v", err)
	}

	_, err = env.admin.SetDisputeFee(context.Background(), testAdminWallet, -1)
	if !errors.Is(err, ErrInvalidFeeRate) {
		t.Errorf("negative fee: expected ErrInvalidFeeRate, got %v", err)
	}

	_, err = env.admin.SetPlatformFee(context.Background(), "intruder", 100)
	if !errors.Is(err, ErrNotAdmin) {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}
}

func TestPauseToggle(t *testing.T) {
	env := newTestEnv(t)

	cfg, err := env.admin.SetPaused(context.Background(), testAdminWallet, true)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Paused {
		t.Error("expected paused")
	}

	cfg, err = env.admin.SetPaused(context.Background(), testAdminWallet, false)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Paused {
		t.Error("expected unpaused")
	}
}
