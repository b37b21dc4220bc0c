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

type TransactionService struct {
	repo  *repository.Repository
	chain ChainLedger
}

func NewTransactionService(repo *repository.Repository, chain ChainLedger) *TransactionService {
	return &TransactionService{
		repo:  repo,
		chain: chain,
	}
}

// SellerConfirmTransfer records the seller's hand-off of one checklist item
// with supporting evidence. Allowed only while the transaction is in escrow
// and before the transfer deadline.
func (s *TransactionService) SellerConfirmTransfer(
	ctx context.Context,
	seller *models.User,
	txID uuid.UUID,
	req *models.ConfirmTransferRequest,
) (*models.ChecklistItem, error) {
	var item *models.ChecklistItem

	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		saleTx, err := r.GetSaleTransactionForUpdate(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to load transaction: %w", err)
		}

		if saleTx.SellerID != seller.ID {
			return ErrNotParticipant
		}
		if saleTx.Status != models.SaleStatusInEscrow {
			return ErrTransactionNotOpen
		}
		if time.Now().After(saleTx.TransferDeadline) {
			return ErrDeadlinePassed
		}

		item, err = r.GetChecklistItem(ctx, txID, req.ItemKey)
		if err != nil {
			return ErrUnknownChecklistItem
		}
		if item.SellerConfirmed {
			return ErrAlreadyConfirmed
		}

		now := time.Now()
		item.SellerConfirmed = true
		item.SellerEvidence = &req.Evidence
		item.SellerConfirmedAt = &now

		if err := r.UpdateChecklistItem(ctx, item); err != nil {
			return fmt.Errorf("failed to update checklist item: %w", err)
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:            uuid.New(),
			Type:          models.EventTransferConfirmed,
			ListingID:     &saleTx.ListingID,
			TransactionID: &saleTx.ID,
			ActorWallet:   seller.WalletAddress,
			Details:       models.JSONB{"item_key": item.ItemKey},
		})
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// ConfirmReceipt records the buyer's acknowledgement of one checklist item.
// The buyer can only acknowledge items the seller already confirmed. When
// every required item is dual-confirmed the sale finalizes in the same call,
// unless the marketplace is paused, in which case finalization simply waits.
func (s *TransactionService) ConfirmReceipt(
	ctx context.Context,
	buyer *models.User,
	txID uuid.UUID,
	req *models.ConfirmReceiptRequest,
) (*models.SaleTransaction, error) {
	var saleTx *models.SaleTransaction
	var readyToFinalize bool

	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		var err error
		saleTx, err = r.GetSaleTransactionForUpdate(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to load transaction: %w", err)
		}

		if saleTx.BuyerID != buyer.ID {
			return ErrNotParticipant
		}
		if saleTx.Status != models.SaleStatusInEscrow {
			return ErrTransactionNotOpen
		}

		item, err := r.GetChecklistItem(ctx, txID, req.ItemKey)
		if err != nil {
			return ErrUnknownChecklistItem
		}
		if !item.SellerConfirmed {
			return ErrNotSellerConfirmed
		}
		if item.BuyerConfirmed {
			return ErrAlreadyConfirmed
		}

		now := time.Now()
		item.BuyerConfirmed = true
		item.BuyerConfirmedAt = &now

		if err := r.UpdateChecklistItem(ctx, item); err != nil {
			return fmt.Errorf("failed to update checklist item: %w", err)
		}

		if err := r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:            uuid.New(),
			Type:          models.EventReceiptConfirmed,
			ListingID:     &saleTx.ListingID,
			TransactionID: &saleTx.ID,
			ActorWallet:   buyer.WalletAddress,
			Details:       models.JSONB{"item_key": item.ItemKey},
		}); err != nil {
			return err
		}

		items, err := r.GetChecklistItems(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to load checklist: %w", err)
		}
		readyToFinalize = checklistComplete(items)

		return nil
	})
	if err != nil {
		return nil, err
	}

	if readyToFinalize {
		cfg, err := s.repo.GetConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load marketplace config: %w", err)
		}
		if cfg.Paused {
			// Confirmation stands; funds release once the pause lifts.
			log.Printf("Transaction %s fully confirmed, finalization deferred while paused", txID)
			return saleTx, nil
		}
		return s.FinalizeTransaction(ctx, buyer, txID)
	}

	return saleTx, nil
}

func checklistComplete(items []*models.ChecklistItem) bool {
	for _, item := range items {
		if item.Required && (!item.SellerConfirmed || !item.BuyerConfirmed) {
			return false
		}
	}
	return true
}

// FinalizeTransaction releases the escrowed sale price: the platform fee to
// the treasury, the proceeds to the seller. Only the buyer may trigger the
// release, and only once every required checklist item is dual-confirmed.
func (s *TransactionService) FinalizeTransaction(
	ctx context.Context,
	buyer *models.User,
	txID uuid.UUID,
) (*models.SaleTransaction, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if cfg.Paused {
		return nil, ErrContractPaused
	}

	var saleTx *models.SaleTransaction

	err = s.repo.Transaction(ctx, func(r *repository.Repository) error {
		saleTx, err = r.GetSaleTransactionForUpdate(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to load transaction: %w", err)
		}

		if saleTx.BuyerID != buyer.ID {
			return ErrNotParticipant
		}
		if saleTx.Status != models.SaleStatusInEscrow {
			return ErrTransactionNotOpen
		}

		items, err := r.GetChecklistItems(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to load checklist: %w", err)
		}
		if !checklistComplete(items) {
			return ErrChecklistIncomplete
		}

		escrow, err := r.GetEscrowForUpdate(ctx, saleTx.ListingID)
		if err != nil {
			return fmt.Errorf("failed to load escrow: %w", err)
		}

		payout, err := safeAdd(saleTx.PlatformFee, saleTx.SellerProceeds)
		if err != nil {
			return err
		}
		if escrow.Balance < payout {
			return ErrInsufficientEscrowBalance
		}

		newBalance, err := safeSub(escrow.Balance, payout)
		if err != nil {
			return err
		}
		escrow.Balance = newBalance
		if err := r.UpdateEscrow(ctx, escrow); err != nil {
			return fmt.Errorf("failed to update escrow: %w", err)
		}

		now := time.Now()
		saleTx.Status = models.SaleStatusCompleted
		saleTx.CompletedAt = &now

		if saleTx.PlatformFee > 0 {
			feeHash, err := s.chain.Transfer(ctx, cfg.TreasuryWallet, uint64(saleTx.PlatformFee))
			if err != nil {
				return fmt.Errorf("fee transfer failed: %w", err)
			}
			saleTx.FeeTxHash = &feeHash
		}

		payoutHash, err := s.chain.Transfer(ctx, saleTx.SellerWallet, uint64(saleTx.SellerProceeds))
		if err != nil {
			return fmt.Errorf("seller payout failed: %w", err)
		}
		saleTx.PayoutTxHash = &payoutHash

		if err := r.UpdateSaleTransaction(ctx, saleTx); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:            uuid.New(),
			Type:          models.EventTransactionCompleted,
			ListingID:     &saleTx.ListingID,
			TransactionID: &saleTx.ID,
			ActorWallet:   buyer.WalletAddress,
			Amount:        saleTx.SalePrice,
			Details: models.JSONB{
				"platform_fee":    saleTx.PlatformFee,
				"seller_proceeds": saleTx.SellerProceeds,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Transaction %s completed: fee %d to treasury, %d to seller %s",
		saleTx.ID, saleTx.PlatformFee, saleTx.SellerProceeds, saleTx.SellerWallet)

	return saleTx, nil
}

// EmergencyRefund returns the full sale price to the buyer after the transfer
// deadline has lapsed without completion. Any caller may trigger it; the
// refund destination is always the recorded buyer wallet, so permissionless
// triggering cannot redirect funds. Works while paused.
func (s *TransactionService) EmergencyRefund(
	ctx context.Context,
	caller *models.User,
	txID uuid.UUID,
) (*models.SaleTransaction, error) {
	var saleTx *models.SaleTransaction

	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		var err error
		saleTx, err = r.GetSaleTransactionForUpdate(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to load transaction: %w", err)
		}

		if saleTx.Status != models.SaleStatusInEscrow {
			return ErrTransactionNotOpen
		}
		if !time.Now().After(saleTx.TransferDeadline) {
			return ErrDeadlineNotPassed
		}

		escrow, err := r.GetEscrowForUpdate(ctx, saleTx.ListingID)
		if err != nil {
			return fmt.Errorf("failed to load escrow: %w", err)
		}
		if escrow.Balance < saleTx.SalePrice {
			return ErrInsufficientEscrowBalance
		}

		newBalance, err := safeSub(escrow.Balance, saleTx.SalePrice)
		if err != nil {
			return err
		}
		escrow.Balance = newBalance
		if err := r.UpdateEscrow(ctx, escrow); err != nil {
			return fmt.Errorf("failed to update escrow: %w", err)
		}

		now := time.Now()
		saleTx.Status = models.SaleStatusRefunded
		saleTx.CompletedAt = &now

		refundHash, err := s.chain.Transfer(ctx, saleTx.BuyerWallet, uint64(saleTx.SalePrice))
		if err != nil {
			return fmt.Errorf("refund transfer failed: %w", err)
		}
		saleTx.RefundTxHash = &refundHash

		if err := r.UpdateSaleTransaction(ctx, saleTx); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:            uuid.New(),
			Type:          models.EventEmergencyRefund,
			ListingID:     &saleTx.ListingID,
			TransactionID: &saleTx.ID,
			ActorWallet:   caller.WalletAddress,
			Amount:        saleTx.SalePrice,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Emergency refund of %d to buyer %s on transaction %s (triggered by %s)",
		saleTx.SalePrice, saleTx.BuyerWallet, saleTx.ID, caller.WalletAddress)

	return saleTx, nil
}

// GetTransaction retrieves a sale transaction with its checklist
func (s *TransactionService) GetTransaction(ctx context.Context, txID uuid.UUID) (*models.SaleTransaction, []*models.ChecklistItem, error) {
	saleTx, err := s.repo.GetSaleTransactionByID(ctx, txID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.GetChecklistItems(ctx, txID)
	if err != nil {
		return nil, nil, err
	}
	return saleTx, items, nil
}

// GetUserTransactions lists sales the user participates in as buyer or seller
func (s *TransactionService) GetUserTransactions(ctx context.Context, userID uint, limit, offset int) ([]*models.SaleTransaction, error) {
	return s.repo.GetUserSaleTransactions(ctx, userID, limit, offset)
}

// GetOverdueTransactions lists in-escrow sales past their transfer deadline
func (s *TransactionService) GetOverdueTransactions(ctx context.Context, limit int) ([]*models.SaleTransaction, error) {
	return s.repo.GetOverdueTransactions(ctx, limit)
}
