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

type EscrowService struct {
	repo  *repository.Repository
	chain ChainLedger
}

func NewEscrowService(repo *repository.Repository, chain ChainLedger) *EscrowService {
	return &EscrowService{
		repo:  repo,
		chain: chain,
	}
}

// WithdrawalResult summarizes one claim execution.
type WithdrawalResult struct {
	Total    int64                      `json:"total"`
	Credits  []*models.WithdrawalCredit `json:"credits"`
	TxHashes []string                   `json:"tx_hashes"`
}

// WithdrawFunds pays out every unclaimed credit owed to the caller. Credits
// are marked claimed and escrow balances decremented before the chain
// transfer is attempted; a transfer failure rolls the whole claim back, so a
// credit can never be paid twice.
func (s *EscrowService) WithdrawFunds(ctx context.Context, owner *models.User) (*WithdrawalResult, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if cfg.Paused {
		return nil, ErrContractPaused
	}

	result := &WithdrawalResult{}

	err = s.repo.Transaction(ctx, func(r *repository.Repository) error {
		credits, err := r.GetPendingWithdrawals(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("failed to load pending withdrawals: %w", err)
		}
		if len(credits) == 0 {
			return ErrNothingToWithdraw
		}

		for _, credit := range credits {
			escrow, err := r.GetEscrowForUpdate(ctx, credit.ListingID)
			if err != nil {
				return fmt.Errorf("failed to load escrow for listing %d: %w", credit.ListingID, err)
			}

			if escrow.Balance < credit.Amount {
				return ErrInsufficientEscrowBalance
			}

			// Effects before the transfer: claimed flag and balance move
			// first so a re-entrant claim inside the same window sees zero.
			newBalance, err := safeSub(escrow.Balance, credit.Amount)
			if err != nil {
				return err
			}
			escrow.Balance = newBalance
			if err := r.UpdateEscrow(ctx, escrow); err != nil {
				return fmt.Errorf("failed to update escrow: %w", err)
			}

			now := time.Now()
			credit.Claimed = true
			credit.ClaimedAt = &now

			txHash, err := s.chain.Transfer(ctx, credit.OwnerWallet, uint64(credit.Amount))
			if err != nil {
				return fmt.Errorf("withdrawal transfer failed: %w", err)
			}
			credit.ClaimTxHash = &txHash

			if err := r.UpdateWithdrawalCredit(ctx, credit); err != nil {
				return fmt.Errorf("failed to update withdrawal credit: %w", err)
			}

			total, err := safeAdd(result.Total, credit.Amount)
			if err != nil {
				return err
			}
			result.Total = total
			result.Credits = append(result.Credits, credit)
			result.TxHashes = append(result.TxHashes, txHash)

			if err := r.RecordEvent(ctx, &models.MarketplaceEvent{
				ID:          uuid.New(),
				Type:        models.EventWithdrawalClaimed,
				ListingID:   &credit.ListingID,
				ActorWallet: owner.WalletAddress,
				Amount:      credit.Amount,
				Details:     models.JSONB{"tx_hash": txHash},
			}); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Withdrawal of %d lamports claimed by %s (%d credits)", result.Total, owner.WalletAddress, len(result.Credits))

	return result, nil
}

// GetPendingWithdrawals lists unclaimed credits for the caller
func (s *EscrowService) GetPendingWithdrawals(ctx context.Context, ownerID uint) ([]*models.WithdrawalCredit, error) {
	return s.repo.GetPendingWithdrawals(ctx, ownerID)
}

// GetEscrow returns the escrow record for a listing
func (s *EscrowService) GetEscrow(ctx context.Context, listingID int64) (*models.Escrow, error) {
	return s.repo.GetEscrowByListingID(ctx, listingID)
}
