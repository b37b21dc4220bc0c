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

type DisputeService struct {
	repo  *repository.Repository
	chain ChainLedger
}

func NewDisputeService(repo *repository.Repository, chain ChainLedger) *DisputeService {
	return &DisputeService{
		repo:  repo,
		chain: chain,
	}
}

// OpenDispute lets either party contest an in-escrow sale. The initiator
// deposits a dispute fee up front, proportional to the sale price; it is
// held apart from the escrow principal and returned to whichever party the
// ruling favors. Opening is allowed while paused so a frozen marketplace
// cannot trap a contested sale.
func (s *DisputeService) OpenDispute(
	ctx context.Context,
	initiator *models.User,
	txID uuid.UUID,
	req *models.OpenDisputeRequest,
) (*models.Dispute, error) {
	if len(req.Reason) > models.MaxDisputeReasonLen {
		return nil, ErrReasonTooLong
	}

	saleTx, err := s.repo.GetSaleTransactionByID(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	if initiator.ID != saleTx.BuyerID && initiator.ID != saleTx.SellerID {
		return nil, ErrNotParticipant
	}
	if saleTx.Status != models.SaleStatusInEscrow {
		return nil, ErrTransactionNotOpen
	}

	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}

	feeAmount, err := feeFromBps(saleTx.SalePrice, cfg.DisputeFeeBps)
	if err != nil {
		return nil, err
	}

	escrow, err := s.repo.GetEscrowByListingID(ctx, saleTx.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}

	// The fee lands at the escrow address but is tracked on the dispute
	// record, not the escrow balance. Principal accounting stays untouched.
	if feeAmount > 0 {
		sender, err := s.chain.VerifyDeposit(ctx, req.Signature, escrow.Address, uint64(feeAmount))
		if err != nil {
			return nil, fmt.Errorf("dispute fee verification failed: %w", err)
		}
		if sender != "" && sender != initiator.WalletAddress {
			return nil, ErrDepositSenderMismatch
		}
	}

	dispute := &models.Dispute{
		ID:            uuid.New(),
		TransactionID: txID,
		InitiatorID:   initiator.ID,
		Reason:        req.Reason,
		FeeAmount:     feeAmount,
		Status:        models.DisputeStatusOpen,
	}

	err = s.repo.Transaction(ctx, func(r *repository.Repository) error {
		exists, err := r.DisputeExists(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to check dispute: %w", err)
		}
		if exists {
			return ErrDisputeExists
		}

		saleTx, err = r.GetSaleTransactionForUpdate(ctx, txID)
		if err != nil {
			return fmt.Errorf("failed to load transaction: %w", err)
		}
		if saleTx.Status != models.SaleStatusInEscrow {
			return ErrTransactionNotOpen
		}

		if feeAmount > 0 {
			used, err := r.DepositSignatureUsed(ctx, req.Signature)
			if err != nil {
				return fmt.Errorf("failed to check deposit signature: %w", err)
			}
			if used {
				return ErrDepositUsed
			}
			if err := r.RecordDeposit(ctx, &models.EscrowDeposit{
				ID:        uuid.New(),
				Signature: req.Signature,
				ListingID: saleTx.ListingID,
				Sender:    initiator.WalletAddress,
				Amount:    feeAmount,
				Purpose:   models.DepositPurposeDisputeFee,
			}); err != nil {
				return fmt.Errorf("failed to consume deposit signature: %w", err)
			}
		}

		saleTx.Status = models.SaleStatusDisputed
		if err := r.UpdateSaleTransaction(ctx, saleTx); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		if err := r.CreateDispute(ctx, dispute); err != nil {
			return fmt.Errorf("failed to create dispute: %w", err)
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:            uuid.New(),
			Type:          models.EventDisputeOpened,
			ListingID:     &saleTx.ListingID,
			TransactionID: &saleTx.ID,
			ActorWallet:   initiator.WalletAddress,
			Amount:        feeAmount,
			Details:       models.JSONB{"reason": req.Reason},
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Dispute %s opened on transaction %s by %s", dispute.ID, txID, initiator.WalletAddress)

	return dispute, nil
}

// ResolveDispute applies the admin's ruling and releases escrowed funds
// accordingly. A partial split must not exceed the sale price; any remainder
// goes to the treasury. The dispute fee follows the prevailing party, with
// ties favoring the buyer. Resolution works while paused.
func (s *DisputeService) ResolveDispute(
	ctx context.Context,
	adminWallet string,
	disputeID uuid.UUID,
	req *models.ResolveDisputeRequest,
) (*models.Dispute, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if adminWallet != cfg.AdminWallet {
		return nil, ErrNotAdmin
	}

	var dispute *models.Dispute

	err = s.repo.Transaction(ctx, func(r *repository.Repository) error {
		dispute, err = r.GetDisputeForUpdate(ctx, disputeID)
		if err != nil {
			return fmt.Errorf("failed to load dispute: %w", err)
		}
		if dispute.Status != models.DisputeStatusOpen {
			return ErrDisputeResolved
		}

		saleTx, err := r.GetSaleTransactionForUpdate(ctx, dispute.TransactionID)
		if err != nil {
			return fmt.Errorf("failed to load transaction: %w", err)
		}
		if saleTx.Status != models.SaleStatusDisputed {
			return ErrTransactionNotOpen
		}

		var buyerAmount, sellerAmount int64

		resolution := models.ResolutionKind(req.Resolution)
		switch resolution {
		case models.ResolutionFullRefundBuyer:
			buyerAmount = saleTx.SalePrice
		case models.ResolutionFullRefundSeller:
			sellerAmount = saleTx.SalePrice
		case models.ResolutionPartialRefund:
			if req.BuyerAmount == nil || req.SellerAmount == nil {
				return ErrInvalidRefundAmounts
			}
			buyerAmount = *req.BuyerAmount
			sellerAmount = *req.SellerAmount
			if buyerAmount < 0 || sellerAmount < 0 {
				return ErrInvalidRefundAmounts
			}
			split, err := safeAdd(buyerAmount, sellerAmount)
			if err != nil {
				return err
			}
			if split > saleTx.SalePrice {
				return ErrInvalidRefundAmounts
			}
		default:
			return ErrInvalidResolution
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

		// The fee follows the larger share; an even split goes to the buyer.
		buyerPrevails := buyerAmount >= sellerAmount
		feeAmount := dispute.FeeAmount

		if buyerPrevails {
			buyerAmount, err = safeAdd(buyerAmount, feeAmount)
		} else {
			sellerAmount, err = safeAdd(sellerAmount, feeAmount)
		}
		if err != nil {
			return err
		}

		if buyerAmount > 0 {
			hash, err := s.chain.Transfer(ctx, saleTx.BuyerWallet, uint64(buyerAmount))
			if err != nil {
				return fmt.Errorf("buyer payout failed: %w", err)
			}
			saleTx.RefundTxHash = &hash
		}
		if sellerAmount > 0 {
			hash, err := s.chain.Transfer(ctx, saleTx.SellerWallet, uint64(sellerAmount))
			if err != nil {
				return fmt.Errorf("seller payout failed: %w", err)
			}
			saleTx.PayoutTxHash = &hash
		}

		// Whatever the split leaves unassigned accrues to the treasury.
		remainder := saleTx.SalePrice + feeAmount - buyerAmount - sellerAmount
		if remainder > 0 {
			hash, err := s.chain.Transfer(ctx, cfg.TreasuryWallet, uint64(remainder))
			if err != nil {
				return fmt.Errorf("treasury payout failed: %w", err)
			}
			saleTx.FeeTxHash = &hash
		}

		now := time.Now()
		saleTx.Status = models.SaleStatusCompleted
		saleTx.CompletedAt = &now
		if err := r.UpdateSaleTransaction(ctx, saleTx); err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}

		dispute.Status = models.DisputeStatusResolved
		dispute.Resolution = &resolution
		dispute.BuyerAmount = &buyerAmount
		dispute.SellerAmount = &sellerAmount
		dispute.ResolvedBy = &adminWallet
		dispute.ResolvedAt = &now
		if err := r.UpdateDispute(ctx, dispute); err != nil {
			return fmt.Errorf("failed to update dispute: %w", err)
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:            uuid.New(),
			Type:          models.EventDisputeResolved,
			ListingID:     &saleTx.ListingID,
			TransactionID: &saleTx.ID,
			ActorWallet:   adminWallet,
			Amount:        saleTx.SalePrice,
			Details: models.JSONB{
				"resolution":    string(resolution),
				"buyer_amount":  buyerAmount,
				"seller_amount": sellerAmount,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Dispute %s resolved %s by %s", dispute.ID, *dispute.Resolution, adminWallet)

	return dispute, nil
}

// GetDispute retrieves a dispute by id
func (s *DisputeService) GetDispute(ctx context.Context, disputeID uuid.UUID) (*models.Dispute, error) {
	return s.repo.GetDisputeByID(ctx, disputeID)
}

// GetOpenDisputes lists disputes awaiting arbitration
func (s *DisputeService) GetOpenDisputes(ctx context.Context, limit, offset int) ([]*models.Dispute, error) {
	return s.repo.GetOpenDisputes(ctx, limit, offset)
}
