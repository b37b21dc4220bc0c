package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"marketplace-escrow/internal/models"
	"marketplace-escrow/internal/repository"

	"github.com/google/uuid"
)

type ListingService struct {
	repo   *repository.Repository
	chain  ChainLedger
	params Params
}

func NewListingService(repo *repository.Repository, chain ChainLedger, params Params) *ListingService {
	return &ListingService{
		repo:   repo,
		chain:  chain,
		params: params,
	}
}

// CreateListing creates a listing and its paired escrow account. The listing
// id doubles as the escrow derivation seed, so a collision fails closed
// instead of silently overwriting an existing sale.
func (s *ListingService) CreateListing(
	ctx context.Context,
	seller *models.User,
	req *models.CreateListingRequest,
) (*models.Listing, error) {
	duration := time.Duration(req.DurationSeconds) * time.Second
	if duration <= 0 || duration > maxListingDuration {
		return nil, ErrInvalidDuration
	}

	if req.StartingPrice <= 0 {
		return nil, errors.New("starting price must be positive")
	}

	if req.BuyNowPrice != nil && *req.BuyNowPrice < req.StartingPrice {
		return nil, errors.New("buy-now price must be at least the starting price")
	}

	assetType := models.AssetType(req.AssetType)
	switch assetType {
	case models.AssetTypeRepository, models.AssetTypeDomain, models.AssetTypeCredentials:
	case "":
		assetType = models.AssetTypeRepository
	default:
		return nil, fmt.Errorf("unknown asset type: %s", req.AssetType)
	}

	exists, err := s.repo.ListingExists(ctx, req.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check listing id: %w", err)
	}
	if exists {
		return nil, ErrListingExists
	}

	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}

	escrowAddr, bump, err := s.chain.DeriveEscrowAddress(req.ListingID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive escrow address: %w", err)
	}

	listing := &models.Listing{
		ID:            uuid.New(),
		ListingID:     req.ListingID,
		SellerID:      seller.ID,
		SellerWallet:  seller.WalletAddress,
		Title:         req.Title,
		AssetType:     assetType,
		StartingPrice: req.StartingPrice,
		BuyNowPrice:   req.BuyNowPrice,
		EndTime:       time.Now().Add(duration),
		Status:        models.ListingStatusActive,
		FeeBps:        cfg.PlatformFeeBps, // frozen for the life of the listing
	}

	escrow := &models.Escrow{
		ID:        uuid.New(),
		ListingID: req.ListingID,
		Address:   escrowAddr,
		Bump:      bump,
		Balance:   0,
	}

	err = s.repo.Transaction(ctx, func(r *repository.Repository) error {
		if err := r.CreateListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		if err := r.CreateEscrow(ctx, escrow); err != nil {
			return fmt.Errorf("failed to create escrow: %w", err)
		}
		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:          uuid.New(),
			Type:        models.EventListingCreated,
			ListingID:   &listing.ListingID,
			ActorWallet: seller.WalletAddress,
			Amount:      listing.StartingPrice,
			Details: models.JSONB{
				"title":      listing.Title,
				"asset_type": string(listing.AssetType),
				"end_time":   listing.EndTime,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Listing %d created by %s (escrow %s)", listing.ListingID, seller.WalletAddress, escrowAddr)

	return listing, nil
}

// minNextBid computes the lowest acceptable bid: the starting price for the
// first bid, then the current bid plus the larger of 5% and the fixed floor.
func (s *ListingService) minNextBid(listing *models.Listing) (int64, error) {
	if listing.BidCount == 0 {
		return listing.StartingPrice, nil
	}

	increment, err := feeFromBps(listing.CurrentBid, 500) // 5%
	if err != nil {
		return 0, err
	}
	if increment < s.params.MinBidFloor {
		increment = s.params.MinBidFloor
	}

	return safeAdd(listing.CurrentBid, increment)
}

// PlaceBid accepts a new high bid. The deposit is verified against the
// escrow address stored on the listing's escrow record, never against a
// caller-supplied destination. The displaced bidder's funds become a pull
// withdrawal credit so a hostile previous bidder can never block the bid.
func (s *ListingService) PlaceBid(
	ctx context.Context,
	bidder *models.User,
	listingID int64,
	req *models.PlaceBidRequest,
) (*models.Listing, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if cfg.Paused {
		return nil, ErrContractPaused
	}

	escrow, err := s.repo.GetEscrowByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}

	// The deposit must already sit at the escrow address before the bid is
	// accepted; a bad signature rejects the bid with no state change.
	sender, err := s.chain.VerifyDeposit(ctx, req.Signature, escrow.Address, uint64(req.Amount))
	if err != nil {
		return nil, fmt.Errorf("deposit verification failed: %w", err)
	}
	if sender != "" && sender != bidder.WalletAddress {
		return nil, ErrDepositSenderMismatch
	}

	var listing *models.Listing

	err = s.repo.Transaction(ctx, func(r *repository.Repository) error {
		used, err := r.DepositSignatureUsed(ctx, req.Signature)
		if err != nil {
			return fmt.Errorf("failed to check deposit signature: %w", err)
		}
		if used {
			return ErrDepositUsed
		}

		// Re-validate against current record state: a bid racing a
		// settlement or a higher bid fails cleanly here.
		listing, err = r.GetListingForUpdate(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}

		if listing.Status != models.ListingStatusActive {
			return ErrListingNotActive
		}

		now := time.Now()
		if !now.Before(listing.EndTime) {
			return ErrAuctionEnded
		}

		if bidder.ID == listing.SellerID {
			return ErrSellerCannotBid
		}

		minBid, err := s.minNextBid(listing)
		if err != nil {
			return err
		}
		if req.Amount < minBid {
			return ErrBidTooLow
		}

		escrow, err := r.GetEscrowForUpdate(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load escrow: %w", err)
		}

		if err := r.RecordDeposit(ctx, &models.EscrowDeposit{
			ID:        uuid.New(),
			Signature: req.Signature,
			ListingID: listingID,
			Sender:    bidder.WalletAddress,
			Amount:    req.Amount,
			Purpose:   models.DepositPurposeBid,
		}); err != nil {
			return fmt.Errorf("failed to consume deposit signature: %w", err)
		}

		// Remember the displaced bidder before overwriting the record.
		prevBidderID := listing.CurrentBidderID
		prevBidderWallet := listing.CurrentBidderWallet
		prevAmount := listing.CurrentBid

		// Effects first: the authoritative record moves before any fund
		// scheduling derived from the old state.
		listing.CurrentBid = req.Amount
		listing.CurrentBidderID = &bidder.ID
		wallet := bidder.WalletAddress
		listing.CurrentBidderWallet = &wallet
		listing.BidCount++

		// Anti-snipe: a late bid pushes the end time out. No cap; the
		// rising minimum increment prices repeat extensions.
		if listing.EndTime.Sub(now) <= s.params.AntiSnipeWindow {
			listing.EndTime = listing.EndTime.Add(s.params.AntiSnipeExtend)
		}

		if err := r.UpdateListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}

		newBalance, err := safeAdd(escrow.Balance, req.Amount)
		if err != nil {
			return err
		}
		escrow.Balance = newBalance
		if err := r.UpdateEscrow(ctx, escrow); err != nil {
			return fmt.Errorf("failed to update escrow: %w", err)
		}

		// The displaced bidder gets a claim record, never a push transfer.
		if prevBidderID != nil && prevAmount > 0 {
			credit := &models.WithdrawalCredit{
				ID:          uuid.New(),
				OwnerID:     *prevBidderID,
				OwnerWallet: *prevBidderWallet,
				ListingID:   listingID,
				Amount:      prevAmount,
			}
			if err := r.CreateWithdrawalCredit(ctx, credit); err != nil {
				return fmt.Errorf("failed to create withdrawal credit: %w", err)
			}
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:          uuid.New(),
			Type:        models.EventBidPlaced,
			ListingID:   &listing.ListingID,
			ActorWallet: bidder.WalletAddress,
			Amount:      req.Amount,
			Details: models.JSONB{
				"bid_count": listing.BidCount,
				"end_time":  listing.EndTime,
			},
		})
	})
	if err != nil {
		if depositStranded(err) {
			s.reclaimStrandedDeposit(ctx, bidder, listingID, req.Amount, req.Signature)
		}
		return nil, err
	}

	log.Printf("Bid %d placed on listing %d by %s", req.Amount, listingID, bidder.WalletAddress)

	return listing, nil
}

// BuyNow purchases the listing instantly at the exact buy-now price,
// bypassing the remaining auction time.
func (s *ListingService) BuyNow(
	ctx context.Context,
	buyer *models.User,
	listingID int64,
	req *models.BuyNowRequest,
) (*models.SaleTransaction, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load marketplace config: %w", err)
	}
	if cfg.Paused {
		return nil, ErrContractPaused
	}

	escrow, err := s.repo.GetEscrowByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load escrow: %w", err)
	}

	sender, err := s.chain.VerifyDeposit(ctx, req.Signature, escrow.Address, uint64(req.Amount))
	if err != nil {
		return nil, fmt.Errorf("deposit verification failed: %w", err)
	}
	if sender != "" && sender != buyer.WalletAddress {
		return nil, ErrDepositSenderMismatch
	}

	var saleTx *models.SaleTransaction

	err = s.repo.Transaction(ctx, func(r *repository.Repository) error {
		used, err := r.DepositSignatureUsed(ctx, req.Signature)
		if err != nil {
			return fmt.Errorf("failed to check deposit signature: %w", err)
		}
		if used {
			return ErrDepositUsed
		}

		listing, err := r.GetListingForUpdate(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}

		if listing.Status != models.ListingStatusActive {
			return ErrListingNotActive
		}
		if !time.Now().Before(listing.EndTime) {
			return ErrAuctionEnded
		}
		if buyer.ID == listing.SellerID {
			return ErrSellerCannotBid
		}
		if listing.BuyNowPrice == nil {
			return ErrBuyNowUnavailable
		}
		if req.Amount != *listing.BuyNowPrice {
			return ErrInvalidBuyNowAmount
		}

		escrow, err := r.GetEscrowForUpdate(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load escrow: %w", err)
		}

		if err := r.RecordDeposit(ctx, &models.EscrowDeposit{
			ID:        uuid.New(),
			Signature: req.Signature,
			ListingID: listingID,
			Sender:    buyer.WalletAddress,
			Amount:    req.Amount,
			Purpose:   models.DepositPurposeBuyNow,
		}); err != nil {
			return fmt.Errorf("failed to consume deposit signature: %w", err)
		}

		prevBidderID := listing.CurrentBidderID
		prevBidderWallet := listing.CurrentBidderWallet
		prevAmount := listing.CurrentBid

		listing.Status = models.ListingStatusSold
		if err := r.UpdateListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}

		newBalance, err := safeAdd(escrow.Balance, req.Amount)
		if err != nil {
			return err
		}
		escrow.Balance = newBalance
		if err := r.UpdateEscrow(ctx, escrow); err != nil {
			return fmt.Errorf("failed to update escrow: %w", err)
		}

		// A standing high bidder is displaced by the instant purchase.
		if prevBidderID != nil && prevAmount > 0 {
			credit := &models.WithdrawalCredit{
				ID:          uuid.New(),
				OwnerID:     *prevBidderID,
				OwnerWallet: *prevBidderWallet,
				ListingID:   listingID,
				Amount:      prevAmount,
			}
			if err := r.CreateWithdrawalCredit(ctx, credit); err != nil {
				return fmt.Errorf("failed to create withdrawal credit: %w", err)
			}
		}

		saleTx, err = s.createSaleTransaction(ctx, r, listing, buyer.ID, buyer.WalletAddress, req.Amount)
		if err != nil {
			return err
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:            uuid.New(),
			Type:          models.EventBuyNow,
			ListingID:     &listing.ListingID,
			TransactionID: &saleTx.ID,
			ActorWallet:   buyer.WalletAddress,
			Amount:        req.Amount,
		})
	})
	if err != nil {
		if depositStranded(err) {
			s.reclaimStrandedDeposit(ctx, buyer, listingID, req.Amount, req.Signature)
		}
		return nil, err
	}

	log.Printf("Listing %d bought now by %s for %d", listingID, buyer.WalletAddress, req.Amount)

	return saleTx, nil
}

// depositStranded reports whether a rejection happened after the on-chain
// deposit was verified, leaving real funds at the escrow address with no
// accepted bid behind them.
func depositStranded(err error) bool {
	for _, target := range []error{
		ErrListingNotActive,
		ErrAuctionEnded,
		ErrSellerCannotBid,
		ErrBidTooLow,
		ErrBuyNowUnavailable,
		ErrInvalidBuyNowAmount,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// reclaimStrandedDeposit converts a verified deposit whose bid or purchase
// was rejected into a withdrawal credit. The signature is consumed and the
// escrow balance credited in the same transaction, so the counted balance
// keeps matching real custody and the depositor keeps a claim on the funds.
func (s *ListingService) reclaimStrandedDeposit(
	ctx context.Context,
	depositor *models.User,
	listingID int64,
	amount int64,
	signature string,
) {
	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		used, err := r.DepositSignatureUsed(ctx, signature)
		if err != nil {
			return err
		}
		if used {
			return nil
		}

		escrow, err := r.GetEscrowForUpdate(ctx, listingID)
		if err != nil {
			return err
		}

		if err := r.RecordDeposit(ctx, &models.EscrowDeposit{
			ID:        uuid.New(),
			Signature: signature,
			ListingID: listingID,
			Sender:    depositor.WalletAddress,
			Amount:    amount,
			Purpose:   models.DepositPurposeReclaimed,
		}); err != nil {
			return err
		}

		newBalance, err := safeAdd(escrow.Balance, amount)
		if err != nil {
			return err
		}
		escrow.Balance = newBalance
		if err := r.UpdateEscrow(ctx, escrow); err != nil {
			return err
		}

		if err := r.CreateWithdrawalCredit(ctx, &models.WithdrawalCredit{
			ID:          uuid.New(),
			OwnerID:     depositor.ID,
			OwnerWallet: depositor.WalletAddress,
			ListingID:   listingID,
			Amount:      amount,
		}); err != nil {
			return err
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:          uuid.New(),
			Type:        models.EventDepositReclaimed,
			ListingID:   &listingID,
			ActorWallet: depositor.WalletAddress,
			Amount:      amount,
			Details:     models.JSONB{"signature": signature},
		})
	})
	if err != nil {
		log.Printf("Failed to reclaim stranded deposit %s on listing %d: %v", signature, listingID, err)
	}
}

// SettleAuction closes an ended auction: the final high bid becomes a sale
// transaction, or the listing is cancelled if nobody bid. Only the seller or
// the high bidder may settle, so an unrelated third party has no front-run
// incentive here.
func (s *ListingService) SettleAuction(
	ctx context.Context,
	caller *models.User,
	listingID int64,
) (*models.SaleTransaction, error) {
	var saleTx *models.SaleTransaction

	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		listing, err := r.GetListingForUpdate(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}

		// Exactly-once: a second settle lands here.
		if listing.Status != models.ListingStatusActive {
			return ErrListingNotActive
		}
		if time.Now().Before(listing.EndTime) {
			return ErrAuctionNotEnded
		}

		isSeller := caller.ID == listing.SellerID
		isHighBidder := listing.CurrentBidderID != nil && caller.ID == *listing.CurrentBidderID
		if !isSeller && !isHighBidder {
			return ErrNotSettleAuthority
		}

		if listing.BidCount == 0 {
			listing.Status = models.ListingStatusCancelled
			if err := r.UpdateListing(ctx, listing); err != nil {
				return fmt.Errorf("failed to cancel listing: %w", err)
			}
			return r.RecordEvent(ctx, &models.MarketplaceEvent{
				ID:          uuid.New(),
				Type:        models.EventListingCancelled,
				ListingID:   &listing.ListingID,
				ActorWallet: caller.WalletAddress,
			})
		}

		listing.Status = models.ListingStatusSold
		if err := r.UpdateListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to update listing: %w", err)
		}

		saleTx, err = s.createSaleTransaction(
			ctx, r, listing,
			*listing.CurrentBidderID, *listing.CurrentBidderWallet,
			listing.CurrentBid,
		)
		if err != nil {
			return err
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:            uuid.New(),
			Type:          models.EventListingSettled,
			ListingID:     &listing.ListingID,
			TransactionID: &saleTx.ID,
			ActorWallet:   caller.WalletAddress,
			Amount:        listing.CurrentBid,
		})
	})
	if err != nil {
		return nil, err
	}

	if saleTx != nil {
		log.Printf("Listing %d settled at %d (transaction %s)", listingID, saleTx.SalePrice, saleTx.ID)
	} else {
		log.Printf("Listing %d closed with no bids", listingID)
	}

	return saleTx, nil
}

// CancelListing withdraws an active listing that has received no bids yet.
func (s *ListingService) CancelListing(ctx context.Context, seller *models.User, listingID int64) error {
	return s.repo.Transaction(ctx, func(r *repository.Repository) error {
		listing, err := r.GetListingForUpdate(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}

		if listing.SellerID != seller.ID {
			return ErrNotParticipant
		}
		if listing.Status != models.ListingStatusActive {
			return ErrListingNotActive
		}
		if listing.BidCount > 0 {
			return errors.New("cannot cancel a listing with bids")
		}

		listing.Status = models.ListingStatusCancelled
		if err := r.UpdateListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to cancel listing: %w", err)
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:          uuid.New(),
			Type:        models.EventListingCancelled,
			ListingID:   &listing.ListingID,
			ActorWallet: seller.WalletAddress,
		})
	})
}

// createSaleTransaction builds the post-sale record and its hand-off
// checklist. Fee and proceeds come from the listing's frozen fee rate and
// always sum to the sale price.
func (s *ListingService) createSaleTransaction(
	ctx context.Context,
	r *repository.Repository,
	listing *models.Listing,
	buyerID uint,
	buyerWallet string,
	salePrice int64,
) (*models.SaleTransaction, error) {
	platformFee, err := feeFromBps(salePrice, listing.FeeBps)
	if err != nil {
		return nil, err
	}
	sellerProceeds, err := safeSub(salePrice, platformFee)
	if err != nil {
		return nil, err
	}

	saleTx := &models.SaleTransaction{
		ID:               uuid.New(),
		ListingID:        listing.ListingID,
		BuyerID:          buyerID,
		BuyerWallet:      buyerWallet,
		SellerID:         listing.SellerID,
		SellerWallet:     listing.SellerWallet,
		SalePrice:        salePrice,
		PlatformFee:      platformFee,
		SellerProceeds:   sellerProceeds,
		TransferDeadline: time.Now().Add(s.params.TransferPeriod),
		Status:           models.SaleStatusInEscrow,
	}

	if err := r.CreateSaleTransaction(ctx, saleTx); err != nil {
		return nil, fmt.Errorf("failed to create sale transaction: %w", err)
	}

	items := checklistForAsset(saleTx.ID, listing.AssetType)
	if err := r.CreateChecklistItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}

	return saleTx, nil
}

// checklistForAsset returns the fixed hand-off checklist for an asset type.
// Optional items can be confirmed but do not gate finalization.
func checklistForAsset(txID uuid.UUID, assetType models.AssetType) []*models.ChecklistItem {
	item := func(key, name string, required bool) *models.ChecklistItem {
		return &models.ChecklistItem{
			ID:            uuid.New(),
			TransactionID: txID,
			ItemKey:       key,
			Name:          name,
			Required:      required,
		}
	}

	switch assetType {
	case models.AssetTypeDomain:
		return []*models.ChecklistItem{
			item(models.ChecklistItemDomain, "Domain transfer", true),
			item(models.ChecklistItemCredentials, "Credential hand-off", false),
		}
	case models.AssetTypeCredentials:
		return []*models.ChecklistItem{
			item(models.ChecklistItemCredentials, "Credential hand-off", true),
		}
	default: // repository sales
		return []*models.ChecklistItem{
			item(models.ChecklistItemRepository, "Source repository transfer", true),
			item(models.ChecklistItemCredentials, "Credential hand-off", true),
			item(models.ChecklistItemDomain, "Domain transfer", false),
		}
	}
}

// GetListing retrieves a listing by its stable id
func (s *ListingService) GetListing(ctx context.Context, listingID int64) (*models.Listing, error) {
	return s.repo.GetListingByID(ctx, listingID)
}

// GetActiveListings retrieves active listings with pagination
func (s *ListingService) GetActiveListings(ctx context.Context, limit, offset int) ([]*models.Listing, int64, error) {
	return s.repo.GetActiveListings(ctx, limit, offset)
}

// GetSellerListings retrieves all listings for a seller
func (s *ListingService) GetSellerListings(ctx context.Context, sellerID uint, limit, offset int) ([]*models.Listing, error) {
	return s.repo.GetSellerListings(ctx, sellerID, limit, offset)
}

// GetExpiredActiveListings lists auctions past end time awaiting settlement
func (s *ListingService) GetExpiredActiveListings(ctx context.Context, limit int) ([]*models.Listing, error) {
	return s.repo.GetExpiredActiveListings(ctx, limit)
}

// ReclaimExpired closes an expired auction that attracted no bids, freeing
// the listing id without requiring the seller to come back. Listings with a
// standing bid are left for SettleAuction, which only the sale parties may
// call.
func (s *ListingService) ReclaimExpired(ctx context.Context, listingID int64) error {
	return s.repo.Transaction(ctx, func(r *repository.Repository) error {
		listing, err := r.GetListingForUpdate(ctx, listingID)
		if err != nil {
			return fmt.Errorf("failed to load listing: %w", err)
		}

		if listing.Status != models.ListingStatusActive {
			return ErrListingNotActive
		}
		if time.Now().Before(listing.EndTime) {
			return ErrAuctionNotEnded
		}
		if listing.BidCount > 0 {
			return ErrNotSettleAuthority
		}

		listing.Status = models.ListingStatusReclaimed
		if err := r.UpdateListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to reclaim listing: %w", err)
		}

		return r.RecordEvent(ctx, &models.MarketplaceEvent{
			ID:        uuid.New(),
			Type:      models.EventListingCancelled,
			ListingID: &listing.ListingID,
			Details:   models.JSONB{"reclaimed": true},
		})
	})
}

// GetEvents returns the audit feed, optionally scoped to one listing
func (s *ListingService) GetEvents(ctx context.Context, listingID *int64, limit, offset int) ([]*models.MarketplaceEvent, error) {
	return s.repo.GetEvents(ctx, listingID, limit, offset)
}
