package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace-escrow/internal/models"
)

func TestCreateListing(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")

	listing := env.createListing(t, seller, 1, 100_000, nil)

	if listing.Status != models.ListingStatusActive {
		t.Errorf("expected ACTIVE, got %s", listing.Status)
	}
	if listing.FeeBps != 250 {
		t.Errorf("expected fee snapshot 250, got %d", listing.FeeBps)
	}
	if listing.BidCount != 0 || listing.CurrentBid != 0 {
		t.Errorf("new listing should have no bids")
	}

	escrow, err := env.repo.GetEscrowByListingID(context.Background(), 1)
	if err != nil {
		t.Fatalf("escrow not created: %v", err)
	}
	if escrow.Balance != 0 {
		t.Errorf("expected zero escrow balance, got %d", escrow.Balance)
	}
	if escrow.Address != "escrow-1" {
		t.Errorf("unexpected escrow address %s", escrow.Address)
	}
}

func TestCreateListingDuplicateID(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	env.createListing(t, seller, 1, 100_000, nil)

	_, err := env.listing.CreateListing(context.Background(), seller, &models.CreateListingRequest{
		ListingID:       1,
		Title:           "Duplicate",
		StartingPrice:   50_000,
		DurationSeconds: 3600,
	})
	if !errors.Is(err, ErrListingExists) {
		t.Errorf("expected ErrListingExists, got %v", err)
	}
}

func TestCreateListingInvalidDuration(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")

	for _, seconds := range []int64{-1, 31 * 24 * 3600} {
		_, err := env.listing.CreateListing(context.Background(), seller, &models.CreateListingRequest{
			ListingID:       10,
			Title:           "Bad duration",
			StartingPrice:   100_000,
			DurationSeconds: seconds,
		})
		if !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("duration %d: expected ErrInvalidDuration, got %v", seconds, err)
		}
	}
}

func TestFeeSnapshotSurvivesRateChange(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	listing := env.createListing(t, seller, 1, 100_000, nil)

	if _, err := env.admin.SetPlatformFee(context.Background(), testAdminWallet, 500); err != nil {
		t.Fatalf("failed to change fee: %v", err)
	}

	reloaded, err := env.listing.GetListing(context.Background(), listing.ListingID)
	if err != nil {
		t.Fatalf("failed to reload listing: %v", err)
	}
	if reloaded.FeeBps != 250 {
		t.Errorf("existing listing fee changed: got %d, want 250", reloaded.FeeBps)
	}

	later := env.createListing(t, seller, 2, 100_000, nil)
	if later.FeeBps != 500 {
		t.Errorf("new listing should snapshot 500, got %d", later.FeeBps)
	}
}

func TestPlaceBidFirstBidRules(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")
	env.createListing(t, seller, 1, 100_000, nil)

	_, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 99_999, Signature: "sig1",
	})
	if !errors.Is(err, ErrBidTooLow) {
		t.Errorf("below starting price: expected ErrBidTooLow, got %v", err)
	}

	listing, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig2",
	})
	if err != nil {
		t.Fatalf("first bid at starting price should succeed: %v", err)
	}
	if listing.CurrentBid != 100_000 || listing.BidCount != 1 {
		t.Errorf("bid not recorded: bid=%d count=%d", listing.CurrentBid, listing.BidCount)
	}

	// The rejected bid's verified deposit still landed on chain, so it is
	// held in escrow as a withdrawal credit alongside the standing bid.
	if env.escrowBalance(t, 1) != 199_999 {
		t.Errorf("escrow balance %d, want 199999", env.escrowBalance(t, 1))
	}
	credits, err := env.escrow.GetPendingWithdrawals(context.Background(), bidder.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(credits) != 1 || credits[0].Amount != 99_999 {
		t.Errorf("rejected bid should leave a 99999 credit, got %+v", credits)
	}
}

func TestPlaceBidMinimumIncrement(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	a := env.createUser(t, "bidder-a")
	b := env.createUser(t, "bidder-b")
	env.createListing(t, seller, 1, 100_000, nil)

	if _, err := env.listing.PlaceBid(context.Background(), a, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	}); err != nil {
		t.Fatalf("first bid failed: %v", err)
	}

	// 5% of 100_000 is 5_000, above the 1_000 floor, so minimum is 105_000.
	_, err := env.listing.PlaceBid(context.Background(), b, 1, &models.PlaceBidRequest{
		Amount: 104_999, Signature: "sig2",
	})
	if !errors.Is(err, ErrBidTooLow) {
		t.Errorf("expected ErrBidTooLow at 104999, got %v", err)
	}

	if _, err := env.listing.PlaceBid(context.Background(), b, 1, &models.PlaceBidRequest{
		Amount: 105_000, Signature: "sig3",
	}); err != nil {
		t.Fatalf("bid at exact minimum should succeed: %v", err)
	}
}

func TestPlaceBidFloorDominatesSmallBids(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	a := env.createUser(t, "bidder-a")
	b := env.createUser(t, "bidder-b")
	// 5% of 10_000 is 500, below the 1_000 floor, so the floor applies.
	env.createListing(t, seller, 1, 10_000, nil)

	if _, err := env.listing.PlaceBid(context.Background(), a, 1, &models.PlaceBidRequest{
		Amount: 10_000, Signature: "sig1",
	}); err != nil {
		t.Fatalf("first bid failed: %v", err)
	}

	_, err := env.listing.PlaceBid(context.Background(), b, 1, &models.PlaceBidRequest{
		Amount: 10_999, Signature: "sig2",
	})
	if !errors.Is(err, ErrBidTooLow) {
		t.Errorf("expected ErrBidTooLow below floor increment, got %v", err)
	}

	if _, err := env.listing.PlaceBid(context.Background(), b, 1, &models.PlaceBidRequest{
		Amount: 11_000, Signature: "sig3",
	}); err != nil {
		t.Fatalf("bid at floor increment should succeed: %v", err)
	}
}

func TestSellerCannotBid(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	env.createListing(t, seller, 1, 100_000, nil)

	_, err := env.listing.PlaceBid(context.Background(), seller, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	})
	if !errors.Is(err, ErrSellerCannotBid) {
		t.Errorf("expected ErrSellerCannotBid, got %v", err)
	}
}

func TestPlaceBidRejectsBadDeposit(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")
	env.createListing(t, seller, 1, 100_000, nil)

	_, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "bad-sig",
	})
	if err == nil {
		t.Fatal("unverified deposit should reject the bid")
	}

	listing, _ := env.listing.GetListing(context.Background(), 1)
	if listing.BidCount != 0 {
		t.Errorf("rejected bid must not mutate the listing")
	}
	if env.escrowBalance(t, 1) != 0 {
		t.Errorf("rejected bid must not credit escrow")
	}
}

func TestDepositSignatureSingleUse(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	a := env.createUser(t, "bidder-a")
	b := env.createUser(t, "bidder-b")
	buyNow := int64(500_000)
	env.createListing(t, seller, 1, 100_000, &buyNow)

	if _, err := env.listing.PlaceBid(context.Background(), a, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "same-sig",
	}); err != nil {
		t.Fatal(err)
	}

	// The same on-chain deposit cannot back a second bid.
	_, err := env.listing.PlaceBid(context.Background(), b, 1, &models.PlaceBidRequest{
		Amount: 110_000, Signature: "same-sig",
	})
	if !errors.Is(err, ErrDepositUsed) {
		t.Errorf("replayed bid deposit: expected ErrDepositUsed, got %v", err)
	}

	// Nor a buy-now.
	_, err = env.listing.BuyNow(context.Background(), b, 1, &models.BuyNowRequest{
		Amount: 500_000, Signature: "same-sig",
	})
	if !errors.Is(err, ErrDepositUsed) {
		t.Errorf("replayed buy-now deposit: expected ErrDepositUsed, got %v", err)
	}

	listing, _ := env.listing.GetListing(context.Background(), 1)
	if listing.CurrentBid != 100_000 || listing.BidCount != 1 {
		t.Errorf("replays must not move the listing: bid=%d count=%d", listing.CurrentBid, listing.BidCount)
	}
	if env.escrowBalance(t, 1) != 100_000 {
		t.Errorf("escrow balance %d, want 100000: replays must not inflate custody", env.escrowBalance(t, 1))
	}
}

func TestPlaceBidRejectsForeignDeposit(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")
	env.createListing(t, seller, 1, 100_000, nil)

	// A deposit attributed to someone else cannot back this bidder's bid.
	env.chain.setSender("sig1", "someone-else")
	_, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	})
	if !errors.Is(err, ErrDepositSenderMismatch) {
		t.Errorf("expected ErrDepositSenderMismatch, got %v", err)
	}
	if env.escrowBalance(t, 1) != 0 {
		t.Errorf("mismatched deposit must not credit escrow")
	}

	env.chain.setSender("sig2", bidder.WalletAddress)
	if _, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig2",
	}); err != nil {
		t.Fatalf("own deposit should verify: %v", err)
	}
}

func TestRejectedBidDepositReclaimed(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	a := env.createUser(t, "bidder-a")
	b := env.createUser(t, "bidder-b")
	env.createListing(t, seller, 1, 100_000, nil)

	if _, err := env.listing.PlaceBid(context.Background(), a, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	}); err != nil {
		t.Fatal(err)
	}

	// The losing bid's deposit already landed at the escrow address, so the
	// rejection leaves a withdrawal credit instead of stranding the funds.
	_, err := env.listing.PlaceBid(context.Background(), b, 1, &models.PlaceBidRequest{
		Amount: 101_000, Signature: "sig2",
	})
	if !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("expected ErrBidTooLow, got %v", err)
	}

	if env.escrowBalance(t, 1) != 201_000 {
		t.Errorf("escrow balance %d, want 201000", env.escrowBalance(t, 1))
	}
	credits, err := env.escrow.GetPendingWithdrawals(context.Background(), b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(credits) != 1 || credits[0].Amount != 101_000 {
		t.Fatalf("losing bidder should hold a 101000 credit, got %+v", credits)
	}

	// The reclaimed signature is consumed like any other.
	_, err = env.listing.PlaceBid(context.Background(), b, 1, &models.PlaceBidRequest{
		Amount: 105_000, Signature: "sig2",
	})
	if !errors.Is(err, ErrDepositUsed) {
		t.Errorf("reclaimed signature replay: expected ErrDepositUsed, got %v", err)
	}

	result, err := env.escrow.WithdrawFunds(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 101_000 {
		t.Errorf("withdrawal total %d, want 101000", result.Total)
	}
	if env.escrowBalance(t, 1) != 100_000 {
		t.Errorf("escrow balance %d after reclaim withdrawal, want 100000", env.escrowBalance(t, 1))
	}
}

func TestOutbidCreatesWithdrawalCredit(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	a := env.createUser(t, "bidder-a")
	b := env.createUser(t, "bidder-b")
	env.createListing(t, seller, 1, 100_000, nil)

	if _, err := env.listing.PlaceBid(context.Background(), a, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.listing.PlaceBid(context.Background(), b, 1, &models.PlaceBidRequest{
		Amount: 110_000, Signature: "sig2",
	}); err != nil {
		t.Fatal(err)
	}

	credits, err := env.escrow.GetPendingWithdrawals(context.Background(), a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(credits) != 1 {
		t.Fatalf("expected 1 credit for displaced bidder, got %d", len(credits))
	}
	if credits[0].Amount != 100_000 {
		t.Errorf("credit amount %d, want 100000", credits[0].Amount)
	}

	// Escrow holds both deposits until the loser withdraws.
	if env.escrowBalance(t, 1) != 210_000 {
		t.Errorf("escrow balance %d, want 210000", env.escrowBalance(t, 1))
	}
}

func TestAntiSnipeExtension(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")

	// End time 5 minutes out, inside the 10 minute window.
	listing, err := env.listing.CreateListing(context.Background(), seller, &models.CreateListingRequest{
		ListingID:       1,
		Title:           "Sniped",
		StartingPrice:   100_000,
		DurationSeconds: 300,
	})
	if err != nil {
		t.Fatal(err)
	}
	before := listing.EndTime

	updated, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	})
	if err != nil {
		t.Fatal(err)
	}

	extended := updated.EndTime.Sub(before)
	if extended != 10*time.Minute {
		t.Errorf("expected 10m extension, got %v", extended)
	}
}

func TestNoAntiSnipeOutsideWindow(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")

	listing := env.createListing(t, seller, 1, 100_000, nil) // ends in 1 hour
	before := listing.EndTime

	updated, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	})
	if err != nil {
		t.Fatal(err)
	}

	if !updated.EndTime.Equal(before) {
		t.Errorf("early bid must not move end time: %v -> %v", before, updated.EndTime)
	}
}

func TestPlaceBidWhilePaused(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")
	env.createListing(t, seller, 1, 100_000, nil)

	env.setPaused(t, true)

	_, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	})
	if !errors.Is(err, ErrContractPaused) {
		t.Errorf("expected ErrContractPaused, got %v", err)
	}
}

func TestBuyNow(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	buyNow := int64(500_000)
	env.createListing(t, seller, 1, 100_000, &buyNow)

	_, err := env.listing.BuyNow(context.Background(), buyer, 1, &models.BuyNowRequest{
		Amount: 499_999, Signature: "sig1",
	})
	if !errors.Is(err, ErrInvalidBuyNowAmount) {
		t.Errorf("expected ErrInvalidBuyNowAmount, got %v", err)
	}

	saleTx, err := env.listing.BuyNow(context.Background(), buyer, 1, &models.BuyNowRequest{
		Amount: 500_000, Signature: "sig2",
	})
	if err != nil {
		t.Fatal(err)
	}

	if saleTx.SalePrice != 500_000 {
		t.Errorf("sale price %d, want 500000", saleTx.SalePrice)
	}
	// 2.5% of 500_000
	if saleTx.PlatformFee != 12_500 {
		t.Errorf("platform fee %d, want 12500", saleTx.PlatformFee)
	}
	if saleTx.PlatformFee+saleTx.SellerProceeds != saleTx.SalePrice {
		t.Errorf("fee %d + proceeds %d != price %d", saleTx.PlatformFee, saleTx.SellerProceeds, saleTx.SalePrice)
	}

	listing, _ := env.listing.GetListing(context.Background(), 1)
	if listing.Status != models.ListingStatusSold {
		t.Errorf("expected SOLD, got %s", listing.Status)
	}

	items, err := env.repo.GetChecklistItems(context.Background(), saleTx.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) == 0 {
		t.Error("checklist should be created at sale")
	}
}

func TestBuyNowDisplacesStandingBidder(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")
	buyer := env.createUser(t, "buyer")
	buyNow := int64(500_000)
	env.createListing(t, seller, 1, 100_000, &buyNow)

	if _, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := env.listing.BuyNow(context.Background(), buyer, 1, &models.BuyNowRequest{
		Amount: 500_000, Signature: "sig2",
	}); err != nil {
		t.Fatal(err)
	}

	credits, _ := env.escrow.GetPendingWithdrawals(context.Background(), bidder.ID)
	if len(credits) != 1 || credits[0].Amount != 100_000 {
		t.Errorf("displaced bidder should hold a 100000 credit, got %+v", credits)
	}
}

func TestBuyNowWithoutPrice(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	env.createListing(t, seller, 1, 100_000, nil)

	_, err := env.listing.BuyNow(context.Background(), buyer, 1, &models.BuyNowRequest{
		Amount: 100_000, Signature: "sig1",
	})
	if !errors.Is(err, ErrBuyNowUnavailable) {
		t.Errorf("expected ErrBuyNowUnavailable, got %v", err)
	}
}

func TestSettleAuction(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")
	stranger := env.createUser(t, "stranger")
	env.createListing(t, seller, 1, 100_000, nil)

	if _, err := env.listing.PlaceBid(context.Background(), bidder, 1, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	}); err != nil {
		t.Fatal(err)
	}

	// Too early.
	_, err := env.listing.SettleAuction(context.Background(), seller, 1)
	if !errors.Is(err, ErrAuctionNotEnded) {
		t.Errorf("expected ErrAuctionNotEnded, got %v", err)
	}

	env.endAuction(t, 1)

	// Wrong authority.
	_, err = env.listing.SettleAuction(context.Background(), stranger, 1)
	if !errors.Is(err, ErrNotSettleAuthority) {
		t.Errorf("expected ErrNotSettleAuthority, got %v", err)
	}

	saleTx, err := env.listing.SettleAuction(context.Background(), bidder, 1)
	if err != nil {
		t.Fatal(err)
	}
	if saleTx.SalePrice != 100_000 {
		t.Errorf("sale price %d, want 100000", saleTx.SalePrice)
	}
	if saleTx.Status != models.SaleStatusInEscrow {
		t.Errorf("expected IN_ESCROW, got %s", saleTx.Status)
	}

	// Exactly once.
	_, err = env.listing.SettleAuction(context.Background(), seller, 1)
	if !errors.Is(err, ErrListingNotActive) {
		t.Errorf("second settle: expected ErrListingNotActive, got %v", err)
	}
}

func TestSettleAuctionNoBids(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	env.createListing(t, seller, 1, 100_000, nil)
	env.endAuction(t, 1)

	saleTx, err := env.listing.SettleAuction(context.Background(), seller, 1)
	if err != nil {
		t.Fatal(err)
	}
	if saleTx != nil {
		t.Errorf("no-bid settle should not create a transaction")
	}

	listing, _ := env.listing.GetListing(context.Background(), 1)
	if listing.Status != models.ListingStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", listing.Status)
	}
}

func TestCancelListing(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")
	env.createListing(t, seller, 1, 100_000, nil)

	if err := env.listing.CancelListing(context.Background(), seller, 1); err != nil {
		t.Fatalf("cancel without bids should succeed: %v", err)
	}

	env.createListing(t, seller, 2, 100_000, nil)
	if _, err := env.listing.PlaceBid(context.Background(), bidder, 2, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	}); err != nil {
		t.Fatal(err)
	}

	if err := env.listing.CancelListing(context.Background(), seller, 2); err == nil {
		t.Error("cancel with a standing bid must fail")
	}
}

func TestReclaimExpired(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	bidder := env.createUser(t, "bidder")

	env.createListing(t, seller, 1, 100_000, nil)
	env.createListing(t, seller, 2, 100_000, nil)
	if _, err := env.listing.PlaceBid(context.Background(), bidder, 2, &models.PlaceBidRequest{
		Amount: 100_000, Signature: "sig1",
	}); err != nil {
		t.Fatal(err)
	}

	env.endAuction(t, 1)
	env.endAuction(t, 2)

	if err := env.listing.ReclaimExpired(context.Background(), 1); err != nil {
		t.Fatalf("no-bid reclaim should succeed: %v", err)
	}
	listing, _ := env.listing.GetListing(context.Background(), 1)
	if listing.Status != models.ListingStatusReclaimed {
		t.Errorf("expected RECLAIMED, got %s", listing.Status)
	}

	if err := env.listing.ReclaimExpired(context.Background(), 2); !errors.Is(err, ErrNotSettleAuthority) {
		t.Errorf("reclaim with bids must be refused, got %v", err)
	}
}
