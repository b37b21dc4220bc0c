package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"marketplace-escrow/internal/models"
)

func openDispute(t *testing.T, env *testEnv, initiator *models.User, saleTx *models.SaleTransaction) *models.Dispute {
	t.Helper()
	dispute, err := env.dispute.OpenDispute(context.Background(), initiator, saleTx.ID, &models.OpenDisputeRequest{
		Reason: "asset not delivered", Signature: "sig-fee",
	})
	if err != nil {
		t.Fatalf("open dispute failed: %v", err)
	}
	return dispute
}

func TestOpenDispute(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	stranger := env.createUser(t, "stranger")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)

	_, err := env.dispute.OpenDispute(context.Background(), stranger, saleTx.ID, &models.OpenDisputeRequest{
		Reason: "none of my business", Signature: "sig",
	})
	if !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}

	dispute := openDispute(t, env, buyer, saleTx)

	// 1% of the sale price, held apart from the escrow balance.
	if dispute.FeeAmount != 10_000 {
		t.Errorf("dispute fee %d, want 10000", dispute.FeeAmount)
	}
	if env.escrowBalance(t, 1) != 1_000_000 {
		t.Errorf("dispute fee must not inflate escrow balance: %d", env.escrowBalance(t, 1))
	}

	mid, _, _ := env.tx.GetTransaction(context.Background(), saleTx.ID)
	if mid.Status != models.SaleStatusDisputed {
		t.Errorf("expected DISPUTED, got %s", mid.Status)
	}

	// One dispute per transaction.
	_, err = env.dispute.OpenDispute(context.Background(), seller, saleTx.ID, &models.OpenDisputeRequest{
		Reason: "counter dispute", Signature: "sig",
	})
	if !errors.Is(err, ErrTransactionNotOpen) && !errors.Is(err, ErrDisputeExists) {
		t.Errorf("second dispute must be refused, got %v", err)
	}
}

func TestDisputeFeeSignatureSingleUse(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	first := soldListing(t, env, seller, buyer, 1, 1_000_000)
	second := soldListing(t, env, seller, buyer, 2, 1_000_000)

	if _, err := env.dispute.OpenDispute(context.Background(), buyer, first.ID, &models.OpenDisputeRequest{
		Reason: "asset not delivered", Signature: "fee-sig",
	}); err != nil {
		t.Fatal(err)
	}

	// The fee deposit backing the first dispute cannot back another.
	_, err := env.dispute.OpenDispute(context.Background(), buyer, second.ID, &models.OpenDisputeRequest{
		Reason: "asset not delivered either", Signature: "fee-sig",
	})
	if !errors.Is(err, ErrDepositUsed) {
		t.Errorf("replayed fee deposit: expected ErrDepositUsed, got %v", err)
	}

	mid, _, _ := env.tx.GetTransaction(context.Background(), second.ID)
	if mid.Status != models.SaleStatusInEscrow {
		t.Errorf("rejected dispute must not move the sale, got %s", mid.Status)
	}
}

func TestOpenDisputeReasonTooLong(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)

	_, err := env.dispute.OpenDispute(context.Background(), buyer, saleTx.ID, &models.OpenDisputeRequest{
		Reason: strings.Repeat("x", models.MaxDisputeReasonLen+1), Signature: "sig",
	})
	if !errors.Is(err, ErrReasonTooLong) {
		t.Errorf("expected ErrReasonTooLong, got %v", err)
	}
}

func TestDisputeBlocksLifecycle(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)
	openDispute(t, env, buyer, saleTx)

	_, err := env.tx.FinalizeTransaction(context.Background(), buyer, saleTx.ID)
	if !errors.Is(err, ErrTransactionNotOpen) {
		t.Errorf("finalize on disputed sale: expected ErrTransactionNotOpen, got %v", err)
	}

	env.lapseDeadline(t, 1)
	_, err = env.tx.EmergencyRefund(context.Background(), buyer, saleTx.ID)
	if !errors.Is(err, ErrTransactionNotOpen) {
		t.Errorf("emergency refund on disputed sale: expected ErrTransactionNotOpen, got %v", err)
	}
}

func TestResolveDisputeFullRefundBuyer(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)
	dispute := openDispute(t, env, buyer, saleTx)

	// Only the admin resolves.
	_, err := env.dispute.ResolveDispute(context.Background(), buyer.WalletAddress, dispute.ID, &models.ResolveDisputeRequest{
		Resolution: string(models.ResolutionFullRefundBuyer),
	})
	if !errors.Is(err, ErrNotAdmin) {
		t.Errorf("expected ErrNotAdmin, got %v", err)
	}

	resolved, err := env.dispute.ResolveDispute(context.Background(), testAdminWallet, dispute.ID, &models.ResolveDisputeRequest{
		Resolution: string(models.ResolutionFullRefundBuyer),
	})
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Status != models.DisputeStatusResolved {
		t.Errorf("expected RESOLVED, got %s", resolved.Status)
	}

	// Buyer gets the principal plus the fee they fronted.
	if got := env.chain.sentTo(buyer.WalletAddress); got != 1_010_000 {
		t.Errorf("buyer received %d, want 1010000", got)
	}
	if env.chain.sentTo(seller.WalletAddress) != 0 {
		t.Error("seller must receive nothing on a full buyer refund")
	}
	if env.escrowBalance(t, 1) != 0 {
		t.Errorf("escrow should be empty, got %d", env.escrowBalance(t, 1))
	}

	// Immutable once resolved.
	_, err = env.dispute.ResolveDispute(context.Background(), testAdminWallet, dispute.ID, &models.ResolveDisputeRequest{
		Resolution: string(models.ResolutionFullRefundSeller),
	})
	if !errors.Is(err, ErrDisputeResolved) {
		t.Errorf("re-resolve: expected ErrDisputeResolved, got %v", err)
	}
}

func TestResolveDisputeFullRefundSeller(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)
	dispute := openDispute(t, env, buyer, saleTx)

	if _, err := env.dispute.ResolveDispute(context.Background(), testAdminWallet, dispute.ID, &models.ResolveDisputeRequest{
		Resolution: string(models.ResolutionFullRefundSeller),
	}); err != nil {
		t.Fatal(err)
	}

	// Seller prevails and takes the fee the buyer fronted.
	if got := env.chain.sentTo(seller.WalletAddress); got != 1_010_000 {
		t.Errorf("seller received %d, want 1010000", got)
	}
	if env.chain.sentTo(buyer.WalletAddress) != 0 {
		t.Error("buyer must receive nothing on a full seller award")
	}
}

func TestResolveDisputePartial(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)
	dispute := openDispute(t, env, buyer, saleTx)

	// Split exceeding the sale price is invalid.
	buyerShare := int64(700_000)
	badShare := int64(400_000)
	_, err := env.dispute.ResolveDispute(context.Background(), testAdminWallet, dispute.ID, &models.ResolveDisputeRequest{
		Resolution:  string(models.ResolutionPartialRefund),
		BuyerAmount: &buyerShare, SellerAmount: &badShare,
	})
	if !errors.Is(err, ErrInvalidRefundAmounts) {
		t.Errorf("expected ErrInvalidRefundAmounts, got %v", err)
	}

	sellerShare := int64(200_000)
	if _, err := env.dispute.ResolveDispute(context.Background(), testAdminWallet, dispute.ID, &models.ResolveDisputeRequest{
		Resolution:  string(models.ResolutionPartialRefund),
		BuyerAmount: &buyerShare, SellerAmount: &sellerShare,
	}); err != nil {
		t.Fatal(err)
	}

	// Buyer prevails with the larger share and takes the fee back.
	if got := env.chain.sentTo(buyer.WalletAddress); got != 710_000 {
		t.Errorf("buyer received %d, want 710000", got)
	}
	if got := env.chain.sentTo(seller.WalletAddress); got != 200_000 {
		t.Errorf("seller received %d, want 200000", got)
	}
	// The unassigned 100_000 accrues to the treasury.
	if got := env.chain.sentTo(testTreasuryWallet); got != 100_000 {
		t.Errorf("treasury received %d, want 100000", got)
	}
	// Conservation: principal plus fee, nothing more.
	if env.chain.totalSent() != 1_010_000 {
		t.Errorf("total payouts %d, want 1010000", env.chain.totalSent())
	}
}

func TestResolveDisputeTieFavorsBuyer(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)
	dispute := openDispute(t, env, seller, saleTx)

	half := int64(500_000)
	if _, err := env.dispute.ResolveDispute(context.Background(), testAdminWallet, dispute.ID, &models.ResolveDisputeRequest{
		Resolution:  string(models.ResolutionPartialRefund),
		BuyerAmount: &half, SellerAmount: &half,
	}); err != nil {
		t.Fatal(err)
	}

	if got := env.chain.sentTo(buyer.WalletAddress); got != 510_000 {
		t.Errorf("even split: buyer should take the fee, received %d", got)
	}
	if got := env.chain.sentTo(seller.WalletAddress); got != 500_000 {
		t.Errorf("seller received %d, want 500000", got)
	}
}

func TestResolveDisputeUnknownKind(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)
	dispute := openDispute(t, env, buyer, saleTx)

	_, err := env.dispute.ResolveDispute(context.Background(), testAdminWallet, dispute.ID, &models.ResolveDisputeRequest{
		Resolution: "SPLIT_THE_BABY",
	})
	if !errors.Is(err, ErrInvalidResolution) {
		t.Errorf("expected ErrInvalidResolution, got %v", err)
	}
}

func TestResolveDisputeWorksWhilePaused(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller")
	buyer := env.createUser(t, "buyer")
	saleTx := soldListing(t, env, seller, buyer, 1, 1_000_000)
	dispute := openDispute(t, env, buyer, saleTx)

	env.setPaused(t, true)

	if _, err := env.dispute.ResolveDispute(context.Background(), testAdminWallet, dispute.ID, &models.ResolveDisputeRequest{
		Resolution: string(models.ResolutionFullRefundBuyer),
	}); err != nil {
		t.Fatalf("dispute resolution must work while paused: %v", err)
	}
}
