package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"marketplace-escrow/internal/models"
	"marketplace-escrow/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Each test gets its own named in-memory database so state never leaks
	// between tests. cache=shared keeps the DB alive across connections
	// opened by gorm's pool.
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.MarketplaceConfig{},
		&models.Listing{},
		&models.Escrow{},
		&models.EscrowDeposit{},
		&models.WithdrawalCredit{},
		&models.SaleTransaction{},
		&models.ChecklistItem{},
		&models.Dispute{},
		&models.MarketplaceEvent{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// fakeChain implements ChainLedger in memory. Deposits verify unless the
// signature carries a "bad" prefix; transfers are recorded for assertions.
// senders optionally attributes a signature to a wallet; unattributed
// signatures verify with an empty sender, like unparseable transactions.
type fakeChain struct {
	transfers []fakeTransfer
	senders   map[string]string
	seq       int
}

type fakeTransfer struct {
	Recipient string
	Lamports  uint64
}

func (f *fakeChain) DeriveEscrowAddress(listingID int64) (string, uint8, error) {
	return fmt.Sprintf("escrow-%d", listingID), 255, nil
}

func (f *fakeChain) VerifyDeposit(ctx context.Context, signature, escrowAddress string, minLamports uint64) (string, error) {
	if strings.HasPrefix(signature, "bad") {
		return "", fmt.Errorf("deposit transaction not confirmed")
	}
	return f.senders[signature], nil
}

func (f *fakeChain) setSender(signature, wallet string) {
	if f.senders == nil {
		f.senders = map[string]string{}
	}
	f.senders[signature] = wallet
}

func (f *fakeChain) Transfer(ctx context.Context, recipient string, lamports uint64) (string, error) {
	f.seq++
	f.transfers = append(f.transfers, fakeTransfer{Recipient: recipient, Lamports: lamports})
	return fmt.Sprintf("tx-%d", f.seq), nil
}

func (f *fakeChain) sentTo(recipient string) uint64 {
	var total uint64
	for _, tr := range f.transfers {
		if tr.Recipient == recipient {
			total += tr.Lamports
		}
	}
	return total
}

func (f *fakeChain) totalSent() uint64 {
	var total uint64
	for _, tr := range f.transfers {
		total += tr.Lamports
	}
	return total
}

const (
	testAdminWallet    = "AdminWallet11111111111111111111111111111111"
	testTreasuryWallet = "TreasuryWallet111111111111111111111111111111"
)

func testParams() Params {
	return Params{
		MinBidFloor:     1_000,
		AntiSnipeWindow: 10 * time.Minute,
		AntiSnipeExtend: 10 * time.Minute,
		TransferPeriod:  7 * 24 * time.Hour,
		Timelock:        48 * time.Hour,
	}
}

// testEnv wires every service over a fresh database and fake chain.
type testEnv struct {
	db      *gorm.DB
	repo    *repository.Repository
	chain   *fakeChain
	listing *ListingService
	escrow  *EscrowService
	tx      *TransactionService
	dispute *DisputeService
	admin   *AdminService
}

func newTestEnv(t *testing.T) *testEnv {
	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	chain := &fakeChain{}
	params := testParams()

	if _, err := repo.SeedConfig(context.Background(), &models.MarketplaceConfig{
		AdminWallet:    testAdminWallet,
		TreasuryWallet: testTreasuryWallet,
		PlatformFeeBps: 250,
		DisputeFeeBps:  100,
		MaxFeeBps:      1000,
	}); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	return &testEnv{
		db:      db,
		repo:    repo,
		chain:   chain,
		listing: NewListingService(repo, chain, params),
		escrow:  NewEscrowService(repo, chain),
		tx:      NewTransactionService(repo, chain),
		dispute: NewDisputeService(repo, chain),
		admin:   NewAdminService(repo, params),
	}
}

func (e *testEnv) createUser(t *testing.T, wallet string) *models.User {
	user := &models.User{WalletAddress: wallet}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", wallet, err)
	}
	return user
}

func (e *testEnv) createListing(t *testing.T, seller *models.User, listingID, startPrice int64, buyNow *int64) *models.Listing {
	listing, err := e.listing.CreateListing(context.Background(), seller, &models.CreateListingRequest{
		ListingID:       listingID,
		Title:           fmt.Sprintf("Listing %d", listingID),
		AssetType:       string(models.AssetTypeRepository),
		StartingPrice:   startPrice,
		BuyNowPrice:     buyNow,
		DurationSeconds: 3600,
	})
	if err != nil {
		t.Fatalf("failed to create listing %d: %v", listingID, err)
	}
	return listing
}

// endAuction rewinds the listing's end time so settlement preconditions hold.
func (e *testEnv) endAuction(t *testing.T, listingID int64) {
	err := e.db.Model(&models.Listing{}).
		Where("listing_id = ?", listingID).
		Update("end_time", time.Now().Add(-time.Minute)).Error
	if err != nil {
		t.Fatalf("failed to end auction: %v", err)
	}
}

// lapseDeadline rewinds a sale's transfer deadline past expiry.
func (e *testEnv) lapseDeadline(t *testing.T, listingID int64) {
	err := e.db.Model(&models.SaleTransaction{}).
		Where("listing_id = ?", listingID).
		Update("transfer_deadline", time.Now().Add(-time.Minute)).Error
	if err != nil {
		t.Fatalf("failed to lapse deadline: %v", err)
	}
}

func (e *testEnv) setPaused(t *testing.T, paused bool) {
	if _, err := e.admin.SetPaused(context.Background(), testAdminWallet, paused); err != nil {
		t.Fatalf("failed to set paused=%v: %v", paused, err)
	}
}

func (e *testEnv) escrowBalance(t *testing.T, listingID int64) int64 {
	escrow, err := e.repo.GetEscrowByListingID(context.Background(), listingID)
	if err != nil {
		t.Fatalf("failed to load escrow: %v", err)
	}
	return escrow.Balance
}
