package services

import (
	"context"
	"time"
)

// ChainLedger is the fund-movement surface the engine needs from the chain:
// deterministic escrow addressing, deposit verification, and payouts signed
// by the escrow authority. Implemented by blockchain.EscrowProgram.
// VerifyDeposit returns the sending wallet when the transaction parses;
// an empty sender means the transfer was confirmed but not attributable.
type ChainLedger interface {
	DeriveEscrowAddress(listingID int64) (string, uint8, error)
	VerifyDeposit(ctx context.Context, signature, escrowAddress string, minLamports uint64) (string, error)
	Transfer(ctx context.Context, recipient string, lamports uint64) (string, error)
}

// Params carries the engine constants seeded from the environment. The
// marketplace config row holds the mutable governance parameters; these are
// the fixed mechanical ones.
type Params struct {
	MinBidFloor     int64         // absolute lamport floor for bid increments
	AntiSnipeWindow time.Duration // late-bid window that triggers extension
	AntiSnipeExtend time.Duration // how far a qualifying bid pushes end time
	TransferPeriod  time.Duration // seller hand-off deadline after settlement
	Timelock        time.Duration // delay between proposing and executing identity changes
}

// DefaultParams returns the engine constants used when none are configured.
func DefaultParams() Params {
	return Params{
		MinBidFloor:     10_000_000, // 0.01 SOL
		AntiSnipeWindow: 10 * time.Minute,
		AntiSnipeExtend: 10 * time.Minute,
		TransferPeriod:  7 * 24 * time.Hour,
		Timelock:        48 * time.Hour,
	}
}

// maxListingDuration bounds how far out an auction may end.
const maxListingDuration = 30 * 24 * time.Hour
