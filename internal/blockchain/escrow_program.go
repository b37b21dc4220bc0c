package blockchain

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// EscrowProgram wraps the on-chain escrow program: it derives the deterministic
// escrow address for a listing and moves funds in and out through the
// server-held escrow authority.
type EscrowProgram struct {
	client    *SolanaClient
	programID solana.PublicKey
}

// NewEscrowProgram creates a new escrow program wrapper. An empty programID
// falls back to the system program, which keeps devnet bootstrapping simple.
func NewEscrowProgram(client *SolanaClient, programID string) (*EscrowProgram, error) {
	pid := solana.SystemProgramID
	if programID != "" {
		parsed, err := solana.PublicKeyFromBase58(programID)
		if err != nil {
			return nil, fmt.Errorf("invalid escrow program id: %w", err)
		}
		pid = parsed
	}

	return &EscrowProgram{
		client:    client,
		programID: pid,
	}, nil
}

// DeriveEscrowAddress derives the PDA for a listing's escrow account from the
// fixed ("escrow", listing_id) seeds, so related records can be located
// without an off-chain index.
func (e *EscrowProgram) DeriveEscrowAddress(listingID int64) (string, uint8, error) {
	seed := make([]byte, 8)
	binary.LittleEndian.PutUint64(seed, uint64(listingID))

	addr, bump, err := solana.FindProgramAddress(
		[][]byte{[]byte("escrow"), seed},
		e.programID,
	)
	if err != nil {
		return "", 0, fmt.Errorf("failed to derive escrow address: %w", err)
	}

	return addr.String(), bump, nil
}

// VerifyDeposit confirms that the given signature is a finalized transfer of
// at least minLamports into the expected escrow address and returns the
// sending wallet. The stored record, not the caller, decides what the
// destination must be. The sender comes back empty when the transaction
// confirmed but its transfer instruction could not be parsed.
func (e *EscrowProgram) VerifyDeposit(ctx context.Context, signature, escrowAddress string, minLamports uint64) (string, error) {
	details, err := e.client.VerifyTransaction(ctx, signature)
	if err != nil {
		return "", fmt.Errorf("failed to verify deposit: %w", err)
	}

	if details == nil || !details.Confirmed {
		return "", fmt.Errorf("deposit transaction not confirmed")
	}

	if details.Receiver != escrowAddress {
		return "", fmt.Errorf("deposit receiver %s does not match escrow %s", details.Receiver, escrowAddress)
	}

	if details.Amount < minLamports {
		return "", fmt.Errorf("deposit amount %d below required %d", details.Amount, minLamports)
	}

	return details.Sender, nil
}

// Transfer releases lamports from escrow custody to a recipient.
func (e *EscrowProgram) Transfer(ctx context.Context, recipient string, lamports uint64) (string, error) {
	return e.client.Transfer(ctx, recipient, lamports)
}
