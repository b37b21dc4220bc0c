package services

import "errors"

// Engine preconditions surface as typed sentinel errors so handlers can map
// each failure to a precise HTTP response instead of a generic 500.
var (
	ErrInvalidDuration           = errors.New("listing duration must be positive and at most 30 days")
	ErrListingExists             = errors.New("listing id already exists")
	ErrListingNotActive          = errors.New("listing is not active")
	ErrAuctionEnded              = errors.New("auction has ended")
	ErrAuctionNotEnded           = errors.New("auction has not ended yet")
	ErrSellerCannotBid           = errors.New("seller cannot bid on own listing")
	ErrBidTooLow                 = errors.New("bid below minimum increment")
	ErrDepositUsed               = errors.New("deposit signature already consumed")
	ErrDepositSenderMismatch     = errors.New("deposit sender does not match caller")
	ErrBuyNowUnavailable         = errors.New("listing has no buy-now price")
	ErrInvalidBuyNowAmount       = errors.New("amount must equal the buy-now price exactly")
	ErrNotSettleAuthority        = errors.New("only the seller or the high bidder may settle")
	ErrInsufficientEscrowBalance = errors.New("insufficient escrow balance")
	ErrNothingToWithdraw         = errors.New("no pending withdrawal credits")
	ErrMathOverflow              = errors.New("arithmetic overflow")
	ErrNotAdmin                  = errors.New("caller is not the admin")
	ErrNoPendingChange           = errors.New("no pending change proposed")
	ErrTimelockNotElapsed        = errors.New("timelock has not elapsed")
	ErrInvalidRefundAmounts      = errors.New("refund amounts exceed sale price")
	ErrDeadlineNotPassed         = errors.New("transfer deadline has not passed")
	ErrDeadlinePassed            = errors.New("transfer deadline has passed")
	ErrAlreadyConfirmed          = errors.New("checklist item already confirmed")
	ErrNotSellerConfirmed        = errors.New("seller has not confirmed this item")
	ErrChecklistIncomplete       = errors.New("required checklist items are not dual-confirmed")
	ErrTransactionNotOpen        = errors.New("transaction is not in escrow")
	ErrDisputeExists             = errors.New("transaction already disputed")
	ErrDisputeResolved           = errors.New("dispute already resolved")
	ErrNotParticipant            = errors.New("caller is not a party to this transaction")
	ErrReasonTooLong             = errors.New("dispute reason exceeds maximum length")
	ErrContractPaused            = errors.New("marketplace is paused")
	ErrInvalidFeeRate            = errors.New("fee rate exceeds configured maximum")
	ErrUnknownChecklistItem      = errors.New("unknown checklist item")
	ErrInvalidResolution         = errors.New("unknown dispute resolution kind")
)
