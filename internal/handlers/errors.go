package handlers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"marketplace-escrow/internal/services"
)

// statusForError maps service errors onto HTTP status codes. Anything not
// recognized is a 500 with a generic message so internal detail never leaks.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, services.ErrNotAdmin),
		errors.Is(err, services.ErrNotParticipant),
		errors.Is(err, services.ErrNotSettleAuthority):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, services.ErrListingExists),
		errors.Is(err, services.ErrDepositUsed),
		errors.Is(err, services.ErrDisputeExists),
		errors.Is(err, services.ErrAlreadyConfirmed),
		errors.Is(err, services.ErrDisputeResolved):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrContractPaused):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, services.ErrInvalidDuration),
		errors.Is(err, services.ErrListingNotActive),
		errors.Is(err, services.ErrAuctionEnded),
		errors.Is(err, services.ErrAuctionNotEnded),
		errors.Is(err, services.ErrSellerCannotBid),
		errors.Is(err, services.ErrBidTooLow),
		errors.Is(err, services.ErrDepositSenderMismatch),
		errors.Is(err, services.ErrBuyNowUnavailable),
		errors.Is(err, services.ErrInvalidBuyNowAmount),
		errors.Is(err, services.ErrInsufficientEscrowBalance),
		errors.Is(err, services.ErrNothingToWithdraw),
		errors.Is(err, services.ErrMathOverflow),
		errors.Is(err, services.ErrNoPendingChange),
		errors.Is(err, services.ErrTimelockNotElapsed),
		errors.Is(err, services.ErrInvalidRefundAmounts),
		errors.Is(err, services.ErrDeadlineNotPassed),
		errors.Is(err, services.ErrDeadlinePassed),
		errors.Is(err, services.ErrNotSellerConfirmed),
		errors.Is(err, services.ErrChecklistIncomplete),
		errors.Is(err, services.ErrTransactionNotOpen),
		errors.Is(err, services.ErrReasonTooLong),
		errors.Is(err, services.ErrInvalidFeeRate),
		errors.Is(err, services.ErrUnknownChecklistItem),
		errors.Is(err, services.ErrInvalidResolution):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
