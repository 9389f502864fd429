package recur

import "errors"

// Sentinel errors for common failure scenarios. Every boundary operation
// reports failure through one of these — no panics on operation paths, and
// no state mutation survives an error return.
var (
	// General errors
	ErrNotFound      = errors.New("recur: not found")
	ErrAlreadyExists = errors.New("recur: already exists")
	ErrUnauthorized  = errors.New("recur: unauthorized")

	// Administrative errors
	ErrOwnerOnly = errors.New("recur: caller is not the administrator")
	ErrPaused    = errors.New("recur: contract is paused")

	// Subscription errors
	ErrInvalidAmount         = errors.New("recur: amount outside allowed bounds")
	ErrInvalidInterval       = errors.New("recur: interval below minimum")
	ErrSelfSubscription      = errors.New("recur: subscriber and merchant are the same account")
	ErrSubscriberCapExceeded = errors.New("recur: subscriber reached lifetime subscription cap")
	ErrSubscriptionInactive  = errors.New("recur: subscription is not active")
	ErrAlreadyInactive       = errors.New("recur: subscription already cancelled")

	// Payment errors
	ErrPaymentNotDue       = errors.New("recur: payment not yet due")
	ErrInsufficientBalance = errors.New("recur: insufficient settlement balance")
	ErrTransferFailed      = errors.New("recur: settlement transfer failed")

	// Store errors
	ErrStoreClosed       = errors.New("recur: store is closed")
	ErrTransactionFailed = errors.New("recur: transaction failed")
	ErrMigrationFailed   = errors.New("recur: migration failed")
)

// IsNotFound reports whether the error means the addressed record is absent.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether the error is a pre-mutation validation
// failure: the operation was rejected before any state changed.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrSelfSubscription) ||
		errors.Is(err, ErrSubscriberCapExceeded)
}

// IsRetryable reports whether re-invoking the same operation later can
// succeed without the caller changing anything else first — the caller
// contract for externally-driven billing sweeps (re-invoke Pay once the due
// height passes, the balance is topped up, or the pause is lifted).
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPaymentNotDue) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrPaused) ||
		errors.Is(err, ErrTransactionFailed)
}
