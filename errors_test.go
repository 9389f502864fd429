package recur

import (
	"fmt"
	"testing"
)

func TestErrorPredicates(t *testing.T) {
	if !IsNotFound(ErrNotFound) {
		t.Error("IsNotFound(ErrNotFound) = false")
	}
	if !IsNotFound(fmt.Errorf("recur/sqlite: get subscription: %w", ErrNotFound)) {
		t.Error("IsNotFound does not see through wrapping")
	}
	if IsNotFound(ErrUnauthorized) {
		t.Error("IsNotFound(ErrUnauthorized) = true")
	}

	for _, err := range []error{ErrInvalidAmount, ErrInvalidInterval, ErrSelfSubscription, ErrSubscriberCapExceeded} {
		if !IsValidation(err) {
			t.Errorf("IsValidation(%v) = false", err)
		}
	}
	if IsValidation(ErrPaymentNotDue) {
		t.Error("IsValidation(ErrPaymentNotDue) = true")
	}

	for _, err := range []error{ErrPaymentNotDue, ErrInsufficientBalance, ErrPaused, ErrTransactionFailed} {
		if !IsRetryable(err) {
			t.Errorf("IsRetryable(%v) = false", err)
		}
	}
	if IsRetryable(ErrSelfSubscription) {
		t.Error("IsRetryable(ErrSelfSubscription) = true")
	}
}
