package ledger

import "errors"

// Domain errors returned by Apply. Callers classify with errors.Is; the
// wrapped message carries the offending client/tx ids.
var (
	// ErrUnknownClient means the account lookup failed after the
	// get-or-create step. Defensive; should never trigger.
	ErrUnknownClient = errors.New("unknown client")

	// ErrUnknownTransaction means a dispute, resolve or chargeback
	// referenced a tx id with no stored deposit/withdrawal.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrInvalidAmount means a deposit/withdrawal amount was missing,
	// not strictly positive, or not finite.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountOverflow means the addition saturated at the float64
	// range limit and the funds were absorbed.
	ErrAmountOverflow = errors.New("account amount too large")

	// ErrNotDisputed rejects a resolve/chargeback whose target is not
	// under dispute.
	ErrNotDisputed = errors.New("transaction is not disputed")

	// ErrAccountLocked rejects deposits and withdrawals on an account
	// frozen by a chargeback.
	ErrAccountLocked = errors.New("account is locked")

	// ErrDuplicateTransaction rejects a deposit/withdrawal reusing an
	// already-stored tx id.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrInsufficientFunds rejects a withdrawal exceeding the
	// available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

var rejectionKinds = []error{
	ErrUnknownClient,
	ErrUnknownTransaction,
	ErrInvalidAmount,
	ErrAmountOverflow,
	ErrNotDisputed,
	ErrAccountLocked,
	ErrDuplicateTransaction,
	ErrInsufficientFunds,
}

// IsRejection reports whether err is one of the ledger's rejection kinds,
// as opposed to a source or I/O failure.
func IsRejection(err error) bool {
	for _, kind := range rejectionKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
