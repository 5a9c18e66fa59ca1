// Package ledger replays transaction records against per-client accounts.
//
// The ledger is single-threaded by contract: one Apply at a time, Export at
// end of stream. Funds are plain float64 with IEEE semantics throughout;
// the invariant total == available + held holds after every successful
// apply because the two sides are always mutated together.
package ledger

import (
	"fmt"
	"math"
	"sort"

	"github.com/insightdelivered/payments-engine/internal/models"
)

// account holds the live balance state for one client.
type account struct {
	available float64
	held      float64
	total     float64
	locked    bool
}

// historyEntry is the stored trace of a successful deposit or withdrawal,
// kept only so later disputes can look up the amount.
type historyEntry struct {
	amount       float64
	underDispute bool
}

// Ledger owns all account state and the transaction history.
type Ledger struct {
	accounts map[uint16]*account
	history  map[uint32]*historyEntry
}

// New returns an empty in-memory ledger.
func New() *Ledger {
	return &Ledger{
		accounts: make(map[uint16]*account),
		history:  make(map[uint32]*historyEntry),
	}
}

// Apply mutates the ledger with one transaction record. On error the record
// is rejected; except for the documented overflow case, account state is
// unchanged. The caller decides whether to halt or continue.
func (l *Ledger) Apply(t *models.Transaction) error {
	// The account exists from the first record that references the
	// client, even when that record is then rejected.
	if _, ok := l.accounts[t.Client]; !ok {
		l.accounts[t.Client] = &account{}
	}

	switch t.Kind {
	case models.KindDeposit:
		return l.deposit(t)
	case models.KindWithdrawal:
		return l.withdraw(t)
	case models.KindDispute:
		return l.dispute(t)
	case models.KindResolve:
		return l.resolve(t)
	case models.KindChargeback:
		return l.chargeback(t)
	default:
		return fmt.Errorf("tx %d: unsupported transaction kind %q", t.Tx, t.Kind)
	}
}

// Export returns a snapshot of every known account, sorted by client id.
func (l *Ledger) Export() []models.AccountSnapshot {
	out := make([]models.AccountSnapshot, 0, len(l.accounts))
	for client, acct := range l.accounts {
		out = append(out, models.AccountSnapshot{
			Client:    client,
			Available: acct.available,
			Held:      acct.held,
			Total:     acct.total,
			Locked:    acct.locked,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}

func (l *Ledger) deposit(t *models.Transaction) error {
	if _, exists := l.history[t.Tx]; exists {
		return fmt.Errorf("tx %d: %w", t.Tx, ErrDuplicateTransaction)
	}
	amount, err := recordAmount(t)
	if err != nil {
		return err
	}
	acct, err := l.account(t.Client)
	if err != nil {
		return err
	}
	if acct.locked {
		return fmt.Errorf("client %d: %w", t.Client, ErrAccountLocked)
	}

	prevAvailable := acct.available
	prevTotal := acct.total
	acct.available += amount
	acct.total += amount

	// Saturation is detected after the addition: if either balance came
	// back numerically unchanged the funds were absorbed at the float64
	// range limit. The balances stay as mutated and the record is not
	// kept in history.
	if (acct.available == prevAvailable || acct.total == prevTotal) && amount != 0 {
		return fmt.Errorf("tx %d: %w", t.Tx, ErrAmountOverflow)
	}

	l.history[t.Tx] = &historyEntry{amount: amount}
	return nil
}

func (l *Ledger) withdraw(t *models.Transaction) error {
	if _, exists := l.history[t.Tx]; exists {
		return fmt.Errorf("tx %d: %w", t.Tx, ErrDuplicateTransaction)
	}
	amount, err := recordAmount(t)
	if err != nil {
		return err
	}
	acct, err := l.account(t.Client)
	if err != nil {
		return err
	}
	if acct.locked {
		return fmt.Errorf("client %d: %w", t.Client, ErrAccountLocked)
	}
	if amount > acct.available {
		return fmt.Errorf("tx %d: withdraw %v with %v available: %w",
			t.Tx, amount, acct.available, ErrInsufficientFunds)
	}

	acct.available -= amount
	acct.total -= amount

	l.history[t.Tx] = &historyEntry{amount: amount}
	return nil
}

// dispute freezes the referenced record's amount. A locked account can
// still be disputed, and there is no duplicate check: disputing an
// already-disputed record moves the funds again.
func (l *Ledger) dispute(t *models.Transaction) error {
	entry, ok := l.history[t.Tx]
	if !ok {
		return fmt.Errorf("tx %d: %w", t.Tx, ErrUnknownTransaction)
	}
	acct, err := l.account(t.Client)
	if err != nil {
		return err
	}

	acct.available -= entry.amount
	acct.held += entry.amount
	entry.underDispute = true
	return nil
}

func (l *Ledger) resolve(t *models.Transaction) error {
	entry, ok := l.history[t.Tx]
	if !ok {
		return fmt.Errorf("tx %d: %w", t.Tx, ErrUnknownTransaction)
	}
	if !entry.underDispute {
		return fmt.Errorf("tx %d: %w", t.Tx, ErrNotDisputed)
	}
	acct, err := l.account(t.Client)
	if err != nil {
		return err
	}

	acct.held -= entry.amount
	acct.available += entry.amount
	entry.underDispute = false
	return nil
}

func (l *Ledger) chargeback(t *models.Transaction) error {
	entry, ok := l.history[t.Tx]
	if !ok {
		return fmt.Errorf("tx %d: %w", t.Tx, ErrUnknownTransaction)
	}
	if !entry.underDispute {
		return fmt.Errorf("tx %d: %w", t.Tx, ErrNotDisputed)
	}
	acct, err := l.account(t.Client)
	if err != nil {
		return err
	}

	acct.held -= entry.amount
	acct.total -= entry.amount
	acct.locked = true
	entry.underDispute = false
	return nil
}

// account fetches a client's account after the get-or-create step.
func (l *Ledger) account(client uint16) (*account, error) {
	acct, ok := l.accounts[client]
	if !ok {
		return nil, fmt.Errorf("client %d: %w", client, ErrUnknownClient)
	}
	return acct, nil
}

// recordAmount validates the incoming amount of a deposit or withdrawal.
// The amount must be present, finite and strictly positive. Note the
// amount > 0 comparison also rejects NaN.
func recordAmount(t *models.Transaction) (float64, error) {
	if t.Amount == nil {
		return 0, fmt.Errorf("tx %d: amount missing: %w", t.Tx, ErrInvalidAmount)
	}
	a := *t.Amount
	if !(a > 0) || math.IsInf(a, 0) {
		return 0, fmt.Errorf("tx %d: amount %v: %w", t.Tx, a, ErrInvalidAmount)
	}
	return a, nil
}
