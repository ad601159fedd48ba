// storage/storage.go

package storage

import (
	"context"
	"errors"
	"fmt"

	"account-ledger/model"
)

// Custom errors for the storage layer.
var (
	ErrStorageCorrupt     = errors.New("stored ledger is corrupt")
	ErrStorageUnavailable = errors.New("ledger storage unavailable")
)

// Store loads and atomically replaces the full account collection.
// Implementations never write a partial ledger: after a failed Save the
// previously persisted ledger is still the one Load returns.
type Store interface {
	Load(ctx context.Context) (model.Ledger, error)
	Save(ctx context.Context, l model.Ledger) error
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStorageCorrupt, fmt.Sprintf(format, args...))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

// validateLedger rejects ledgers that no engine operation could have produced.
func validateLedger(l model.Ledger) error {
	seen := make(map[string]struct{}, len(l.Accounts))
	for i, acc := range l.Accounts {
		if !model.IsAccountNumber(acc.AccountNumber) {
			return corrupt("account %d: malformed account number %q", i, acc.AccountNumber)
		}
		if _, dup := seen[acc.AccountNumber]; dup {
			return corrupt("account %d: duplicate account number %s", i, acc.AccountNumber)
		}
		seen[acc.AccountNumber] = struct{}{}

		if acc.Age < model.MinAge {
			return corrupt("account %s: age %d is below %d", acc.AccountNumber, acc.Age, model.MinAge)
		}
		if !model.ValidPIN(acc.PIN) {
			return corrupt("account %s: PIN is not 4 digits", acc.AccountNumber)
		}
		if !acc.Type.Valid() {
			return corrupt("account %s: unknown account type %q", acc.AccountNumber, acc.Type)
		}
		if acc.Balance.IsNegative() {
			return corrupt("account %s: negative balance %s", acc.AccountNumber, acc.Balance)
		}
		if acc.Loan.IsNegative() {
			return corrupt("account %s: negative loan %s", acc.AccountNumber, acc.Loan)
		}
		for j, txn := range acc.Transactions {
			if !txn.Type.Valid() {
				return corrupt("account %s: transaction %d: unknown type %q", acc.AccountNumber, j, txn.Type)
			}
		}
	}
	return nil
}
