// Package ledger enforces the account rules: authentication, balance and loan
// invariants, transaction history. Every accepted mutation is followed by a
// full-ledger Save on the injected store.
//
// An Engine is not safe for concurrent use. Callers that serve more than one
// client at a time must serialize calls themselves.
package ledger

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"account-ledger/model"
	"account-ledger/storage"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MaxDeposit is the largest amount accepted by a single deposit.
var MaxDeposit = decimal.NewFromInt(100000)

// Engine owns the in-memory ledger and persists it after every mutation.
type Engine struct {
	store  storage.Store
	ledger model.Ledger
	log    zerolog.Logger

	now              func() time.Time
	newAccountNumber func() string
}

// New loads the ledger from store. A corrupt store is an error: the engine
// never starts on a ledger it could only partly read.
func New(ctx context.Context, store storage.Store, log zerolog.Logger) (*Engine, error) {
	l, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return &Engine{
		store:            store,
		ledger:           l,
		log:              log,
		now:              time.Now,
		newAccountNumber: randomAccountNumber,
	}, nil
}

// Count returns the number of accounts in the ledger.
func (e *Engine) Count() int {
	return e.ledger.Len()
}

func randomAccountNumber() string {
	return fmt.Sprintf("%010d", rand.Int64N(10_000_000_000))
}

// CreateAccount opens an account with zero balance and no loan.
func (e *Engine) CreateAccount(ctx context.Context, name string, age int, email string, pin int, accountType model.AccountType) (model.Account, error) {
	if age < model.MinAge {
		return model.Account{}, ErrInvalidAge
	}
	if !model.ValidPIN(pin) {
		return model.Account{}, ErrInvalidPin
	}
	if !accountType.Valid() {
		return model.Account{}, ErrInvalidAccountType
	}

	number := e.newAccountNumber()
	for e.ledger.Contains(number) {
		e.log.Debug().Str("account_no", number).Msg("account number collision, regenerating")
		number = e.newAccountNumber()
	}

	e.ledger.Accounts = append(e.ledger.Accounts, model.Account{
		AccountNumber: number,
		Name:          name,
		Age:           age,
		Email:         email,
		PIN:           pin,
		Type:          accountType,
		Balance:       decimal.Zero,
		Loan:          decimal.Zero,
	})
	acc := &e.ledger.Accounts[len(e.ledger.Accounts)-1]
	return acc.Clone(), e.persist(ctx, "create account", number)
}

// Authenticate returns a snapshot of the account when number and PIN match.
func (e *Engine) Authenticate(accountNumber string, pin int) (model.Account, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return model.Account{}, err
	}
	return acc.Clone(), nil
}

func (e *Engine) lookup(accountNumber string, pin int) (*model.Account, error) {
	i := e.ledger.IndexOf(accountNumber)
	if i < 0 || e.ledger.Accounts[i].PIN != pin {
		return nil, ErrInvalidCredentials
	}
	return &e.ledger.Accounts[i], nil
}

// Deposit credits amount, which must be positive and at most MaxDeposit.
func (e *Engine) Deposit(ctx context.Context, accountNumber string, pin int, amount decimal.Decimal) (model.Account, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return model.Account{}, err
	}
	if !amount.IsPositive() || amount.GreaterThan(MaxDeposit) {
		return model.Account{}, fmt.Errorf("%w: deposit must be greater than 0 and at most %s", ErrInvalidAmount, MaxDeposit)
	}

	acc.Balance = acc.Balance.Add(amount)
	e.record(acc, model.Deposit, amount)
	return acc.Clone(), e.persist(ctx, "deposit", accountNumber)
}

// Withdraw debits amount, which must be positive and covered by the balance.
func (e *Engine) Withdraw(ctx context.Context, accountNumber string, pin int, amount decimal.Decimal) (model.Account, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return model.Account{}, err
	}
	if !amount.IsPositive() {
		return model.Account{}, fmt.Errorf("%w: withdrawal must be positive", ErrInvalidAmount)
	}
	if acc.Balance.LessThan(amount) {
		return model.Account{}, ErrInsufficientBalance
	}

	acc.Balance = acc.Balance.Sub(amount)
	e.record(acc, model.Withdraw, amount)
	return acc.Clone(), e.persist(ctx, "withdraw", accountNumber)
}

// ApplyLoan grants a loan of amount. The balance is not credited.
func (e *Engine) ApplyLoan(ctx context.Context, accountNumber string, pin int, amount decimal.Decimal) (model.Account, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return model.Account{}, err
	}
	if !amount.IsPositive() {
		return model.Account{}, fmt.Errorf("%w: loan must be positive", ErrInvalidAmount)
	}
	if acc.HasLoan() {
		return model.Account{}, ErrLoanAlreadyOutstanding
	}

	acc.Loan = amount
	return acc.Clone(), e.persist(ctx, "apply loan", accountNumber)
}

// RepayLoan pays down the loan from the balance. Amounts above the
// outstanding loan are clamped to it before the balance check.
func (e *Engine) RepayLoan(ctx context.Context, accountNumber string, pin int, amount decimal.Decimal) (model.Account, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return model.Account{}, err
	}
	if !amount.IsPositive() {
		return model.Account{}, fmt.Errorf("%w: repayment must be positive", ErrInvalidAmount)
	}
	if !acc.HasLoan() {
		return model.Account{}, ErrNoOutstandingLoan
	}
	amount = decimal.Min(amount, acc.Loan)
	if acc.Balance.LessThan(amount) {
		return model.Account{}, ErrInsufficientBalance
	}

	acc.Balance = acc.Balance.Sub(amount)
	acc.Loan = acc.Loan.Sub(amount)
	return acc.Clone(), e.persist(ctx, "repay loan", accountNumber)
}

// AddInterest credits simple interest, balance × rate × years / 100, at full precision.
func (e *Engine) AddInterest(ctx context.Context, accountNumber string, pin int, rate, years decimal.Decimal) (model.Account, decimal.Decimal, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return model.Account{}, decimal.Zero, err
	}
	if rate.IsNegative() || years.IsNegative() {
		return model.Account{}, decimal.Zero, ErrInvalidRate
	}

	// Shift is an exact division by 100; Div would round to DivisionPrecision.
	interest := acc.Balance.Mul(rate).Mul(years).Shift(-2)
	acc.Balance = acc.Balance.Add(interest)
	e.record(acc, model.Interest, interest)
	return acc.Clone(), interest, e.persist(ctx, "add interest", accountNumber)
}

// GetDetails returns the account without its history.
func (e *Engine) GetDetails(accountNumber string, pin int) (model.AccountDetails, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return model.AccountDetails{}, err
	}
	return acc.Details(), nil
}

// GetTransactions returns a copy of the full history, oldest first.
func (e *Engine) GetTransactions(accountNumber string, pin int) ([]model.Transaction, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return nil, err
	}
	return acc.Clone().Transactions, nil
}

// UpdateDetails applies the non-nil fields of upd.
func (e *Engine) UpdateDetails(ctx context.Context, accountNumber string, pin int, upd model.UpdateDetailsRequest) (model.Account, error) {
	acc, err := e.lookup(accountNumber, pin)
	if err != nil {
		return model.Account{}, err
	}
	if upd.PIN != nil && !model.ValidPIN(*upd.PIN) {
		return model.Account{}, ErrInvalidPin
	}

	if upd.Name != nil {
		acc.Name = *upd.Name
	}
	if upd.Email != nil {
		acc.Email = *upd.Email
	}
	if upd.PIN != nil {
		acc.PIN = *upd.PIN
	}
	return acc.Clone(), e.persist(ctx, "update details", accountNumber)
}

// DeleteAccount removes the account and its history from the ledger.
func (e *Engine) DeleteAccount(ctx context.Context, accountNumber string, pin int) error {
	if _, err := e.lookup(accountNumber, pin); err != nil {
		return err
	}
	e.ledger.Remove(e.ledger.IndexOf(accountNumber))
	return e.persist(ctx, "delete account", accountNumber)
}

func (e *Engine) record(acc *model.Account, typ model.TransactionType, amount decimal.Decimal) {
	acc.Transactions = append(acc.Transactions, model.Transaction{
		Type:   typ,
		Amount: amount,
		Time:   e.now().Truncate(time.Second),
	})
}

// persist saves the whole ledger. On failure the in-memory change is kept
// and the returned error wraps storage.ErrStorageUnavailable.
func (e *Engine) persist(ctx context.Context, op, accountNumber string) error {
	if err := e.store.Save(ctx, e.ledger); err != nil {
		e.log.Error().Err(err).Str("op", op).Str("account_no", accountNumber).
			Msg("ledger changed in memory but not saved")
		return fmt.Errorf("%s: %w", op, err)
	}
	e.log.Info().Str("op", op).Str("account_no", accountNumber).Msg("ledger saved")
	return nil
}
