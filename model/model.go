// Package model defines the data structures used by the account ledger.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Money is always a decimal.Decimal, never a float64: balances, loans and
// interest must add up exactly after any number of operations.

// AccountType is the product an account was opened as. It is fixed at creation.
type AccountType string

const (
	Savings AccountType = "Savings"
	Current AccountType = "Current"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return t == Savings || t == Current
}

// TransactionType classifies a balance-affecting event.
type TransactionType string

const (
	Deposit  TransactionType = "deposit"
	Withdraw TransactionType = "withdraw"
	Interest TransactionType = "interest"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case Deposit, Withdraw, Interest:
		return true
	}
	return false
}

// Transaction is one immutable entry of an account's history.
type Transaction struct {
	Type   TransactionType `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Time   time.Time       `json:"time"`
}

// Account is one customer's identity, credential and financial state.
type Account struct {
	AccountNumber string          `json:"account_no"`
	Name          string          `json:"name"`
	Age           int             `json:"age"`
	Email         string          `json:"email"`
	PIN           int             `json:"-"`
	Type          AccountType     `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Loan          decimal.Decimal `json:"loan"`
	Transactions  []Transaction   `json:"transactions"`
}

// HasLoan reports whether the account has an outstanding loan.
func (a Account) HasLoan() bool {
	return a.Loan.IsPositive()
}

// Clone returns a copy of a that shares no memory with it.
func (a Account) Clone() Account {
	cp := a
	if a.Transactions != nil {
		cp.Transactions = make([]Transaction, len(a.Transactions))
		copy(cp.Transactions, a.Transactions)
	}
	return cp
}

// Details returns the account without its transaction history.
func (a Account) Details() AccountDetails {
	return AccountDetails{
		AccountNumber: a.AccountNumber,
		Name:          a.Name,
		Age:           a.Age,
		Email:         a.Email,
		Type:          a.Type,
		Balance:       a.Balance,
		Loan:          a.Loan,
	}
}

// AccountDetails is an account snapshot without transaction history.
type AccountDetails struct {
	AccountNumber string          `json:"account_no"`
	Name          string          `json:"name"`
	Age           int             `json:"age"`
	Email         string          `json:"email"`
	Type          AccountType     `json:"account_type"`
	Balance       decimal.Decimal `json:"balance"`
	Loan          decimal.Decimal `json:"loan"`
}

// Ledger is the full, ordered collection of accounts. Order is insertion order.
type Ledger struct {
	Accounts []Account
}

// IndexOf returns the position of the account with the given number, or -1.
func (l *Ledger) IndexOf(accountNumber string) int {
	for i := range l.Accounts {
		if l.Accounts[i].AccountNumber == accountNumber {
			return i
		}
	}
	return -1
}

// Contains reports whether an account with the given number exists.
func (l *Ledger) Contains(accountNumber string) bool {
	return l.IndexOf(accountNumber) >= 0
}

// Remove deletes the account at index i, keeping the order of the rest.
func (l *Ledger) Remove(i int) {
	l.Accounts = append(l.Accounts[:i], l.Accounts[i+1:]...)
}

// Clone returns a deep copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := Ledger{Accounts: make([]Account, len(l.Accounts))}
	for i, a := range l.Accounts {
		out.Accounts[i] = a.Clone()
	}
	return out
}

// Len returns the number of accounts.
func (l Ledger) Len() int {
	return len(l.Accounts)
}

// CreateAccountRequest defines the expected JSON body for opening an account.
type CreateAccountRequest struct {
	Name        string      `json:"name"`
	Age         int         `json:"age"`
	Email       string      `json:"email"`
	PIN         int         `json:"pin"`
	AccountType AccountType `json:"account_type"`
}

// AmountRequest is the body of deposit, withdraw, loan and repay requests.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// InterestRequest is the body of an interest accrual request.
type InterestRequest struct {
	Rate  decimal.Decimal `json:"rate"`
	Years decimal.Decimal `json:"years"`
}

// UpdateDetailsRequest carries the fields an owner may change. Nil fields are left as they are.
type UpdateDetailsRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	PIN   *int    `json:"pin,omitempty"`
}

// AccountNumberLength is the number of digits in every account number.
const AccountNumberLength = 10

const (
	// MinAge is the youngest age at which an account can be opened.
	MinAge = 18
	minPIN = 1000
	maxPIN = 9999
)

// ValidPIN reports whether pin has exactly four digits.
func ValidPIN(pin int) bool {
	return pin >= minPIN && pin <= maxPIN
}

// IsAccountNumber reports whether s is exactly AccountNumberLength ASCII digits.
func IsAccountNumber(s string) bool {
	if len(s) != AccountNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// LoginRequest is the body of a login request.
type LoginRequest struct {
	AccountNumber string `json:"account_no"`
	PIN           int    `json:"pin"`
}
