package ledger

import "errors"

// Validation errors returned by Engine operations. None of them leave any
// trace in the ledger: the operation is rejected before anything mutates.
var (
	ErrInvalidCredentials     = errors.New("invalid account number or PIN")
	ErrInvalidAge             = errors.New("age must be at least 18")
	ErrInvalidPin             = errors.New("PIN must be exactly 4 digits")
	ErrInvalidAccountType     = errors.New("account type must be Savings or Current")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrLoanAlreadyOutstanding = errors.New("a loan is already outstanding")
	ErrNoOutstandingLoan      = errors.New("no outstanding loan to repay")
	ErrInvalidRate            = errors.New("interest rate and period must not be negative")
)
