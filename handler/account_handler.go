package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"account-ledger/model"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// PINHeader carries the account PIN on every authenticated request.
const PINHeader = "X-Account-PIN"

// Ledger is the set of engine operations the HTTP layer calls.
type Ledger interface {
	CreateAccount(ctx context.Context, name string, age int, email string, pin int, accountType model.AccountType) (model.Account, error)
	Authenticate(accountNumber string, pin int) (model.Account, error)
	Deposit(ctx context.Context, accountNumber string, pin int, amount decimal.Decimal) (model.Account, error)
	Withdraw(ctx context.Context, accountNumber string, pin int, amount decimal.Decimal) (model.Account, error)
	ApplyLoan(ctx context.Context, accountNumber string, pin int, amount decimal.Decimal) (model.Account, error)
	RepayLoan(ctx context.Context, accountNumber string, pin int, amount decimal.Decimal) (model.Account, error)
	AddInterest(ctx context.Context, accountNumber string, pin int, rate, years decimal.Decimal) (model.Account, decimal.Decimal, error)
	GetDetails(accountNumber string, pin int) (model.AccountDetails, error)
	GetTransactions(accountNumber string, pin int) ([]model.Transaction, error)
	UpdateDetails(ctx context.Context, accountNumber string, pin int, upd model.UpdateDetailsRequest) (model.Account, error)
	DeleteAccount(ctx context.Context, accountNumber string, pin int) error
}

// AccountHandler holds dependencies for account-related handlers.
type AccountHandler struct {
	ledger Ledger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger Ledger) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// credentials reads the account number from the path and the PIN from
// PINHeader. It writes a 400 response and returns ok=false when either is malformed.
func credentials(w http.ResponseWriter, r *http.Request) (accountNumber string, pin int, ok bool) {
	accountNumber = mux.Vars(r)["account_no"]
	if !model.IsAccountNumber(accountNumber) {
		writeError(w, r, http.StatusBadRequest, "Account number must be 10 digits")
		return "", 0, false
	}
	pin, err := strconv.Atoi(r.Header.Get(PINHeader))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "PIN must be a 4 digit number")
		return "", 0, false
	}
	return accountNumber, pin, true
}

// CreateAccountHandler opens a new account.
//
// Method: POST
// Path: /accounts
// Success: 201 Created
// Error: 400 Bad Request (invalid JSON, age, PIN or account type)
func (h *AccountHandler) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		writeError(w, r, http.StatusBadRequest, "All fields are required.")
		return
	}

	acc, err := h.ledger.CreateAccount(r.Context(), req.Name, req.Age, req.Email, req.PIN, req.AccountType)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, operationResponse{
		Message: "Account created! Your account number is: " + acc.AccountNumber,
		Account: viewAccount(acc),
	})
}

// LoginHandler checks an account number and PIN and returns the account.
//
// Method: POST
// Path: /login
// Success: 200 OK
// Error: 401 Unauthorized
func (h *AccountHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, err := h.ledger.Authenticate(req.AccountNumber, req.PIN)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, operationResponse{
		Message: "Welcome, " + acc.Name + "!",
		Account: viewAccount(acc),
	})
}

// GetAccountHandler returns the account details without history.
//
// Method: GET
// Path: /accounts/{account_no}
// Success: 200 OK
func (h *AccountHandler) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	no, pin, ok := credentials(w, r)
	if !ok {
		return
	}

	details, err := h.ledger.GetDetails(no, pin)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, viewDetails(details))
}

// UpdateAccountHandler changes name, email and/or PIN.
//
// Method: PATCH
// Path: /accounts/{account_no}
// Success: 200 OK
func (h *AccountHandler) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	no, pin, ok := credentials(w, r)
	if !ok {
		return
	}
	var req model.UpdateDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, err := h.ledger.UpdateDetails(r.Context(), no, pin, req)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, operationResponse{Message: "Details updated.", Account: viewAccount(acc)})
}

// DeleteAccountHandler closes the account and discards its history.
//
// Method: DELETE
// Path: /accounts/{account_no}
// Success: 204 No Content
func (h *AccountHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	no, pin, ok := credentials(w, r)
	if !ok {
		return
	}

	if err := h.ledger.DeleteAccount(r.Context(), no, pin); err != nil {
		writeLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
