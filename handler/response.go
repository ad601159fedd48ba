package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"account-ledger/ledger"
	"account-ledger/logger"
	"account-ledger/model"
	"account-ledger/storage"
)

// accountView is what clients see of an account. Money is rounded to two
// decimals here and nowhere else.
type accountView struct {
	AccountNumber string `json:"account_no"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Email         string `json:"email"`
	AccountType   string `json:"account_type"`
	Balance       string `json:"balance"`
	Loan          string `json:"loan"`
}

type transactionView struct {
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Time   string `json:"time"`
}

type operationResponse struct {
	Message string      `json:"message"`
	Account accountView `json:"account"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func viewDetails(d model.AccountDetails) accountView {
	return accountView{
		AccountNumber: d.AccountNumber,
		Name:          d.Name,
		Age:           d.Age,
		Email:         d.Email,
		AccountType:   string(d.Type),
		Balance:       d.Balance.StringFixed(2),
		Loan:          d.Loan.StringFixed(2),
	}
}

func viewAccount(a model.Account) accountView {
	return viewDetails(a.Details())
}

func viewTransaction(t model.Transaction) transactionView {
	return transactionView{
		Type:   string(t.Type),
		Amount: t.Amount.StringFixed(2),
		Time:   t.Time.Local().Format(storage.TimeLayout),
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("Error writing JSON response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

// writeLedgerError maps an engine or storage error to an HTTP status.
//
// Error: 400 Bad Request (validation failure)
// Error: 401 Unauthorized (unknown account or wrong PIN)
// Error: 409 Conflict (loan state does not allow the operation)
// Error: 422 Unprocessable Entity (insufficient balance)
// Error: 503 Service Unavailable (change applied in memory but not saved)
// Error: 500 Internal Server Error (anything else)
func writeLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	switch {
	case errors.Is(err, ledger.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "Invalid account or PIN.")
	case errors.Is(err, ledger.ErrInvalidAge),
		errors.Is(err, ledger.ErrInvalidPin),
		errors.Is(err, ledger.ErrInvalidAccountType),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidRate):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrLoanAlreadyOutstanding),
		errors.Is(err, ledger.ErrNoOutstandingLoan):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInsufficientBalance):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, storage.ErrStorageUnavailable):
		log.Error().Err(err).Msg("ledger not saved")
		writeError(w, r, http.StatusServiceUnavailable, "The change was applied but could not be saved. Try again later.")
	default:
		log.Error().Err(err).Msg("ledger operation failed")
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
