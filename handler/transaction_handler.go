package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"account-ledger/model"

	"github.com/shopspring/decimal"
)

// TransactionHandler holds dependencies for balance and loan handlers.
type TransactionHandler struct {
	ledger Ledger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledger Ledger) *TransactionHandler {
	return &TransactionHandler{ledger: ledger}
}

func rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

// amountOp decodes an AmountRequest and runs op with it. The response
// account is always the engine's snapshot.
func (h *TransactionHandler) amountOp(
	w http.ResponseWriter, r *http.Request,
	op func(no string, pin int, amount decimal.Decimal) (model.Account, error),
	message func(amount decimal.Decimal, acc model.Account) string,
) {
	no, pin, ok := credentials(w, r)
	if !ok {
		return
	}
	var req model.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, err := op(no, pin, req.Amount)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, operationResponse{
		Message: message(req.Amount, acc),
		Account: viewAccount(acc),
	})
}

// DepositHandler credits the account.
//
// Method: POST
// Path: /accounts/{account_no}/deposit
// Success: 200 OK
func (h *TransactionHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	h.amountOp(w, r,
		func(no string, pin int, amount decimal.Decimal) (model.Account, error) {
			return h.ledger.Deposit(r.Context(), no, pin, amount)
		},
		func(amount decimal.Decimal, _ model.Account) string {
			return rupees(amount) + " deposited successfully."
		})
}

// WithdrawHandler debits the account.
//
// Method: POST
// Path: /accounts/{account_no}/withdraw
// Success: 200 OK
func (h *TransactionHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	h.amountOp(w, r,
		func(no string, pin int, amount decimal.Decimal) (model.Account, error) {
			return h.ledger.Withdraw(r.Context(), no, pin, amount)
		},
		func(amount decimal.Decimal, _ model.Account) string {
			return rupees(amount) + " withdrawn successfully."
		})
}

// ApplyLoanHandler grants a loan.
//
// Method: POST
// Path: /accounts/{account_no}/loan
// Success: 200 OK
func (h *TransactionHandler) ApplyLoanHandler(w http.ResponseWriter, r *http.Request) {
	h.amountOp(w, r,
		func(no string, pin int, amount decimal.Decimal) (model.Account, error) {
			return h.ledger.ApplyLoan(r.Context(), no, pin, amount)
		},
		func(amount decimal.Decimal, _ model.Account) string {
			return "Loan of " + rupees(amount) + " granted."
		})
}

// RepayLoanHandler pays down the loan from the balance.
//
// Method: POST
// Path: /accounts/{account_no}/loan/repay
// Success: 200 OK
func (h *TransactionHandler) RepayLoanHandler(w http.ResponseWriter, r *http.Request) {
	var before model.Account
	h.amountOp(w, r,
		func(no string, pin int, amount decimal.Decimal) (model.Account, error) {
			prev, err := h.ledger.Authenticate(no, pin)
			if err != nil {
				return model.Account{}, err
			}
			before = prev
			return h.ledger.RepayLoan(r.Context(), no, pin, amount)
		},
		func(_ decimal.Decimal, acc model.Account) string {
			// The engine clamps overpayments, so the repaid amount is what the loan shrank by.
			repaid := before.Loan.Sub(acc.Loan)
			return fmt.Sprintf("%s loan repaid. Remaining loan: %s", rupees(repaid), rupees(acc.Loan))
		})
}

// AddInterestHandler credits simple interest.
//
// Method: POST
// Path: /accounts/{account_no}/interest
// Success: 200 OK
func (h *TransactionHandler) AddInterestHandler(w http.ResponseWriter, r *http.Request) {
	no, pin, ok := credentials(w, r)
	if !ok {
		return
	}
	var req model.InterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	acc, interest, err := h.ledger.AddInterest(r.Context(), no, pin, req.Rate, req.Years)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, operationResponse{
		Message: rupees(interest) + " interest added.",
		Account: viewAccount(acc),
	})
}

// ListTransactionsHandler returns the transaction history. With ?limit=N it
// returns the newest N entries, newest first; otherwise all, oldest first.
//
// Method: GET
// Path: /accounts/{account_no}/transactions
// Success: 200 OK
func (h *TransactionHandler) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	no, pin, ok := credentials(w, r)
	if !ok {
		return
	}
	limit := -1
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	txns, err := h.ledger.GetTransactions(no, pin)
	if err != nil {
		writeLedgerError(w, r, err)
		return
	}

	out := make([]transactionView, 0, len(txns))
	if limit < 0 {
		for _, t := range txns {
			out = append(out, viewTransaction(t))
		}
	} else {
		for i := len(txns) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, viewTransaction(txns[i]))
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}
