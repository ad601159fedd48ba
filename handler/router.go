package handler

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// NewRouter wires every route to ledger behind logging, serialization,
// CORS and panic recovery.
func NewRouter(ledger Ledger, log zerolog.Logger) http.Handler {
	accountHandler := NewAccountHandler(ledger)
	transactionHandler := NewTransactionHandler(ledger)

	r := mux.NewRouter()
	r.Use(RequestLogger(log), Serialize())

	r.HandleFunc("/login", accountHandler.LoginHandler).Methods(http.MethodPost)
	r.HandleFunc("/accounts", accountHandler.CreateAccountHandler).Methods(http.MethodPost)

	const acct = "/accounts/{account_no}"
	r.HandleFunc(acct, accountHandler.GetAccountHandler).Methods(http.MethodGet)
	r.HandleFunc(acct, accountHandler.UpdateAccountHandler).Methods(http.MethodPatch)
	r.HandleFunc(acct, accountHandler.DeleteAccountHandler).Methods(http.MethodDelete)
	r.HandleFunc(acct+"/deposit", transactionHandler.DepositHandler).Methods(http.MethodPost)
	r.HandleFunc(acct+"/withdraw", transactionHandler.WithdrawHandler).Methods(http.MethodPost)
	r.HandleFunc(acct+"/loan", transactionHandler.ApplyLoanHandler).Methods(http.MethodPost)
	r.HandleFunc(acct+"/loan/repay", transactionHandler.RepayLoanHandler).Methods(http.MethodPost)
	r.HandleFunc(acct+"/interest", transactionHandler.AddInterestHandler).Methods(http.MethodPost)
	r.HandleFunc(acct+"/transactions", transactionHandler.ListTransactionsHandler).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type", PINHeader, RequestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{log: log}),
		handlers.PrintRecoveryStack(false),
	)
	return recovery(cors(r))
}
