package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"account-ledger/ledger"
	"account-ledger/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepositHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockLedger := &MockLedger{
			DepositFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
				assert.True(t, decimal.RequireFromString("500").Equal(amount))
				acc := testAccount()
				acc.Balance = acc.Balance.Add(amount)
				return acc, nil
			},
		}

		rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/deposit", `{"amount": "500"}`, "4321"))

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp operationResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "₹500.00 deposited successfully.", resp.Message)
		assert.Equal(t, "1550.13", resp.Account.Balance)
	})

	t.Run("invalid amount", func(t *testing.T) {
		mockLedger := &MockLedger{
			DepositFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
				return model.Account{}, ledger.ErrInvalidAmount
			},
		}

		rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/deposit", `{"amount": 0}`, "4321"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		rr := serve(&MockLedger{}, authed("POST", "/accounts/"+testAccountNo+"/deposit", `{"amount": true}`, "4321"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestWithdrawHandler(t *testing.T) {
	t.Run("insufficient balance", func(t *testing.T) {
		mockLedger := &MockLedger{
			WithdrawFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
				return model.Account{}, ledger.ErrInsufficientBalance
			},
		}

		rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/withdraw", `{"amount": "1000000"}`, "4321"))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Contains(t, rr.Body.String(), "insufficient balance")
	})

	t.Run("success", func(t *testing.T) {
		mockLedger := &MockLedger{
			WithdrawFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
				return testAccount(), nil
			},
		}

		rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/withdraw", `{"amount": "50"}`, "4321"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "₹50.00 withdrawn successfully.")
	})
}

func TestLoanHandlers(t *testing.T) {
	t.Run("apply while a loan is outstanding", func(t *testing.T) {
		mockLedger := &MockLedger{
			ApplyLoanFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
				return model.Account{}, ledger.ErrLoanAlreadyOutstanding
			},
		}

		rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/loan", `{"amount": "100"}`, "4321"))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("apply", func(t *testing.T) {
		mockLedger := &MockLedger{
			ApplyLoanFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
				acc := testAccount()
				acc.Loan = amount
				return acc, nil
			},
		}

		rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/loan", `{"amount": "2500"}`, "4321"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "Loan of ₹2500.00 granted.")
	})

	t.Run("repay reports the clamped amount from the engine snapshot", func(t *testing.T) {
		mockLedger := &MockLedger{
			AuthenticateFunc: func(no string, pin int) (model.Account, error) {
				acc := testAccount()
				acc.Loan = decimal.NewFromInt(300)
				return acc, nil
			},
			RepayLoanFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
				acc := testAccount()
				acc.Loan = decimal.Zero
				return acc, nil
			},
		}

		rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/loan/repay", `{"amount": "1000"}`, "4321"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "₹300.00 loan repaid. Remaining loan: ₹0.00")
	})

	t.Run("repay without a loan", func(t *testing.T) {
		mockLedger := &MockLedger{
			AuthenticateFunc: func(no string, pin int) (model.Account, error) { return testAccount(), nil },
			RepayLoanFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
				return model.Account{}, ledger.ErrNoOutstandingLoan
			},
		}

		rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/loan/repay", `{"amount": "10"}`, "4321"))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestAddInterestHandler(t *testing.T) {
	mockLedger := &MockLedger{
		AddInterestFunc: func(ctx context.Context, no string, pin int, rate, years decimal.Decimal) (model.Account, decimal.Decimal, error) {
			assert.True(t, decimal.NewFromInt(5).Equal(rate))
			assert.True(t, decimal.NewFromInt(1).Equal(years))
			acc := testAccount()
			acc.Balance = decimal.NewFromInt(1050)
			return acc, decimal.NewFromInt(50), nil
		},
	}

	rr := serve(mockLedger, authed("POST", "/accounts/"+testAccountNo+"/interest", `{"rate": 5, "years": 1}`, "4321"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp operationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "₹50.00 interest added.", resp.Message)
	assert.Equal(t, "1050.00", resp.Account.Balance)
}

func TestListTransactionsHandler(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	history := []model.Transaction{
		{Type: model.Deposit, Amount: decimal.NewFromInt(100), Time: at},
		{Type: model.Withdraw, Amount: decimal.NewFromInt(40), Time: at.Add(time.Hour)},
		{Type: model.Interest, Amount: decimal.RequireFromString("3.005"), Time: at.Add(2 * time.Hour)},
	}
	mockLedger := &MockLedger{
		GetTransactionsFunc: func(no string, pin int) ([]model.Transaction, error) {
			return history, nil
		},
	}

	t.Run("full history oldest first", func(t *testing.T) {
		rr := serve(mockLedger, authed("GET", "/accounts/"+testAccountNo+"/transactions", "", "4321"))

		require.Equal(t, http.StatusOK, rr.Code)
		var got []transactionView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 3)
		assert.Equal(t, transactionView{Type: "deposit", Amount: "100.00", Time: "2025-01-01 09:00:00"}, got[0])
		assert.Equal(t, "interest", got[2].Type)
	})

	t.Run("limit returns newest first", func(t *testing.T) {
		rr := serve(mockLedger, authed("GET", "/accounts/"+testAccountNo+"/transactions?limit=2", "", "4321"))

		require.Equal(t, http.StatusOK, rr.Code)
		var got []transactionView
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "interest", got[0].Type)
		assert.Equal(t, "withdraw", got[1].Type)
	})

	t.Run("limit zero is an empty list", func(t *testing.T) {
		rr := serve(mockLedger, authed("GET", "/accounts/"+testAccountNo+"/transactions?limit=0", "", "4321"))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("bad limit", func(t *testing.T) {
		rr := serve(mockLedger, authed("GET", "/accounts/"+testAccountNo+"/transactions?limit=-3", "", "4321"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
