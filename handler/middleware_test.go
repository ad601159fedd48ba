package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"account-ledger/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestSerialize(t *testing.T) {
	// Arrange: a ledger that notices when two calls run at the same time.
	var inFlight, maxInFlight atomic.Int32
	enter := func() {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
	}
	mockLedger := &MockLedger{
		DepositFunc: func(ctx context.Context, no string, pin int, amount decimal.Decimal) (model.Account, error) {
			enter()
			return testAccount(), nil
		},
		GetDetailsFunc: func(no string, pin int) (model.AccountDetails, error) {
			enter()
			return testAccount().Details(), nil
		},
	}
	router := NewRouter(mockLedger, zerolog.Nop())

	// Act
	const workers = 16
	codes := make([]int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := authed("POST", "/accounts/"+testAccountNo+"/deposit", `{"amount": "10"}`, "4321")
			if i%2 == 1 {
				req = authed("GET", "/accounts/"+testAccountNo, "", "4321")
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			codes[i] = rr.Code
		}(i)
	}
	wg.Wait()

	// Assert
	assert.Equal(t, int32(1), maxInFlight.Load(), "ledger calls overlapped")
	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "request %d", i)
	}
}

func TestRequestLogger_KeepsIncomingRequestID(t *testing.T) {
	mockLedger := &MockLedger{
		GetDetailsFunc: func(no string, pin int) (model.AccountDetails, error) {
			return testAccount().Details(), nil
		},
	}
	req := authed("GET", "/accounts/"+testAccountNo, "", "4321")
	req.Header.Set(RequestIDHeader, "req-42")

	rr := serve(mockLedger, req)

	assert.Equal(t, "req-42", rr.Header().Get(RequestIDHeader))
}
