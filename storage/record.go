package storage

import (
	"encoding/json"
	"time"

	"account-ledger/model"

	"github.com/shopspring/decimal"
)

// TimeLayout is the on-disk format of transaction timestamps, interpreted in local time.
const TimeLayout = "2006-01-02 15:04:05"

// accountRecord is the persisted shape of an account. Field names match the
// data.json files written by earlier releases, so money is a bare JSON number
// and the account number key keeps its trailing dot.
type accountRecord struct {
	Name         string              `json:"name"`
	Age          int                 `json:"age"`
	Email        string              `json:"email"`
	PIN          int                 `json:"pin"`
	AccountNo    string              `json:"accountNo."`
	Balance      json.Number         `json:"balance"`
	Transactions []transactionRecord `json:"transactions"`
	AccountType  string              `json:"account_type"`
	Loan         json.Number         `json:"loan"`
}

type transactionRecord struct {
	Type   string      `json:"type"`
	Amount json.Number `json:"amount"`
	Time   string      `json:"time"`
}

func toRecords(l model.Ledger) []accountRecord {
	out := make([]accountRecord, 0, len(l.Accounts))
	for _, acc := range l.Accounts {
		txns := make([]transactionRecord, 0, len(acc.Transactions))
		for _, txn := range acc.Transactions {
			txns = append(txns, transactionRecord{
				Type:   string(txn.Type),
				Amount: json.Number(txn.Amount.String()),
				Time:   txn.Time.In(time.Local).Format(TimeLayout),
			})
		}
		out = append(out, accountRecord{
			Name:         acc.Name,
			Age:          acc.Age,
			Email:        acc.Email,
			PIN:          acc.PIN,
			AccountNo:    acc.AccountNumber,
			Balance:      json.Number(acc.Balance.String()),
			Transactions: txns,
			AccountType:  string(acc.Type),
			Loan:         json.Number(acc.Loan.String()),
		})
	}
	return out
}

func fromRecords(records []accountRecord) (model.Ledger, error) {
	l := model.Ledger{Accounts: make([]model.Account, 0, len(records))}
	for i, rec := range records {
		balance, err := decimal.NewFromString(rec.Balance.String())
		if err != nil {
			return model.Ledger{}, corrupt("account %d: balance %q: %v", i, rec.Balance, err)
		}
		loan, err := decimal.NewFromString(rec.Loan.String())
		if err != nil {
			return model.Ledger{}, corrupt("account %d: loan %q: %v", i, rec.Loan, err)
		}

		var txns []model.Transaction
		for j, tr := range rec.Transactions {
			amount, err := decimal.NewFromString(tr.Amount.String())
			if err != nil {
				return model.Ledger{}, corrupt("account %d: transaction %d: amount %q: %v", i, j, tr.Amount, err)
			}
			at, err := time.ParseInLocation(TimeLayout, tr.Time, time.Local)
			if err != nil {
				return model.Ledger{}, corrupt("account %d: transaction %d: time %q: %v", i, j, tr.Time, err)
			}
			txns = append(txns, model.Transaction{
				Type:   model.TransactionType(tr.Type),
				Amount: amount,
				Time:   at,
			})
		}

		l.Accounts = append(l.Accounts, model.Account{
			AccountNumber: rec.AccountNo,
			Name:          rec.Name,
			Age:           rec.Age,
			Email:         rec.Email,
			PIN:           rec.PIN,
			Type:          model.AccountType(rec.AccountType),
			Balance:       balance,
			Loan:          loan,
			Transactions:  txns,
		})
	}
	if err := validateLedger(l); err != nil {
		return model.Ledger{}, err
	}
	return l, nil
}
